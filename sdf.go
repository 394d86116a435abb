package raymarch

import "math"

// Signed distance functions of the primitive solids. Negative values are
// inside, positive values are outside. Formulas follow Inigo Quilez,
// https://iquilezles.org/articles/distfunctions/.

// sdfSphere computes the signed distance from p to a sphere.
func sdfSphere(p, center Vec3, radius float64) float64 {
	return p.Sub(center).Length() - radius
}

// sdfBoxFrame computes the signed distance from p to the edges of the box
// [lower, upper], each edge a square bar of the given thickness lying
// inside the box.
func sdfBoxFrame(p, lower, upper Vec3, thickness float64) float64 {
	size := upper.Sub(lower)
	half := size.Mul(0.5)
	center := lower.Add(half)

	q := p.Sub(center).Abs().Sub(half)
	e := Vec3{
		X: math.Abs(q.X+thickness) - thickness,
		Y: math.Abs(q.Y+thickness) - thickness,
		Z: math.Abs(q.Z+thickness) - thickness,
	}

	ex := length3(math.Max(q.X, 0), math.Max(e.Y, 0), math.Max(e.Z, 0)) +
		math.Min(math.Max(q.X, math.Max(e.Y, e.Z)), 0)
	ey := length3(math.Max(e.X, 0), math.Max(q.Y, 0), math.Max(e.Z, 0)) +
		math.Min(math.Max(e.X, math.Max(q.Y, e.Z)), 0)
	ez := length3(math.Max(e.X, 0), math.Max(e.Y, 0), math.Max(q.Z, 0)) +
		math.Min(math.Max(e.X, math.Max(e.Y, q.Z)), 0)
	return math.Min(math.Min(ex, ey), ez)
}

// sdfCone computes the signed distance from p to a solid cone with its tip
// at center, opening downward along -y to a base at center.y - height.
// sin and cos describe the half-angle at the tip.
func sdfCone(p, center Vec3, sin, cos, height float64) float64 {
	p = p.Sub(center)

	qx, qy := height*sin/cos, -height
	wx, wy := math.Hypot(p.X, p.Z), p.Y

	qq := qx*qx + qy*qy
	t := Clamp((wx*qx+wy*qy)/qq, 0, 1)
	ax, ay := wx-qx*t, wy-qy*t

	u := Clamp(wx/qx, 0, 1)
	bx, by := wx-qx*u, wy-qy

	k := Sign(qy)
	d := math.Min(ax*ax+ay*ay, bx*bx+by*by)
	s := math.Max(k*(wx*qy-wy*qx), k*(wy-qy))
	return math.Sqrt(d) * Sign(s)
}

// sdfCylinder computes the signed distance from p to a capped cylinder
// along y. height is the half-height: the caps sit at center.y ± height.
func sdfCylinder(p, center Vec3, radius, height float64) float64 {
	p = p.Sub(center)
	d := math.Hypot(p.X, p.Z) - radius
	h := math.Abs(p.Y) - height
	return math.Min(math.Max(d, h), 0) + math.Hypot(math.Max(d, 0), math.Max(h, 0))
}

func length3(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}
