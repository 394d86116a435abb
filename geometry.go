package raymarch

import (
	"math"
)

// Kind identifies the variant of a Geometry node.
type Kind uint8

// Geometry node kinds.
const (
	KindSphere Kind = iota
	KindBoxFrame
	KindCone
	KindCylinder
	KindExternal
	KindUnion
	KindDifference
	KindIntersection
	KindTranslate
	KindRotate
)

var kindNames = [...]string{
	KindSphere:       "sphere",
	KindBoxFrame:     "boxframe",
	KindCone:         "cone",
	KindCylinder:     "cylinder",
	KindExternal:     "external",
	KindUnion:        "union",
	KindDifference:   "difference",
	KindIntersection: "intersection",
	KindTranslate:    "translate",
	KindRotate:       "rotate",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Primitive reports whether the kind is a leaf solid.
func (k Kind) Primitive() bool {
	return k <= KindExternal
}

// Geometry is an immutable node of a signed-distance expression tree.
//
// Leaves are primitive solids; inner nodes combine or transform their
// children. Every node carries an axis-aligned bound used to clip rays and
// a surface threshold: a ray hits the surface where |distance| < threshold.
//
// CSG operations return new nodes and never modify their operands, so a
// tree may be shared between goroutines and reused across renders.
type Geometry struct {
	kind Kind

	// Primitive parameters. Only the fields of the node's kind are set.
	center    Vec3
	lower     Vec3
	upper     Vec3
	radius    float64
	height    float64
	thickness float64
	sin, cos  float64
	external  *externalSDF

	// Combinator operands.
	a, b   *Geometry
	offset Vec3
	rot    Quat
	angle  float64
	axis   Vec3

	bound     Box
	threshold float64
	key       structKey
}

// Sphere returns a sphere of the given radius. Threshold: radius/100.
func Sphere(radius float64, center Vec3) *Geometry {
	r := V3(radius, radius, radius)
	return finish(&Geometry{
		kind:      KindSphere,
		center:    center,
		radius:    radius,
		bound:     Box{Min: center.Sub(r), Max: center.Add(r)},
		threshold: radius / 100,
	})
}

// BoxFrame returns the wire frame of the box [lower, upper] with bars of the
// given thickness. Threshold: thickness/100.
func BoxFrame(lower, upper Vec3, thickness float64) *Geometry {
	return finish(&Geometry{
		kind:      KindBoxFrame,
		lower:     lower,
		upper:     upper,
		thickness: thickness,
		bound:     Box{Min: lower, Max: upper},
		threshold: thickness / 100,
	})
}

// Cone returns a solid cone with its tip at center, opening along -y to a
// base height below the tip. sin and cos describe the half-angle at the
// tip. The bound is center ± height on every axis. Threshold: height/100.
func Cone(sin, cos, height float64, center Vec3) *Geometry {
	h := V3(height, height, height)
	return finish(&Geometry{
		kind:      KindCone,
		center:    center,
		sin:       sin,
		cos:       cos,
		height:    height,
		bound:     Box{Min: center.Sub(h), Max: center.Add(h)},
		threshold: height / 100,
	})
}

// Cylinder returns a capped cylinder along y. height is the half-height:
// the caps sit at center.y ± height. Threshold: radius/100.
func Cylinder(radius, height float64, center Vec3) *Geometry {
	e := V3(radius, height, radius)
	return finish(&Geometry{
		kind:      KindCylinder,
		center:    center,
		radius:    radius,
		height:    height,
		bound:     Box{Min: center.Sub(e), Max: center.Add(e)},
		threshold: radius / 100,
	})
}

// Arrow returns an arrow of the given height pointing along -y: a cylinder
// shaft of radius height/10 spanning y in [-height, height] and a cone head
// whose tip sits at y = -1.5*height. The whole arrow is translated to
// center. Threshold: height/1000.
func Arrow(height float64, center Vec3) *Geometry {
	radius := height / 10
	shaft := Cylinder(radius, height, Vec3{})

	angle := math.Atan2(radius, height/3)
	s, c := math.Sincos(angle)
	head := Cone(s, c, height, Vec3{}).
		Rotate(math.Pi, V3(1, 0, 0)).
		Translate(V3(0, -1.5*height, 0))

	return shaft.Union(head).Translate(center).WithThreshold(radius / 100)
}

// Union returns the solid covered by g or o: min(dA, dB). Its bound
// encloses both operand bounds; its threshold is the smaller one.
func (g *Geometry) Union(o *Geometry) *Geometry {
	return finish(&Geometry{
		kind:      KindUnion,
		a:         g,
		b:         o,
		bound:     g.bound.Union(o.bound),
		threshold: math.Min(g.threshold, o.threshold),
	})
}

// Difference returns g with o carved out: max(dA, -dB). Bound and threshold
// are g's.
func (g *Geometry) Difference(o *Geometry) *Geometry {
	return finish(&Geometry{
		kind:      KindDifference,
		a:         g,
		b:         o,
		bound:     g.bound,
		threshold: g.threshold,
	})
}

// Intersection returns the solid covered by both g and o: max(dA, dB). Its
// bound is the overlap of both bounds and may be empty.
func (g *Geometry) Intersection(o *Geometry) *Geometry {
	return finish(&Geometry{
		kind:      KindIntersection,
		a:         g,
		b:         o,
		bound:     g.bound.Intersect(o.bound),
		threshold: math.Min(g.threshold, o.threshold),
	})
}

// Translate returns g moved by t: d(p - t).
func (g *Geometry) Translate(t Vec3) *Geometry {
	return finish(&Geometry{
		kind:      KindTranslate,
		a:         g,
		offset:    t,
		bound:     g.bound.Translate(t),
		threshold: g.threshold,
	})
}

// Rotate returns g turned by angle radians around axis (right-hand rule):
// d(q⁻¹·p). The bound is not rotated; it stays g's bound, which only
// encloses the result for rotations that map the bound onto itself. Use
// WithBounds to supply a correct bound for other rotations.
func (g *Geometry) Rotate(angle float64, axis Vec3) *Geometry {
	return finish(&Geometry{
		kind:      KindRotate,
		a:         g,
		rot:       QuatFromAxisAngle(axis, angle),
		angle:     angle,
		axis:      axis,
		bound:     g.bound,
		threshold: g.threshold,
	})
}

// WithThreshold returns a copy of g with a different surface threshold.
func (g *Geometry) WithThreshold(eps float64) *Geometry {
	c := *g
	c.threshold = eps
	return finish(&c)
}

// WithBounds returns a copy of g with a different bound.
func (g *Geometry) WithBounds(b Box) *Geometry {
	c := *g
	c.bound = b
	return finish(&c)
}

// RotatedBounds returns the box enclosing g's bound after the rotation
// Rotate(angle, axis) would apply.
func (g *Geometry) RotatedBounds(angle float64, axis Vec3) Box {
	q := QuatFromAxisAngle(axis, angle)
	lo := V3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi := lo.Neg()
	for i := 0; i < 8; i++ {
		corner := g.bound.Min
		if i&1 != 0 {
			corner.X = g.bound.Max.X
		}
		if i&2 != 0 {
			corner.Y = g.bound.Max.Y
		}
		if i&4 != 0 {
			corner.Z = g.bound.Max.Z
		}
		r := q.Rotate(corner)
		lo, hi = lo.Min(r), hi.Max(r)
	}
	return Box{Min: lo, Max: hi}
}

// Kind returns the node variant.
func (g *Geometry) Kind() Kind { return g.kind }

// Bounds returns the node's axis-aligned bound.
func (g *Geometry) Bounds() Box { return g.bound }

// Threshold returns the surface-detection epsilon.
func (g *Geometry) Threshold() float64 { return g.threshold }

// Children returns the operands of a combinator, or nil for primitives.
// Unary transforms return one child.
func (g *Geometry) Children() []*Geometry {
	switch {
	case g.a != nil && g.b != nil:
		return []*Geometry{g.a, g.b}
	case g.a != nil:
		return []*Geometry{g.a}
	default:
		return nil
	}
}

// Descriptor returns a structural description of the tree. Two trees with
// equal descriptors evaluate to the same distance everywhere. The string is
// built on each call by walking the tree.
func (g *Geometry) Descriptor() string { return string(appendDescriptor(nil, g)) }

// SameStructure reports whether g and o have the same structure and
// therefore share a compiled program.
func (g *Geometry) SameStructure(o *Geometry) bool { return g.key == o.key }

// String implements fmt.Stringer.
func (g *Geometry) String() string { return g.Descriptor() }

// Distance returns the signed distance from p to the surface.
func (g *Geometry) Distance(p Vec3) float64 {
	return newEvaluator(g.program()).distance(p)
}

// Gradient returns the central-difference gradient of the distance at p
// with step GradientStep. It is not normalized.
func (g *Geometry) Gradient(p Vec3) Vec3 {
	return newEvaluator(g.program()).gradient(p)
}

// finish computes the node's structural key and returns g.
func finish(g *Geometry) *Geometry {
	g.key = structuralKey(g)
	return g
}
