package raymarch

import "math"

// Box is an axis-aligned bounding box.
type Box struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewBox creates a box from two opposite corners.
// The corners are reordered so that Min <= Max on every axis.
func NewBox(a, b Vec3) Box {
	return Box{Min: a.Min(b), Max: a.Max(b)}
}

// Union returns the smallest box enclosing both boxes.
func (b Box) Union(o Box) Box {
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Intersect returns the overlap of both boxes.
// The result may be empty (Min > Max on some axis); check Empty before
// clipping rays against it.
func (b Box) Intersect(o Box) Box {
	return Box{Min: b.Min.Max(o.Min), Max: b.Max.Min(o.Max)}
}

// Translate returns the box shifted by t.
func (b Box) Translate(t Vec3) Box {
	return Box{Min: b.Min.Add(t), Max: b.Max.Add(t)}
}

// Empty reports whether the box has no volume on some axis.
func (b Box) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Center returns the center point of the box.
func (b Box) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the extent of the box along each axis.
func (b Box) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectRay computes the parametric interval [t0, t1] in which the ray
// origin + t*dir lies inside the box, using the slab method.
//
// A zero direction component puts no limit on t along that axis when the
// origin lies inside the slab, faces included, and misses otherwise. t0 is
// clamped to zero so the interval never starts behind the origin. A NaN
// direction misses.
//
// The ray misses when t0 > t1 (or either is NaN); callers must check this
// before marching.
func (b Box) IntersectRay(origin, dir Vec3) (t0, t1 float64) {
	t0 = 0
	t1 = math.Inf(1)
	tNear := math.Inf(-1)
	for axis := 0; axis < 3; axis++ {
		o := origin.Component(axis)
		d := dir.Component(axis)
		lo, hi := b.Min.Component(axis), b.Max.Component(axis)
		if d == 0 {
			if o < lo || o > hi {
				return 0, -1
			}
			continue
		}
		ta := (lo - o) / d
		tb := (hi - o) / d

		tNear = math.Max(tNear, math.Min(ta, tb))
		t1 = math.Min(t1, math.Max(ta, tb))
	}
	t0 = math.Max(t0, tNear)
	return t0, t1
}
