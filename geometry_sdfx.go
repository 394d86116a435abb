package raymarch

import (
	"sync/atomic"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// externalSDF is a distance function supplied from outside the expression
// algebra. The id makes its descriptor unique: two external leaves are only
// considered equal when they wrap the same registration.
type externalSDF struct {
	id   uint64
	name string
	eval func(p Vec3) float64
}

var externalIDs atomic.Uint64

// FromFunc wraps an arbitrary signed distance function as a leaf. fn must
// be safe for concurrent use; it is called from every render worker.
func FromFunc(name string, bound Box, threshold float64, fn func(p Vec3) float64) *Geometry {
	return finish(&Geometry{
		kind: KindExternal,
		external: &externalSDF{
			id:   externalIDs.Add(1),
			name: name,
			eval: fn,
		},
		bound:     bound,
		threshold: threshold,
	})
}

// FromSDF3 wraps an sdfx solid as a leaf. The bound is the solid's bounding
// box and the threshold is eps.
//
// sdfx solids are evaluated concurrently from the render workers; the
// built-in sdfx primitives and operations are stateless and safe for that.
func FromSDF3(s sdf.SDF3, eps float64) *Geometry {
	bb := s.BoundingBox()
	bound := Box{
		Min: V3(bb.Min.X, bb.Min.Y, bb.Min.Z),
		Max: V3(bb.Max.X, bb.Max.Y, bb.Max.Z),
	}
	return FromFunc("sdfx", bound, eps, func(p Vec3) float64 {
		return s.Evaluate(v3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	})
}
