package raymarch

import (
	"fmt"
	"math"
)

// Geometry sphere-traces g into buf.
//
// Each ray is clipped to g's bound and advanced by |distance| until the
// surface is within g's threshold, the ray leaves the bound, exceeds the
// camera's max depth or the pixel's current depth, or MaxSteps is reached.
//
// The hit color is coloring.Lookup(hit distance); a nil coloring is opaque
// white. Opaque colorings write color*intensity, depth and normal and stop.
// Transparent colorings blend the hit, step through the surface shell in
// threshold-sized steps and continue, so back faces contribute as well.
func (r *Renderer) Geometry(buf *ScreenBuffer, cam *Camera, g *Geometry, coloring *Coloring) error {
	if err := checkTarget(buf, cam); err != nil {
		return err
	}
	if g == nil {
		return fmt.Errorf("%w: geometry", ErrNilInput)
	}
	if coloring == nil {
		coloring = MustSolidColor(White, 1)
	}
	if g.bound.Empty() {
		return nil
	}

	prog := g.program()
	evals := make([]*evaluator, r.pool.Workers())
	rays := cam.Rays()
	t := geometryTracer{
		bound:    g.bound,
		eps:      g.threshold,
		maxDepth: cam.MaxDepth,
		maxSteps: r.maxSteps,
		coloring: coloring,
		origin:   rays.Origin(),
	}

	r.forEachPixel("geometry", buf, func(worker, x, y int) {
		ev := evals[worker]
		if ev == nil {
			ev = newEvaluator(prog)
			evals[worker] = ev
		}
		t.trace(buf, ev, buf.index(x, y), rays.Direction(x, y))
	})
	return nil
}

// geometryTracer holds the per-pass constants of the geometry pass.
type geometryTracer struct {
	bound    Box
	eps      float64
	maxDepth float64
	maxSteps int
	coloring *Coloring
	origin   Vec3
}

func (t *geometryTracer) trace(buf *ScreenBuffer, ev *evaluator, i int, dir Vec3) {
	t0, t1, ok := rayInterval(t.bound, t.origin, dir)
	if !ok {
		return
	}
	limit := math.Min(t1, t.maxDepth)

	dist := t0
	for step := 0; step < t.maxSteps; step++ {
		if dist > limit || dist > float64(buf.depth[i]) {
			return
		}
		p := t.origin.Add(dir.Mul(dist))
		d := ev.distance(p)
		if math.IsNaN(d) {
			return
		}
		if math.Abs(d) >= t.eps {
			dist += math.Abs(d)
			continue
		}

		normal, intensity := shade(ev.gradient(p), dir)
		c := t.coloring.Lookup(dist)
		if t.coloring.Opaque() {
			buf.writeOpaque(i, c, intensity, dist, normal)
			return
		}
		buf.blend(i, c, OITWeight(dist, t.maxDepth), intensity, 1)

		// Leave the surface shell before resuming adaptive steps.
		for math.Abs(d) < t.eps && step < t.maxSteps && dist <= limit {
			dist += t.eps
			step++
			d = ev.distance(t.origin.Add(dir.Mul(dist)))
		}
	}
}
