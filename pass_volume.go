package raymarch

import "fmt"

// Volume integrates the absorption of field along every ray into the
// transparent planes of buf.
//
// Rays are clipped to the field's box and marched in steps of the field's
// smallest spacing. Every sample is mapped through coloring and blended
// with the depth weight, scaled by the step so that the absorbed total does
// not depend on the lattice resolution. A ray stops at the pixel's current
// depth or once the pixel is 99% opaque.
//
// A nil coloring maps the field through "jet" over its finite value range.
// If the field is constant the default coloring is fully transparent.
func (r *Renderer) Volume(buf *ScreenBuffer, cam *Camera, field *Grid, coloring *Coloring) error {
	if err := checkTarget(buf, cam); err != nil {
		return err
	}
	if field == nil {
		return fmt.Errorf("%w: volume field", ErrNilInput)
	}
	if coloring == nil {
		var err error
		if coloring, err = autoVolumeColoring(field); err != nil {
			return fmt.Errorf("raymarch: volume coloring: %w", err)
		}
	}

	job := &VolumeJob{Camera: cam, Field: field, Coloring: coloring}
	if r.tryAccelerate(AccelVolume, "volume", func(a Accelerator) error {
		return a.Volume(buf.Target(), job)
	}) {
		return nil
	}

	rays := cam.Rays()
	bound := field.Bounds()
	step := field.MinSpacing()
	origin := rays.Origin()
	maxDepth := cam.MaxDepth

	r.forEachPixel("volume", buf, func(_, x, y int) {
		i := buf.index(x, y)
		dir := rays.Direction(x, y)
		t0, t1, ok := rayInterval(bound, origin, dir)
		if !ok {
			return
		}
		n := int((t1 - t0) / step)
		dist := t0
		for s := 0; s < n; s++ {
			if dist > float64(buf.depth[i]) {
				return
			}
			c := coloring.Lookup(field.Sample(origin.Add(dir.Mul(dist))))
			buf.blend(i, c, OITWeight(dist, maxDepth), step, step)
			if buf.saturated(i) {
				return
			}
			dist += step
		}
	})
	return nil
}
