package raymarch

import "fmt"

// Contour renders the isosurface field == threshold into buf.
//
// Each ray is clipped to the field's box and marched in fixed steps of the
// field's smallest spacing. A crossing is detected when (value - threshold)
// changes sign between two samples; its distance is interpolated linearly
// inside the step. The surface is shaded by the field gradient and colored
// by sampling colorField at the crossing through coloring.
//
// A nil colorField stands for a field that is zero everywhere; with a nil
// coloring the surface is opaque white. A colorField given without a
// coloring is mapped through "jet" over its finite value range.
func (r *Renderer) Contour(buf *ScreenBuffer, cam *Camera, field *Grid, threshold float64, colorField *Grid, coloring *Coloring) error {
	if err := checkTarget(buf, cam); err != nil {
		return err
	}
	if field == nil {
		return fmt.Errorf("%w: contour field", ErrNilInput)
	}
	if coloring == nil {
		if colorField == nil {
			coloring = MustSolidColor(White, 1)
		} else {
			var err error
			if coloring, err = autoColormap(colorField); err != nil {
				return fmt.Errorf("raymarch: contour coloring: %w", err)
			}
		}
	}

	job := &ContourJob{
		Camera:     cam,
		Field:      field,
		Threshold:  threshold,
		ColorField: colorField,
		Coloring:   coloring,
	}
	if r.tryAccelerate(AccelContour, "contour", func(a Accelerator) error {
		return a.Contour(buf.Target(), job)
	}) {
		return nil
	}

	rays := cam.Rays()
	m := contourMarcher{
		job:    job,
		bound:  field.Bounds(),
		step:   field.MinSpacing(),
		origin: rays.Origin(),
	}
	r.forEachPixel("contour", buf, func(_, x, y int) {
		m.march(buf, buf.index(x, y), rays.Direction(x, y))
	})
	return nil
}

type contourMarcher struct {
	job    *ContourJob
	bound  Box
	step   float64
	origin Vec3
}

func (m *contourMarcher) march(buf *ScreenBuffer, i int, dir Vec3) {
	t0, t1, ok := rayInterval(m.bound, m.origin, dir)
	if !ok {
		return
	}
	job := m.job
	thr := job.Threshold
	maxDepth := job.Camera.MaxDepth
	opaque := job.Coloring.Opaque()

	dist := t0
	pos := m.origin.Add(dir.Mul(dist))
	value := job.Field.Sample(pos)
	sign := -1.0
	if value > thr {
		sign = 1
	}

	n := int((t1 - t0) / m.step)
	for s := 0; s < n; s++ {
		if dist > float64(buf.depth[i]) {
			return
		}
		next := pos.Add(dir.Mul(m.step))
		nextValue := job.Field.Sample(next)

		if (nextValue-thr)*sign < 0 {
			sign = -sign
			f := (thr - value) / (nextValue - value)
			hitDist := dist + f*m.step
			// A surface already drawn inside this step hides the crossing
			// and everything behind it.
			if hitDist > float64(buf.depth[i]) {
				return
			}
			hit := pos.Add(dir.Mul(f * m.step))

			normal, intensity := shade(job.Field.Gradient(hit), dir)
			var cv float64
			if job.ColorField != nil {
				cv = job.ColorField.Sample(hit)
			}
			c := job.Coloring.Lookup(cv)

			if opaque {
				buf.writeOpaque(i, c, intensity, hitDist, normal)
				return
			}
			buf.blend(i, c, OITWeight(hitDist, maxDepth), intensity, 1)
		}

		pos = next
		value = nextValue
		dist += m.step
	}
}
