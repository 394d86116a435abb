package raymarch

import "testing"

// BenchmarkScreenBuffer_Clear benchmarks clearing buffers of various sizes.
func BenchmarkScreenBuffer_Clear(b *testing.B) {
	sizes := []struct {
		name   string
		width  int
		height int
	}{
		{"320x240", 320, 240},
		{"640x480", 640, 480},
		{"1920x1080", 1920, 1080},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			buf := NewScreenBuffer(size.width, size.height)
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buf.Clear()
			}
		})
	}
}

// BenchmarkGeometry_Pass benchmarks sphere tracing a small CSG scene.
func BenchmarkGeometry_Pass(b *testing.B) {
	r := NewRenderer(WithoutAccelerator())
	defer r.Close()

	cam := NewCamera()
	cam.Width, cam.Height = 320, 240
	buf := NewScreenBufferFromCamera(cam)
	g := Sphere(1, Vec3{}).
		Difference(Cylinder(0.4, 2, Vec3{})).
		Union(BoxFrame(V3(-1.5, -1.5, -1.5), V3(1.5, 1.5, 1.5), 0.05))

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf.Clear()
		if err := r.Geometry(buf, cam, g, nil); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDistance measures a single evaluation of a compiled tree.
func BenchmarkDistance(b *testing.B) {
	g := Sphere(1, Vec3{}).Union(Sphere(0.5, V3(1, 0, 0))).Translate(V3(0, 1, 0))
	ev := newEvaluator(g.program())
	p := V3(0.3, 0.2, 0.1)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = ev.distance(p)
	}
}

// BenchmarkVolume_Pass benchmarks volume integration over a 64³ field.
func BenchmarkVolume_Pass(b *testing.B) {
	r := NewRenderer(WithoutAccelerator())
	defer r.Close()

	cam := NewCamera()
	cam.Width, cam.Height = 320, 240
	buf := NewScreenBufferFromCamera(cam)
	const n = 64
	s := 2.0 / n
	field, err := NewGridFunc([3]int{n, n, n}, V3(s, s, s), V3(-1, -1, -1),
		func(p Vec3) float64 { return p.Length() })
	if err != nil {
		b.Fatal(err)
	}
	coloring, err := NewColormap("hot", 0, 2, WithOpacity(0.2))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Clear()
		if err := r.Volume(buf, cam, field, coloring); err != nil {
			b.Fatal(err)
		}
	}
}
