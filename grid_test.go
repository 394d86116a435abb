package raymarch

import (
	"errors"
	"math"
	"testing"
)

func linearGrid(t *testing.T, a, b, c float64) *Grid {
	t.Helper()
	g, err := NewGridFunc([3]int{5, 6, 7}, V3(0.5, 0.25, 1), V3(-1, 0, 2),
		func(p Vec3) float64 { return a*p.X + b*p.Y + c*p.Z })
	if err != nil {
		t.Fatalf("NewGridFunc: %v", err)
	}
	return g
}

func TestNewGridErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    []float32
		shape   [3]int
		spacing Vec3
	}{
		{"zero shape", nil, [3]int{0, 1, 1}, V3(1, 1, 1)},
		{"negative shape", make([]float32, 1), [3]int{1, -1, 1}, V3(1, 1, 1)},
		{"zero spacing", make([]float32, 8), [3]int{2, 2, 2}, V3(1, 0, 1)},
		{"negative spacing", make([]float32, 8), [3]int{2, 2, 2}, V3(1, 1, -1)},
		{"NaN spacing", make([]float32, 8), [3]int{2, 2, 2}, V3(math.NaN(), 1, 1)},
		{"data length", make([]float32, 7), [3]int{2, 2, 2}, V3(1, 1, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGrid(tt.data, tt.shape, tt.spacing, Vec3{})
			if !errors.Is(err, ErrInvalidGrid) {
				t.Errorf("err = %v, want ErrInvalidGrid", err)
			}
		})
	}
}

func TestGridLayout(t *testing.T) {
	g := linearGrid(t, 1, 10, 100)
	// k varies fastest.
	if got, want := float64(g.Data[1]), g.Node(0, 0, 1).Dot(V3(1, 10, 100)); math.Abs(got-want) > 1e-4 {
		t.Errorf("Data[1] = %v, want node (0,0,1) value %v", got, want)
	}
	if got, want := g.Bounds(), (Box{Min: V3(-1, 0, 2), Max: V3(1.5, 1.5, 9)}); got != want {
		t.Errorf("Bounds() = %+v, want %+v", got, want)
	}
	if got := g.MinSpacing(); got != 0.25 {
		t.Errorf("MinSpacing() = %v, want 0.25", got)
	}
}

func TestGridSampleAtNodes(t *testing.T) {
	g := linearGrid(t, 0.5, -2, 3)
	for i := 0; i < g.Shape[0]; i++ {
		for j := 0; j < g.Shape[1]; j++ {
			for k := 0; k < g.Shape[2]; k++ {
				if got, want := g.Sample(g.Node(i, j, k)), g.At(i, j, k); math.Abs(got-want) > 1e-5 {
					t.Fatalf("Sample at node (%d,%d,%d) = %v, want %v", i, j, k, got, want)
				}
			}
		}
	}
}

func TestGridSampleInterpolates(t *testing.T) {
	g := linearGrid(t, 0.5, -2, 3)
	f := func(p Vec3) float64 { return 0.5*p.X - 2*p.Y + 3*p.Z }
	for _, p := range []Vec3{V3(0.1, 0.3, 2.5), V3(-0.77, 1.1, 7.9), V3(0.95, 0.01, 4.4)} {
		if got, want := g.Sample(p), f(p); math.Abs(got-want) > 1e-4 {
			t.Errorf("Sample(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestGridSampleClamps(t *testing.T) {
	g := linearGrid(t, 1, 0, 0)
	lo, hi := g.At(0, 0, 0), g.At(4, 0, 0)
	if got := g.Sample(V3(-50, 0, 2)); got != lo {
		t.Errorf("Sample far below = %v, want %v", got, lo)
	}
	if got := g.Sample(V3(50, 0, 2)); got != hi {
		t.Errorf("Sample far above = %v, want %v", got, hi)
	}
	if got := g.Sample(V3(math.Inf(1), 0, 2)); got != hi {
		t.Errorf("Sample(+Inf) = %v, want %v", got, hi)
	}
	if got := g.Sample(V3(math.NaN(), 0, 2)); !math.IsNaN(got) {
		t.Errorf("Sample(NaN) = %v, want NaN", got)
	}
	if got := g.At(-3, 100, 2); got != g.At(0, 5, 2) {
		t.Errorf("At clamps indices: got %v", got)
	}
}

func TestGridGradientLinear(t *testing.T) {
	g := linearGrid(t, 0.5, -2, 3)
	want := V3(0.5, -2, 3)
	// Interior, lower boundary and upper boundary cells.
	for _, p := range []Vec3{V3(0.1, 0.6, 5.2), g.Origin, V3(1.4, 1.4, 8.9)} {
		got := g.Gradient(p)
		if got.Sub(want).Length() > 1e-4 {
			t.Errorf("Gradient(%v) = %v, want %v", p, got, want)
		}
	}
	if got := g.Gradient(V3(0, math.NaN(), 0)); !math.IsNaN(got.X) {
		t.Errorf("Gradient(NaN) = %v, want NaN", got)
	}
}

func TestGridGradientSingleLayer(t *testing.T) {
	g, err := NewGridFunc([3]int{4, 1, 4}, V3(1, 1, 1), Vec3{}, func(p Vec3) float64 { return p.X })
	if err != nil {
		t.Fatal(err)
	}
	got := g.Gradient(V3(1.5, 0, 1.5))
	if got != V3(1, 0, 0) {
		t.Errorf("Gradient = %v, want (1, 0, 0)", got)
	}
}

func TestGridRange(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	g, err := NewGrid([]float32{nan, -2, 5, inf, 0, 1, nan, 3}, [3]int{2, 2, 2}, V3(1, 1, 1), Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := g.Range()
	if lo != -2 || hi != 5 {
		t.Errorf("Range() = [%v, %v], want [-2, 5]", lo, hi)
	}

	empty, err := NewGrid([]float32{nan}, [3]int{1, 1, 1}, V3(1, 1, 1), Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	lo, hi = empty.Range()
	if !math.IsInf(lo, 1) || !math.IsInf(hi, -1) {
		t.Errorf("Range() of NaN grid = [%v, %v], want [+Inf, -Inf]", lo, hi)
	}
	c, err := autoColormap(empty)
	if err != nil {
		t.Fatalf("autoColormap: %v", err)
	}
	if vmin, vmax := c.Range(); vmin != 0 || vmax != 1 {
		t.Errorf("auto range = [%v, %v], want [0, 1]", vmin, vmax)
	}
}
