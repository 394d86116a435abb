package raymarch

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
)

// Grid is a regular 3-D scalar lattice.
//
// Data holds Shape[0]*Shape[1]*Shape[2] values in i, j, k order with k
// varying fastest. Node (i, j, k) sits at Origin + Spacing*(i, j, k). The
// grid's box extends to Origin + Spacing*Shape.
//
// Grids are read-only during a pass and may be shared between goroutines.
type Grid struct {
	Data    []float32
	Shape   [3]int
	Spacing Vec3
	Origin  Vec3
}

// NewGrid validates and wraps a lattice. The data slice is not copied.
func NewGrid(data []float32, shape [3]int, spacing, origin Vec3) (*Grid, error) {
	for axis, n := range shape {
		if n <= 0 {
			return nil, fmt.Errorf("%w: shape[%d] = %d", ErrInvalidGrid, axis, n)
		}
		s := spacing.Component(axis)
		if !(s > 0) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("%w: spacing[%d] = %g", ErrInvalidGrid, axis, s)
		}
	}
	if want := shape[0] * shape[1] * shape[2]; len(data) != want {
		return nil, fmt.Errorf("%w: %d values for shape %v (want %d)", ErrInvalidGrid, len(data), shape, want)
	}
	return &Grid{Data: data, Shape: shape, Spacing: spacing, Origin: origin}, nil
}

// NewGridFunc builds a grid by evaluating f at every lattice node.
func NewGridFunc(shape [3]int, spacing, origin Vec3, f func(p Vec3) float64) (*Grid, error) {
	n := shape[0] * shape[1] * shape[2]
	if shape[0] <= 0 || shape[1] <= 0 || shape[2] <= 0 {
		n = 0
	}
	data := make([]float32, n)
	g, err := NewGrid(data, shape, spacing, origin)
	if err != nil {
		return nil, err
	}
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				data[g.index(i, j, k)] = float32(f(g.Node(i, j, k)))
			}
		}
	}
	return g, nil
}

func (g *Grid) index(i, j, k int) int {
	return (i*g.Shape[1]+j)*g.Shape[2] + k
}

// At returns the value at node (i, j, k) with each index clamped into range.
func (g *Grid) At(i, j, k int) float64 {
	i = clampIndex(i, g.Shape[0])
	j = clampIndex(j, g.Shape[1])
	k = clampIndex(k, g.Shape[2])
	return float64(g.Data[g.index(i, j, k)])
}

// Node returns the world position of node (i, j, k).
func (g *Grid) Node(i, j, k int) Vec3 {
	return Vec3{
		X: g.Origin.X + g.Spacing.X*float64(i),
		Y: g.Origin.Y + g.Spacing.Y*float64(j),
		Z: g.Origin.Z + g.Spacing.Z*float64(k),
	}
}

// Bounds returns the box from Origin to Origin + Spacing*Shape.
func (g *Grid) Bounds() Box {
	upper := Vec3{
		X: g.Origin.X + g.Spacing.X*float64(g.Shape[0]),
		Y: g.Origin.Y + g.Spacing.Y*float64(g.Shape[1]),
		Z: g.Origin.Z + g.Spacing.Z*float64(g.Shape[2]),
	}
	return Box{Min: g.Origin, Max: upper}
}

// MinSpacing returns the smallest spacing component, the marching step of
// the grid passes.
func (g *Grid) MinSpacing() float64 {
	return g.Spacing.MinComponent()
}

// Range returns the finite minimum and maximum of the data. Both are
// infinite (+Inf, -Inf) when the grid holds no finite value.
func (g *Grid) Range() (lo, hi float64) {
	mn, mx := math32.Inf(1), math32.Inf(-1)
	for _, v := range g.Data {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			continue
		}
		mn = math32.Min(mn, v)
		mx = math32.Max(mx, v)
	}
	return float64(mn), float64(mx)
}

// continuousIndex converts p into lattice coordinates along one axis,
// bounded so the integer conversion stays defined for far-away points.
func (g *Grid) continuousIndex(p Vec3, axis int) float64 {
	c := (p.Component(axis) - g.Origin.Component(axis)) / g.Spacing.Component(axis)
	return Clamp(c, -1, float64(g.Shape[axis]))
}

// Sample trilinearly interpolates the field at p. Neighbour indices outside
// the lattice are clamped to the nearest edge, so Sample never fails.
// NaN positions yield NaN.
func (g *Grid) Sample(p Vec3) float64 {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return math.NaN()
	}
	cx := g.continuousIndex(p, 0)
	cy := g.continuousIndex(p, 1)
	cz := g.continuousIndex(p, 2)
	fx, fy, fz := math.Floor(cx), math.Floor(cy), math.Floor(cz)
	i, j, k := int(fx), int(fy), int(fz)
	dx, dy, dz := cx-fx, cy-fy, cz-fz

	v000 := g.At(i, j, k)
	v100 := g.At(i+1, j, k)
	v010 := g.At(i, j+1, k)
	v110 := g.At(i+1, j+1, k)
	v001 := g.At(i, j, k+1)
	v101 := g.At(i+1, j, k+1)
	v011 := g.At(i, j+1, k+1)
	v111 := g.At(i+1, j+1, k+1)

	v00 := v000*(1-dx) + v100*dx
	v10 := v010*(1-dx) + v110*dx
	v01 := v001*(1-dx) + v101*dx
	v11 := v011*(1-dx) + v111*dx
	v0 := v00*(1-dy) + v10*dy
	v1 := v01*(1-dy) + v11*dy
	return v0*(1-dz) + v1*dz
}

// Gradient returns the unnormalized finite-difference gradient at the cell
// containing p: forward differences on the lower boundary, backward on the
// upper boundary and central differences in between.
func (g *Grid) Gradient(p Vec3) Vec3 {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return Vec3{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	var idx [3]int
	for axis := 0; axis < 3; axis++ {
		idx[axis] = clampIndex(int(math.Floor(g.continuousIndex(p, axis))), g.Shape[axis])
	}
	return Vec3{
		X: g.axisDerivative(idx, 0),
		Y: g.axisDerivative(idx, 1),
		Z: g.axisDerivative(idx, 2),
	}
}

func (g *Grid) axisDerivative(idx [3]int, axis int) float64 {
	n := g.Shape[axis]
	if n < 2 {
		return 0
	}
	s := g.Spacing.Component(axis)
	at := func(offset int) float64 {
		q := idx
		q[axis] += offset
		return g.At(q[0], q[1], q[2])
	}
	switch idx[axis] {
	case 0:
		return (at(1) - at(0)) / s
	case n - 1:
		return (at(0) - at(-1)) / s
	default:
		return (at(1) - at(-1)) / (2 * s)
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
