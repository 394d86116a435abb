package raymarch

import (
	"fmt"
	"math"
)

// axisArrow describes one arrow of the orientation gizmo. Arrow points
// along -y; angle/axis turn it onto the positive direction of dir.
type axisArrow struct {
	dir   Vec3
	angle float64
	axis  Vec3
	color RGBA
}

var axisArrows = [3]axisArrow{
	{dir: V3(1, 0, 0), angle: math.Pi / 2, axis: V3(0, 0, 1), color: Red},
	{dir: V3(0, 1, 0), angle: math.Pi, axis: V3(0, 0, 1), color: Yellow},
	{dir: V3(0, 0, 1), angle: -math.Pi / 2, axis: V3(1, 0, 0), color: Green},
}

// AxesGeometry returns the three opaque arrows drawn by Axes, in x, y, z
// order, each paired with its color.
func AxesGeometry(size float64, center Vec3) ([3]*Geometry, [3]RGBA) {
	var geoms [3]*Geometry
	var colors [3]RGBA
	for n, a := range axisArrows {
		arrow := Arrow(size, Vec3{})
		geoms[n] = arrow.Rotate(a.angle, a.axis).
			WithBounds(arrow.RotatedBounds(a.angle, a.axis)).
			Translate(center.Add(a.dir.Mul(size)))
		colors[n] = a.color
	}
	return geoms, colors
}

// Axes draws an orientation gizmo: red, yellow and green arrows of the
// given size pointing from center along +x, +y and +z. The arrows are
// opaque and occlude each other and earlier passes by depth.
func (r *Renderer) Axes(buf *ScreenBuffer, cam *Camera, size float64, center Vec3) error {
	if !(size > 0) {
		return fmt.Errorf("raymarch: axes size %g must be positive", size)
	}
	geoms, colors := AxesGeometry(size, center)
	for n, g := range geoms {
		if err := r.Geometry(buf, cam, g, MustSolidColor(colors[n], 1)); err != nil {
			return err
		}
	}
	return nil
}
