package raymarch

import "math"

// Default camera parameters.
const (
	DefaultWidth    = 640
	DefaultHeight   = 480
	DefaultMaxDepth = 100.0
)

// fovScale is tan(45°), the half-angle scale of the 90° field of view.
var fovScale = math.Tan(math.Pi / 4)

// Camera is a pinhole camera looking from Position toward Focal.
//
// Up must not be parallel to Focal-Position. A degenerate basis is not
// detected: ray directions become NaN and every pass treats such rays as
// misses.
type Camera struct {
	Position   Vec3
	Focal      Vec3
	Up         Vec3
	Width      int
	Height     int
	MaxDepth   float64
	Background RGBA
}

// NewCamera returns a camera with the default placement: looking at the
// origin from (0, 0, 6.69) with +y up, 640x480, max depth 100 and a black
// background.
func NewCamera() *Camera {
	return &Camera{
		Position:   V3(0, 0, 6.69),
		Focal:      V3(0, 0, 0),
		Up:         V3(0, 1, 0),
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		MaxDepth:   DefaultMaxDepth,
		Background: Black,
	}
}

// Basis returns the orthonormal camera frame.
func (c *Camera) Basis() (forward, right, up Vec3) {
	forward = c.Focal.Sub(c.Position).Normalize()
	right = forward.Cross(c.Up).Normalize()
	up = right.Cross(forward)
	return forward, right, up
}

// Rays precomputes the camera basis for repeated ray generation.
func (c *Camera) Rays() RayGenerator {
	f, r, u := c.Basis()
	return RayGenerator{
		origin:  c.Position,
		forward: f,
		right:   r,
		up:      u,
		width:   float64(c.Width),
		height:  float64(c.Height),
	}
}

// RayDirection returns the unit direction of the ray through pixel (x, y).
// Pixel rows count upward from the bottom of the image.
func (c *Camera) RayDirection(x, y int) Vec3 {
	return c.Rays().Direction(x, y)
}

// RayGenerator produces per-pixel ray directions for a fixed camera.
// It is a value type and safe for concurrent use.
type RayGenerator struct {
	origin             Vec3
	forward, right, up Vec3
	width, height      float64
}

// Origin returns the ray origin shared by every pixel.
func (g RayGenerator) Origin() Vec3 { return g.origin }

// Direction returns the unit direction through pixel (x, y).
func (g RayGenerator) Direction(x, y int) Vec3 {
	s := (float64(x) - g.width/2) / g.width
	t := (float64(y) - g.height/2) / g.height
	s *= g.width / g.height * fovScale
	t *= fovScale
	return g.forward.Add(g.right.Mul(s)).Add(g.up.Mul(t)).Normalize()
}
