package raymarch

import "github.com/chewxy/math32"

// ScreenBuffer holds the per-pixel state shared by consecutive render
// passes: an opaque layer (color, depth, normal), a transparent layer
// (weighted color accumulation and revealage) and the background.
//
// All planes are row-major float32 slices with pixel (x, y) at index
// y*Width + x; row 0 is the bottom of the image, matching ray generation.
// Image flips rows so the returned array starts with the visual top.
//
// Passes over one buffer must run sequentially: later passes read the
// depth and revealage written by earlier ones.
type ScreenBuffer struct {
	Width, Height int

	opaque     []float32 // RGB
	depth      []float32
	normal     []float32 // XYZ
	accum      []float32 // RGB
	revealage  []float32
	background []float32 // RGB

	camera *Camera
}

// NewScreenBuffer allocates a cleared buffer with a black background.
func NewScreenBuffer(width, height int) *ScreenBuffer {
	width, height = max(width, 0), max(height, 0)
	n := width * height
	b := &ScreenBuffer{
		Width:      width,
		Height:     height,
		opaque:     make([]float32, n*3),
		depth:      make([]float32, n),
		normal:     make([]float32, n*3),
		accum:      make([]float32, n*3),
		revealage:  make([]float32, n),
		background: make([]float32, n*3),
	}
	b.Clear()
	return b
}

// NewScreenBufferFromCamera allocates a buffer sized for cam whose
// background is the camera's background color.
func NewScreenBufferFromCamera(cam *Camera) *ScreenBuffer {
	b := NewScreenBuffer(cam.Width, cam.Height)
	b.camera = cam
	b.Clear()
	return b
}

// Camera returns the camera the buffer was created from, or nil.
func (b *ScreenBuffer) Camera() *Camera { return b.camera }

// Clear resets every plane to its initial value: depth +Inf, revealage 1,
// colors, normals and accumulation 0, and the background from the owning
// camera (black if there is none).
func (b *ScreenBuffer) Clear() {
	inf := math32.Inf(1)
	for i := range b.depth {
		b.depth[i] = inf
		b.revealage[i] = 1
	}
	clear(b.opaque)
	clear(b.normal)
	clear(b.accum)

	bg := Black
	if b.camera != nil {
		bg = b.camera.Background
	}
	r, g, bl := float32(bg.R), float32(bg.G), float32(bg.B)
	for i := 0; i < len(b.background); i += 3 {
		b.background[i] = r
		b.background[i+1] = g
		b.background[i+2] = bl
	}
}

// Pixels returns Width*Height.
func (b *ScreenBuffer) Pixels() int { return b.Width * b.Height }

func (b *ScreenBuffer) index(x, y int) int { return y*b.Width + x }

// Depth returns a copy of the depth plane in buffer row order. Pixels no
// opaque surface has been written to hold +Inf.
func (b *ScreenBuffer) Depth() []float32 {
	return append([]float32(nil), b.depth...)
}

// DepthAt returns the depth of pixel (x, y).
func (b *ScreenBuffer) DepthAt(x, y int) float64 {
	return float64(b.depth[b.index(x, y)])
}

// Fragment is a snapshot of one pixel's buffer entries.
type Fragment struct {
	Opaque     Vec3
	Depth      float64
	Normal     Vec3
	Accum      Vec3
	Revealage  float64
	Background Vec3
}

// Fragment returns the buffer entries of pixel (x, y).
func (b *ScreenBuffer) Fragment(x, y int) Fragment {
	i := b.index(x, y)
	return Fragment{
		Opaque:     vec3At(b.opaque, i),
		Depth:      float64(b.depth[i]),
		Normal:     vec3At(b.normal, i),
		Accum:      vec3At(b.accum, i),
		Revealage:  float64(b.revealage[i]),
		Background: vec3At(b.background, i),
	}
}

// Target exposes the live planes for accelerators that write the buffer
// directly. Writes through the target are visible to later passes.
func (b *ScreenBuffer) Target() RenderTarget {
	return RenderTarget{
		Width:      b.Width,
		Height:     b.Height,
		Opaque:     b.opaque,
		Depth:      b.depth,
		Normal:     b.normal,
		Accum:      b.accum,
		Revealage:  b.revealage,
		Background: b.background,
	}
}

func vec3At(plane []float32, i int) Vec3 {
	return V3(float64(plane[i*3]), float64(plane[i*3+1]), float64(plane[i*3+2]))
}

func setVec3(plane []float32, i int, v Vec3) {
	plane[i*3] = float32(v.X)
	plane[i*3+1] = float32(v.Y)
	plane[i*3+2] = float32(v.Z)
}
