//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/gogpu/raymarch"
)

// pixelStride is the number of float32 values per pixel record.
const pixelStride = 16

// Pixel record offsets, matching shaders/common.wgsl.
const (
	pxOpaque    = 0
	pxDepth     = 3
	pxNormal    = 4
	pxRevealage = 7
	pxAccum     = 8
	pxDist      = 11
	pxValue     = 12
	pxSign      = 13
	pxRemaining = 14
)

// farDepth stands in for +Inf depth on the device.
const farDepth = 3.4e38

// frameParams mirrors the Params uniform in shaders/common.wgsl.
type frameParams struct {
	Origin       [4]float32
	Forward      [4]float32
	Right        [4]float32
	Up           [4]float32
	GridOrigin   [4]float32
	GridSpacing  [4]float32 // W = step
	Shape        [4]uint32  // W = table length
	ColorOrigin  [4]float32
	ColorSpacing [4]float32
	ColorShape   [4]uint32 // W = 1 with a color field
	NaNColor     [4]float32

	Width, Height  uint32
	Solid, Opaque  uint32
	MaxDepth       float32
	VMin, VMax     float32
	Threshold      float32
	FovScale       float32
	_, _, _        float32
}

func vec4(v raymarch.Vec3, w float32) [4]float32 {
	return [4]float32{float32(v.X), float32(v.Y), float32(v.Z), w}
}

func shape4(s [3]int, w uint32) [4]uint32 {
	return [4]uint32{uint32(s[0]), uint32(s[1]), uint32(s[2]), w} //nolint:gosec // grid dimensions fit uint32
}

func boolU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// makeFrameParams fills the uniform block shared by both pass shaders.
func makeFrameParams(cam *raymarch.Camera, field *raymarch.Grid, coloring *raymarch.Coloring) frameParams {
	forward, right, up := cam.Basis()
	vmin, vmax := coloring.Range()
	nan := coloring.NaNColor()
	return frameParams{
		Origin:      vec4(cam.Position, 0),
		Forward:     vec4(forward, 0),
		Right:       vec4(right, 0),
		Up:          vec4(up, 0),
		GridOrigin:  vec4(field.Origin, 0),
		GridSpacing: vec4(field.Spacing, float32(field.MinSpacing())),
		Shape:       shape4(field.Shape, uint32(coloring.Len())), //nolint:gosec // table sizes fit uint32
		NaNColor:    [4]float32{float32(nan.R), float32(nan.G), float32(nan.B), float32(nan.A)},
		Width:       uint32(cam.Width),  //nolint:gosec // image dimensions fit uint32
		Height:      uint32(cam.Height), //nolint:gosec // image dimensions fit uint32
		Solid:       boolU32(coloring.Solid()),
		Opaque:      boolU32(coloring.Opaque()),
		MaxDepth:    float32(cam.MaxDepth),
		VMin:        float32(vmin),
		VMax:        float32(vmax),
		FovScale:    float32(math.Tan(math.Pi / 4)),
	}
}

func (p *frameParams) bytes() []byte {
	return structToBytes(unsafe.Pointer(p), unsafe.Sizeof(*p)) //nolint:gosec // safe struct access
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size) //nolint:gosec // safe struct serialization
}

// marchState is the host-computed starting point of one pixel's ray.
type marchState struct {
	dist, value, sign float32
	steps             int
}

// initialStates computes every pixel's march interval over field. With
// threshold set, the initial sample and inside/outside sign are filled in
// for the contour pass. It returns the largest step count.
func initialStates(cam *raymarch.Camera, field *raymarch.Grid, threshold *float64) ([]marchState, int) {
	rays := cam.Rays()
	origin := rays.Origin()
	bound := field.Bounds()
	step := field.MinSpacing()

	states := make([]marchState, cam.Width*cam.Height)
	longest := 0
	for y := 0; y < cam.Height; y++ {
		for x := 0; x < cam.Width; x++ {
			dir := rays.Direction(x, y)
			t0, t1 := bound.IntersectRay(origin, dir)
			if !(t0 <= t1) || math.IsInf(t1, 1) {
				continue
			}
			s := &states[y*cam.Width+x]
			s.dist = float32(t0)
			s.steps = int((t1 - t0) / step)
			if threshold != nil {
				v := field.Sample(origin.Add(dir.Mul(t0)))
				s.value = float32(v)
				s.sign = -1
				if v > *threshold {
					s.sign = 1
				}
			}
			longest = max(longest, s.steps)
		}
	}
	return states, longest
}

// packPixels interleaves the target planes and march states into device
// pixel records.
func packPixels(t raymarch.RenderTarget, states []marchState) []byte {
	n := t.Width * t.Height
	out := make([]byte, n*pixelStride*4)
	var rec [pixelStride]float32
	for i := 0; i < n; i++ {
		copy(rec[pxOpaque:pxOpaque+3], t.Opaque[i*3:i*3+3])
		rec[pxDepth] = t.Depth[i]
		if math.IsInf(float64(t.Depth[i]), 1) {
			rec[pxDepth] = farDepth
		}
		copy(rec[pxNormal:pxNormal+3], t.Normal[i*3:i*3+3])
		rec[pxRevealage] = t.Revealage[i]
		copy(rec[pxAccum:pxAccum+3], t.Accum[i*3:i*3+3])
		s := states[i]
		rec[pxDist] = s.dist
		rec[pxValue] = s.value
		rec[pxSign] = s.sign
		rec[pxRemaining] = float32(s.steps)

		base := i * pixelStride * 4
		for k, v := range rec {
			binary.LittleEndian.PutUint32(out[base+k*4:], math.Float32bits(v))
		}
	}
	return out
}

// unpackPixels writes device pixel records back into the target planes.
func unpackPixels(packed []byte, t raymarch.RenderTarget) {
	n := t.Width * t.Height
	at := func(i, k int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(packed[(i*pixelStride+k)*4:]))
	}
	for i := 0; i < n; i++ {
		for c := 0; c < 3; c++ {
			t.Opaque[i*3+c] = at(i, pxOpaque+c)
			t.Normal[i*3+c] = at(i, pxNormal+c)
			t.Accum[i*3+c] = at(i, pxAccum+c)
		}
		d := at(i, pxDepth)
		if d >= farDepth {
			d = float32(math.Inf(1))
		}
		t.Depth[i] = d
		t.Revealage[i] = at(i, pxRevealage)
	}
}

// packFloats serializes lattice data for a storage buffer.
func packFloats(data []float32) []byte {
	out := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// packTable serializes a coloring's lookup table as vec4<f32> entries.
func packTable(table []raymarch.RGBA) []byte {
	out := make([]byte, len(table)*16)
	for i, c := range table {
		for k, v := range [4]float64{c.R, c.G, c.B, c.A} {
			binary.LittleEndian.PutUint32(out[i*16+k*4:], math.Float32bits(float32(v)))
		}
	}
	return out
}
