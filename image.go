package raymarch

import (
	"image"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"
)

// Image composites the buffer into a Height x Width x 4 RGBA array.
//
// Per pixel: base is the opaque color where a surface was written (finite
// depth) and the background elsewhere; alpha = 1 - revealage; the result is
// base*(1-alpha) + accum*alpha with alpha channel 1. Rows are flipped so
// index 0 is the visual top. The buffer itself is not modified, so calling
// Image repeatedly returns the same values.
func (b *ScreenBuffer) Image() []float32 {
	out := make([]float32, b.Width*b.Height*4)
	for y := 0; y < b.Height; y++ {
		row := b.Height - 1 - y
		for x := 0; x < b.Width; x++ {
			i := b.index(x, y)
			base := b.background[i*3 : i*3+3]
			if !math32.IsInf(b.depth[i], 1) {
				base = b.opaque[i*3 : i*3+3]
			}
			alpha := 1 - b.revealage[i]
			o := (row*b.Width + x) * 4
			for c := 0; c < 3; c++ {
				out[o+c] = base[c]*(1-alpha) + b.accum[i*3+c]*alpha
			}
			out[o+3] = 1
		}
	}
	return out
}

// ImageNRGBA returns the composited image quantized to 8 bits per channel.
// Channel values outside [0, 1] are clamped.
func (b *ScreenBuffer) ImageNRGBA() *image.NRGBA {
	pix := b.Image()
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i := 0; i < len(pix); i += 4 {
		img.Pix[i] = uint8(clamp255(float64(pix[i]) * 255))
		img.Pix[i+1] = uint8(clamp255(float64(pix[i+1]) * 255))
		img.Pix[i+2] = uint8(clamp255(float64(pix[i+2]) * 255))
		img.Pix[i+3] = 255
	}
	return img
}

// ImageScaled returns the composited image resampled to width x height with
// bilinear filtering.
func (b *ScreenBuffer) ImageScaled(width, height int) *image.NRGBA {
	src := b.ImageNRGBA()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// SavePNG writes the composited image to a PNG file.
func (b *ScreenBuffer) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, b.ImageNRGBA())
}
