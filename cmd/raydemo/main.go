// Command raydemo renders a TOML scene with the raymarch library.
//
// Usage:
//
//	raydemo [-scene scene.toml] [-output out.png] [-width 800 -height 600]
//
// Without -scene a built-in scene is rendered.
package main

import (
	"flag"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/raymarch"
	_ "github.com/gogpu/raymarch/gpu" // enable GPU acceleration
)

func main() {
	var (
		scenePath = flag.String("scene", "", "TOML scene file (built-in scene if empty)")
		output    = flag.String("output", "raydemo.png", "output file")
		width     = flag.Int("width", 0, "override image width")
		height    = flag.Int("height", 0, "override image height")
		scale     = flag.Float64("scale", 1, "resample the output by this factor")
		cpuOnly   = flag.Bool("cpu", false, "disable GPU acceleration")
		verbose   = flag.Bool("v", false, "log pass timings")
	)
	flag.Parse()

	if *verbose {
		raymarch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	scene, err := LoadScene(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}
	if *width > 0 {
		scene.Camera.Width = *width
	}
	if *height > 0 {
		scene.Camera.Height = *height
	}
	if *cpuOnly {
		scene.Render.CPUOnly = true
	}

	cam, err := scene.Camera.Camera()
	if err != nil {
		log.Fatalf("Invalid camera: %v", err)
	}
	draws, err := scene.Build()
	if err != nil {
		log.Fatalf("Invalid scene: %v", err)
	}

	r := raymarch.NewRenderer(scene.Render.Options()...)
	defer r.Close()

	start := time.Now()
	buf := raymarch.NewScreenBufferFromCamera(cam)
	for _, draw := range draws {
		if err := draw(r, buf, cam); err != nil {
			log.Fatalf("Render failed: %v", err)
		}
	}

	if err := save(buf, *output, *scale); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Scene saved to %s (%dx%d, %d objects, %v)\n",
		*output, cam.Width, cam.Height, len(draws), time.Since(start).Round(time.Millisecond))
}

func save(buf *raymarch.ScreenBuffer, path string, scale float64) error {
	if scale == 1 || scale <= 0 {
		return buf.SavePNG(path)
	}
	img := buf.ImageScaled(int(float64(buf.Width)*scale), int(float64(buf.Height)*scale))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
