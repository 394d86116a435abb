package raymarch

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gogpu/raymarch/internal/parallel"
)

// Renderer runs render passes over screen buffers.
//
// A Renderer owns a pool of CPU workers that execute passes tile by tile,
// and optionally an Accelerator that takes over the passes it supports.
// Every pass method blocks until the pass has completed, so consecutive
// calls on one buffer are ordered. A Renderer may serve several buffers
// from different goroutines, but passes over the same buffer must not run
// concurrently.
type Renderer struct {
	pool     *parallel.WorkerPool
	maxSteps int
	tileSize int
	accel    Accelerator
	noAccel  bool
}

// NewRenderer creates a renderer. Call Close to stop its workers.
func NewRenderer(opts ...RendererOption) *Renderer {
	o := defaultRendererOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{
		pool:     parallel.NewWorkerPool(o.workers),
		maxSteps: o.maxSteps,
		tileSize: o.tileSize,
		accel:    o.accel,
		noAccel:  o.noAccel,
	}
}

// Close stops the worker pool. Passes issued after Close still complete,
// sequentially on the calling goroutine.
func (r *Renderer) Close() {
	r.pool.Close()
}

// Workers returns the number of CPU workers.
func (r *Renderer) Workers() int {
	return r.pool.Workers()
}

// MaxSteps returns the sphere-tracing step bound.
func (r *Renderer) MaxSteps() int {
	return r.maxSteps
}

// Accelerator returns the accelerator passes are offered to, or nil.
func (r *Renderer) Accelerator() Accelerator {
	if r.noAccel {
		return nil
	}
	if r.accel != nil {
		return r.accel
	}
	return RegisteredAccelerator()
}

// tryAccelerate offers a pass to the accelerator. It reports whether the
// accelerator completed the pass.
func (r *Renderer) tryAccelerate(op AcceleratedOp, pass string, run func(Accelerator) error) bool {
	a := r.Accelerator()
	if a == nil || !a.CanAccelerate(op) {
		return false
	}
	start := time.Now()
	err := run(a)
	switch {
	case err == nil:
		Logger().Debug("pass accelerated", "pass", pass, "accelerator", a.Name(), "elapsed", time.Since(start))
		return true
	case errors.Is(err, ErrFallbackToCPU):
		Logger().Debug("accelerator declined pass", "pass", pass, "accelerator", a.Name())
	default:
		Logger().Warn("accelerator failed, falling back to CPU", "pass", pass, "accelerator", a.Name(), "err", err)
	}
	return false
}

// forEachPixel runs fn for every pixel of buf on the worker pool.
func (r *Renderer) forEachPixel(pass string, buf *ScreenBuffer, fn func(worker, x, y int)) {
	start := time.Now()
	tiles := parallel.Tiles(buf.Width, buf.Height, r.tileSize)
	parallel.ForEachPixel(r.pool, tiles, fn)
	Logger().Debug("pass complete", "pass", pass, "tiles", len(tiles),
		"workers", r.pool.Workers(), "elapsed", time.Since(start))
}

// checkTarget validates the buffer/camera pair shared by every pass.
func checkTarget(buf *ScreenBuffer, cam *Camera) error {
	if buf == nil {
		return fmt.Errorf("%w: screen buffer", ErrNilInput)
	}
	if cam == nil {
		return fmt.Errorf("%w: camera", ErrNilInput)
	}
	if buf.Width != cam.Width || buf.Height != cam.Height {
		return &SizeMismatchError{
			BufferWidth: buf.Width, BufferHeight: buf.Height,
			CameraWidth: cam.Width, CameraHeight: cam.Height,
		}
	}
	return nil
}

// shade returns the unit normal for a distance or field gradient and the
// view-dependent intensity |n·dir|. A zero or non-finite gradient has no
// direction: the normal is zero and the intensity 0.
func shade(gradient, dir Vec3) (normal Vec3, intensity float64) {
	l := gradient.Length()
	if !(l > 0) || !gradient.IsFinite() {
		return Vec3{}, 0
	}
	normal = gradient.Div(l)
	d := normal.Dot(dir)
	if d < 0 {
		d = -d
	}
	return normal, d
}

// rayInterval clips the ray to box. ok is false for misses, including the
// NaN intervals produced by degenerate cameras and unbounded intervals.
func rayInterval(box Box, origin, dir Vec3) (t0, t1 float64, ok bool) {
	t0, t1 = box.IntersectRay(origin, dir)
	if !(t0 <= t1) || math.IsInf(t1, 1) {
		return 0, 0, false
	}
	return t0, t1, true
}
