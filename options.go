package raymarch

// DefaultMaxSteps bounds the sphere-tracing loop of the geometry pass.
const DefaultMaxSteps = 1024

// RendererOption configures a Renderer during creation.
//
// Example:
//
//	// CPU only, four workers
//	r := raymarch.NewRenderer(raymarch.WithWorkers(4), raymarch.WithoutAccelerator())
//	defer r.Close()
type RendererOption func(*rendererOptions)

type rendererOptions struct {
	workers  int
	maxSteps int
	tileSize int
	accel    Accelerator
	noAccel  bool
}

func defaultRendererOptions() rendererOptions {
	return rendererOptions{
		workers:  0, // GOMAXPROCS
		maxSteps: DefaultMaxSteps,
		tileSize: 0, // parallel.DefaultTileSize
	}
}

// WithWorkers sets the number of CPU workers. Zero or negative selects
// GOMAXPROCS.
func WithWorkers(n int) RendererOption {
	return func(o *rendererOptions) {
		o.workers = n
	}
}

// WithMaxSteps bounds the number of sphere-tracing steps per ray in the
// geometry pass. Values below 1 keep the default.
func WithMaxSteps(n int) RendererOption {
	return func(o *rendererOptions) {
		if n >= 1 {
			o.maxSteps = n
		}
	}
}

// WithTileSize sets the edge length of the square pixel tiles dealt to the
// workers. Zero or negative selects 16.
func WithTileSize(n int) RendererOption {
	return func(o *rendererOptions) {
		o.tileSize = n
	}
}

// WithAccelerator uses a for the passes it supports instead of the
// registered accelerator. The renderer does not call Init or Close on a.
func WithAccelerator(a Accelerator) RendererOption {
	return func(o *rendererOptions) {
		o.accel = a
		o.noAccel = false
	}
}

// WithoutAccelerator keeps every pass on the CPU tile executor, even when
// an accelerator is registered.
func WithoutAccelerator() RendererOption {
	return func(o *rendererOptions) {
		o.accel = nil
		o.noAccel = true
	}
}
