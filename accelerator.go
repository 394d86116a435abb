package raymarch

import (
	"errors"
	"sync"
)

// ErrFallbackToCPU indicates the accelerator cannot handle this operation.
// The renderer transparently falls back to the CPU tile executor.
var ErrFallbackToCPU = errors.New("raymarch: falling back to CPU rendering")

// AcceleratedOp describes pass types for accelerator capability checks.
//
// The geometry pass has no op: trees may hold arbitrary Go distance
// functions (FromFunc, FromSDF3), so sphere tracing always runs on the CPU.
type AcceleratedOp uint32

const (
	// AccelVolume represents the volumetric absorption pass.
	AccelVolume AcceleratedOp = 1 << iota

	// AccelContour represents the isosurface pass.
	AccelContour
)

// RenderTarget exposes the planes of a ScreenBuffer to an accelerator.
// The slices alias the buffer; an accelerator reads the current state from
// them and writes its results back in place. Layout matches ScreenBuffer:
// pixel (x, y) at index y*Width + x, three floats per pixel for RGB and
// vector planes.
type RenderTarget struct {
	Width, Height int

	Opaque     []float32
	Depth      []float32
	Normal     []float32
	Accum      []float32
	Revealage  []float32
	Background []float32
}

// VolumeJob describes one volume pass.
type VolumeJob struct {
	Camera   *Camera
	Field    *Grid
	Coloring *Coloring
}

// ContourJob describes one contour pass. Coloring is always set. A nil
// ColorField stands for a field that is zero everywhere.
type ContourJob struct {
	Camera     *Camera
	Field      *Grid
	Threshold  float64
	ColorField *Grid
	Coloring   *Coloring
}

// Accelerator is an optional device that runs render passes in place of
// the CPU tile executor.
//
// A pass method returns ErrFallbackToCPU (or any other error) to decline;
// the renderer then runs the pass on the CPU. Declining must leave the
// target unmodified.
//
// Implementations are provided by device packages. Users opt in via blank
// import:
//
//	import _ "github.com/gogpu/raymarch/gpu" // enables GPU acceleration
type Accelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init acquires device resources. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// CanAccelerate reports whether the accelerator supports the pass.
	CanAccelerate(op AcceleratedOp) bool

	// Volume runs the volumetric pass over target.
	Volume(target RenderTarget, job *VolumeJob) error

	// Contour runs the isosurface pass over target.
	Contour(target RenderTarget, job *ContourJob) error
}

// DeviceProviderAware is an optional interface for accelerators that can
// reuse a device owned by the host application.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   Accelerator
)

// RegisterAccelerator registers the process-wide accelerator used by
// renderers that are not configured with one explicitly.
//
// Only one accelerator can be registered; a later call replaces and closes
// the previous one. Init is called first; if it fails the accelerator is not
// registered and the error is returned.
func RegisterAccelerator(a Accelerator) error {
	if a == nil {
		return errors.New("raymarch: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	propagateLogger(a, Logger())
	Logger().Info("accelerator registered", "name", a.Name())
	return nil
}

// RegisteredAccelerator returns the registered accelerator, or nil.
func RegisteredAccelerator() Accelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// UnregisterAccelerator removes and closes the registered accelerator.
func UnregisterAccelerator() {
	accelMu.Lock()
	old := accel
	accel = nil
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// SetAcceleratorDeviceProvider hands a host device provider to the
// registered accelerator. It is a no-op when no accelerator is registered
// or the accelerator cannot share devices.
func SetAcceleratorDeviceProvider(provider any) error {
	a := RegisteredAccelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
