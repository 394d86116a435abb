//go:build !nogpu

// Package gpu registers the wgpu compute accelerator for the raymarch
// volume and contour passes.
//
// If GPU initialization fails (no Vulkan adapter available), the
// accelerator declines every pass and rendering falls back to the CPU
// workers.
//
// Usage:
//
//	import _ "github.com/gogpu/raymarch/gpu" // enable GPU acceleration
package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/raymarch"
	gpuimpl "github.com/gogpu/raymarch/internal/gpu"
)

func init() {
	if err := raymarch.RegisterAccelerator(&gpuimpl.Accelerator{}); err != nil {
		raymarch.Logger().Warn("GPU accelerator not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU accelerator to use a shared GPU
// device from an external provider (e.g., gogpu). This avoids creating a
// separate GPU instance.
//
// The provider should also implement HalDevice() any and HalQueue() any
// for direct HAL access.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	return raymarch.SetAcceleratorDeviceProvider(provider)
}
