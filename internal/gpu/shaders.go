//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

// Embedded WGSL shader sources. Pass shaders are appended to the common
// declarations before compilation.

//go:embed shaders/common.wgsl
var commonShaderSource string

//go:embed shaders/volume.wgsl
var volumeShaderSource string

//go:embed shaders/contour.wgsl
var contourShaderSource string

// passShaderSource returns the complete WGSL module for a pass shader.
func passShaderSource(pass string) string {
	return commonShaderSource + "\n" + pass
}

// compileSPIRV compiles WGSL source to little-endian SPIR-V words.
func compileSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}

	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// createShaderModule compiles a pass shader and loads it on device.
func createShaderModule(device hal.Device, label, pass string) (hal.ShaderModule, error) {
	spirv, err := compileSPIRV(passShaderSource(pass))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	return device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  label,
		Source: hal.ShaderSource{SPIRV: spirv},
	})
}
