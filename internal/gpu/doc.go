//go:build !nogpu

// Package gpu implements the wgpu compute accelerator for the grid-based
// raymarch passes.
//
// This is an internal package used by the raymarch library. It runs the
// volume and contour passes as WGSL compute shaders through wgpu/hal on
// the Vulkan backend. Shaders are compiled to SPIR-V with naga.
//
// # Dispatch Model
//
// The host computes each pixel's ray interval and initial march state, then
// encodes one compute pass per march step into a single command encoder:
//
//	pack planes -> upload -> N x (one step per pixel) -> readback -> unpack
//
// Each pass advances every unfinished pixel by one step, so shaders contain
// no march loops. One submit and one fence wait cover the whole pass.
//
// # Fallback
//
// When no adapter is available, or a pass needs more steps than a single
// submission allows, the accelerator returns raymarch.ErrFallbackToCPU and
// the renderer runs the pass on its CPU workers.
package gpu
