//go:build !nogpu

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/raymarch"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// MaxStepsPerSubmit bounds the number of march steps (compute passes)
// encoded into one submission. Longer passes fall back to the CPU.
const MaxStepsPerSubmit = 4096

// passPipeline holds the device objects of one pass shader.
type passPipeline struct {
	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline
}

// Accelerator runs the volume and contour passes as wgpu/hal compute
// shaders. It implements raymarch.Accelerator.
//
// Init never fails: without a usable adapter the accelerator stays
// registered and declines every pass with raymarch.ErrFallbackToCPU.
type Accelerator struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	volume  passPipeline
	contour passPipeline

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

var _ raymarch.Accelerator = (*Accelerator)(nil)

func (a *Accelerator) Name() string { return "wgpu" }

func (a *Accelerator) CanAccelerate(op raymarch.AcceleratedOp) bool {
	return op&(raymarch.AccelVolume|raymarch.AccelContour) != 0
}

// Ready reports whether a device is open and the pipelines are built.
func (a *Accelerator) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

func (a *Accelerator) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("gpu: init failed, passes run on the CPU", "err", err)
	}
	return nil
}

// SetLogger receives the logger propagated by raymarch.SetLogger.
func (a *Accelerator) SetLogger(l *slog.Logger) {
	setLogger(l)
}

func (a *Accelerator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the accelerator to a shared GPU device from an
// external provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func (a *Accelerator) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.destroyPipelines()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipelines(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("gpu: create pipelines with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gpu: switched to shared device")
	return nil
}

// Volume runs the absorption pass over target.
func (a *Accelerator) Volume(target raymarch.RenderTarget, job *raymarch.VolumeJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return raymarch.ErrFallbackToCPU
	}
	states, steps := initialStates(job.Camera, job.Field, nil)
	if steps > MaxStepsPerSubmit {
		return raymarch.ErrFallbackToCPU
	}
	if steps == 0 {
		return nil
	}
	params := makeFrameParams(job.Camera, job.Field, job.Coloring)
	return a.dispatch(&a.volume, target, &dispatchInput{
		label:  "volume",
		params: params,
		field:  job.Field,
		table:  job.Coloring.Table(),
		states: states,
		steps:  steps,
	})
}

// Contour runs the isosurface pass over target.
func (a *Accelerator) Contour(target raymarch.RenderTarget, job *raymarch.ContourJob) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.gpuReady {
		return raymarch.ErrFallbackToCPU
	}
	states, steps := initialStates(job.Camera, job.Field, &job.Threshold)
	if steps > MaxStepsPerSubmit {
		return raymarch.ErrFallbackToCPU
	}
	if steps == 0 {
		return nil
	}
	params := makeFrameParams(job.Camera, job.Field, job.Coloring)
	params.Threshold = float32(job.Threshold)
	if cf := job.ColorField; cf != nil {
		params.ColorOrigin = vec4(cf.Origin, 0)
		params.ColorSpacing = vec4(cf.Spacing, 0)
		params.ColorShape = shape4(cf.Shape, 1)
	}
	return a.dispatch(&a.contour, target, &dispatchInput{
		label:      "contour",
		params:     params,
		field:      job.Field,
		colorField: job.ColorField,
		table:      job.Coloring.Table(),
		states:     states,
		steps:      steps,
	})
}

func (a *Accelerator) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipelines(); err != nil {
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.gpuReady = true
	slogger().Info("gpu: accelerator initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *Accelerator) createPipelines() error {
	if err := a.createPassPipeline(&a.volume, "volume", volumeShaderSource, 4); err != nil {
		return err
	}
	return a.createPassPipeline(&a.contour, "contour", contourShaderSource, 5)
}

// createPassPipeline builds a compute pipeline with bindings: 0 uniform
// params, 1 field, 2 color table, 3 pixel records, and for the contour
// shader 4 color field.
func (a *Accelerator) createPassPipeline(p *passPipeline, label, source string, bindings int) error {
	shader, err := createShaderModule(a.device, label+"_shader", source)
	if err != nil {
		return fmt.Errorf("compile %s shader: %w", label, err)
	}
	p.shader = shader

	entries := []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
		{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		{Binding: 4, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
	}
	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label + "_bind_layout",
		Entries: entries[:bindings],
	})
	if err != nil {
		return fmt.Errorf("create %s bind group layout: %w", label, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: label + "_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{p.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create %s pipeline layout: %w", label, err)
	}
	p.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: label + "_pipeline", Layout: p.pipeLayout,
		Compute: hal.ComputeState{Module: p.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create %s compute pipeline: %w", label, err)
	}
	p.pipeline = pipeline
	return nil
}

func (a *Accelerator) destroyPipelines() {
	if a.device == nil {
		return
	}
	for _, p := range []*passPipeline{&a.volume, &a.contour} {
		if p.pipeline != nil {
			a.device.DestroyComputePipeline(p.pipeline)
		}
		if p.pipeLayout != nil {
			a.device.DestroyPipelineLayout(p.pipeLayout)
		}
		if p.bindLayout != nil {
			a.device.DestroyBindGroupLayout(p.bindLayout)
		}
		if p.shader != nil {
			a.device.DestroyShaderModule(p.shader)
		}
		*p = passPipeline{}
	}
}
