//go:build !nogpu

package gpu

import (
	"errors"
	"math"
	"strings"
	"testing"
	"unsafe"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/raymarch"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func testGrid(t *testing.T) *raymarch.Grid {
	t.Helper()
	g, err := raymarch.NewGridFunc([3]int{8, 8, 8}, raymarch.V3(0.25, 0.25, 0.25), raymarch.V3(-1, -1, -1),
		func(p raymarch.Vec3) float64 { return p.Length() - 0.5 })
	if err != nil {
		t.Fatalf("NewGridFunc: %v", err)
	}
	return g
}

func testCamera() *raymarch.Camera {
	cam := raymarch.NewCamera()
	cam.Width, cam.Height = 16, 12
	return cam
}

func TestAcceleratorCapabilities(t *testing.T) {
	a := &Accelerator{}
	if a.Name() != "wgpu" {
		t.Errorf("Name() = %q, want wgpu", a.Name())
	}
	tests := []struct {
		op   raymarch.AcceleratedOp
		want bool
	}{
		{raymarch.AccelVolume, true},
		{raymarch.AccelContour, true},
		{raymarch.AccelVolume | raymarch.AccelContour, true},
		{raymarch.AcceleratedOp(1 << 7), false},
		{0, false},
	}
	for _, tt := range tests {
		if got := a.CanAccelerate(tt.op); got != tt.want {
			t.Errorf("CanAccelerate(%d) = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestAcceleratorNotReadyFallsBack(t *testing.T) {
	a := &Accelerator{}
	cam := testCamera()
	buf := raymarch.NewScreenBufferFromCamera(cam)
	field := testGrid(t)
	coloring := raymarch.MustSolidColor(raymarch.White, 0.5)

	err := a.Volume(buf.Target(), &raymarch.VolumeJob{Camera: cam, Field: field, Coloring: coloring})
	if !errors.Is(err, raymarch.ErrFallbackToCPU) {
		t.Errorf("Volume() error = %v, want ErrFallbackToCPU", err)
	}
	err = a.Contour(buf.Target(), &raymarch.ContourJob{Camera: cam, Field: field, Coloring: coloring})
	if !errors.Is(err, raymarch.ErrFallbackToCPU) {
		t.Errorf("Contour() error = %v, want ErrFallbackToCPU", err)
	}
	if a.Ready() {
		t.Error("Ready() = true for an uninitialized accelerator")
	}
}

func TestSetDeviceProviderRejectsNonHAL(t *testing.T) {
	a := &Accelerator{}
	if err := a.SetDeviceProvider(struct{}{}); err == nil {
		t.Error("expected error for provider without HAL accessors")
	}
}

type halProviderStub struct {
	device, queue any
}

func (p halProviderStub) HalDevice() any { return p.device }
func (p halProviderStub) HalQueue() any  { return p.queue }

func TestSetDeviceProviderWrongTypes(t *testing.T) {
	a := &Accelerator{}
	if err := a.SetDeviceProvider(halProviderStub{device: 1, queue: 2}); err == nil {
		t.Error("expected error for non-hal device")
	}
}

func TestAcceleratorCloseIdempotent(t *testing.T) {
	a := &Accelerator{}
	a.Close()
	a.Close()
	if a.Ready() {
		t.Error("Ready() = true after Close")
	}
}

func TestPassPipelinesOnNoopDevice(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	if _, err := compileSPIRV(passShaderSource(volumeShaderSource)); err != nil {
		t.Skipf("shader compiler rejected volume shader: %v", err)
	}
	if _, err := compileSPIRV(passShaderSource(contourShaderSource)); err != nil {
		t.Skipf("shader compiler rejected contour shader: %v", err)
	}

	a := &Accelerator{device: device, queue: queue, externalDevice: true}
	if err := a.createPipelines(); err != nil {
		t.Fatalf("createPipelines: %v", err)
	}
	if a.volume.pipeline == nil || a.contour.pipeline == nil {
		t.Fatal("expected both pipelines")
	}
	a.destroyPipelines()
	if a.volume.pipeline != nil || a.contour.shader != nil {
		t.Error("pipelines not cleared after destroy")
	}
	// Double-destroy should be safe.
	a.destroyPipelines()
}

func TestShaderSources(t *testing.T) {
	for name, src := range map[string]string{
		"volume":  volumeShaderSource,
		"contour": contourShaderSource,
	} {
		full := passShaderSource(src)
		if !strings.Contains(full, "struct Params") {
			t.Errorf("%s: missing common declarations", name)
		}
		if !strings.Contains(full, "fn main") {
			t.Errorf("%s: missing entry point", name)
		}
	}
	if !strings.Contains(contourShaderSource, "@binding(4)") {
		t.Error("contour shader must declare the color field binding")
	}
}

func TestFrameParamsLayout(t *testing.T) {
	// 11 vec4 slots followed by 12 scalars.
	if got := unsafe.Sizeof(frameParams{}); got != 11*16+12*4 {
		t.Errorf("sizeof(frameParams) = %d, want %d", got, 11*16+12*4)
	}
	cam := testCamera()
	field := testGrid(t)
	coloring, err := raymarch.NewColormap("jet", -1, 2)
	if err != nil {
		t.Fatal(err)
	}
	p := makeFrameParams(cam, field, coloring)
	if p.Width != 16 || p.Height != 12 {
		t.Errorf("size = %dx%d, want 16x12", p.Width, p.Height)
	}
	if p.GridSpacing[3] != 0.25 {
		t.Errorf("step = %v, want 0.25", p.GridSpacing[3])
	}
	if p.Shape != [4]uint32{8, 8, 8, uint32(coloring.Len())} {
		t.Errorf("shape = %v", p.Shape)
	}
	if p.VMin != -1 || p.VMax != 2 {
		t.Errorf("range = [%v, %v], want [-1, 2]", p.VMin, p.VMax)
	}
	if p.Opaque != 1 || p.Solid != 0 {
		t.Errorf("flags opaque=%d solid=%d, want 1 0", p.Opaque, p.Solid)
	}
	if math.Abs(float64(p.FovScale)-1) > 1e-6 {
		t.Errorf("fov scale = %v, want 1", p.FovScale)
	}
}

func TestInitialStates(t *testing.T) {
	cam := testCamera()
	field := testGrid(t)
	thr := 0.0
	states, longest := initialStates(cam, field, &thr)
	if len(states) != cam.Width*cam.Height {
		t.Fatalf("len(states) = %d", len(states))
	}
	if longest == 0 {
		t.Fatal("expected at least one ray through the field")
	}

	// The center ray enters the box outside the sphere.
	c := states[(cam.Height/2)*cam.Width+cam.Width/2]
	if c.steps == 0 {
		t.Fatal("center ray missed the field")
	}
	if c.sign != 1 {
		t.Errorf("center sign = %v, want 1 (outside)", c.sign)
	}
	if want := float32(cam.Position.Z - 1); math.Abs(float64(c.dist-want)) > 1e-4 {
		t.Errorf("center entry = %v, want %v", c.dist, want)
	}

	// Without a threshold no sample is taken.
	states, _ = initialStates(cam, field, nil)
	for i, s := range states {
		if s.sign != 0 || s.value != 0 {
			t.Fatalf("state %d has contour data without a threshold: %+v", i, s)
		}
	}
}

func TestPackUnpackPixels(t *testing.T) {
	buf := raymarch.NewScreenBuffer(3, 2)
	target := buf.Target()
	target.Depth[1] = 4.5
	target.Opaque[3] = 0.25
	target.Normal[4] = -1
	target.Accum[5] = 0.75
	target.Revealage[2] = 0.5

	states := make([]marchState, 6)
	states[1] = marchState{dist: 2, value: 0.5, sign: -1, steps: 7}
	packed := packPixels(target, states)
	if len(packed) != 6*pixelStride*4 {
		t.Fatalf("len(packed) = %d", len(packed))
	}

	out := raymarch.NewScreenBuffer(3, 2)
	ot := out.Target()
	unpackPixels(packed, ot)

	if !math.IsInf(float64(ot.Depth[0]), 1) {
		t.Errorf("depth[0] = %v, want +Inf", ot.Depth[0])
	}
	if ot.Depth[1] != 4.5 {
		t.Errorf("depth[1] = %v, want 4.5", ot.Depth[1])
	}
	if ot.Opaque[3] != 0.25 || ot.Normal[4] != -1 || ot.Accum[5] != 0.75 {
		t.Errorf("planes not restored: opaque=%v normal=%v accum=%v", ot.Opaque[3], ot.Normal[4], ot.Accum[5])
	}
	if ot.Revealage[2] != 0.5 || ot.Revealage[0] != 1 {
		t.Errorf("revealage = %v, want [1 ... 0.5]", ot.Revealage[:3])
	}
}

func TestPackTable(t *testing.T) {
	b := packTable([]raymarch.RGBA{{R: 1, G: 0.5, B: 0.25, A: 1}})
	if len(b) != 16 {
		t.Fatalf("len = %d, want 16", len(b))
	}
	got := math.Float32frombits(uint32(b[4]) | uint32(b[5])<<8 | uint32(b[6])<<16 | uint32(b[7])<<24)
	if got != 0.5 {
		t.Errorf("G = %v, want 0.5", got)
	}
}
