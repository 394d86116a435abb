//go:build !nogpu

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/raymarch"
	"github.com/gogpu/wgpu/hal"
)

// fenceTimeout bounds the wait for one pass submission.
const fenceTimeout = 10 * time.Second

// dispatchInput is everything one pass uploads to the device.
type dispatchInput struct {
	label      string
	params     frameParams
	field      *raymarch.Grid
	colorField *raymarch.Grid // contour only, may be nil
	table      []raymarch.RGBA
	states     []marchState
	steps      int
}

// dispatch uploads the pass inputs and target planes, encodes one compute
// pass per march step, and writes the results back into target. The target
// is modified only after the device has finished successfully.
func (a *Accelerator) dispatch(p *passPipeline, target raymarch.RenderTarget, in *dispatchInput) error {
	start := time.Now()
	w, h := uint32(target.Width), uint32(target.Height) //nolint:gosec // dimensions always fit uint32
	pixelBytes := packPixels(target, in.states)
	pixelBufSize := uint64(len(pixelBytes))

	var owned []hal.Buffer
	defer func() {
		for _, b := range owned {
			a.device.DestroyBuffer(b)
		}
	}()
	create := func(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
		b, err := a.device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
		if err != nil {
			return nil, fmt.Errorf("create %s buffer: %w", label, err)
		}
		owned = append(owned, b)
		return b, nil
	}
	upload := func(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, uint64, error) {
		size := uint64(len(data))
		b, err := create(label, size, usage|gputypes.BufferUsageCopyDst)
		if err != nil {
			return nil, 0, err
		}
		a.queue.WriteBuffer(b, 0, data)
		return b, size, nil
	}

	paramsBuf, paramsSize, err := upload(in.label+"_params", in.params.bytes(), gputypes.BufferUsageUniform)
	if err != nil {
		return err
	}
	fieldBuf, fieldSize, err := upload(in.label+"_field", packFloats(in.field.Data), gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	tableBuf, tableSize, err := upload(in.label+"_table", packTable(in.table), gputypes.BufferUsageStorage)
	if err != nil {
		return err
	}
	pixelBuf, _, err := upload(in.label+"_pixels", pixelBytes, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc)
	if err != nil {
		return err
	}
	stagingBuf, err := create(in.label+"_staging", pixelBufSize, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}

	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: paramsSize}},
		{Binding: 1, Resource: gputypes.BufferBinding{Buffer: fieldBuf.NativeHandle(), Offset: 0, Size: fieldSize}},
		{Binding: 2, Resource: gputypes.BufferBinding{Buffer: tableBuf.NativeHandle(), Offset: 0, Size: tableSize}},
		{Binding: 3, Resource: gputypes.BufferBinding{Buffer: pixelBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
	}
	if p == &a.contour {
		// Without a color field the shader never reads binding 4; the
		// scalar field stands in to satisfy the layout.
		colorBuf, colorSize := fieldBuf, fieldSize
		if in.colorField != nil {
			if colorBuf, colorSize, err = upload(in.label+"_color_field", packFloats(in.colorField.Data), gputypes.BufferUsageStorage); err != nil {
				return err
			}
		}
		entries = append(entries, gputypes.BindGroupEntry{
			Binding: 4, Resource: gputypes.BufferBinding{Buffer: colorBuf.NativeHandle(), Offset: 0, Size: colorSize},
		})
	}

	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: in.label + "_bind", Layout: p.bindLayout, Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bg)

	readback, err := a.encodeSteps(p, bg, pixelBuf, stagingBuf, w, h, pixelBufSize, in)
	if err != nil {
		return err
	}
	unpackPixels(readback, target)
	slogger().Debug("gpu: pass dispatched", "pass", in.label, "steps", in.steps,
		"width", w, "height", h, "elapsed", time.Since(start))
	return nil
}

// encodeSteps records in.steps compute passes into one command encoder,
// submits them and reads the pixel records back. Storage buffer barriers
// between passes order the steps.
func (a *Accelerator) encodeSteps(
	p *passPipeline, bg hal.BindGroup, pixelBuf, stagingBuf hal.Buffer,
	w, h uint32, pixelBufSize uint64, in *dispatchInput,
) ([]byte, error) {
	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: in.label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(in.label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	for i := 0; i < in.steps; i++ {
		computePass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: in.label + "_step"})
		computePass.SetPipeline(p.pipeline)
		computePass.SetBindGroup(0, bg, nil)
		computePass.Dispatch((w+7)/8, (h+7)/8, 1)
		computePass.End()
	}

	encoder.CopyBufferToBuffer(pixelBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return nil, fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !fenceOK {
		return nil, fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return readback, nil
}
