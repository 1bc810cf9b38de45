// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/tileterm"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment for
// texture-to-buffer copies.
const copyPitchAlignment = 256

// Backend draws tileterm frames with a wgpu HAL device.
type Backend struct {
	cfg Config

	instance    hal.Instance
	device      hal.Device
	queue       hal.Queue
	external    bool
	adapterName string

	width, height uint32
	target        hal.Texture
	targetView    hal.TextureView

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline

	atlasTex  hal.Texture
	atlasView hal.TextureView
	bindGroup hal.BindGroup

	vertBuf  hal.Buffer
	idxBuf   hal.Buffer
	vertCap  uint64
	idxCap   uint64
	vertData []byte
	idxData  []byte

	img    *image.NRGBA
	frames int
	closed bool
}

var _ tileterm.Backend = (*Backend)(nil)

func newBackend(device hal.Device, queue hal.Queue, cfg Config) *Backend {
	return &Backend{
		cfg:    cfg.withDefaults(),
		device: device,
		queue:  queue,
	}
}

// Name returns "wgpu".
func (b *Backend) Name() string { return tileterm.BackendWGPU }

// AdapterName returns the name of the GPU adapter opened by New, or an
// empty string for shared devices.
func (b *Backend) AdapterName() string { return b.adapterName }

// Frames returns the number of frames submitted.
func (b *Backend) Frames() int { return b.frames }

// Image returns the last frame read back from the GPU, or nil before the
// first Submit or when readback is disabled. The image is reused by the
// next Submit.
func (b *Backend) Image() *image.NRGBA { return b.img }

// CreateSurface allocates the offscreen color target and builds the render
// pipeline. The title is ignored.
func (b *Backend) CreateSurface(width, height int, _ string) error {
	if b.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	b.destroyTarget()

	w, h := uint32(width), uint32(height) //nolint:gosec // checked positive above
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "tileterm_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        b.cfg.Format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create target texture: %w", err)
	}
	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "tileterm_target_view",
		Format:        b.cfg.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.device.DestroyTexture(tex)
		return fmt.Errorf("wgpu: create target view: %w", err)
	}
	b.target, b.targetView = tex, view
	b.width, b.height = w, h

	if b.pipeline == nil {
		if err := b.createPipeline(); err != nil {
			return err
		}
	}

	tileterm.Logger().Debug("wgpu: surface created", "width", width, "height", height,
		"format", b.cfg.Format)
	return nil
}

// createPipeline builds the shader module, layouts and render pipeline.
func (b *Backend) createPipeline() error {
	source := hal.ShaderSource{WGSL: tileShaderWGSL}
	if b.cfg.SPIRV {
		words, err := CompileSPIRV()
		if err != nil {
			return err
		}
		source = hal.ShaderSource{SPIRV: words}
	}
	shader, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "tileterm_shader",
		Source: source,
	})
	if err != nil {
		return fmt.Errorf("wgpu: compile tile shader: %w", err)
	}
	b.shader = shader

	// Binding 0: atlas texture (fragment). Texels are fetched with
	// textureLoad, so no sampler is bound.
	bindLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "tileterm_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create bind group layout: %w", err)
	}
	b.bindLayout = bindLayout

	pipeLayout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "tileterm_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{b.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create pipeline layout: %w", err)
	}
	b.pipeLayout = pipeLayout

	blend := alphaBlend()
	pipeline, err := b.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "tileterm_pipeline",
		Layout: b.pipeLayout,
		Vertex: hal.VertexState{
			Module:     b.shader,
			EntryPoint: "vs_main",
			Buffers:    tileVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     b.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    b.cfg.Format,
					Blend:     &blend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("wgpu: create render pipeline: %w", err)
	}
	b.pipeline = pipeline
	return nil
}

// alphaBlend is straight alpha blending applied to color and alpha alike.
func alphaBlend() gputypes.BlendState {
	c := gputypes.BlendComponent{
		SrcFactor: gputypes.BlendFactorSrcAlpha,
		DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
		Operation: gputypes.BlendOperationAdd,
	}
	return gputypes.BlendState{Color: c, Alpha: c}
}

// SetAtlas uploads the atlas as an RGBA8 texture, bottom row first.
func (b *Backend) SetAtlas(a *tileterm.Atlas) error {
	if b.closed {
		return ErrClosed
	}
	if b.pipeline == nil {
		return ErrNoSurface
	}
	b.destroyAtlas()

	w, h := uint32(a.Width()), uint32(a.Height()) //nolint:gosec // atlas sizes are positive
	tex, err := b.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "tileterm_atlas",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("wgpu: create atlas texture: %w", err)
	}
	b.atlasTex = tex

	view, err := b.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "tileterm_atlas_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		b.destroyAtlas()
		return fmt.Errorf("wgpu: create atlas view: %w", err)
	}
	b.atlasView = view

	b.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		a.ReversedPix(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)

	bindGroup, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "tileterm_bind_group",
		Layout: b.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{
				Binding:  0,
				Resource: gputypes.TextureViewBinding{TextureView: uintptr(view.NativeHandle())},
			},
		},
	})
	if err != nil {
		b.destroyAtlas()
		return fmt.Errorf("wgpu: create bind group: %w", err)
	}
	b.bindGroup = bindGroup

	tileterm.Logger().Info("wgpu: atlas uploaded", "width", w, "height", h)
	return nil
}

// Submit draws f into the target and, when readback is enabled, copies the
// result into Image.
func (b *Backend) Submit(f *tileterm.Frame) error {
	switch {
	case b.closed:
		return ErrClosed
	case b.target == nil:
		return ErrNoSurface
	case b.bindGroup == nil:
		return ErrNoAtlas
	}

	indexCount := uint32(len(f.Indices)) //nolint:gosec // bounded by grid size * depth * 6
	if indexCount > 0 {
		if err := b.uploadGeometry(f); err != nil {
			return err
		}
	}

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "tileterm_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("tileterm_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}

	cc := f.ClearColor
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "tileterm_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    b.targetView,
			LoadOp:  gputypes.LoadOpClear,
			StoreOp: gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(cc[0]), G: float64(cc[1]), B: float64(cc[2]), A: float64(cc[3]),
			},
		}},
	})
	if indexCount > 0 {
		rp.SetPipeline(b.pipeline)
		rp.SetBindGroup(0, b.bindGroup, nil)
		rp.SetVertexBuffer(0, b.vertBuf, 0)
		rp.SetIndexBuffer(b.idxBuf, gputypes.IndexFormatUint32, 0)
		rp.DrawIndexed(indexCount, 1, 0, 0, 0)
	}
	rp.End()

	var staging hal.Buffer
	var alignedBytesPerRow uint32
	if b.cfg.Readback {
		staging, alignedBytesPerRow, err = b.encodeReadback(encoder)
		if err != nil {
			encoder.DiscardEncoding()
			return err
		}
		defer b.device.DestroyBuffer(staging)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, b.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait for GPU: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	b.frames++

	if staging != nil {
		if err := b.readback(staging, alignedBytesPerRow); err != nil {
			return err
		}
	}
	return nil
}

// uploadGeometry encodes the frame and writes it into the vertex and index
// buffers, growing them when needed.
func (b *Backend) uploadGeometry(f *tileterm.Frame) error {
	b.vertData = encodeVertices(b.vertData[:0], f.Vertices)
	b.idxData = encodeIndices(b.idxData[:0], f.Indices)

	minVerts := uint64(b.cfg.InitialQuadCapacity) * 4 * vertexStride //nolint:gosec // positive by withDefaults
	vertBuf, vertCap, err := b.ensureBuffer(b.vertBuf, b.vertCap, uint64(len(b.vertData)), minVerts,
		"tileterm_vertices", gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	b.vertBuf, b.vertCap = vertBuf, vertCap

	minIdx := uint64(b.cfg.InitialQuadCapacity) * 6 * 4 //nolint:gosec // positive by withDefaults
	idxBuf, idxCap, err := b.ensureBuffer(b.idxBuf, b.idxCap, uint64(len(b.idxData)), minIdx,
		"tileterm_indices", gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	b.idxBuf, b.idxCap = idxBuf, idxCap

	b.queue.WriteBuffer(b.vertBuf, 0, b.vertData)
	b.queue.WriteBuffer(b.idxBuf, 0, b.idxData)
	return nil
}

// ensureBuffer returns buf if it holds need bytes, or replaces it with a
// buffer of doubled capacity.
func (b *Backend) ensureBuffer(buf hal.Buffer, capacity, need, minCap uint64, label string,
	usage gputypes.BufferUsage) (hal.Buffer, uint64, error) {
	if buf != nil && need <= capacity {
		return buf, capacity, nil
	}
	newCap := max(capacity, minCap)
	for newCap < need {
		newCap *= 2
	}
	if buf != nil {
		b.device.DestroyBuffer(buf)
	}
	nb, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  newCap,
		Usage: usage,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create %s: %w", label, err)
	}
	tileterm.Logger().Debug("wgpu: buffer allocated", "label", label, "bytes", newCap)
	return nb, newCap, nil
}

// encodeReadback records a copy of the target into a new staging buffer.
func (b *Backend) encodeReadback(encoder hal.CommandEncoder) (hal.Buffer, uint32, error) {
	bytesPerRow := b.width * 4
	aligned := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)

	staging, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "tileterm_staging",
		Size:  uint64(aligned) * uint64(b.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("wgpu: create staging buffer: %w", err)
	}

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(b.target, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: aligned, RowsPerImage: b.height},
		TextureBase:  hal.ImageCopyTexture{Texture: b.target, MipLevel: 0},
		Size:         hal.Extent3D{Width: b.width, Height: b.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: b.target,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	return staging, aligned, nil
}

// readback copies the staging buffer into Image, dropping row padding.
func (b *Backend) readback(staging hal.Buffer, alignedBytesPerRow uint32) error {
	data := make([]byte, uint64(alignedBytesPerRow)*uint64(b.height))
	if err := b.queue.ReadBuffer(staging, 0, data); err != nil {
		return fmt.Errorf("wgpu: readback: %w", err)
	}

	w, h := int(b.width), int(b.height)
	if b.img == nil || b.img.Rect.Dx() != w || b.img.Rect.Dy() != h {
		b.img = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	rowLen := w * 4
	for y := 0; y < h; y++ {
		src := data[y*int(alignedBytesPerRow) : y*int(alignedBytesPerRow)+rowLen]
		copy(b.img.Pix[y*b.img.Stride:], src)
	}
	if b.cfg.Format == gputypes.TextureFormatBGRA8Unorm {
		swapRedBlue(b.img.Pix)
	}
	return nil
}

// swapRedBlue converts BGRA pixels to RGBA in place.
func swapRedBlue(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// Close releases all GPU resources. A device opened by New is destroyed;
// a shared device is left open.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	b.destroyAtlas()
	b.destroyTarget()
	if b.vertBuf != nil {
		b.device.DestroyBuffer(b.vertBuf)
		b.vertBuf = nil
	}
	if b.idxBuf != nil {
		b.device.DestroyBuffer(b.idxBuf)
		b.idxBuf = nil
	}
	if b.pipeline != nil {
		b.device.DestroyRenderPipeline(b.pipeline)
		b.pipeline = nil
	}
	if b.pipeLayout != nil {
		b.device.DestroyPipelineLayout(b.pipeLayout)
		b.pipeLayout = nil
	}
	if b.bindLayout != nil {
		b.device.DestroyBindGroupLayout(b.bindLayout)
		b.bindLayout = nil
	}
	if b.shader != nil {
		b.device.DestroyShaderModule(b.shader)
		b.shader = nil
	}

	if !b.external {
		b.device.Destroy()
		if b.instance != nil {
			b.instance.Destroy()
			b.instance = nil
		}
	}
	tileterm.Logger().Debug("wgpu: backend closed", "frames", b.frames)
	return nil
}

func (b *Backend) destroyTarget() {
	if b.targetView != nil {
		b.device.DestroyTextureView(b.targetView)
		b.targetView = nil
	}
	if b.target != nil {
		b.device.DestroyTexture(b.target)
		b.target = nil
	}
}

func (b *Backend) destroyAtlas() {
	if b.bindGroup != nil {
		b.device.DestroyBindGroup(b.bindGroup)
		b.bindGroup = nil
	}
	if b.atlasView != nil {
		b.device.DestroyTextureView(b.atlasView)
		b.atlasView = nil
	}
	if b.atlasTex != nil {
		b.device.DestroyTexture(b.atlasTex)
		b.atlasTex = nil
	}
}
