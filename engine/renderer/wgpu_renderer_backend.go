package renderer

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/pristine-go/common"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/buffer"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/material"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/pristine-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// WGPUSurface is a Surface the WebGPU backend can create a native surface from.
type WGPUSurface interface {
	Surface

	// SurfaceDescriptor returns the platform descriptor of the drawable.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	limits   wgpu.Limits

	surfaceFormat        wgpu.TextureFormat
	width, height        int
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

// wgpuTexture is the native object stored on a material.Texture.
type wgpuTexture struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// wgpuMaterialBinding is the native binding stored on a material.Material.
type wgpuMaterialBinding struct {
	group   *wgpu.BindGroup
	sampler *wgpu.Sampler
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

var errMissingVertexModule = errors.New("a vertex shader must be set to create a render pipeline")

var wgpuBufferUsages = map[buffer.Usage]wgpu.BufferUsage{
	buffer.UsageStorage:         wgpu.BufferUsageStorage,
	buffer.UsageUniform:         wgpu.BufferUsageUniform,
	buffer.UsageVertex:          wgpu.BufferUsageVertex,
	buffer.UsageIndex:           wgpu.BufferUsageIndex,
	buffer.UsageCopySource:      wgpu.BufferUsageCopySrc,
	buffer.UsageCopyDestination: wgpu.BufferUsageCopyDst,
}

var wgpuVertexFormats = map[string]wgpu.VertexFormat{
	"float32x2": wgpu.VertexFormatFloat32x2,
	"float32x3": wgpu.VertexFormatFloat32x3,
	"float32x4": wgpu.VertexFormatFloat32x4,
	"sint32x2":  wgpu.VertexFormatSint32x2,
	"sint32x3":  wgpu.VertexFormatSint32x3,
	"sint32x4":  wgpu.VertexFormatSint32x4,
	"uint32x2":  wgpu.VertexFormatUint32x2,
	"uint32x3":  wgpu.VertexFormatUint32x3,
	"uint32x4":  wgpu.VertexFormatUint32x4,
}

var wgpuTopologies = map[pipeline.Topology]wgpu.PrimitiveTopology{
	pipeline.TopologyTriangleList:  wgpu.PrimitiveTopologyTriangleList,
	pipeline.TopologyTriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
	pipeline.TopologyLineList:      wgpu.PrimitiveTopologyLineList,
	pipeline.TopologyPointList:     wgpu.PrimitiveTopologyPointList,
}

var wgpuCullModes = map[pipeline.CullMode]wgpu.CullMode{
	pipeline.CullModeNone:  wgpu.CullModeNone,
	pipeline.CullModeFront: wgpu.CullModeFront,
	pipeline.CullModeBack:  wgpu.CullModeBack,
}

// wgpuAlphaBlend is source-alpha over for color and source-replace for alpha.
var wgpuAlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorZero,
		Operation: wgpu.BlendOperationAdd,
	},
}

func newWGPURendererBackend() *wgpuRendererBackendImpl {
	return &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		sampleCount: MSAAOff,
	}
}

// preferredCapability returns the surface's preferred value, which WebGPU reports first.
func preferredCapability[T any](kind string, values []T) (T, error) {
	if len(values) == 0 {
		var zero T
		return zero, fmt.Errorf("%w: surface reports no %s", ErrNoCompatibleDevice, kind)
	}
	return values[0], nil
}

// translateBufferUsages ORs the native flags of every usage together.
func translateBufferUsages(usages []buffer.Usage) (wgpu.BufferUsage, error) {
	var out wgpu.BufferUsage
	for _, u := range usages {
		flag, ok := wgpuBufferUsages[u]
		if !ok {
			return 0, fmt.Errorf("%w: %s", buffer.ErrInvalidUsage, u)
		}
		out |= flag
	}
	return out, nil
}

// translateVertexAttributes builds the vertex buffer layout of a contract.
func translateVertexAttributes(p pipeline.Pipeline) (wgpu.VertexBufferLayout, error) {
	formats, err := pipeline.AttributeFormats(p.Contract())
	if err != nil {
		return wgpu.VertexBufferLayout{}, err
	}
	attributes := make([]wgpu.VertexAttribute, len(formats))
	for i, f := range formats {
		format, ok := wgpuVertexFormats[f.Format]
		if !ok {
			return wgpu.VertexBufferLayout{}, fmt.Errorf("unsupported vertex format %q", f.Format)
		}
		attributes[i] = wgpu.VertexAttribute{
			Format:         format,
			Offset:         uint64(f.Offset),
			ShaderLocation: uint32(f.Location),
		}
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(p.Stride()),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}, nil
}

func (b *wgpuRendererBackendImpl) Initialize(ctx context.Context, surface Surface, config BackendConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ws, ok := surface.(WGPUSurface)
	if !ok {
		return fmt.Errorf("%w: surface %T has no WebGPU surface descriptor", ErrNoCompatibleDevice, surface)
	}

	runtime.LockOSThread()
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sampleCount = common.Coalesce(config.SampleCount, MSAAOff)
	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(ws.SurfaceDescriptor())

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: config.ForceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.releaseLocked()
		return fmt.Errorf("%w: %w", ErrNoCompatibleDevice, err)
	}
	b.adapter = a

	if err := ctx.Err(); err != nil {
		b.releaseLocked()
		return err
	}

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		b.releaseLocked()
		return fmt.Errorf("%w: %w", ErrNoCompatibleDevice, err)
	}
	b.device = d
	b.queue = d.GetQueue()
	b.limits = limits

	common.Logger().Info("webgpu device acquired",
		"fallback", config.ForceFallbackAdapter,
		"samples", uint32(b.sampleCount),
		"maxStorageBinding", uint64(limits.MaxStorageBufferBindingSize))
	return nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid surface size %dx%d", width, height)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	format, err := preferredCapability("formats", capabilities.Formats)
	if err != nil {
		return err
	}
	alphaMode, err := preferredCapability("alpha modes", capabilities.AlphaModes)
	if err != nil {
		return err
	}
	b.surfaceFormat = format

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   alphaMode,
	})
	b.width, b.height = width, height

	b.releaseMSAALocked()
	count := uint32(b.sampleCount)
	msaaEnabled := count > 1
	if msaaEnabled {
		// The pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			return err
		}
		view, err := msaaTexture.CreateView(nil)
		if err != nil {
			msaaTexture.Release()
			return err
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView = view
	}

	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    b.msaaTextureView, // nil when MSAA is off; set in BeginFrame
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: storeOp,
			},
		},
	}
	return nil
}

func (b *wgpuRendererBackendImpl) SurfaceSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) MaxInstanceBufferSize() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(b.limits.MaxStorageBufferBindingSize)
}

func (b *wgpuRendererBackendImpl) CreateNativeBuffer(label string, usages []buffer.Usage, size uint64) (any, error) {
	usage, err := translateBufferUsages(usages)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.device == nil {
		return nil, ErrNotInitialized
	}
	return b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
}

func (b *wgpuRendererBackendImpl) WriteNativeBuffer(native any, offset uint64, data []byte) error {
	buf, ok := native.(*wgpu.Buffer)
	if !ok {
		return fmt.Errorf("renderer: %T is not a WebGPU buffer", native)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.WriteBuffer(buf, offset, data)
}

func (b *wgpuRendererBackendImpl) DestroyNativeBuffer(native any) {
	buf, ok := native.(*wgpu.Buffer)
	if !ok || buf == nil {
		return
	}
	buf.Destroy()
	buf.Release()
}

func (b *wgpuRendererBackendImpl) CompileShader(s shader.Shader) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return ErrNotInitialized
	}
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Type().String() + " " + s.EntryPoint(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return err
	}
	s.SetModule(module)
	return nil
}

func shaderModule(s shader.Shader) (*wgpu.ShaderModule, error) {
	if s == nil {
		return nil, errMissingVertexModule
	}
	module, ok := s.Module().(*wgpu.ShaderModule)
	if !ok || module == nil {
		return nil, fmt.Errorf("%s shader %q has not been compiled", s.Type(), s.EntryPoint())
	}
	return module, nil
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	vs, err := shaderModule(vertexShader)
	if err != nil {
		return err
	}
	var fs *wgpu.ShaderModule
	if fragmentShader != nil {
		if fs, err = shaderModule(fragmentShader); err != nil {
			return err
		}
	}
	vertexLayout, err := translateVertexAttributes(p)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return ErrNotInitialized
	}

	target := wgpu.ColorTargetState{
		Format:    b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if p.BlendEnabled() {
		blend := wgpuAlphaBlend
		target.Blend = &blend
	}

	// A vertex-only pipeline has no fragment stage and writes no color.
	var fragment *wgpu.FragmentState
	if fs != nil {
		fragment = &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		}
	}

	// A nil layout makes the bind group layouts derive from the shaders.
	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: p.Label() + " Render Pipeline",
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    []wgpu.VertexBufferLayout{vertexLayout},
		},
		Fragment: fragment,
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpuTopologies[p.Topology()],
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpuCullModes[p.CullMode()],
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetNative(created)
	return nil
}

func (b *wgpuRendererBackendImpl) InitTexture(t material.Texture) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return ErrNotInitialized
	}
	size := wgpu.Extent3D{
		Width:              t.Width(),
		Height:             t.Height(),
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         t.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	if pixels := t.Pixels(); len(pixels) > 0 {
		b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			pixels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  t.Width() * 4,
				RowsPerImage: t.Height(),
			},
			&size,
		)
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	t.SetNative(&wgpuTexture{texture: tex, view: view})
	return nil
}

func (b *wgpuRendererBackendImpl) InitMaterial(m material.Material) error {
	if len(m.Uniforms()) > 0 {
		return material.ErrUniformsUnsupported
	}
	// Nothing to sample; group 1 stays unbound.
	if len(m.Textures()) == 0 {
		return nil
	}
	rp, ok := m.Pipeline().Native().(*wgpu.RenderPipeline)
	if !ok || rp == nil {
		return fmt.Errorf("pipeline %q has not been registered", m.Pipeline().Label())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         m.Pipeline().Label() + " Material Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return err
	}

	entries := []wgpu.BindGroupEntry{{Binding: 0, Sampler: samp}}
	for i, t := range m.Textures() {
		native, ok := t.Native().(*wgpuTexture)
		if !ok || native == nil {
			samp.Release()
			return fmt.Errorf("texture %q has not been uploaded", t.Label())
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding:     uint32(1 + i),
			TextureView: native.view,
		})
	}

	layout := rp.GetBindGroupLayout(BindGroupMaterial)
	defer layout.Release()
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   m.Pipeline().Label() + " Material Bind Group",
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		samp.Release()
		return err
	}
	m.SetBinding(&wgpuMaterialBinding{group: group, sampler: samp})
	return nil
}

func (b *wgpuRendererBackendImpl) CreateBinding(p pipeline.Pipeline, group int, buf buffer.Buffer) (any, error) {
	rp, ok := p.Native().(*wgpu.RenderPipeline)
	if !ok || rp == nil {
		return nil, fmt.Errorf("pipeline %q has not been registered", p.Label())
	}
	native, ok := buf.Native().(*wgpu.Buffer)
	if !ok || native == nil {
		return nil, fmt.Errorf("buffer %q has no WebGPU buffer", buf.Label())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	layout := rp.GetBindGroupLayout(uint32(group))
	defer layout.Release()
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  fmt.Sprintf("%s group %d", p.Label(), group),
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  native,
				Offset:  0,
				Size:    wgpu.WholeSize,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("bind group created", "pipeline", p.Label(), "group", group, "buffer", buf.Handle().ID)
	return bindGroup, nil
}

func (b *wgpuRendererBackendImpl) ReleaseBinding(binding any) {
	switch v := binding.(type) {
	case *wgpu.BindGroup:
		if v != nil {
			v.Release()
		}
	case *wgpuMaterialBinding:
		if v != nil {
			v.group.Release()
			v.sampler.Release()
		}
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame(clear common.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface has not been configured")
	}
	// A surface texture still held means the previous frame was never presented.
	if b.frameSurface != nil {
		return errors.New("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	attachment := &b.renderPassDescriptor.ColorAttachments[0]
	if b.sampleCount > 1 {
		attachment.ResolveTarget = view
	} else {
		attachment.View = view
	}
	attachment.ClearValue = wgpu.Color{R: clear.R, G: clear.G, B: clear.B, A: clear.A}

	b.frameEncoder = encoder
	b.framePass = encoder.BeginRenderPass(b.renderPassDescriptor)
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) SetPipeline(p pipeline.Pipeline) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framePass.SetPipeline(p.Native().(*wgpu.RenderPipeline))
}

func (b *wgpuRendererBackendImpl) SetBindGroup(group int, binding any) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch v := binding.(type) {
	case *wgpu.BindGroup:
		b.framePass.SetBindGroup(uint32(group), v, nil)
	case *wgpuMaterialBinding:
		b.framePass.SetBindGroup(uint32(group), v.group, nil)
	}
}

func (b *wgpuRendererBackendImpl) SetVertexBuffer(buf buffer.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framePass.SetVertexBuffer(0, buf.Native().(*wgpu.Buffer), 0, wgpu.WholeSize)
}

func (b *wgpuRendererBackendImpl) SetIndexBuffer(buf buffer.Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framePass.SetIndexBuffer(buf.Native().(*wgpu.Buffer), wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
}

func (b *wgpuRendererBackendImpl) Draw(vertexCount, instanceCount uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framePass.Draw(vertexCount, instanceCount, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawIndexed(indexCount, instanceCount uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.framePass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return errors.New("no frame in progress")
	}
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameLocked()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()

	b.surface.Present()
	b.releaseFrameLocked()
	return nil
}

// releaseFrameLocked drops the swapchain view and texture of the current frame.
func (b *wgpuRendererBackendImpl) releaseFrameLocked() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseMSAALocked() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
}

func (b *wgpuRendererBackendImpl) releaseLocked() {
	b.releaseFrameLocked()
	b.releaseMSAALocked()
	b.renderPassDescriptor = nil
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	b.limits = wgpu.Limits{}
}
