package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat    wgpu.TextureFormat
	width, height    int
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	presentMode wgpu.PresentMode

	// Frame state shared by every pass encoded between BeginFrame and EndFrame
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

type wgpuRendererBackend interface {
	Device() *wgpu.Device
	Queue() *wgpu.Queue

	// ConfigureSurface is a wrapper for boilerplate logic required when calling ConfigureSurface on a surface.
	// This is required when the surface size changes, such as when the window is resized. The depth
	// buffer is recreated at the new size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SurfaceFormat returns the color format chosen for the surface.
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode sets the surface present mode. It takes effect on the next ConfigureSurface.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline creates the shader modules, pipeline layout and render pipeline of p
	// and stores the GPU pipeline back on it.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data and stores the buffers on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created vertex and index buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices represented in the indexData, used for draw calls
	//
	// Returns:
	//   - error: an error if the buffers could not be created, otherwise nil
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitInstanceBuffer uploads per-instance vertex data and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the instance buffer on
	//   - data: the raw instance data bytes
	//   - count: the number of instances in data
	//
	// Returns:
	//   - error: an error if the buffer could not be created, otherwise nil
	InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error

	// InitBindGroup creates the buffers and bind group described by descriptor and stores them on
	// the provider. Texture and sampler bindings must already be present on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider describing the storage for the bind group
	//   - descriptor: the BindGroupLayoutDescriptor describing the layout of the bind group
	//   - bufferSizeOverrides: binding index to buffer size, replacing MinBindingSize
	//
	// Returns:
	//   - error: an error if the bind group could not be initialized, otherwise nil
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads an RGBA texture and stores its view on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index of the texture
	//   - stagingData: the pixel data and dimensions
	//
	// Returns:
	//   - error: an error if the texture could not be created, otherwise nil
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler and stores it on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index of the sampler
	//   - samplerStagingData: the sampler configuration, zero fields take defaults
	//
	// Returns:
	//   - error: an error if the sampler could not be created, otherwise nil
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// CreateRenderTarget allocates an offscreen HDR color texture usable as both a color
	// attachment and a sampled texture.
	//
	// Parameters:
	//   - label: debug label
	//   - width: width in pixels, at least 1
	//   - height: height in pixels, at least 1
	//
	// Returns:
	//   - RenderTarget: the new target
	//   - error: an error if the texture could not be created
	CreateRenderTarget(label string, width, height int) (RenderTarget, error)

	// BeginFrame acquires the next swapchain texture and creates the frame's command encoder.
	// Must be paired with EndFrame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// BeginPass starts a render pass within the current frame.
	//
	// Parameters:
	//   - opts: the pass target, clear color and depth attachment
	//
	// Returns:
	//   - error: an error if no frame is active, a pass is already open, or the depth buffer does not fit the target
	BeginPass(opts PassOptions) error

	// DrawCall encodes an indexed draw of the mesh on the provider. A provider with an instance
	// buffer binds it at slot 1 and draws InstanceCount instances.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - meshProvider: the provider holding vertex, index and optional instance buffers
	//   - bindGroups: the bind groups set at indices 0..n-1
	DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider)

	// DrawFullscreen draws a single triangle covering the target. The vertex shader generates
	// positions from the vertex index so no buffers are bound.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - bindGroups: the bind groups set at indices 0..n-1
	DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider)

	// EndPass ends the current render pass. Safe to call with no pass open.
	EndPass()

	// EndFrame ends any open pass and submits the frame's command buffer.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Release frees the depth buffer, device and surface.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, presentMode PresentMode) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: presentModeToWGPU(presentMode),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Badge Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) Device() *wgpu.Device {
	return b.device
}

func (b *wgpuRendererBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.surfaceFormat
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	width, height = max(width, 1), max(height, 1)
	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width, b.height = width, height

	b.releaseDepth()
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		common.Logger().Error("create depth texture", "error", err)
		return
	}
	view, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		common.Logger().Error("create depth view", "error", err)
		return
	}
	b.depthTexture = depthTexture
	b.depthTextureView = view
}

func (b *wgpuRendererBackendImpl) releaseDepth() {
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.presentMode = presentModeToWGPU(mode)
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(vertexShader.Module())
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fragmentShader.Module())
	if err != nil {
		return err
	}
	defer fs.Release()

	merged := p.BindGroupLayoutDescriptors()
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range bindGroupLayouts {
		desc := merged[g]
		layout, layoutErr := b.device.CreateBindGroupLayout(&desc)
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}

	format := p.TargetFormat()
	if format == wgpu.TextureFormatUndefined {
		format = b.surfaceFormat
	}
	target := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	var depthStencil *wgpu.DepthStencilState
	if p.DepthTestEnabled() {
		depthStencil = &wgpu.DepthStencilState{
			Format:            DepthFormat,
			DepthWriteEnabled: p.DepthWriteEnabled(),
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    p.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) createBuffer(label string, data []byte, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Vertex Buffer", vertexData, wgpu.BufferUsageVertex)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}
	if len(indexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Index Buffer", indexData, wgpu.BufferUsageIndex)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}
	provider.SetIndexCount(indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error {
	if len(data) == 0 || count == 0 {
		provider.SetInstanceBuffer(nil, 0)
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.createBuffer(provider.Label()+" Instance Buffer", data, wgpu.BufferUsageVertex)
	if err != nil {
		return err
	}
	provider.SetInstanceBuffer(buf, count)
	return nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	layout := provider.BindGroupLayout()
	if layout == nil {
		var err error
		layout, err = b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return err
		}
		provider.SetBindGroupLayout(layout)
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture.SampleType != wgpu.TextureSampleTypeUndefined:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("%s: texture binding %d has no texture view, call InitTextureView first", provider.Label(), binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, TextureView: tv}
		case entry.Sampler.Type != wgpu.SamplerBindingTypeUndefined:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("%s: sampler binding %d has no sampler, call InitSampler first", provider.Label(), binding)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{Binding: entry.Binding, Sampler: samp}
		default:
			usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}
			buf := provider.Buffer(binding)
			if buf == nil {
				bufSize := entry.Buffer.MinBindingSize
				if overrideSize, ok := bufferSizeOverrides[binding]; ok {
					bufSize = overrideSize
				}
				var err error
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  bufSize,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Size:    wgpu.WholeSize,
			}
		}
	}

	if old := provider.BindGroup(); old != nil {
		old.Release()
	}
	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	if stagingData.Width == 0 || stagingData.Height == 0 {
		return fmt.Errorf("%s: texture has zero size", provider.Label())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	size := wgpu.Extent3D{
		Width:              stagingData.Width,
		Height:             stagingData.Height,
		DepthOrArrayLayers: 1,
	}
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         provider.Label() + " Texture",
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		Size:          size,
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return err
	}

	err = b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture: tex,
			Aspect:  wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&size,
	)
	if err != nil {
		tex.Release()
		return err
	}

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}

	// A re-upload replaces the owned texture and its view.
	if old := provider.Texture(bindingKey); old != nil {
		if oldView := provider.TextureView(bindingKey); oldView != nil {
			oldView.Release()
		}
		old.Release()
	}
	provider.SetTextureView(bindingKey, view)
	provider.SetTexture(bindingKey, tex)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         provider.Label() + " Sampler",
		AddressModeU:  common.Coalesce(samplerStagingData.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(samplerStagingData.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(samplerStagingData.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(samplerStagingData.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(samplerStagingData.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(samplerStagingData.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   samplerStagingData.LodMinClamp,
		LodMaxClamp:   common.Coalesce(samplerStagingData.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(samplerStagingData.MaxAnisotropy, 1),
	})
	if err != nil {
		return err
	}
	provider.SetSampler(bindingKey, samp)
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if w.Provider == nil || w.Provider.Released() {
			continue
		}
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		b.queue.WriteBuffer(buf, w.Offset, w.Data)
	}
}

func (b *wgpuRendererBackendImpl) CreateRenderTarget(label string, width, height int) (RenderTarget, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	width, height = max(width, 1), max(height, 1)
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        HDRFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("render target %s: %w", label, err)
	}
	return &renderTarget{
		mu:      &sync.Mutex{},
		label:   label,
		width:   width,
		height:  height,
		format:  HDRFormat,
		texture: tex,
		view:    view,
	}, nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A surface texture still held from the previous frame must be presented before acquiring another.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
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

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(opts PassOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return errors.New("BeginPass called outside of a frame")
	}
	if b.framePass != nil {
		return errors.New("BeginPass called with a pass already open")
	}

	view := b.frameView
	width, height := b.width, b.height
	if opts.Target != nil {
		view = opts.Target.View()
		width, height = opts.Target.Width(), opts.Target.Height()
	}
	if view == nil {
		return fmt.Errorf("pass %s: target has been released", opts.Label)
	}

	color := wgpu.RenderPassColorAttachment{
		View:    view,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if opts.Clear != nil {
		color.LoadOp = wgpu.LoadOpClear
		color.ClearValue = *opts.Clear
	}
	desc := &wgpu.RenderPassDescriptor{
		Label:            opts.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
	}
	if opts.Depth {
		if b.depthTextureView == nil || width != b.width || height != b.height {
			return fmt.Errorf("pass %s: depth buffer is %dx%d, target is %dx%d", opts.Label, b.width, b.height, width, height)
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	}
	b.framePass = b.frameEncoder.BeginRenderPass(desc)
	return nil
}

func (b *wgpuRendererBackendImpl) setPipelineAndGroups(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) bool {
	if b.framePass == nil || p.RenderPipeline() == nil {
		return false
	}
	b.framePass.SetPipeline(p.RenderPipeline())
	for i, bg := range bindGroups {
		if bg == nil || bg.BindGroup() == nil {
			return false
		}
		b.framePass.SetBindGroup(uint32(i), bg.BindGroup(), nil)
	}
	return true
}

func (b *wgpuRendererBackendImpl) DrawCall(p pipeline.Pipeline, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if meshProvider.VertexBuffer() == nil || meshProvider.IndexBuffer() == nil {
		return
	}
	if !b.setPipelineAndGroups(p, bindGroups) {
		return
	}

	instanceCount := uint32(1)
	b.framePass.SetVertexBuffer(0, meshProvider.VertexBuffer(), 0, wgpu.WholeSize)
	if inst := meshProvider.InstanceBuffer(); inst != nil {
		b.framePass.SetVertexBuffer(1, inst, 0, wgpu.WholeSize)
		instanceCount = uint32(meshProvider.InstanceCount())
	}
	b.framePass.SetIndexBuffer(meshProvider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	b.framePass.DrawIndexed(uint32(meshProvider.IndexCount()), instanceCount, 0, 0, 0)
}

func (b *wgpuRendererBackendImpl) DrawFullscreen(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.setPipelineAndGroups(p, bindGroups) {
		return
	}
	b.framePass.Draw(3, 1, 0, 0)
}

func (b *wgpuRendererBackendImpl) EndPass() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endPassLocked()
}

func (b *wgpuRendererBackendImpl) endPassLocked() {
	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}
	b.endPassLocked()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		common.Logger().Error("finish frame", "error", err)
		b.releaseFrameSurface()
		return
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPassLocked()
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameSurface()
	b.releaseDepth()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
