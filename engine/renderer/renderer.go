package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline
	width, height int

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify rendering tasks into a streamlined and idiomatic flow.
// The Renderer manages a cache of pipelines and the GPU resources behind bind group providers, and
// encodes each frame as a sequence of passes: BeginFrame, then BeginPass/draws/EndPass per pass,
// then EndFrame and Present.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the cached Pipeline, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a copy of the pipeline cache.
	//
	// Returns:
	//   - map[string]pipeline.Pipeline: pipelines keyed by PipelineKey
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines creates the GPU pipelines for every pipeline not yet cached and caches
	// them by key. Pipelines whose key is already cached are skipped.
	//
	// Parameters:
	//   - pipelines: the pipelines to register
	//
	// Returns:
	//   - error: the first registration error
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface and depth buffer for the new size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Size returns the current surface size in pixels.
	Size() (width, height int)

	// SurfaceFormat returns the color format of the surface.
	SurfaceFormat() wgpu.TextureFormat

	// SetPresentMode sets the present mode used from the next Resize on.
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers uploads vertex and index data for the provider.
	//
	// Parameters:
	//   - provider: the provider to store the buffers on
	//   - vertexData: raw vertex bytes
	//   - indexData: raw uint32 index bytes
	//   - indexCount: the number of indices
	//
	// Returns:
	//   - error: an error if the buffers could not be created
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitInstanceBuffer uploads per-instance vertex data for the provider.
	//
	// Parameters:
	//   - provider: the provider to store the buffer on
	//   - data: raw instance bytes
	//   - count: the number of instances
	//
	// Returns:
	//   - error: an error if the buffer could not be created
	InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error

	// InitBindGroup creates the buffers and the bind group described by descriptor.
	//
	// Parameters:
	//   - provider: the provider to store the resources on
	//   - descriptor: the bind group layout, usually from Pipeline.BindGroupLayoutDescriptor
	//   - bufferSizeOverrides: binding index to buffer size, replacing MinBindingSize
	//
	// Returns:
	//   - error: an error if the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error

	// InitTextureView uploads an RGBA texture for the provider.
	//
	// Parameters:
	//   - provider: the provider to store the view on
	//   - bindingKey: the binding index of the texture
	//   - stagingData: the pixel data
	//
	// Returns:
	//   - error: an error if the texture could not be created
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a sampler for the provider.
	//
	// Parameters:
	//   - provider: the provider to store the sampler on
	//   - bindingKey: the binding index of the sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if the sampler could not be created
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error

	// WriteBuffers writes staged buffer data to the GPU. Writes targeting released providers are dropped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// CreateRenderTarget allocates an offscreen HDR color target.
	//
	// Parameters:
	//   - label: debug label
	//   - width: width in pixels
	//   - height: height in pixels
	//
	// Returns:
	//   - RenderTarget: the new target, owned by the caller
	//   - error: an error if the texture could not be created
	CreateRenderTarget(label string, width, height int) (RenderTarget, error)

	// BeginFrame acquires the next surface texture and starts recording the frame.
	BeginFrame() error

	// BeginPass starts a render pass within the current frame.
	BeginPass(opts PassOptions) error

	// DrawCall draws the mesh on meshProvider with the cached pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - meshProvider: the provider holding geometry buffers
	//   - bindGroups: bind groups set at indices 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline is not cached
	DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// DrawFullscreen draws a fullscreen triangle with the cached pipeline.
	//
	// Parameters:
	//   - pipelineKey: the key of a registered pipeline
	//   - bindGroups: bind groups set at indices 0..n-1
	//
	// Returns:
	//   - error: an error if the pipeline is not cached
	DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndPass ends the current render pass.
	EndPass()

	// EndFrame submits the recorded frame.
	EndFrame()

	// Present presents the surface texture of the submitted frame.
	Present()

	// Release frees every cached pipeline and the GPU device. The renderer is unusable afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer drawing to the given surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - surface: the presentation surface, typically a window.Window
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new Renderer with a configured surface
//   - error: an error if no GPU adapter or device could be acquired
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		presentMode:   PresentModeVSync,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	var err error
	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend, err = newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.presentMode)
	}
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}

	r.Resize(surface.Width(), surface.Height())
	return r, nil
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	r.width, r.height = max(width, 1), max(height, 1)
	r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelineCache))
	for k, p := range r.pipelineCache {
		out[k] = p
	}
	return out
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("register pipeline %s: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error {
	return r.backend.InitInstanceBuffer(provider, data, count)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferSizeOverrides)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.backend.WriteBuffers(writes)
}

func (r *renderer) CreateRenderTarget(label string, width, height int) (RenderTarget, error) {
	return r.backend.CreateRenderTarget(label, width, height)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) BeginPass(opts PassOptions) error {
	return r.backend.BeginPass(opts)
}

func (r *renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DrawCall(p, meshProvider, bindGroups)
	return nil
}

func (r *renderer) DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error {
	p := r.Pipeline(pipelineKey)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	r.backend.DrawFullscreen(p, bindGroups)
	return nil
}

func (r *renderer) EndPass() {
	r.backend.EndPass()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for key, p := range r.pipelineCache {
		p.Release()
		delete(r.pipelineCache, key)
	}
	r.mu.Unlock()
	r.backend.Release()
}
