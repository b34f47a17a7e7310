// Package renderertest provides a GPU-free Renderer that records what it is asked to do, for
// testing code that drives a renderer.Renderer.
package renderertest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// Draw is one recorded draw call.
type Draw struct {
	// PipelineKey is the pipeline the draw used.
	PipelineKey string

	// Pass is the label of the pass the draw was recorded in.
	Pass string

	// Target is the pass target, nil for the surface.
	Target renderer.RenderTarget

	// Fullscreen is set for DrawFullscreen calls.
	Fullscreen bool

	// Mesh is the mesh provider of DrawCall, nil for fullscreen draws.
	Mesh bind_group_provider.BindGroupProvider
}

// Target is a render target without a texture.
type Target struct {
	label         string
	width, height int
	released      bool
}

var _ renderer.RenderTarget = &Target{}

func (t *Target) Label() string              { return t.label }
func (t *Target) Width() int                 { return t.width }
func (t *Target) Height() int                { return t.height }
func (t *Target) Format() wgpu.TextureFormat { return renderer.HDRFormat }
func (t *Target) View() *wgpu.TextureView    { return nil }
func (t *Target) Release()                   { t.released = true }

// Released reports whether Release was called.
func (t *Target) Released() bool { return t.released }

// Renderer is a renderer.Renderer that records calls instead of talking to a GPU. All
// fields are guarded by the renderer's lock; read them through the accessor methods.
type Renderer struct {
	mu *sync.Mutex

	width, height int
	format        wgpu.TextureFormat
	pipelines     map[string]pipeline.Pipeline

	passes     []renderer.PassOptions
	draws      []Draw
	writes     []bind_group_provider.BufferWrite
	targets    []*Target
	bindGroups int
	meshes     []bind_group_provider.BindGroupProvider
	textures   []bind_group_provider.BindGroupProvider
	frames     int
	presents   int
	resizes    [][2]int
	released   bool

	inFrame bool
	pass    *renderer.PassOptions

	// FailBeginFrame makes BeginFrame return an error when set.
	FailBeginFrame error
}

var _ renderer.Renderer = &Renderer{}

// New returns a recording renderer with the given surface size and a BGRA8Unorm surface.
func New(width, height int) *Renderer {
	return &Renderer{
		mu:        &sync.Mutex{},
		width:     width,
		height:    height,
		format:    wgpu.TextureFormatBGRA8Unorm,
		pipelines: make(map[string]pipeline.Pipeline),
	}
}

func (r *Renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

func (r *Renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]pipeline.Pipeline, len(r.pipelines))
	for k, p := range r.pipelines {
		out[k] = p
	}
	return out
}

func (r *Renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if _, ok := r.pipelines[p.PipelineKey()]; !ok {
			r.pipelines[p.PipelineKey()] = p
		}
	}
	return nil
}

func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = max(width, 1), max(height, 1)
	r.resizes = append(r.resizes, [2]int{width, height})
}

func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *Renderer) SurfaceFormat() wgpu.TextureFormat {
	return r.format
}

func (r *Renderer) SetPresentMode(mode renderer.PresentMode) {}

func (r *Renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	provider.SetIndexCount(indexCount)
	r.meshes = append(r.meshes, provider)
	return nil
}

func (r *Renderer) InitInstanceBuffer(provider bind_group_provider.BindGroupProvider, data []byte, count int) error {
	provider.SetInstanceBuffer(nil, count)
	return nil
}

func (r *Renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferSizeOverrides map[int]uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if provider.Released() {
		return fmt.Errorf("%s: bind group on released provider", provider.Label())
	}
	r.bindGroups++
	return nil
}

// InitTextureView checks the staging data and records the provider as the owner of one texture. The
// texture counts as live until the provider is released.
func (r *Renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	if len(stagingData.Pixels) != int(stagingData.Width*stagingData.Height*4) {
		return errors.New("texture staging data does not match its size")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if provider.Released() {
		return fmt.Errorf("%s: texture on released provider", provider.Label())
	}
	r.textures = append(r.textures, provider)
	return nil
}

func (r *Renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData common.SamplerStagingData) error {
	return nil
}

func (r *Renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range writes {
		if w.Provider == nil || w.Provider.Released() {
			continue
		}
		r.writes = append(r.writes, w)
	}
}

func (r *Renderer) CreateRenderTarget(label string, width, height int) (renderer.RenderTarget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &Target{label: label, width: max(width, 1), height: max(height, 1)}
	r.targets = append(r.targets, t)
	return t, nil
}

func (r *Renderer) BeginFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailBeginFrame != nil {
		return r.FailBeginFrame
	}
	if r.inFrame {
		return errors.New("previous frame surface not yet presented")
	}
	r.inFrame = true
	r.frames++
	return nil
}

func (r *Renderer) BeginPass(opts renderer.PassOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inFrame {
		return errors.New("BeginPass called outside of a frame")
	}
	if r.pass != nil {
		return errors.New("BeginPass called with a pass already open")
	}
	if opts.Depth && opts.Target != nil && (opts.Target.Width() != r.width || opts.Target.Height() != r.height) {
		return fmt.Errorf("pass %s: depth buffer is %dx%d, target is %dx%d", opts.Label, r.width, r.height, opts.Target.Width(), opts.Target.Height())
	}
	if t, ok := opts.Target.(*Target); ok && t.released {
		return fmt.Errorf("pass %s: target has been released", opts.Label)
	}
	r.pass = &opts
	r.passes = append(r.passes, opts)
	return nil
}

func (r *Renderer) draw(pipelineKey string, mesh bind_group_provider.BindGroupProvider, fullscreen bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelines[pipelineKey]
	if !ok {
		return fmt.Errorf("render pipeline %q not found in cache", pipelineKey)
	}
	if r.pass == nil {
		return errors.New("draw outside of a pass")
	}
	if r.pass.Depth != p.DepthTestEnabled() {
		return fmt.Errorf("pipeline %s depth test %v in pass %s with depth %v", pipelineKey, p.DepthTestEnabled(), r.pass.Label, r.pass.Depth)
	}
	r.draws = append(r.draws, Draw{
		PipelineKey: pipelineKey,
		Pass:        r.pass.Label,
		Target:      r.pass.Target,
		Fullscreen:  fullscreen,
		Mesh:        mesh,
	})
	return nil
}

func (r *Renderer) DrawCall(pipelineKey string, meshProvider bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	return r.draw(pipelineKey, meshProvider, false)
}

func (r *Renderer) DrawFullscreen(pipelineKey string, bindGroups []bind_group_provider.BindGroupProvider) error {
	return r.draw(pipelineKey, nil, true)
}

func (r *Renderer) EndPass() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pass = nil
}

func (r *Renderer) EndFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pass = nil
}

func (r *Renderer) Present() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFrame {
		r.presents++
	}
	r.inFrame = false
}

func (r *Renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = true
}

// Passes returns the recorded passes in order.
func (r *Renderer) Passes() []renderer.PassOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]renderer.PassOptions(nil), r.passes...)
}

// Draws returns the recorded draws in order.
func (r *Renderer) Draws() []Draw {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Draw(nil), r.draws...)
}

// Writes returns the recorded buffer writes in order.
func (r *Renderer) Writes() []bind_group_provider.BufferWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bind_group_provider.BufferWrite(nil), r.writes...)
}

// Targets returns every render target created so far.
func (r *Renderer) Targets() []*Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Target(nil), r.targets...)
}

// BindGroups returns the number of InitBindGroup calls.
func (r *Renderer) BindGroups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindGroups
}

// Meshes returns the providers passed to InitMeshBuffers.
func (r *Renderer) Meshes() []bind_group_provider.BindGroupProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bind_group_provider.BindGroupProvider(nil), r.meshes...)
}

// Textures returns the number of textures created and the number still owned by an unreleased provider.
func (r *Renderer) Textures() (created, live int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.textures {
		if !p.Released() {
			live++
		}
	}
	return len(r.textures), live
}

// Frames returns the number of frames begun and presented.
func (r *Renderer) Frames() (begun, presented int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames, r.presents
}

// Resizes returns every size passed to Resize.
func (r *Renderer) Resizes() [][2]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][2]int(nil), r.resizes...)
}

// Released reports whether Release was called.
func (r *Renderer) Released() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}

// Reset forgets recorded passes, draws and writes.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes, r.draws, r.writes = nil, nil, nil
}
