package pipeline

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipeline is the implementation of the Pipeline interface.
// It holds the render pipeline object and the state it was created from.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// vertexShader and fragmentShader are required before the renderer can register the pipeline
	vertexShader, fragmentShader shader.Shader

	// renderPipeline is set by the renderer once the pipeline has been registered
	renderPipeline *wgpu.RenderPipeline

	// bindGroupLayouts merges the layouts of both stages, keyed by group index
	bindGroupLayouts map[int]wgpu.BindGroupLayoutDescriptor

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
	targetFormat      wgpu.TextureFormat
}

// Pipeline defines the interface for a render pipeline: a vertex and fragment shader pair plus
// the fixed-function state (depth, blend, cull, topology, color target) it is created with.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader of the given stage.
	//
	// Parameters:
	//   - shaderType: the stage of the shader to retrieve
	//
	// Returns:
	//   - shader.Shader: the shader for that stage, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// RenderPipeline returns the registered GPU pipeline, or nil before registration.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the GPU pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU pipeline created by the renderer.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline to set
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// BindGroupLayoutDescriptor returns the merged layout of a bind group across both stages.
	// Bindings used by both stages have their visibility combined.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the merged descriptor, empty if neither stage uses the group
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every merged bind group layout keyed by group index.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: merged descriptors
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// VertexLayouts returns the vertex buffer layouts of the vertex stage, in slot order.
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layouts, nil for fullscreen pipelines
	VertexLayouts() []wgpu.VertexBufferLayout

	// DepthTestEnabled returns whether the pipeline has a depth attachment and tests against it.
	//
	// Returns:
	//   - bool: true if depth testing is enabled
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether the pipeline writes depth.
	//
	// Returns:
	//   - bool: true if depth writing is enabled
	DepthWriteEnabled() bool

	// BlendEnabled returns whether blending is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if blending is enabled
	BlendEnabled() bool

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state configured for this pipeline.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state, only applied when blending is enabled
	BlendState() *wgpu.BlendState

	// TargetFormat returns the color target format. wgpu.TextureFormatUndefined means the
	// pipeline draws to the surface and uses its format.
	//
	// Returns:
	//   - wgpu.TextureFormat: the color target format
	TargetFormat() wgpu.TextureFormat

	// Release releases the GPU pipeline. Safe to call more than once.
	Release()
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a render pipeline description. Both shaders must be provided with
// WithVertexShader and WithFragmentShader.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: the configured pipeline, not yet registered with a renderer
//   - error: an error if a shader is missing or has the wrong stage
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) (Pipeline, error) {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState:        AlphaBlend(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.vertexShader == nil || p.fragmentShader == nil {
		return nil, fmt.Errorf("pipeline %s: vertex and fragment shaders are required", pipelineKey)
	}
	if p.vertexShader.ShaderType() != shader.ShaderTypeVertex || p.fragmentShader.ShaderType() != shader.ShaderTypeFragment {
		return nil, fmt.Errorf("pipeline %s: shader stages do not match their slots", pipelineKey)
	}
	p.bindGroupLayouts = mergeBindGroupLayouts(p.vertexShader.BindGroupLayoutDescriptors(), p.fragmentShader.BindGroupLayoutDescriptors())
	return p, nil
}

// AlphaBlend returns straight alpha blending: src*a + dst*(1-a).
func AlphaBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

// AdditiveBlend returns an additive blend: src*a + dst.
func AdditiveBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorSrcAlpha,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOne,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayouts[group]
}

func (p *pipeline) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return p.bindGroupLayouts
}

func (p *pipeline) VertexLayouts() []wgpu.VertexBufferLayout {
	return p.vertexShader.VertexLayouts()
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) TargetFormat() wgpu.TextureFormat {
	return p.targetFormat
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
}

// mergeBindGroupLayouts combines the bind group layouts of the vertex and fragment stages.
// A pipeline layout holds one descriptor per group, so a binding declared by both stages
// becomes one entry whose visibility covers both.
func mergeBindGroupLayouts(vertexLayouts, fragmentLayouts map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	add := func(layouts map[int]wgpu.BindGroupLayoutDescriptor) {
		for g, desc := range layouts {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					byGroup[g][e.Binding] = existing
					continue
				}
				byGroup[g][e.Binding] = e
			}
		}
	}
	add(vertexLayouts)
	add(fragmentLayouts)

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entryMap := range byGroup {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: entries}
	}
	return merged
}
