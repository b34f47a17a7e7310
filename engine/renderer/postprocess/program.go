package postprocess

import (
	"embed"
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed assets/shaders/*.wgsl
var shaderFS embed.FS

// Program names. Each is the base name of a shader asset and the suffix of its pipeline keys.
const (
	programHighPass            = "high_pass"
	programBlur                = "blur"
	programBloomComposite      = "bloom_composite"
	programCopy                = "copy"
	programChromaticAberration = "chromatic_aberration"
	programFXAA                = "fxaa"
	programOutput              = "output"
	programGodRays             = "godrays"
)

// screenSuffix marks the pipeline variant that targets the surface format.
const screenSuffix = "@screen"

// inputBinding is the texture binding of single-input programs. The params uniform is always
// at binding 0.
const inputBinding = 1

var transparentBlack = wgpu.Color{R: 0, G: 0, B: 0, A: 0}

// ProgramSource returns the annotated WGSL source of a postprocess program, or an empty
// string if there is none with that name.
//
// Parameters:
//   - name: the program name, e.g. "fxaa"
//
// Returns:
//   - string: the raw WGSL source before pre-processing
func ProgramSource(name string) string {
	data, err := shaderFS.ReadFile("assets/shaders/" + name + ".wgsl")
	if err != nil {
		return ""
	}
	return string(data)
}

// NewPreProcessor returns a pre-processor that knows the postprocess parameter structs and
// the shared fullscreen vertex stage.
//
// Returns:
//   - shader.PreProcessor: the pre-processor used for every postprocess program
func NewPreProcessor() shader.PreProcessor {
	return shader.NewPreProcessor(
		shader.WithStruct("fullscreen", "FullscreenOutput", fullscreenSource),
		shader.WithStruct(programHighPass, "HighPassParams", GPUHighPassParamsSource),
		shader.WithStruct(programBlur, "BlurParams", GPUBlurParamsSource),
		shader.WithStruct(programBloomComposite, "BloomCompositeParams", GPUBloomCompositeParamsSource),
		shader.WithStruct(programCopy, "CopyParams", GPUCopyParamsSource),
		shader.WithStruct(programChromaticAberration, "ChromaticAberrationParams", GPUChromaticAberrationParamsSource),
		shader.WithStruct(programFXAA, "FXAAParams", GPUFXAAParamsSource),
		shader.WithStruct(programOutput, "OutputParams", GPUOutputParamsSource),
		shader.WithStruct(programGodRays, "GodRaysParams", GPUGodRaysParamsSource),
	)
}

// program is a fullscreen shader built twice: once for HDR offscreen targets and once for
// the surface format, so any pass can be the one that renders to screen.
type program struct {
	key    string
	hdr    pipeline.Pipeline
	screen pipeline.Pipeline
}

// programPipelines builds both pipeline variants of a named program.
//
// Parameters:
//   - name: the program name
//   - variant: appended to the pipeline key to tell blend variants apart, may be empty
//   - blend: the blend state, or nil to overwrite the target
//
// Returns:
//   - []pipeline.Pipeline: the HDR and the surface variant, in that order
//   - error: an error if the source is missing or fails to pre-process
func programPipelines(name, variant string, blend *wgpu.BlendState) ([]pipeline.Pipeline, error) {
	source := ProgramSource(name)
	if source == "" {
		return nil, fmt.Errorf("postprocess program %q not found", name)
	}
	key := "postprocess/" + name + variant

	vs, err := shader.NewShader(key+"/vs", shader.ShaderTypeVertex, source, shader.WithPreProcessor(NewPreProcessor()))
	if err != nil {
		return nil, fmt.Errorf("postprocess program %s: %w", name, err)
	}
	fs, err := shader.NewShader(key+"/fs", shader.ShaderTypeFragment, source, shader.WithPreProcessor(NewPreProcessor()))
	if err != nil {
		return nil, fmt.Errorf("postprocess program %s: %w", name, err)
	}

	build := func(pipelineKey string, format wgpu.TextureFormat) (pipeline.Pipeline, error) {
		opts := []pipeline.PipelineBuilderOption{
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
			pipeline.WithBlendEnabled(blend != nil),
			pipeline.WithTargetFormat(format),
		}
		if blend != nil {
			opts = append(opts, pipeline.WithBlendState(blend))
		}
		return pipeline.NewPipeline(pipelineKey, opts...)
	}

	hdr, err := build(key, renderer.HDRFormat)
	if err != nil {
		return nil, err
	}
	screen, err := build(key+screenSuffix, wgpu.TextureFormatUndefined)
	if err != nil {
		return nil, err
	}
	return []pipeline.Pipeline{hdr, screen}, nil
}

// newProgram builds a program and registers both variants with the renderer. Registering
// a program another pass already registered reuses the cached pipelines.
func newProgram(r renderer.Renderer, name, variant string, blend *wgpu.BlendState) (*program, error) {
	pipelines, err := programPipelines(name, variant, blend)
	if err != nil {
		return nil, err
	}
	if err := r.RegisterPipelines(pipelines...); err != nil {
		return nil, err
	}
	return &program{key: pipelines[0].PipelineKey(), hdr: pipelines[0], screen: pipelines[1]}, nil
}

// pipelineKey returns the key of the variant matching the pass destination.
func (p *program) pipelineKey(toScreen bool) string {
	if toScreen {
		return p.key + screenSuffix
	}
	return p.key
}

// layout returns the descriptor of bind group 0.
func (p *program) layout() wgpu.BindGroupLayoutDescriptor {
	return p.hdr.BindGroupLayoutDescriptor(0)
}

// binding owns the bind group of one fullscreen draw: the params uniform, the sampled inputs
// and the sampler. The inputs are borrowed from render targets, so the bind group is rebuilt
// whenever one of them changes, which happens on every ping-pong swap and after a resize.
type binding struct {
	provider bind_group_provider.BindGroupProvider
	layout   wgpu.BindGroupLayoutDescriptor
	inputs   map[int]renderer.RenderTarget
	built    bool
}

func newBinding(label string, layout wgpu.BindGroupLayoutDescriptor) *binding {
	return &binding{
		provider: bind_group_provider.NewBindGroupProvider(label),
		layout:   layout,
		inputs:   make(map[int]renderer.RenderTarget),
	}
}

// bind points the texture bindings at the given targets and rebuilds the bind group if any of
// them changed since the last call.
//
// Parameters:
//   - r: the renderer owning the GPU resources
//   - inputs: render targets keyed by texture binding
//
// Returns:
//   - error: an error if the sampler or bind group could not be created
func (b *binding) bind(r renderer.Renderer, inputs map[int]renderer.RenderTarget) error {
	changed := !b.built
	for idx, t := range inputs {
		if cur, ok := b.inputs[idx]; !ok || cur != t {
			changed = true
		}
	}
	if !changed {
		return nil
	}

	for idx, t := range inputs {
		b.provider.BorrowTextureView(idx, t.View())
		b.inputs[idx] = t
	}
	for _, e := range b.layout.Entries {
		if e.Sampler.Type == wgpu.SamplerBindingTypeUndefined || b.provider.Sampler(int(e.Binding)) != nil {
			continue
		}
		if err := r.InitSampler(b.provider, int(e.Binding), common.ClampedLinearSampler); err != nil {
			return fmt.Errorf("%s: %w", b.provider.Label(), err)
		}
	}
	if err := r.InitBindGroup(b.provider, b.layout, nil); err != nil {
		return fmt.Errorf("%s: %w", b.provider.Label(), err)
	}
	b.built = true
	return nil
}

// write uploads params to the uniform at binding 0.
func (b *binding) write(r renderer.Renderer, params []byte) {
	r.WriteBuffers([]bind_group_provider.BufferWrite{{Provider: b.provider, Binding: 0, Data: params}})
}

// draw encodes one fullscreen pass. A nil target with toScreen set draws to the surface.
//
// Parameters:
//   - r: the renderer recording the frame
//   - label: the pass label
//   - prog: the program to draw with
//   - target: the offscreen destination, ignored when toScreen is set
//   - toScreen: draw to the surface with the surface-format variant
//   - clearColor: the clear color, or nil to keep the destination contents
//
// Returns:
//   - error: an error if the pass could not be started or the pipeline is missing
func (b *binding) draw(r renderer.Renderer, label string, prog *program, target renderer.RenderTarget, toScreen bool, clearColor *wgpu.Color) error {
	opts := renderer.PassOptions{Label: label, Clear: clearColor}
	if !toScreen {
		opts.Target = target
	}
	if err := r.BeginPass(opts); err != nil {
		return err
	}
	err := r.DrawFullscreen(prog.pipelineKey(toScreen), []bind_group_provider.BindGroupProvider{b.provider})
	r.EndPass()
	return err
}

func (b *binding) release() {
	b.provider.Release()
	clear(b.inputs)
	b.built = false
}

// effect is a program with a single input texture, drawn through one binding.
type effect struct {
	label string
	prog  *program
	bind  *binding
}

func newEffect(r renderer.Renderer, name, label string) (*effect, error) {
	prog, err := newProgram(r, name, "", nil)
	if err != nil {
		return nil, err
	}
	return &effect{label: label, prog: prog, bind: newBinding(label, prog.layout())}, nil
}

// run samples read with the given params and writes to write, or to the surface when toScreen is set.
func (e *effect) run(r renderer.Renderer, params []byte, write, read renderer.RenderTarget, toScreen bool) error {
	if err := e.bind.bind(r, map[int]renderer.RenderTarget{inputBinding: read}); err != nil {
		return err
	}
	e.bind.write(r, params)
	if err := e.bind.draw(r, e.label, e.prog, write, toScreen, &transparentBlack); err != nil {
		return fmt.Errorf("%s: %w", e.label, err)
	}
	return nil
}

func (e *effect) release() {
	e.bind.release()
}
