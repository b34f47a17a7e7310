package postprocess

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
)

// bloomLevels is the number of blur levels, each half the size of the previous one.
const bloomLevels = 5

// bloomKernelRadii is the blur kernel radius of each level.
var bloomKernelRadii = [bloomLevels]int{3, 5, 7, 9, 11}

// bloomFactors weights the levels before the radius lerp.
var bloomFactors = [bloomLevels]float32{1.0, 0.8, 0.6, 0.4, 0.2}

// bloomSmoothWidth is the width of the high pass smoothstep above the threshold.
const bloomSmoothWidth = 0.01

// BloomConfig holds the bloom parameters.
type BloomConfig struct {
	// Strength scales the summed glow.
	Strength float32

	// Radius in [0, 1] shifts weight from the sharp levels toward the wide ones.
	Radius float32

	// Threshold is the luminance below which texels do not glow.
	Threshold float32
}

// DefaultBloomConfig makes everything glow, wide and bright.
var DefaultBloomConfig = BloomConfig{Strength: 1.2, Radius: 0.5, Threshold: 0}

// bloomPass is the implementation of the BloomPass interface.
type bloomPass struct {
	passState
	config BloomConfig

	highPass  *program
	blur      *program
	composite *program
	copy      *program
	additive  *program

	highPassBind  *binding
	blurH         [bloomLevels]*binding
	blurV         [bloomLevels]*binding
	compositeBind *binding
	blendBind     *binding
	screenBind    *binding

	// bright holds the high pass, horizontal and vertical the blur levels. The composite is
	// written into horizontal[0] once the blur no longer needs it.
	bright     renderer.RenderTarget
	horizontal [bloomLevels]renderer.RenderTarget
	vertical   [bloomLevels]renderer.RenderTarget

	width, height int
}

// BloomPass makes bright areas glow. It extracts texels above a luminance threshold, blurs
// them at five successively halved resolutions, sums the levels and adds the result back onto
// the read target, so it never swaps.
type BloomPass interface {
	Pass

	// Config returns the current parameters.
	Config() BloomConfig

	// SetConfig replaces the parameters from the next frame on.
	SetConfig(config BloomConfig)
}

var _ BloomPass = &bloomPass{}

// NewBloomPass creates the pass and registers its pipelines. Targets are allocated on the
// first frame.
//
// Parameters:
//   - r: the renderer to register pipelines with
//   - config: the bloom parameters
//
// Returns:
//   - BloomPass: the pass
//   - error: an error if the pipelines could not be built
func NewBloomPass(r renderer.Renderer, config BloomConfig) (BloomPass, error) {
	p := &bloomPass{passState: newPassState(false), config: config, width: 1, height: 1}

	var err error
	if p.highPass, err = newProgram(r, programHighPass, "", nil); err != nil {
		return nil, err
	}
	if p.blur, err = newProgram(r, programBlur, "", nil); err != nil {
		return nil, err
	}
	if p.composite, err = newProgram(r, programBloomComposite, "", nil); err != nil {
		return nil, err
	}
	if p.copy, err = newProgram(r, programCopy, "", nil); err != nil {
		return nil, err
	}
	if p.additive, err = newProgram(r, programCopy, "/additive", pipeline.AdditiveBlend()); err != nil {
		return nil, err
	}

	p.highPassBind = newBinding("bloom high pass", p.highPass.layout())
	for i := range bloomLevels {
		p.blurH[i] = newBinding(fmt.Sprintf("bloom blur h%d", i), p.blur.layout())
		p.blurV[i] = newBinding(fmt.Sprintf("bloom blur v%d", i), p.blur.layout())
	}
	p.compositeBind = newBinding("bloom composite", p.composite.layout())
	p.blendBind = newBinding("bloom blend", p.additive.layout())
	p.screenBind = newBinding("bloom screen copy", p.copy.layout())
	return p, nil
}

// bloomLevelSizes returns the size of each blur level for a drawing buffer size. Level 0 is
// half the buffer, rounded, and every level halves the previous one.
func bloomLevelSizes(width, height int) [bloomLevels][2]int {
	var sizes [bloomLevels][2]int
	w := int(math.Round(float64(width) / 2))
	h := int(math.Round(float64(height) / 2))
	for i := range bloomLevels {
		sizes[i] = [2]int{max(w, 1), max(h, 1)}
		w = int(math.Round(float64(w) / 2))
		h = int(math.Round(float64(h) / 2))
	}
	return sizes
}

// gaussianCoefficients returns the one-sided weights of a blur with the given radius. The
// sigma equals the radius.
func gaussianCoefficients(radius int) []float32 {
	out := make([]float32, radius)
	r := float64(radius)
	for i := range radius {
		x := float64(i)
		out[i] = float32(0.39894 * math.Exp(-0.5*x*x/(r*r)) / r)
	}
	return out
}

// compositeParams lerps every level factor toward its mirror as the radius grows.
func (p *bloomPass) compositeParams() GPUBloomCompositeParams {
	var f [bloomLevels]float32
	for i, factor := range bloomFactors {
		f[i] = factor + (1.2-2*factor)*p.config.Radius
	}
	return GPUBloomCompositeParams{
		Factors: [4]float32{f[0], f[1], f[2], f[3]},
		Params:  [4]float32{f[4], p.config.Strength, 0, 0},
	}
}

func (p *bloomPass) blurParams(level int, dirX, dirY float32) GPUBlurParams {
	t := p.horizontal[level]
	radius := bloomKernelRadii[level]
	params := GPUBlurParams{
		Params: [4]float32{dirX, dirY, 1 / float32(t.Width()), 1 / float32(t.Height())},
		Kernel: [4]float32{float32(radius), 0, 0, 0},
	}
	copy(params.Coefficients[:], gaussianCoefficients(radius))
	return params
}

func (p *bloomPass) ensureTargets(r renderer.Renderer) error {
	if p.bright != nil {
		return nil
	}
	sizes := bloomLevelSizes(p.width, p.height)
	var horizontal, vertical [bloomLevels]renderer.RenderTarget
	bright, err := r.CreateRenderTarget("bloom bright", sizes[0][0], sizes[0][1])
	if err != nil {
		return fmt.Errorf("bloom: %w", err)
	}
	// bright is assigned last so a partial allocation is retried on the next frame
	fail := func(err error) error {
		bright.Release()
		for i := range bloomLevels {
			if horizontal[i] != nil {
				horizontal[i].Release()
			}
			if vertical[i] != nil {
				vertical[i].Release()
			}
		}
		return fmt.Errorf("bloom: %w", err)
	}
	for i, s := range sizes {
		if horizontal[i], err = r.CreateRenderTarget(fmt.Sprintf("bloom h%d", i), s[0], s[1]); err != nil {
			return fail(err)
		}
		if vertical[i], err = r.CreateRenderTarget(fmt.Sprintf("bloom v%d", i), s[0], s[1]); err != nil {
			return fail(err)
		}
	}
	p.horizontal, p.vertical, p.bright = horizontal, vertical, bright
	return nil
}

// stage binds inputs, writes params and draws one fullscreen pass.
func (p *bloomPass) stage(r renderer.Renderer, label string, b *binding, prog *program, params []byte, inputs map[int]renderer.RenderTarget, target renderer.RenderTarget, toScreen, clearTarget bool) error {
	if err := b.bind(r, inputs); err != nil {
		return err
	}
	b.write(r, params)
	var clearColor = &transparentBlack
	if !clearTarget {
		clearColor = nil
	}
	if err := b.draw(r, label, prog, target, toScreen, clearColor); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

func (p *bloomPass) Render(r renderer.Renderer, write, read renderer.RenderTarget) error {
	if err := p.ensureTargets(r); err != nil {
		return err
	}

	opaque := GPUCopyParams{Params: [4]float32{1, 0, 0, 0}}
	if p.renderToScreen {
		if err := p.stage(r, "bloom screen copy", p.screenBind, p.copy, opaque.Marshal(),
			map[int]renderer.RenderTarget{inputBinding: read}, nil, true, true); err != nil {
			return err
		}
	}

	highPass := GPUHighPassParams{Params: [4]float32{p.config.Threshold, bloomSmoothWidth, 0, 0}}
	if err := p.stage(r, "bloom high pass", p.highPassBind, p.highPass, highPass.Marshal(),
		map[int]renderer.RenderTarget{inputBinding: read}, p.bright, false, true); err != nil {
		return err
	}

	input := p.bright
	for i := range bloomLevels {
		h := p.blurParams(i, 1, 0)
		if err := p.stage(r, fmt.Sprintf("bloom blur h%d", i), p.blurH[i], p.blur, h.Marshal(),
			map[int]renderer.RenderTarget{inputBinding: input}, p.horizontal[i], false, true); err != nil {
			return err
		}
		v := p.blurParams(i, 0, 1)
		if err := p.stage(r, fmt.Sprintf("bloom blur v%d", i), p.blurV[i], p.blur, v.Marshal(),
			map[int]renderer.RenderTarget{inputBinding: p.horizontal[i]}, p.vertical[i], false, true); err != nil {
			return err
		}
		input = p.vertical[i]
	}

	composite := p.compositeParams()
	levels := make(map[int]renderer.RenderTarget, bloomLevels)
	for i, v := range p.vertical {
		levels[i+1] = v
	}
	if err := p.stage(r, "bloom composite", p.compositeBind, p.composite, composite.Marshal(),
		levels, p.horizontal[0], false, true); err != nil {
		return err
	}

	return p.stage(r, "bloom blend", p.blendBind, p.additive, opaque.Marshal(),
		map[int]renderer.RenderTarget{inputBinding: p.horizontal[0]}, read, p.renderToScreen, false)
}

func (p *bloomPass) SetSize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	p.releaseTargets()
}

func (p *bloomPass) Config() BloomConfig {
	return p.config
}

func (p *bloomPass) SetConfig(config BloomConfig) {
	p.config = config
}

func (p *bloomPass) releaseTargets() {
	if p.bright != nil {
		p.bright.Release()
		p.bright = nil
	}
	for i := range bloomLevels {
		if p.horizontal[i] != nil {
			p.horizontal[i].Release()
			p.horizontal[i] = nil
		}
		if p.vertical[i] != nil {
			p.vertical[i].Release()
			p.vertical[i] = nil
		}
	}
}

func (p *bloomPass) Release() {
	p.highPassBind.release()
	for i := range bloomLevels {
		p.blurH[i].release()
		p.blurV[i].release()
	}
	p.compositeBind.release()
	p.blendBind.release()
	p.screenBind.release()
	p.releaseTargets()
}
