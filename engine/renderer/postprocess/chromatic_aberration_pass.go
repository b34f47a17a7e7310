package postprocess

import (
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
)

// ChromaticAberrationConfig holds the chromatic aberration parameters.
type ChromaticAberrationConfig struct {
	// Amount scales the channel offset relative to the distance from the screen center.
	Amount float32

	// Radial fades the effect in from StartRadius to EndRadius.
	Radial bool

	// StartRadius is the uv distance from the center where the effect starts.
	StartRadius float32

	// EndRadius is the uv distance from the center where the effect reaches full strength.
	EndRadius float32
}

// DefaultChromaticAberrationConfig is a subtle radial fringe that leaves the center untouched.
var DefaultChromaticAberrationConfig = ChromaticAberrationConfig{
	Amount:      0.005,
	Radial:      true,
	StartRadius: 0,
	EndRadius:   0.7,
}

// chromaticAberrationPass is the implementation of the ChromaticAberrationPass interface.
type chromaticAberrationPass struct {
	passState
	fx     *effect
	config ChromaticAberrationConfig
	width  int
	height int
}

// ChromaticAberrationPass splits the red and blue channels radially.
type ChromaticAberrationPass interface {
	Pass

	// Config returns the current parameters.
	Config() ChromaticAberrationConfig

	// SetConfig replaces the parameters from the next frame on.
	SetConfig(config ChromaticAberrationConfig)

	// Params returns the uniform written on the next frame.
	Params() GPUChromaticAberrationParams
}

var _ ChromaticAberrationPass = &chromaticAberrationPass{}

// NewChromaticAberrationPass creates the pass and registers its pipelines.
//
// Parameters:
//   - r: the renderer to register pipelines with
//   - config: the effect parameters
//
// Returns:
//   - ChromaticAberrationPass: the pass
//   - error: an error if the pipelines could not be built
func NewChromaticAberrationPass(r renderer.Renderer, config ChromaticAberrationConfig) (ChromaticAberrationPass, error) {
	fx, err := newEffect(r, programChromaticAberration, "chromatic aberration")
	if err != nil {
		return nil, err
	}
	return &chromaticAberrationPass{
		passState: newPassState(true),
		fx:        fx,
		config:    config,
	}, nil
}

func (p *chromaticAberrationPass) Render(r renderer.Renderer, write, read renderer.RenderTarget) error {
	params := p.Params()
	return p.fx.run(r, params.Marshal(), write, read, p.renderToScreen)
}

func (p *chromaticAberrationPass) SetSize(width, height int) {
	p.width, p.height = width, height
}

func (p *chromaticAberrationPass) Config() ChromaticAberrationConfig {
	return p.config
}

func (p *chromaticAberrationPass) SetConfig(config ChromaticAberrationConfig) {
	p.config = config
}

func (p *chromaticAberrationPass) Params() GPUChromaticAberrationParams {
	var radial float32
	if p.config.Radial {
		radial = 1
	}
	return GPUChromaticAberrationParams{
		Params:     [4]float32{p.config.Amount, radial, p.config.StartRadius, p.config.EndRadius},
		Resolution: [4]float32{float32(p.width), float32(p.height), 0, 0},
	}
}

func (p *chromaticAberrationPass) Release() {
	p.fx.release()
}
