package postprocess

import (
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
)

// GodRaysConfig holds the light scattering parameters.
type GodRaysConfig struct {
	Exposure float32
	Decay    float32
	Density  float32
	Weight   float32
	ClampMax float32
}

// DefaultGodRaysConfig is a soft scattering tuned for the badge scenes.
var DefaultGodRaysConfig = GodRaysConfig{
	Exposure: 0.6,
	Decay:    0.95,
	Density:  0.9,
	Weight:   0.4,
	ClampMax: 1,
}

// Positioner is anything with a world position, such as a light.
type Positioner interface {
	Position() [3]float32
}

// Projector maps world positions to normalized device coordinates, such as a camera.
type Projector interface {
	Project(world [3]float32) [3]float32
}

// godRaysPass is the implementation of the GodRaysPass interface.
type godRaysPass struct {
	passState
	fx        *effect
	config    GodRaysConfig
	source    Positioner
	projector Projector
}

// GodRaysPass streaks light outward from the screen position of a light source. The light is
// projected every frame, so it follows a moving light.
type GodRaysPass interface {
	Pass

	// Config returns the current parameters.
	Config() GodRaysConfig

	// SetConfig replaces the parameters from the next frame on.
	SetConfig(config GodRaysConfig)

	// LightUV returns the light position in uv space for the current camera, with v pointing down.
	LightUV() [2]float32

	// Params returns the uniform written on the next frame.
	Params() GPUGodRaysParams
}

var _ GodRaysPass = &godRaysPass{}

// NewGodRaysPass creates the pass and registers its pipelines.
//
// Parameters:
//   - r: the renderer to register pipelines with
//   - source: the light to streak from
//   - projector: the camera that projects the light to the screen
//   - config: the scattering parameters
//
// Returns:
//   - GodRaysPass: the pass
//   - error: an error if the pipelines could not be built
func NewGodRaysPass(r renderer.Renderer, source Positioner, projector Projector, config GodRaysConfig) (GodRaysPass, error) {
	fx, err := newEffect(r, programGodRays, "godrays")
	if err != nil {
		return nil, err
	}
	return &godRaysPass{
		passState: newPassState(true),
		fx:        fx,
		config:    config,
		source:    source,
		projector: projector,
	}, nil
}

// Render samples read along the ray to the light and writes the streaked result to write. The
// pass owns no targets of its own.
func (p *godRaysPass) Render(r renderer.Renderer, write, read renderer.RenderTarget) error {
	params := p.Params()
	return p.fx.run(r, params.Marshal(), write, read, p.renderToScreen)
}

// SetSize is a no-op: the rays are marched in uv space.
func (p *godRaysPass) SetSize(width, height int) {}

func (p *godRaysPass) Config() GodRaysConfig {
	return p.config
}

func (p *godRaysPass) SetConfig(config GodRaysConfig) {
	p.config = config
}

func (p *godRaysPass) LightUV() [2]float32 {
	ndc := p.projector.Project(p.source.Position())
	return [2]float32{(ndc[0] + 1) / 2, (1 - ndc[1]) / 2}
}

func (p *godRaysPass) Params() GPUGodRaysParams {
	uv := p.LightUV()
	return GPUGodRaysParams{
		Light:  [4]float32{uv[0], uv[1], p.config.Exposure, p.config.Decay},
		Params: [4]float32{p.config.Density, p.config.Weight, p.config.ClampMax, 0},
	}
}

func (p *godRaysPass) Release() {
	p.fx.release()
}
