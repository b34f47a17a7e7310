package postprocess

import (
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// OutputConfig holds the tone mapping parameters.
type OutputConfig struct {
	// ToneMapping applies ACES filmic tone mapping.
	ToneMapping bool

	// Exposure scales the linear color before tone mapping.
	Exposure float32
}

// DefaultOutputConfig is ACES filmic at unit exposure.
var DefaultOutputConfig = OutputConfig{ToneMapping: true, Exposure: 1}

// outputPass is the implementation of the OutputPass interface.
type outputPass struct {
	passState
	fx            *effect
	config        OutputConfig
	surfaceFormat wgpu.TextureFormat
}

// OutputPass converts the linear HDR chain result for display: tone mapping, then sRGB
// encoding when drawing to a surface whose format does not encode on write.
type OutputPass interface {
	Pass

	// Config returns the current parameters.
	Config() OutputConfig

	// SetConfig replaces the parameters from the next frame on.
	SetConfig(config OutputConfig)

	// Params returns the uniform written on the next frame.
	Params() GPUOutputParams
}

var _ OutputPass = &outputPass{}

// NewOutputPass creates the pass and registers its pipelines.
//
// Parameters:
//   - r: the renderer to register pipelines with
//   - config: the tone mapping parameters
//
// Returns:
//   - OutputPass: the pass
//   - error: an error if the pipelines could not be built
func NewOutputPass(r renderer.Renderer, config OutputConfig) (OutputPass, error) {
	fx, err := newEffect(r, programOutput, "output")
	if err != nil {
		return nil, err
	}
	return &outputPass{
		passState:     newPassState(true),
		fx:            fx,
		config:        config,
		surfaceFormat: r.SurfaceFormat(),
	}, nil
}

func (p *outputPass) Render(r renderer.Renderer, write, read renderer.RenderTarget) error {
	params := p.Params()
	return p.fx.run(r, params.Marshal(), write, read, p.renderToScreen)
}

func (p *outputPass) SetSize(width, height int) {}

func (p *outputPass) Config() OutputConfig {
	return p.config
}

func (p *outputPass) SetConfig(config OutputConfig) {
	p.config = config
}

func (p *outputPass) Params() GPUOutputParams {
	var toneMapping, encode float32
	if p.config.ToneMapping {
		toneMapping = 1
	}
	if p.renderToScreen && !isSRGB(p.surfaceFormat) {
		encode = 1
	}
	return GPUOutputParams{Params: [4]float32{p.config.Exposure, toneMapping, encode, 0}}
}

func (p *outputPass) Release() {
	p.fx.release()
}

// isSRGB reports whether writes to the format are sRGB encoded by the hardware.
func isSRGB(format wgpu.TextureFormat) bool {
	switch format {
	case wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatBGRA8UnormSrgb:
		return true
	default:
		return false
	}
}
