package postprocess

import (
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
)

// fxaaPass is the implementation of the FXAAPass interface.
type fxaaPass struct {
	passState
	fx     *effect
	width  int
	height int
}

// FXAAPass smooths aliased edges in screen space.
type FXAAPass interface {
	Pass

	// Params returns the uniform written on the next frame.
	Params() GPUFXAAParams
}

var _ FXAAPass = &fxaaPass{}

// NewFXAAPass creates the pass and registers its pipelines.
//
// Parameters:
//   - r: the renderer to register pipelines with
//
// Returns:
//   - FXAAPass: the pass
//   - error: an error if the pipelines could not be built
func NewFXAAPass(r renderer.Renderer) (FXAAPass, error) {
	fx, err := newEffect(r, programFXAA, "fxaa")
	if err != nil {
		return nil, err
	}
	return &fxaaPass{passState: newPassState(true), fx: fx, width: 1, height: 1}, nil
}

func (p *fxaaPass) Render(r renderer.Renderer, write, read renderer.RenderTarget) error {
	params := p.Params()
	return p.fx.run(r, params.Marshal(), write, read, p.renderToScreen)
}

// SetSize stores the size whose reciprocal is the texel step of the edge search.
func (p *fxaaPass) SetSize(width, height int) {
	p.width, p.height = max(width, 1), max(height, 1)
}

func (p *fxaaPass) Params() GPUFXAAParams {
	return GPUFXAAParams{Resolution: [4]float32{1 / float32(p.width), 1 / float32(p.height), 0, 0}}
}

func (p *fxaaPass) Release() {
	p.fx.release()
}
