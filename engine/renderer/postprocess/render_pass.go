package postprocess

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/cogentcore/webgpu/wgpu"
)

// Drawer encodes the draw calls of a scene into the pass the RenderPass opened.
type Drawer interface {
	// Draw issues the draw calls.
	//
	// Parameters:
	//   - r: the renderer with an open pass
	//
	// Returns:
	//   - error: an error if a draw could not be encoded
	Draw(r renderer.Renderer) error
}

// renderPass is the implementation of the RenderPass interface.
type renderPass struct {
	passState
	drawer     Drawer
	clearColor wgpu.Color
}

// RenderPass draws the scene into the read target with depth testing, so the passes after it
// read the scene. It never swaps.
type RenderPass interface {
	Pass

	// ClearColor returns the color the target is cleared to before drawing.
	ClearColor() wgpu.Color

	// SetClearColor sets the color the target is cleared to before drawing.
	SetClearColor(c wgpu.Color)
}

var _ RenderPass = &renderPass{}

// NewRenderPass creates the scene pass.
//
// Parameters:
//   - drawer: the scene that issues the draw calls
//   - clearColor: the background color
//
// Returns:
//   - RenderPass: the pass
func NewRenderPass(drawer Drawer, clearColor wgpu.Color) RenderPass {
	return &renderPass{
		passState:  newPassState(false),
		drawer:     drawer,
		clearColor: clearColor,
	}
}

func (p *renderPass) Render(r renderer.Renderer, write, read renderer.RenderTarget) error {
	clearColor := p.clearColor
	opts := renderer.PassOptions{Label: "scene", Clear: &clearColor, Depth: true}
	if !p.renderToScreen {
		opts.Target = read
	}
	if err := r.BeginPass(opts); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}
	err := p.drawer.Draw(r)
	r.EndPass()
	return err
}

func (p *renderPass) SetSize(width, height int) {}

func (p *renderPass) ClearColor() wgpu.Color {
	return p.clearColor
}

func (p *renderPass) SetClearColor(c wgpu.Color) {
	p.clearColor = c
}

func (p *renderPass) Release() {}
