package postprocess

import (
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
)

// Pass is one stage of the postprocess chain. A pass reads the previous result from the read
// target and writes its own result either to the write target or, when it is the last enabled
// pass, to the surface.
type Pass interface {
	// Render encodes the pass into the current frame.
	//
	// Parameters:
	//   - r: the renderer recording the frame
	//   - write: the target to write into, unless the pass renders to screen
	//   - read: the result of the previous pass
	//
	// Returns:
	//   - error: an error if a GPU resource could not be created or a pass could not be started
	Render(r renderer.Renderer, write, read renderer.RenderTarget) error

	// SetSize resizes any targets the pass owns and updates size dependent parameters.
	//
	// Parameters:
	//   - width: the drawing buffer width in pixels
	//   - height: the drawing buffer height in pixels
	SetSize(width, height int)

	// NeedsSwap reports whether the composer swaps read and write after this pass. Passes that
	// write their result back into read return false.
	NeedsSwap() bool

	// RenderToScreen reports whether the pass draws to the surface.
	RenderToScreen() bool

	// SetRenderToScreen marks the pass as the last in the chain. The composer sets it before
	// every frame.
	SetRenderToScreen(toScreen bool)

	// Enabled reports whether the composer runs the pass.
	Enabled() bool

	// SetEnabled turns the pass on or off.
	SetEnabled(enabled bool)

	// Release frees the GPU resources owned by the pass. Calling Release more than once is a no-op.
	Release()
}

// passState holds the flags every pass carries. Passes embed it.
type passState struct {
	enabled        bool
	needsSwap      bool
	renderToScreen bool
}

func newPassState(needsSwap bool) passState {
	return passState{enabled: true, needsSwap: needsSwap}
}

func (s *passState) NeedsSwap() bool {
	return s.needsSwap
}

func (s *passState) RenderToScreen() bool {
	return s.renderToScreen
}

func (s *passState) SetRenderToScreen(toScreen bool) {
	s.renderToScreen = toScreen
}

func (s *passState) Enabled() bool {
	return s.enabled
}

func (s *passState) SetEnabled(enabled bool) {
	s.enabled = enabled
}
