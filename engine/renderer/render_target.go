package renderer

import (
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
)

// renderTarget is the implementation of the RenderTarget interface.
type renderTarget struct {
	mu      *sync.Mutex
	label   string
	width   int
	height  int
	format  wgpu.TextureFormat
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// RenderTarget is an offscreen color texture that passes render into and later passes sample from.
type RenderTarget interface {
	// Label returns the debug label of the target.
	Label() string

	// Width returns the width of the target in pixels.
	Width() int

	// Height returns the height of the target in pixels.
	Height() int

	// Format returns the color format of the target.
	Format() wgpu.TextureFormat

	// View returns the texture view used both as a color attachment and as a sampled binding.
	// Nil after Release.
	View() *wgpu.TextureView

	// Release frees the GPU texture. Calling Release more than once is a no-op.
	Release()
}

var _ RenderTarget = &renderTarget{}

func (t *renderTarget) Label() string {
	return t.label
}

func (t *renderTarget) Width() int {
	return t.width
}

func (t *renderTarget) Height() int {
	return t.height
}

func (t *renderTarget) Format() wgpu.TextureFormat {
	return t.format
}

func (t *renderTarget) View() *wgpu.TextureView {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

func (t *renderTarget) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
