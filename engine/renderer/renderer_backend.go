package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// HDRFormat is the color format of offscreen render targets. The scene is drawn in linear
// half-float so bloom can pick up values above 1 before tone mapping.
const HDRFormat = wgpu.TextureFormatRGBA16Float

// DepthFormat is the format of the depth attachment used by scene passes.
const DepthFormat = wgpu.TextureFormatDepth24Plus

// Surface is the presentation target a Renderer draws to. window.Window satisfies it.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// PassOptions configures a render pass started with BeginPass.
type PassOptions struct {
	// Label names the pass for GPU debugging.
	Label string

	// Target is the offscreen color attachment. Nil draws to the current surface texture.
	Target RenderTarget

	// Clear is the clear color. Nil loads the existing contents.
	Clear *wgpu.Color

	// Depth attaches the surface-sized depth buffer, cleared at the start of the pass.
	Depth bool
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// presentModeToWGPU maps a PresentMode to the surface present mode.
func presentModeToWGPU(mode PresentMode) wgpu.PresentMode {
	switch mode {
	case PresentModeVSync:
		return wgpu.PresentModeFifo
	default:
		return wgpu.PresentModeImmediate
	}
}
