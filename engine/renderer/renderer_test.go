package renderer

import (
	"sync"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestPresentModeToWGPU(t *testing.T) {
	if got := presentModeToWGPU(PresentModeVSync); got != wgpu.PresentModeFifo {
		t.Fatalf("VSync maps to %v, want Fifo", got)
	}
	if got := presentModeToWGPU(PresentModeUncapped); got != wgpu.PresentModeImmediate {
		t.Fatalf("Uncapped maps to %v, want Immediate", got)
	}
}

func TestRenderTargetReleaseIsIdempotent(t *testing.T) {
	rt := &renderTarget{mu: &sync.Mutex{}, label: "t", width: 4, height: 2, format: HDRFormat}
	rt.Release()
	rt.Release()
	if rt.View() != nil {
		t.Fatal("released target still has a view")
	}
	if rt.Width() != 4 || rt.Height() != 2 || rt.Format() != HDRFormat {
		t.Fatal("release changed target metadata")
	}
}
