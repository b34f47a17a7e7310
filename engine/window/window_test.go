package window

import (
	"sync"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		fb, logical int
		want        float32
	}{
		{1024, 1024, 1},
		{2048, 1024, 2},
		{1536, 1024, 1.5},
		{0, 1024, 1},
		{800, 0, 1},
	}
	for _, tt := range tests {
		if got := ratio(tt.fb, tt.logical); got != tt.want {
			t.Errorf("ratio(%d, %d) = %v, want %v", tt.fb, tt.logical, got, tt.want)
		}
	}
}

func TestSetSizeTracksPixelRatio(t *testing.T) {
	w := &engineWindow{mu: &sync.Mutex{}, pixelRatio: 1}
	w.setSize(640, 480, 1280)
	if w.Width() != 640 || w.Height() != 480 || w.PixelRatio() != 2 {
		t.Errorf("size %dx%d ratio %v", w.Width(), w.Height(), w.PixelRatio())
	}
}

func TestOptionsIgnoreNonPositiveSizes(t *testing.T) {
	w := &engineWindow{width: 1024, height: 768}
	WithWidth(0)(w)
	WithHeight(-5)(w)
	WithTitle("likes")(w)
	if w.width != 1024 || w.height != 768 || w.title != "likes" {
		t.Errorf("window %+v", w)
	}
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{mu: &sync.Mutex{}}
	if w.IsRunning() || w.SurfaceDescriptor() != nil {
		t.Error("window without a platform handle reports running")
	}
	w.RequestClose()
	if err := w.Close(); err == nil {
		t.Error("Close on an uncreated window succeeded")
	}
}
