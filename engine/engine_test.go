package engine

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/badge"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-badges/engine/scene"
	"github.com/Carmen-Shannon/oxy-badges/engine/worker"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeWindow stands in for the GLFW window. ProcessMessages blocks until RequestClose.
type fakeWindow struct {
	mu         sync.Mutex
	width      int
	height     int
	pixelRatio float32
	closed     chan struct{}
	closeOnce  sync.Once

	onResize func(int, int)
	onKey    func(uint32)
	onCursor func(x, y float64)
}

func newFakeWindow(width, height int, pixelRatio float32) *fakeWindow {
	return &fakeWindow{width: width, height: height, pixelRatio: pixelRatio, closed: make(chan struct{})}
}

func (w *fakeWindow) SetUpdateCallback(func())                   {}
func (w *fakeWindow) SetResizeCallback(cb func(int, int))        { w.onResize = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(uint32))         { w.onKey = cb }
func (w *fakeWindow) SetCursorCallback(cb func(x, y float64))    { w.onCursor = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) PixelRatio() float32                        { return w.pixelRatio }
func (w *fakeWindow) Close() error                               { return nil }
func (w *fakeWindow) ProcessMessages()                           { <-w.closed }
func (w *fakeWindow) RequestClose()                              { w.closeOnce.Do(func() { close(w.closed) }) }

func (w *fakeWindow) IsRunning() bool {
	select {
	case <-w.closed:
		return false
	default:
		return true
	}
}

func (w *fakeWindow) Width() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width
}

func (w *fakeWindow) Height() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.height
}

// fakeRouter records what the host sends and lets the test drive events.
type fakeRouter struct {
	mu      sync.Mutex
	sent    []worker.Message
	events  chan worker.Event
	running chan struct{}
	stopped chan struct{}
}

func newFakeRouter() *fakeRouter {
	return &fakeRouter{
		events:  make(chan worker.Event, 4),
		running: make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (r *fakeRouter) Send(msg worker.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *fakeRouter) Events() <-chan worker.Event { return r.events }
func (r *fakeRouter) State() worker.State         { return worker.StateUninitialized }
func (r *fakeRouter) Badge() badge.Badge          { return nil }
func (r *fakeRouter) Scene() scene.Manager        { return nil }

func (r *fakeRouter) Run(ctx context.Context) error {
	close(r.running)
	<-ctx.Done()
	close(r.stopped)
	return nil
}

func (r *fakeRouter) messages() []worker.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]worker.Message(nil), r.sent...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

// runHost starts Run in the background and returns a function that quits and waits for it.
func runHost(t *testing.T, h Host) func() {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- h.Run() }()
	var once sync.Once
	stop := func() {
		once.Do(func() {
			h.Quit()
			select {
			case err := <-done:
				if err != nil {
					t.Errorf("Run: %v", err)
				}
			case <-time.After(5 * time.Second):
				t.Error("Run did not return after Quit")
			}
		})
	}
	t.Cleanup(stop)
	return stop
}

func TestCursorToNDC(t *testing.T) {
	tests := []struct {
		x, y   float64
		wx, wy float32
	}{
		{0, 0, -1, 1},
		{400, 300, 0, 0},
		{800, 600, 1, -1},
		{200, 450, -0.5, -0.5},
	}
	for _, tt := range tests {
		x, y := CursorToNDC(tt.x, tt.y, 800, 600)
		if x != tt.wx || y != tt.wy {
			t.Errorf("CursorToNDC(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, x, y, tt.wx, tt.wy)
		}
	}
	if x, y := CursorToNDC(10, 10, 0, 600); x != 0 || y != 0 {
		t.Errorf("empty window gave (%v, %v)", x, y)
	}
}

func TestVariantForKey(t *testing.T) {
	want := map[uint32]badge.Variant{
		common.Key1: badge.VariantVotes,
		common.Key2: badge.VariantPosters,
		common.Key3: badge.VariantLikes,
		common.Key4: badge.VariantCommentators,
	}
	for key, v := range want {
		if got, ok := VariantForKey(key); !ok || got != v {
			t.Errorf("key %d = %v, %v", key, got, ok)
		}
	}
	for _, key := range []uint32{common.Key0, common.Key5, common.KeyEsc} {
		if _, ok := VariantForKey(key); ok {
			t.Errorf("key %d mapped to a badge", key)
		}
	}
}

func TestNewHostNeedsWindow(t *testing.T) {
	if _, err := NewHost(nil); err == nil {
		t.Error("nil window accepted")
	}
}

func TestRunSendsInitWithCappedPixelRatio(t *testing.T) {
	w := newFakeWindow(400, 300, 3)
	r := newFakeRouter()
	h, err := NewHost(w, WithRouter(r), WithBadge("likes"), WithNative("builtin:"), WithSpinnerOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	runHost(t, h)

	waitFor(t, "init", func() bool { return len(r.messages()) > 0 })
	msg, ok := r.messages()[0].(worker.Init)
	if !ok {
		t.Fatalf("first message %T", r.messages()[0])
	}
	if msg.BadgeName != "likes" || msg.Native != "builtin:" || msg.Width != 400 || msg.Height != 300 {
		t.Errorf("init %+v", msg)
	}
	if msg.PixelRatio != 2 {
		t.Errorf("pixel ratio %v, want the cap 2", msg.PixelRatio)
	}
	if s := msg.Surface; s == nil || s.Width() != 800 || s.Height() != 600 {
		t.Errorf("surface %v", s)
	}
}

func TestMouseGatedUntilReady(t *testing.T) {
	w := newFakeWindow(800, 600, 1)
	r := newFakeRouter()
	h, err := NewHost(w, WithRouter(r), WithSpinnerOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	runHost(t, h)
	waitFor(t, "init", func() bool { return len(r.messages()) == 1 })

	w.onCursor(800, 0)
	w.onResize(640, 480)
	msgs := r.messages()
	if len(msgs) != 2 {
		t.Fatalf("%d messages before ready, want init and resize", len(msgs))
	}
	if rs, ok := msgs[1].(worker.Resize); !ok || rs.Width != 640 || rs.Height != 480 {
		t.Errorf("second message %+v", msgs[1])
	}

	r.events <- worker.Event{Type: worker.EventReady}
	waitFor(t, "ready", h.Ready)

	w.onCursor(800, 0)
	msgs = r.messages()
	mm, ok := msgs[len(msgs)-1].(worker.MouseMove)
	if !ok || mm.X != 1 || mm.Y != 1 {
		t.Errorf("last message %+v, want mouseMove (1, 1)", msgs[len(msgs)-1])
	}
}

func TestNumberKeysSwitchBadges(t *testing.T) {
	w := newFakeWindow(800, 600, 1)
	r := newFakeRouter()
	if _, err := NewHost(w, WithRouter(r)); err != nil {
		t.Fatal(err)
	}

	w.onKey(common.Key3)
	w.onKey(common.Key9)
	w.onKey(common.Key4)
	msgs := r.messages()
	if len(msgs) != 2 {
		t.Fatalf("%d messages, want 2", len(msgs))
	}
	for i, name := range []string{"likes", "commentators"} {
		if sb, ok := msgs[i].(worker.SwitchBadge); !ok || sb.BadgeName != name {
			t.Errorf("message %d = %+v, want switch to %s", i, msgs[i], name)
		}
	}
}

func TestQuitStopsRouterAndIsIdempotent(t *testing.T) {
	w := newFakeWindow(100, 100, 1)
	r := newFakeRouter()
	h, err := NewHost(w, WithRouter(r), WithSpinnerOutput(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	stop := runHost(t, h)
	<-r.running

	h.Quit()
	h.Quit()
	stop()
	select {
	case <-r.stopped:
	default:
		t.Error("router still running after Run returned")
	}
	if w.IsRunning() {
		t.Error("window still open")
	}
	if err := h.Run(); err == nil {
		t.Error("second Run accepted")
	}
}

func TestHostDrivesRealRouter(t *testing.T) {
	w := newFakeWindow(320, 240, 1)
	h, err := NewHost(w,
		WithBadge("votes"),
		WithSpinnerOutput(io.Discard),
		WithRouterOptions(worker.WithSceneBuilder(testScene)),
	)
	if err != nil {
		t.Fatal(err)
	}
	runHost(t, h)
	waitFor(t, "ready", h.Ready)

	waitFor(t, "votes badge", func() bool {
		b := h.Router().Badge()
		return b != nil && b.Variant() == badge.VariantVotes
	})
	if err := h.Select(badge.VariantPosters); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "posters badge", func() bool {
		b := h.Router().Badge()
		return b != nil && b.Variant() == badge.VariantPosters
	})
}

func testScene(_ worker.Surface, width, height int, pixelRatio float32) (scene.Manager, error) {
	return scene.NewManager(renderertest.New(1, 1), width, height, pixelRatio, scene.WithOwnedRenderer())
}
