package worker

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-badges/engine/badge"
	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/native"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/renderertest"
	"github.com/Carmen-Shannon/oxy-badges/engine/scene"
)

// fakeScenes builds scenes on recording renderers.
type fakeScenes struct {
	mu        sync.Mutex
	renderers []*renderertest.Renderer
	err       error
	panicMsg  string
}

func (f *fakeScenes) build(surface Surface, width, height int, pixelRatio float32) (scene.Manager, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return nil, f.err
	}
	r := renderertest.New(1, 1)
	f.renderers = append(f.renderers, r)
	return scene.NewManager(r, width, height, pixelRatio, scene.WithOwnedRenderer())
}

func (f *fakeScenes) last() *renderertest.Renderer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.renderers) == 0 {
		return nil
	}
	return f.renderers[len(f.renderers)-1]
}

// countingLoader loads the builtin module and counts the calls.
type countingLoader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (l *countingLoader) load(locator string) (native.Module, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return native.NewBuiltin(), nil
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func newTestRouter(t *testing.T, scenes *fakeScenes, options ...RouterBuilderOption) *router {
	t.Helper()
	options = append([]RouterBuilderOption{
		WithSceneBuilder(scenes.build),
		WithFactory(badge.NewFactory(badge.WithRand(rand.New(rand.NewSource(3))), badge.WithWorkers(2))),
	}, options...)
	return NewRouter(options...).(*router)
}

// start runs the router until the test ends.
func start(t *testing.T, r *router) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx) }()
	var once sync.Once
	var runErr error
	stop = func() error {
		once.Do(func() {
			cancel()
			select {
			case runErr = <-errc:
			case <-time.After(5 * time.Second):
				runErr = errors.New("Run did not return after cancel")
			}
		})
		return runErr
	}
	t.Cleanup(func() { _ = stop() })
	return stop
}

func waitEvent(t *testing.T, r Router) Event {
	t.Helper()
	select {
	case e := <-r.Events():
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("no event from the router")
		return Event{}
	}
}

func expectNoEvent(t *testing.T, r Router, wait time.Duration) {
	t.Helper()
	select {
	case e := <-r.Events():
		t.Fatalf("unexpected event %v (%v)", e.Type, e.Err)
	case <-time.After(wait):
	}
}

// withBadge inspects the shown badge while the loop is paused.
func withBadge(r *router, fn func(b badge.Badge)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.current)
}

func namedPrefix(root mesh.Object, prefix string) []mesh.Drawable {
	var out []mesh.Drawable
	for _, d := range mesh.Drawables(root) {
		if strings.HasPrefix(d.Name(), prefix) {
			out = append(out, d)
		}
	}
	return out
}

func TestInitShowsVotesAndSignalsReadyOnce(t *testing.T) {
	scenes := &fakeScenes{}
	loader := &countingLoader{}
	r := newTestRouter(t, scenes, WithModuleLoader(loader.load), WithFrameRate(200))
	start(t, r)

	initMsg := Init{BadgeName: "votes", Width: 1024, Height: 768, PixelRatio: 2, Native: native.BuiltinLocator}
	if err := r.Send(initMsg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if e := waitEvent(t, r); e.Type != EventReady {
		t.Fatalf("first event %v (%v), want ready", e.Type, e.Err)
	}
	if r.State() != StateReady {
		t.Errorf("state %v", r.State())
	}

	withBadge(r, func(b badge.Badge) {
		if b == nil || b.Variant() != badge.VariantVotes || b.Placeholder() {
			t.Fatalf("shown badge %v", b)
		}
		horns := namedPrefix(b.Root(), "votes horn")
		if len(horns) != 2 || horns[0].Scale()[0] != -horns[1].Scale()[0] {
			t.Errorf("want two mirrored horns, got %d", len(horns))
		}
		if rings := namedPrefix(b.Root(), "votes ring"); len(rings) != 2 {
			t.Errorf("%d rings, want 2", len(rings))
		}
	})
	if w, h := scenes.last().Size(); w != 2048 || h != 1536 {
		t.Errorf("drawing buffer %dx%d, want 2048x1536", w, h)
	}

	// a second init neither reloads the module nor signals again
	if err := r.Send(initMsg); err != nil {
		t.Fatal(err)
	}
	expectNoEvent(t, r, 100*time.Millisecond)
	if loader.count() != 1 {
		t.Errorf("module loaded %d times", loader.count())
	}
	scenes.mu.Lock()
	built := len(scenes.renderers)
	scenes.mu.Unlock()
	if built != 1 {
		t.Errorf("%d scenes built", built)
	}
}

func TestMouseMoveBeforeInitIsDiscarded(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{})
	t.Cleanup(r.teardown)

	if err := r.handle(MouseMove{X: 1, Y: 1}); !errors.Is(err, ErrNotReady) {
		t.Errorf("err = %v, want ErrNotReady", err)
	}
	for _, msg := range []Message{SwitchBadge{BadgeName: "likes"}, Resize{Width: 10, Height: 10}} {
		if err := r.handle(msg); !errors.Is(err, ErrNotReady) {
			t.Errorf("%s: err = %v", msg.Kind(), err)
		}
	}
	if r.State() != StateUninitialized {
		t.Errorf("state %v", r.State())
	}
	if len(r.events) != 0 {
		t.Error("discarded messages produced events")
	}

	if err := r.handle(Init{BadgeName: "likes", Width: 100, Height: 100, PixelRatio: 1}); err != nil {
		t.Fatalf("init: %v", err)
	}
	if p := r.Scene().PointerLight().Position(); p != [3]float32{0, 0, 8} {
		t.Errorf("early mouse move reached the light: %v", p)
	}
}

func TestSwitchToUnknownBadgeGivesPlaceholder(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{})
	t.Cleanup(r.teardown)
	if err := r.handle(Init{BadgeName: "posters", Width: 64, Height: 64, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	old := r.Badge()

	if err := r.handle(SwitchBadge{BadgeName: "trophies"}); err != nil {
		t.Fatalf("unknown badge surfaced an error: %v", err)
	}
	if !old.Disposed() {
		t.Error("previous badge kept its resources")
	}
	if b := r.Badge(); b == nil || !b.Placeholder() {
		t.Errorf("shown badge %v, want a placeholder", b)
	}
	if n := len(r.Scene().Objects()); n != 1 {
		t.Errorf("%d objects attached", n)
	}
}

func TestSwitchKeepsOneBadgeAttached(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{}, WithModuleLoader(native.Load))
	t.Cleanup(r.teardown)
	if err := r.handle(Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1, Native: native.BuiltinLocator}); err != nil {
		t.Fatal(err)
	}

	var shown []badge.Badge
	for _, name := range []string{"posters", "likes", "commentators", "votes", "likes"} {
		before := r.Badge()
		if err := r.handle(SwitchBadge{BadgeName: name}); err != nil {
			t.Fatal(err)
		}
		if !before.Disposed() {
			t.Fatalf("switch to %s left the previous badge alive", name)
		}
		b := r.Badge()
		if b.Variant().String() != name || b.Placeholder() {
			t.Fatalf("switch to %s showed %v", name, b.Variant())
		}
		shown = append(shown, b)
		if objs := r.Scene().Objects(); len(objs) != 1 || objs[0] != b.Root() {
			t.Fatalf("scene holds %d objects after switching to %s", len(objs), name)
		}
	}
	for _, b := range shown[:len(shown)-1] {
		if !b.Disposed() {
			t.Errorf("%v still resident", b.Variant())
		}
	}
}

func TestSwitchingReleasesGlowTextures(t *testing.T) {
	scenes := &fakeScenes{}
	r := newTestRouter(t, scenes)
	stopped := false
	t.Cleanup(func() {
		if !stopped {
			r.teardown()
		}
	})
	if err := r.handle(Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	rr := scenes.last()
	created, live := rr.Textures()
	if created == 0 || live != created {
		t.Fatalf("votes created %d textures, %d live", created, live)
	}
	perVotes := created

	for i, name := range []string{"likes", "votes", "likes"} {
		if err := r.handle(SwitchBadge{BadgeName: name}); err != nil {
			t.Fatal(err)
		}
		created, live = rr.Textures()
		want := 0
		if name == "votes" {
			want = perVotes
		}
		if live != want {
			t.Errorf("step %d (%s): %d live textures of %d created, want %d", i, name, live, created, want)
		}
	}
	if created != 2*perVotes {
		t.Errorf("%d textures created over two votes builds, want %d", created, 2*perVotes)
	}

	r.teardown()
	stopped = true
	if _, live := rr.Textures(); live != 0 {
		t.Errorf("%d textures live after teardown", live)
	}
}

func TestInitFailureReportsErrorAndAllowsRetry(t *testing.T) {
	scenes := &fakeScenes{err: errors.New("no adapter")}
	r := newTestRouter(t, scenes)
	t.Cleanup(r.teardown)

	initMsg := Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1}
	if err := r.handle(initMsg); err == nil {
		t.Fatal("init succeeded without a scene")
	}
	if e := <-r.events; e.Type != EventError || !strings.Contains(e.Err.Error(), "no adapter") {
		t.Errorf("event %v (%v)", e.Type, e.Err)
	}
	if r.State() != StateUninitialized {
		t.Errorf("state %v after failed init", r.State())
	}

	scenes.mu.Lock()
	scenes.err = nil
	scenes.mu.Unlock()
	if err := r.handle(initMsg); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if e := <-r.events; e.Type != EventReady {
		t.Errorf("event %v after retry", e.Type)
	}
}

func TestInitRejectsEmptyViewport(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{})
	t.Cleanup(r.teardown)
	if err := r.handle(Init{BadgeName: "votes", Width: 0, Height: 10}); err == nil {
		t.Fatal("zero width accepted")
	}
	if e := <-r.events; e.Type != EventError {
		t.Errorf("event %v", e.Type)
	}
}

func TestModuleLoadFailureBlocksReady(t *testing.T) {
	loader := &countingLoader{err: native.ErrSymbol}
	r := newTestRouter(t, &fakeScenes{}, WithModuleLoader(loader.load))
	t.Cleanup(r.teardown)

	err := r.handle(Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1, Native: "/missing/weaver.so"})
	if !errors.Is(err, native.ErrSymbol) {
		t.Errorf("err = %v", err)
	}
	if e := <-r.events; e.Type != EventError {
		t.Errorf("event %v", e.Type)
	}
	if r.readySent {
		t.Error("ready sent after a failed module load")
	}
}

func TestCommentatorsWithoutNativeIsPlaceholder(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{})
	t.Cleanup(r.teardown)
	if err := r.handle(Init{BadgeName: "commentators", Width: 64, Height: 64, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	if b := r.Badge(); !b.Placeholder() || b.Variant() != badge.VariantCommentators {
		t.Errorf("badge %v placeholder=%v", b.Variant(), b.Placeholder())
	}
	if r.State() != StateReady {
		t.Error("missing module blocked the router")
	}
}

type pingMessage struct{}

func (pingMessage) Kind() string { return "ping" }

func TestUnknownMessageIsIgnored(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{})
	t.Cleanup(r.teardown)
	if err := r.handle(Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	<-r.events
	if err := r.handle(pingMessage{}); !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("err = %v", err)
	}
	if r.State() != StateReady || len(r.events) != 0 {
		t.Error("unknown message disturbed the router")
	}
}

func TestResizeAndMouseMoveReachTheScene(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{})
	t.Cleanup(r.teardown)
	if err := r.handle(Init{BadgeName: "likes", Width: 800, Height: 600, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	if err := r.handle(Resize{Width: 400, Height: 400}); err != nil {
		t.Fatal(err)
	}
	if w, h := r.Scene().Size(); w != 400 || h != 400 {
		t.Errorf("scene %dx%d", w, h)
	}
	if err := r.handle(MouseMove{X: 1, Y: 0}); err != nil {
		t.Fatal(err)
	}
	if p := r.Scene().PointerLight().Position(); p[0] <= 0 || p[2] != 8 {
		t.Errorf("light at %v after moving right", p)
	}
}

func TestPanicDuringInitBecomesErrorEvent(t *testing.T) {
	r := newTestRouter(t, &fakeScenes{panicMsg: "device lost"})
	t.Cleanup(r.teardown)
	err := r.handle(Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1})
	if err == nil || !strings.Contains(err.Error(), "device lost") {
		t.Errorf("err = %v", err)
	}
	if e := <-r.events; e.Type != EventError {
		t.Errorf("event %v", e.Type)
	}
	if r.State() != StateUninitialized {
		t.Errorf("state %v", r.State())
	}
}

func TestFramesRenderAfterReady(t *testing.T) {
	scenes := &fakeScenes{}
	r := newTestRouter(t, scenes, WithFrameRate(500))
	start(t, r)
	if err := r.Send(Init{BadgeName: "votes", Width: 64, Height: 64, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	if e := waitEvent(t, r); e.Type != EventReady {
		t.Fatalf("event %v (%v)", e.Type, e.Err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, presented := scenes.last().Frames(); presented >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("loop presented fewer than 3 frames")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRunReleasesOnCancel(t *testing.T) {
	scenes := &fakeScenes{}
	r := newTestRouter(t, scenes)
	stop := start(t, r)
	if err := r.Send(Init{BadgeName: "posters", Width: 64, Height: 64, PixelRatio: 1}); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, r)
	shown := r.Badge()

	if err := stop(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !shown.Disposed() {
		t.Error("badge survived teardown")
	}
	if !scenes.last().Released() {
		t.Error("renderer survived teardown")
	}
	if r.State() != StateUninitialized || r.Scene() != nil {
		t.Error("router still holds the scene")
	}
	if err := r.Send(MouseMove{}); !errors.Is(err, ErrStopped) {
		t.Errorf("Send after stop: %v", err)
	}
	if err := r.Run(context.Background()); err == nil {
		t.Error("second Run accepted")
	}
}

func TestWGPUSceneBuilderNeedsSurface(t *testing.T) {
	if _, err := WGPUSceneBuilder(nil)(nil, 10, 10, 1); err == nil {
		t.Error("nil surface accepted")
	}
}
