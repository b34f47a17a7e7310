package scene

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/particles"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/postprocess"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/renderertest"
)

func newTestManager(t *testing.T, width, height int, pixelRatio float32, options ...ManagerBuilderOption) (Manager, *renderertest.Renderer) {
	t.Helper()
	r := renderertest.New(1, 1)
	m, err := NewManager(r, width, height, pixelRatio, options...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	t.Cleanup(m.Release)
	return m, r
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

// sceneDraws returns the mesh draws recorded in the scene pass.
func sceneDraws(r *renderertest.Renderer) []renderertest.Draw {
	var out []renderertest.Draw
	for _, d := range r.Draws() {
		if d.Pass == "scene" {
			out = append(out, d)
		}
	}
	return out
}

func TestNewManagerSizesToDrawingBuffer(t *testing.T) {
	m, r := newTestManager(t, 400, 300, 2)
	if w, h := r.Size(); w != 800 || h != 600 {
		t.Errorf("renderer %dx%d, want 800x600", w, h)
	}
	if w, h := m.Composer().Size(); w != 800 || h != 600 {
		t.Errorf("composer %dx%d, want 800x600", w, h)
	}
	if w, h := m.Size(); w != 400 || h != 300 {
		t.Errorf("logical size %dx%d", w, h)
	}
	if !near(m.Camera().Aspect(), 4.0/3.0, 1e-6) {
		t.Errorf("aspect %f", m.Camera().Aspect())
	}
	if m.Camera().BindGroupProvider() == nil {
		t.Error("camera has no frame provider")
	}
	if p := m.PointerLight().Position(); p != [3]float32{0, 0, 8} {
		t.Errorf("pointer light starts at %v", p)
	}
}

func TestPixelRatioIsClamped(t *testing.T) {
	cases := []struct {
		in, want float32
	}{
		{3, 2},
		{2, 2},
		{1.5, 1.5},
		{0.5, 1},
		{0, 1},
	}
	for _, tc := range cases {
		m, _ := newTestManager(t, 10, 10, tc.in)
		if got := m.PixelRatio(); got != tc.want {
			t.Errorf("pixel ratio %v gives %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewManagerRejectsEmptySize(t *testing.T) {
	if _, err := NewManager(renderertest.New(1, 1), 0, 10, 1); err == nil {
		t.Error("zero width accepted")
	}
}

func TestChainOrder(t *testing.T) {
	m, _ := newTestManager(t, 64, 64, 1)
	passes := m.Composer().Passes()
	if len(passes) != 5 {
		t.Fatalf("%d passes, want 5", len(passes))
	}
	checks := []func(postprocess.Pass) bool{
		func(p postprocess.Pass) bool { _, ok := p.(postprocess.RenderPass); return ok },
		func(p postprocess.Pass) bool { _, ok := p.(postprocess.BloomPass); return ok },
		func(p postprocess.Pass) bool { _, ok := p.(postprocess.ChromaticAberrationPass); return ok },
		func(p postprocess.Pass) bool { _, ok := p.(postprocess.FXAAPass); return ok },
		func(p postprocess.Pass) bool { _, ok := p.(postprocess.OutputPass); return ok },
	}
	for i, check := range checks {
		if !check(passes[i]) {
			t.Errorf("pass %d is %T", i, passes[i])
		}
	}

	withRays, _ := newTestManager(t, 64, 64, 1, WithGodRays(postprocess.DefaultGodRaysConfig))
	passes = withRays.Composer().Passes()
	if len(passes) != 6 {
		t.Fatalf("%d passes with god rays, want 6", len(passes))
	}
	if _, ok := passes[2].(postprocess.GodRaysPass); !ok {
		t.Errorf("pass 2 is %T, want god rays after bloom", passes[2])
	}
}

func TestRenderDrawsOpaqueBeforeTransparent(t *testing.T) {
	m, r := newTestManager(t, 64, 64, 1)

	root := mesh.NewGroup("badge")
	ink := mesh.NewMesh("ink", geometry.Plane(2, 2), material.NewInk())
	glow := particles.NewGlowSprite(0xffffff, 2)
	solid := mesh.NewMesh("solid", geometry.Plane(1, 1), material.NewPhysical())
	root.Add(ink, glow, solid)
	if err := m.Add(root); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	draws := sceneDraws(r)
	if len(draws) != 3 {
		t.Fatalf("%d scene draws, want 3", len(draws))
	}
	if draws[0].Mesh != solid.Provider() {
		t.Errorf("first draw %s, want the opaque mesh", draws[0].Mesh.Label())
	}
	if draws[1].Mesh != ink.Provider() || draws[2].Mesh != glow.Provider() {
		t.Error("transparent drawables lost their attach order")
	}
	if begun, presented := r.Frames(); begun != 1 || presented != 1 {
		t.Errorf("frames begun %d presented %d", begun, presented)
	}
}

func TestRenderWritesFrameAndObjectUniforms(t *testing.T) {
	m, r := newTestManager(t, 64, 64, 1)
	a := mesh.NewMesh("a", geometry.Plane(1, 1), material.NewPhysical())
	b := mesh.NewMesh("b", geometry.Plane(1, 1), material.NewPhysical())
	if err := m.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(b); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if err := m.Render(); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	frame := m.Camera().BindGroupProvider()
	counts := map[string]int{}
	for _, w := range r.Writes() {
		switch {
		case w.Provider == frame && w.Binding == cameraBinding:
			counts["camera"]++
		case w.Provider == frame && w.Binding == lightsBinding:
			counts["lights"]++
		case w.Provider == a.Provider():
			counts["a"]++
		case w.Provider == b.Provider():
			counts["b"]++
		}
	}
	for _, k := range []string{"camera", "lights", "a", "b"} {
		if counts[k] != 2 {
			t.Errorf("%s written %d times over two frames, want 2", k, counts[k])
		}
	}
}

func TestHiddenAndRemovedObjectsAreNotDrawn(t *testing.T) {
	m, r := newTestManager(t, 64, 64, 1)
	shown := mesh.NewMesh("shown", geometry.Plane(1, 1), material.NewPhysical())
	hidden := mesh.NewGroup("hidden")
	hidden.Add(mesh.NewMesh("inside", geometry.Plane(1, 1), material.NewPhysical()))
	hidden.SetVisible(false)
	for _, o := range []mesh.Object{shown, hidden} {
		if err := m.Add(o); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Render(); err != nil {
		t.Fatal(err)
	}
	if n := len(sceneDraws(r)); n != 1 {
		t.Errorf("%d draws, want only the visible mesh", n)
	}

	if !m.Remove(shown) {
		t.Fatal("Remove did not find the mesh")
	}
	if m.Remove(shown) {
		t.Error("second Remove found the mesh again")
	}
	if shown.Provider().Released() {
		t.Error("Remove released resources the owner still holds")
	}
	r.Reset()
	if err := m.Render(); err != nil {
		t.Fatal(err)
	}
	if n := len(sceneDraws(r)); n != 0 {
		t.Errorf("%d draws after remove", n)
	}
	if len(m.Objects()) != 1 {
		t.Errorf("%d objects attached", len(m.Objects()))
	}
}

func TestObjectsOutsideTheViewAreCulled(t *testing.T) {
	m, r := newTestManager(t, 64, 64, 1)
	inside := mesh.NewMesh("inside", geometry.Plane(1, 1), material.NewPhysical())
	left := mesh.NewMesh("far left", geometry.Plane(1, 1), material.NewPhysical())
	left.SetPosition(-500, 0, 0)
	behind := mesh.NewMesh("behind", geometry.Plane(1, 1), material.NewPhysical())
	behind.SetPosition(0, 0, 40)
	for _, o := range []mesh.Object{inside, left, behind} {
		if err := m.Add(o); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.Render(); err != nil {
		t.Fatal(err)
	}
	draws := sceneDraws(r)
	if len(draws) != 1 || draws[0].Mesh != inside.Provider() {
		t.Errorf("%d draws, want only the mesh in view", len(draws))
	}

	// a large object straddling the edge stays in
	left.SetScale(1200, 1, 1)
	r.Reset()
	if err := m.Render(); err != nil {
		t.Fatal(err)
	}
	if n := len(sceneDraws(r)); n != 2 {
		t.Errorf("%d draws after scaling into view, want 2", n)
	}
}

func TestAddUploadsOnceAndSharesPipelines(t *testing.T) {
	m, r := newTestManager(t, 64, 64, 1)
	mat := material.NewPhysical()
	root := mesh.NewGroup("pair")
	root.Add(
		mesh.NewMesh("left", geometry.Plane(1, 1), mat),
		mesh.NewMesh("right", geometry.Plane(1, 1), material.NewPhysical()),
	)
	before := len(r.Pipelines())
	if err := m.Add(root); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(root); err != nil {
		t.Fatal(err)
	}
	if n := len(r.Meshes()); n != 2 {
		t.Errorf("%d mesh uploads, want 2", n)
	}
	if got := len(r.Pipelines()) - before; got != 1 {
		t.Errorf("%d material pipelines registered, want 1", got)
	}
	if len(m.Objects()) != 1 {
		t.Errorf("re-adding duplicated the subtree: %d objects", len(m.Objects()))
	}
}

func TestAddDisposedDrawableFails(t *testing.T) {
	m, _ := newTestManager(t, 64, 64, 1)
	d := mesh.NewMesh("gone", geometry.Plane(1, 1), material.NewPhysical())
	d.Dispose()
	if err := m.Add(d); err == nil {
		t.Error("disposed mesh was uploaded")
	}
}

func TestResizeSameSizeIsNoop(t *testing.T) {
	m, r := newTestManager(t, 800, 600, 1)
	resizes := len(r.Resizes())
	targets := len(r.Targets())
	aspect := m.Camera().Aspect()

	for range 2 {
		if err := m.Resize(800, 600); err != nil {
			t.Fatal(err)
		}
	}
	if len(r.Resizes()) != resizes || len(r.Targets()) != targets {
		t.Error("same size resize touched the renderer")
	}
	if m.Camera().Aspect() != aspect {
		t.Error("same size resize changed the aspect")
	}
}

func TestResizeUpdatesCameraAndPasses(t *testing.T) {
	m, r := newTestManager(t, 800, 600, 2)
	if err := m.Resize(500, 250); err != nil {
		t.Fatal(err)
	}
	if !near(m.Camera().Aspect(), 2, 1e-6) {
		t.Errorf("aspect %f, want 2", m.Camera().Aspect())
	}
	if w, h := r.Size(); w != 1000 || h != 500 {
		t.Errorf("renderer %dx%d, want 1000x500", w, h)
	}
	for _, p := range m.Composer().Passes() {
		if f, ok := p.(postprocess.FXAAPass); ok {
			if got := f.Params().Resolution; got[0] != 1.0/1000 || got[1] != 1.0/500 {
				t.Errorf("fxaa resolution %v", got)
			}
		}
	}
	if err := m.Resize(-1, 10); err == nil {
		t.Error("negative size accepted")
	}
	// a frame after resizing must pass the depth size check of the fake
	if err := m.Render(); err != nil {
		t.Fatalf("Render after resize: %v", err)
	}
}

func TestPointerLightStepsTenPercent(t *testing.T) {
	m, _ := newTestManager(t, 800, 600, 1)
	// the ray from z = 12 through the pointer crosses z = 8 after 4 units
	half := float32(math.Tan(25 * math.Pi / 180))
	target := [3]float32{0.5 * half * 4.0 / 3.0 * 4, -0.5 * half * 4, 8}

	p := m.UpdatePointerLight(0.5, -0.5)
	for i, want := range [3]float32{target[0] * 0.1, target[1] * 0.1, 8} {
		if !near(p[i], want, 1e-3) {
			t.Fatalf("first step %v, want %v", p, [3]float32{target[0] * 0.1, target[1] * 0.1, 8})
		}
	}
}

func TestPointerLightConvergesWithoutOvershoot(t *testing.T) {
	m, _ := newTestManager(t, 800, 600, 1)
	var last [3]float32
	for range 300 {
		next := m.UpdatePointerLight(1, 1)
		if next[0] < last[0] || next[1] < last[1] {
			t.Fatalf("light moved backwards from %v to %v", last, next)
		}
		last = next
	}
	converged := m.UpdatePointerLight(1, 1)
	for i := range 3 {
		if !near(converged[i], last[i], 1e-4) {
			t.Fatalf("light still moving: %v then %v", last, converged)
		}
	}
	if !near(converged[2], 8, 1e-4) {
		t.Errorf("light left its plane: z = %f", converged[2])
	}

	// coordinates past the edge are clamped to it
	beyond := m.UpdatePointerLight(5, 5)
	for i := range 3 {
		if !near(beyond[i], converged[i], 1e-3) {
			t.Errorf("out of range pointer moved the light to %v", beyond)
		}
	}
}

func TestPointerSmoothingOption(t *testing.T) {
	m, _ := newTestManager(t, 800, 600, 1, WithPointerSmoothing(1))
	snapped := m.UpdatePointerLight(0.25, 0.25)
	again := m.UpdatePointerLight(0.25, 0.25)
	for i := range 3 {
		if !near(snapped[i], again[i], 1e-5) {
			t.Fatalf("smoothing 1 should jump straight to the target: %v then %v", snapped, again)
		}
	}

	ignored, _ := newTestManager(t, 800, 600, 1, WithPointerSmoothing(0))
	p := ignored.UpdatePointerLight(1, 0)
	if p[0] <= 0 || near(p[0], snapped[0], 1e-3) {
		t.Errorf("invalid smoothing was not ignored: %v", p)
	}
}

func TestShaderValidationOption(t *testing.T) {
	off, _ := newTestManager(t, 64, 64, 1)
	on, _ := newTestManager(t, 64, 64, 1, WithShaderValidation(true))
	if off.(*manager).validateShaders || !on.(*manager).validateShaders {
		t.Errorf("validation off=%v on=%v", off.(*manager).validateShaders, on.(*manager).validateShaders)
	}
}

func TestElapsedUsesClock(t *testing.T) {
	now := time.Unix(100, 0)
	m, _ := newTestManager(t, 64, 64, 1, WithClock(func() time.Time { return now }))
	now = now.Add(1500 * time.Millisecond)
	if got := m.Elapsed(); got != 1.5 {
		t.Errorf("elapsed %f, want 1.5", got)
	}
}

func TestRenderFailsWhenFrameCannotBegin(t *testing.T) {
	m, r := newTestManager(t, 64, 64, 1)
	lost := errors.New("surface lost")
	r.FailBeginFrame = lost
	if err := m.Render(); !errors.Is(err, lost) {
		t.Errorf("err = %v, want the surface error", err)
	}
	if _, presented := r.Frames(); presented != 0 {
		t.Error("presented a frame that never began")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := renderertest.New(1, 1)
	m, err := NewManager(r, 64, 64, 1)
	if err != nil {
		t.Fatal(err)
	}
	m.Release()
	m.Release()
	if !m.Camera().BindGroupProvider().Released() {
		t.Error("frame uniforms survived Release")
	}
	for _, target := range r.Targets() {
		if !target.Released() {
			t.Errorf("target %s survived Release", target.Label())
		}
	}
	if err := m.Render(); !errors.Is(err, ErrReleased) {
		t.Errorf("Render after Release: %v", err)
	}
	if err := m.Add(mesh.NewGroup("late")); !errors.Is(err, ErrReleased) {
		t.Errorf("Add after Release: %v", err)
	}
}

func TestOwnedRendererIsReleased(t *testing.T) {
	r := renderertest.New(1, 1)
	m, err := NewManager(r, 64, 64, 1, WithOwnedRenderer())
	if err != nil {
		t.Fatal(err)
	}
	m.Release()
	if !r.Released() {
		t.Error("owned renderer survived Release")
	}

	shared := renderertest.New(1, 1)
	m, err = NewManager(shared, 64, 64, 1)
	if err != nil {
		t.Fatal(err)
	}
	m.Release()
	if shared.Released() {
		t.Error("shared renderer was released")
	}
}
