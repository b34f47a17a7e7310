package badge

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/native"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

func newTestFactory(t *testing.T, options ...FactoryBuilderOption) Factory {
	t.Helper()
	options = append([]FactoryBuilderOption{WithRand(rand.New(rand.NewSource(7))), WithWorkers(2)}, options...)
	f := NewFactory(options...)
	t.Cleanup(f.Close)
	return f
}

func TestParseVariant(t *testing.T) {
	cases := []struct {
		name    string
		want    Variant
		wantErr bool
	}{
		{"votes", VariantVotes, false},
		{"Posters", VariantPosters, false},
		{" likes ", VariantLikes, false},
		{"commentators", VariantCommentators, false},
		{"trophies", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVariant(tc.name)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownVariant) {
					t.Errorf("err = %v, want ErrUnknownVariant", err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Errorf("ParseVariant(%q) = %v, %v", tc.name, got, err)
			}
		})
	}
}

func TestLookupCoversEveryVariant(t *testing.T) {
	for _, v := range Variants {
		d, ok := Lookup(v)
		if !ok || d.Title == "" || d.Description == "" {
			t.Errorf("%v has no details", v)
		}
	}
	if _, ok := Lookup(Variant(42)); ok {
		t.Error("Lookup found details for an unknown variant")
	}
}

func TestConstructEveryVariant(t *testing.T) {
	f := newTestFactory(t, WithModule(native.NewBuiltin()))
	light := [3]float32{1, 2, 8}
	for _, v := range Variants {
		t.Run(v.String(), func(t *testing.T) {
			b := f.Construct(v)
			if b == nil {
				t.Fatal("Construct returned nil")
			}
			if b.Placeholder() {
				t.Fatal("Construct returned a placeholder")
			}
			if b.Variant() != v {
				t.Errorf("variant %v", b.Variant())
			}
			if len(mesh.Drawables(b.Root())) == 0 {
				t.Error("badge has nothing to draw")
			}
			b.Update(0, nil)
			b.Update(1.5, &light)
		})
	}
}

// meshesNamed counts the drawables whose name starts with prefix.
func meshesNamed(root mesh.Object, prefix string) []mesh.Drawable {
	var out []mesh.Drawable
	for _, d := range mesh.Drawables(root) {
		if strings.HasPrefix(d.Name(), prefix) {
			out = append(out, d)
		}
	}
	return out
}

func TestVotesHasMirroredHornsAndTwoRings(t *testing.T) {
	b := newTestFactory(t).Construct(VariantVotes)

	horns := meshesNamed(b.Root(), "votes horn")
	if len(horns) != 2 {
		t.Fatalf("%d horns, want 2", len(horns))
	}
	if horns[0].Geometry() != horns[1].Geometry() {
		t.Error("horns do not share the tube")
	}
	if horns[0].Scale()[0]*horns[1].Scale()[0] != -1 {
		t.Errorf("horns are not mirrored: %v %v", horns[0].Scale(), horns[1].Scale())
	}
	if got := len(meshesNamed(b.Root(), "votes ring")); got != 2 {
		t.Errorf("%d rings, want 2", got)
	}

	var points *mesh.Points
	var glow *mesh.Sprite
	b.Root().Traverse(func(o mesh.Object) {
		switch d := o.(type) {
		case *mesh.Points:
			points = d
		case *mesh.Sprite:
			glow = d
		}
	})
	if points == nil || points.Count() != 200 {
		t.Error("votes particle field missing")
	}
	if glow == nil || glow.Material().Blending() != material.BlendingAdditive {
		t.Error("votes glow billboard missing")
	}

	// the group turns one way while the rings turn back at their own rates
	b.Update(10, nil)
	if rot := b.Root().Rotation(); math.Abs(float64(rot[1]-2)) > 1e-5 {
		t.Errorf("group rotation %v, want y = 2", rot)
	}
	rings := meshesNamed(b.Root(), "votes ring")
	r0, r1 := rings[0].Rotation()[1], rings[1].Rotation()[1]
	if r0 >= 0 || r1 >= 0 || r0 == r1 {
		t.Errorf("ring rotations %f and %f must be negative and distinct", r0, r1)
	}
}

func TestLikesUpdateFollowsLight(t *testing.T) {
	b := newTestFactory(t).Construct(VariantLikes)
	hearts := meshesNamed(b.Root(), "likes heart")
	if len(hearts) != 1 {
		t.Fatalf("%d hearts", len(hearts))
	}
	mat := hearts[0].Material()
	if mat.Kind() != material.KindHeart {
		t.Fatalf("heart shaded by %v", mat.Kind())
	}
	if mat.LightPosition() != [3]float32{0, 0, 8} {
		t.Errorf("initial light %v", mat.LightPosition())
	}

	light := [3]float32{-2, 1, 8}
	b.Update(math.Pi/4, &light)
	if mat.LightPosition() != light {
		t.Errorf("light %v, want %v", mat.LightPosition(), light)
	}
	if math.Abs(float64(mat.Time())-math.Pi/4) > 1e-6 {
		t.Errorf("time %f", mat.Time())
	}

	// sin(2t) peaks at t = pi/4
	var cloud mesh.Object
	for _, c := range b.Root().Children() {
		if strings.HasSuffix(c.Name(), "particles") {
			cloud = c
		}
	}
	if cloud == nil {
		t.Fatal("likes particles missing")
	}
	if s := cloud.Scale(); math.Abs(float64(s[0]-1.05)) > 1e-5 || s[0] != s[2] {
		t.Errorf("particle scale %v, want uniform 1.05", s)
	}

	// a nil light keeps the last one
	b.Update(1, nil)
	if mat.LightPosition() != light {
		t.Error("nil light reset the heart light")
	}
}

func TestCommentatorsWithoutModuleIsPlaceholder(t *testing.T) {
	f := newTestFactory(t)
	b := f.Construct(VariantCommentators)
	if b == nil || !b.Placeholder() {
		t.Fatalf("got %v, want a placeholder", b)
	}
	if len(b.Root().Children()) != 0 {
		t.Error("placeholder has children")
	}
	b.Update(1, nil)
	b.Dispose()

	m := native.NewBuiltin()
	f.SetModule(m)
	if f.Module() != native.Module(m) {
		t.Error("SetModule did not install the module")
	}
	if b := f.Construct(VariantCommentators); b.Placeholder() {
		t.Error("commentators still a placeholder after SetModule")
	}
}

func TestCommentatorsReleasesNativeMemory(t *testing.T) {
	m := native.NewBuiltin()
	f := newTestFactory(t, WithModule(m))
	for range 3 {
		f.Construct(VariantCommentators).Dispose()
	}
	allocs, frees := m.Stats()
	if allocs != 6 || frees != 6 {
		t.Errorf("allocs %d, frees %d, want 6 each", allocs, frees)
	}
	if m.Live() != 0 {
		t.Errorf("%d regions leaked", m.Live())
	}
}

func TestCommentatorsDegenerateKnotIsPlaceholder(t *testing.T) {
	f := newTestFactory(t, WithModule(native.NewBuiltin()), WithWeaverParams(native.WeaverParams{Detail: 0, Radius: 1, P: 2, Q: 3}))
	if b := f.Construct(VariantCommentators); !b.Placeholder() {
		t.Error("a one point knot was built into a tube")
	}
}

func TestConstructNamedUnknown(t *testing.T) {
	f := newTestFactory(t)
	b, err := f.ConstructNamed("trophies")
	if !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("err = %v", err)
	}
	if b == nil || !b.Placeholder() {
		t.Error("unknown name did not yield a placeholder")
	}

	b, err = f.ConstructNamed("posters")
	if err != nil || b.Variant() != VariantPosters || b.Placeholder() {
		t.Errorf("ConstructNamed(posters) = %v, %v", b, err)
	}
}

func TestSwitchingKeepsOneBadgeResident(t *testing.T) {
	f := newTestFactory(t, WithModule(native.NewBuiltin()))
	var built []Badge
	var current Badge
	for i := range 12 {
		next := f.Construct(Variants[i%len(Variants)])
		if current != nil {
			current.Dispose()
		}
		current = next
		built = append(built, next)

		resident := 0
		for _, b := range built {
			if !b.Disposed() {
				resident++
			}
		}
		if resident != 1 {
			t.Fatalf("switch %d: %d badges resident", i, resident)
		}
	}

	for _, b := range built[:len(built)-1] {
		for _, d := range mesh.Drawables(b.Root()) {
			if !d.Disposed() || !d.Provider().Released() || !d.Material().Disposed() {
				t.Fatalf("%s of %v kept resources after dispose", d.Name(), b.Variant())
			}
		}
	}
	current.Dispose()
	current.Dispose()
}

func TestConstructAfterClose(t *testing.T) {
	f := NewFactory(WithRand(rand.New(rand.NewSource(1))))
	f.Close()
	f.Close()
	if b := f.Construct(VariantPosters); b.Placeholder() {
		t.Error("Construct after Close returned a placeholder")
	}
}

func TestParallelReportsPanics(t *testing.T) {
	f := NewFactory().(*factory)
	defer f.Close()
	ran := false
	err := f.parallel(
		func() error { ran = true; return nil },
		func() error { panic("boom") },
	)
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want the panic reported", err)
	}
	if !ran {
		t.Error("healthy job did not run")
	}
}
