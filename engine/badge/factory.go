package badge

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/native"
	"github.com/Carmen-Shannon/oxy-badges/engine/particles"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

// Shape constants of the badges.
const (
	ringInnerTilt = math.Pi / 3
	ringOuterTilt = -math.Pi / 4

	quillBob    = 0.2
	orbitRadius = 0.6

	// weaverOrbitScale enlarges the knot points for the thin orbit copy.
	weaverOrbitScale = 1.3
)

// hornPath is the spline both votes horns are swept along.
var hornPath = [][3]float32{
	{0, -3, 0},
	{0, 0, 1},
	{1.5, 2, 0},
	{0, 3, -1},
	{-1.5, 4, 0},
}

// heartExtrusion is the bevelled extrusion of the likes heart.
var heartExtrusion = geometry.ExtrudeOptions{
	Depth:          1,
	Steps:          2,
	CurveSegments:  12,
	BevelEnabled:   true,
	BevelThickness: 0.5,
	BevelSize:      0.5,
	BevelSegments:  2,
}

// factory is the implementation of the Factory interface.
type factory struct {
	mu      *sync.Mutex
	module  native.Module
	rng     *rand.Rand
	weaver  native.WeaverParams
	workers int
	pool    worker.DynamicWorkerPool
	closed  bool
}

// Factory constructs badges. Geometry of independent parts is generated in parallel on a worker
// pool; the scene graph is assembled on the calling goroutine.
type Factory interface {
	// Construct builds a badge. It never returns nil and never panics: when the badge cannot be
	// built, for example because the commentators badge has no native module, an empty placeholder
	// is returned and the cause is logged.
	//
	// Parameters:
	//   - v: the variant to build
	//
	// Returns:
	//   - Badge: the new badge
	Construct(v Variant) Badge

	// ConstructNamed resolves a badge name and builds it. Unknown names yield a placeholder badge
	// together with ErrUnknownVariant.
	//
	// Parameters:
	//   - name: the badge name
	//
	// Returns:
	//   - Badge: the new badge, never nil
	//   - error: ErrUnknownVariant wrapped with the name, or nil
	ConstructNamed(name string) (Badge, error)

	// Module returns the native module used by the commentators badge, or nil.
	Module() native.Module

	// SetModule installs the native module. Badges already built are unaffected.
	//
	// Parameters:
	//   - m: the loaded module
	SetModule(m native.Module)

	// Close stops the worker pool. Construct keeps working afterwards, sequentially.
	Close()
}

var _ Factory = &factory{}

// NewFactory creates a badge factory.
//
// Parameters:
//   - options: variadic list of FactoryBuilderOption functions
//
// Returns:
//   - Factory: the factory
func NewFactory(options ...FactoryBuilderOption) Factory {
	f := &factory{
		mu:      &sync.Mutex{},
		weaver:  native.DefaultWeaverParams,
		workers: 4,
	}
	for _, opt := range options {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	f.pool = worker.NewDynamicWorkerPool(max(f.workers, 1), 16, time.Second)
	return f
}

func (f *factory) Module() native.Module {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.module
}

func (f *factory) SetModule(m native.Module) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.module = m
}

func (f *factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.pool.Stop()
}

func (f *factory) ConstructNamed(name string) (Badge, error) {
	v, err := ParseVariant(name)
	if err != nil {
		common.Logger().Warn("unknown badge requested", "name", name)
		return newPlaceholder(-1), err
	}
	return f.Construct(v), nil
}

func (f *factory) Construct(v Variant) (b Badge) {
	f.mu.Lock()
	defer f.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("badge construction panicked", "variant", v, "panic", r)
			b = newPlaceholder(v)
		}
	}()

	var err error
	switch v {
	case VariantVotes:
		b, err = f.votes()
	case VariantPosters:
		b, err = f.posters()
	case VariantLikes:
		b, err = f.likes()
	case VariantCommentators:
		b, err = f.commentators()
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownVariant, v)
	}
	if err != nil {
		common.Logger().Warn("badge replaced by placeholder", "variant", v, "err", err)
		return newPlaceholder(v)
	}
	common.Logger().Debug("badge constructed", "variant", v)
	return b
}

// parallel runs jobs on the worker pool and waits for all of them. A panicking job is reported as
// an error. After Close the jobs run on the calling goroutine.
func (f *factory) parallel(jobs ...func() error) error {
	errs := make([]error, len(jobs))
	guarded := func(i int) {
		defer func() {
			if r := recover(); r != nil {
				errs[i] = fmt.Errorf("job %d panicked: %v", i, r)
			}
		}()
		errs[i] = jobs[i]()
	}

	if f.closed {
		for i := range jobs {
			guarded(i)
		}
		return errors.Join(errs...)
	}

	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		id := i
		f.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				guarded(id)
				return nil, errs[id]
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (f *factory) votes() (Badge, error) {
	var horn, inner, outer *geometry.Geometry
	// the random source is not safe for concurrent use, so particles are drawn before fanning out
	field := particles.Create(VariantVotes.String(), f.rng)
	err := f.parallel(
		func() error {
			horn = geometry.Tube(geometry.NewCatmullRom(hornPath, false), 64, 0.25, 12)
			return nil
		},
		func() error {
			inner = geometry.Torus(2.2, 0.04, 12, 96)
			return nil
		},
		func() error {
			outer = geometry.Torus(2.8, 0.03, 12, 128)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	gold := material.NewPhysical(
		material.WithName("gilded horn"),
		material.WithColor(0xffd700),
		material.WithMetalness(0.95),
		material.WithRoughness(0.15),
		material.WithSheen(1, 0xffeec9),
	)
	b := &votesBadge{base: newBase(VariantVotes)}
	left := mesh.NewMesh("votes horn", horn, gold)
	right := mesh.NewMesh("votes horn mirrored", horn, gold)
	right.SetScale(-1, 1, 1)

	b.ringInner = mesh.NewMesh("votes ring inner", inner, gold)
	b.ringInner.SetRotation(ringInnerTilt, 0, 0)
	b.ringOuter = mesh.NewMesh("votes ring outer", outer, gold)
	b.ringOuter.SetRotation(ringOuterTilt, 0, 0)

	glow := particles.NewGlowSprite(0xffd700, 7)
	glow.SetPosition(0, 0.5, -1)

	b.root.Add(left, right, b.ringInner, b.ringOuter, field, glow)
	return b, nil
}

func (f *factory) posters() (Badge, error) {
	var body, tip, ring *geometry.Geometry
	field := particles.Create(VariantPosters.String(), f.rng)
	err := f.parallel(
		func() error {
			body = geometry.Cylinder(0.05, 0.2, 4, 32)
			return nil
		},
		func() error {
			tip = geometry.Cone(0.05, 0.4, 32)
			return nil
		},
		func() error {
			ring = geometry.Torus(0.35, 0.015, 8, 64)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	chrome := material.NewPhysical(
		material.WithName("quill"),
		material.WithColor(0xcccccc),
		material.WithMetalness(1),
		material.WithRoughness(0.2),
		material.WithIridescence(1, 1.8),
	)
	b := &postersBadge{base: newBase(VariantPosters), quill: mesh.NewGroup("posters quill")}
	quillTip := mesh.NewMesh("posters quill tip", tip, chrome)
	quillTip.SetPosition(0, -2.2, 0)
	b.quill.Add(mesh.NewMesh("posters quill body", body, chrome), quillTip)
	b.quill.SetRotation(0, 0, math.Pi/8)

	b.orbit = mesh.NewMesh("posters orbit ring", ring, chrome)

	b.ink = material.NewInk(material.WithName("ink blot"), material.WithColor(0x1a1a2e), material.WithOpacity(0.6))
	ink := mesh.NewMesh("posters ink", geometry.Plane(30, 30), b.ink)
	ink.SetPosition(0, 0, -6)

	b.root.Add(ink, b.quill, b.orbit, field)
	return b, nil
}

func (f *factory) likes() (Badge, error) {
	var heart *geometry.Geometry
	field := particles.Create(VariantLikes.String(), f.rng)
	err := f.parallel(func() error {
		heart = geometry.Extrude(particles.HeartShape(), heartExtrusion).Center().Scale(0.3, 0.3, 0.3)
		return nil
	})
	if err != nil {
		return nil, err
	}

	b := &likesBadge{
		base:      newBase(VariantLikes),
		heart:     material.NewHeart(material.WithName("heart"), material.WithColor(0xff0055)),
		particles: field,
	}
	b.root.Add(mesh.NewMesh("likes heart", heart, b.heart), field)
	return b, nil
}

func (f *factory) commentators() (Badge, error) {
	if f.module == nil {
		return nil, native.ErrNotLoaded
	}
	points, err := native.GenerateWeaverPoints(f.module, f.weaver)
	if err != nil {
		return nil, fmt.Errorf("weaver points: %w", err)
	}
	if len(points) < 4 {
		return nil, fmt.Errorf("weaver returned %d points, need at least 4", len(points))
	}

	orbitPoints := make([][3]float32, len(points))
	for i, p := range points {
		orbitPoints[i] = common.Scale3(p, weaverOrbitScale)
	}

	var knot, orbit *geometry.Geometry
	field := particles.Create(VariantCommentators.String(), f.rng)
	err = f.parallel(
		func() error {
			knot = geometry.Tube(geometry.NewCatmullRom(points, true), 128, 0.3, 16)
			return nil
		},
		func() error {
			orbit = geometry.Tube(geometry.NewCatmullRom(orbitPoints, true), 128, 0.04, 6)
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	weave := material.NewPhysical(
		material.WithName("weaver"),
		material.WithColor(0x666688),
		material.WithMetalness(0.9),
		material.WithRoughness(0.3),
		material.WithEmissive(0x4444ff, 0.2),
	)
	b := &commentatorsBadge{base: newBase(VariantCommentators)}
	b.orbit = mesh.NewMesh("commentators orbit", orbit, weave)
	b.root.Add(mesh.NewMesh("commentators weaver", knot, weave), b.orbit, field)
	return b, nil
}
