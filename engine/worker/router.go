// Package worker runs the badge renderer on its own goroutine. The host talks to it only through
// messages and listens for events; the scene graph, the GPU device and the frame loop never leave
// the router goroutine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/badge"
	"github.com/Carmen-Shannon/oxy-badges/engine/native"
	"github.com/Carmen-Shannon/oxy-badges/engine/profiler"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/scene"
)

var (
	// ErrNotReady is reported for commands that arrive before Init has completed.
	ErrNotReady = errors.New("router not ready")

	// ErrStopped is returned by Send once Run has returned.
	ErrStopped = errors.New("router stopped")

	// ErrUnknownMessage is reported for message kinds the router does not handle.
	ErrUnknownMessage = errors.New("unknown message")
)

// State is the lifecycle state of the router.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SceneBuilder creates the scene bound to the surface of an Init message. The manager it returns
// is released when the router stops.
type SceneBuilder func(surface Surface, width, height int, pixelRatio float32) (scene.Manager, error)

// ModuleLoader loads the native module from a locator.
type ModuleLoader func(locator string) (native.Module, error)

// router is the implementation of the Router interface.
type router struct {
	mu *sync.Mutex

	inbox  chan Message
	events chan Event
	done   chan struct{}

	state   State
	factory badge.Factory
	scene   scene.Manager
	current badge.Badge
	module  native.Module

	buildScene    SceneBuilder
	loadModule    ModuleLoader
	sceneOptions  []scene.ManagerBuilderOption
	rendererOpts  []renderer.RendererBuilderOption
	frameInterval time.Duration
	profiler      *profiler.Profiler

	readySent     bool
	lastRenderErr string
	runOnce       sync.Once
}

// Router owns the scene, the badge factory and the frame loop. Messages are handled one at a
// time on the Run goroutine, between frames, so a frame never sees a half built badge.
type Router interface {
	// Send queues a message. It blocks while the inbox is full.
	//
	// Parameters:
	//   - msg: the message
	//
	// Returns:
	//   - error: ErrStopped if Run has returned
	Send(msg Message) error

	// Events returns the channel the router reports readiness and failures on.
	Events() <-chan Event

	// Run handles messages and renders frames until ctx is cancelled, then releases the badge,
	// the scene and the native module. It must be called once.
	//
	// Parameters:
	//   - ctx: cancelled to stop the router
	//
	// Returns:
	//   - error: an error if Run was called twice
	Run(ctx context.Context) error

	// State returns the lifecycle state.
	State() State

	// Badge returns the shown badge, or nil before Init.
	Badge() badge.Badge

	// Scene returns the scene, or nil before Init.
	Scene() scene.Manager
}

var _ Router = &router{}

// NewRouter creates a router in the Uninitialized state.
//
// Parameters:
//   - options: variadic list of RouterBuilderOption functions
//
// Returns:
//   - Router: the router
func NewRouter(options ...RouterBuilderOption) Router {
	r := &router{
		mu:            &sync.Mutex{},
		inbox:         make(chan Message, 64),
		events:        make(chan Event, 8),
		done:          make(chan struct{}),
		loadModule:    native.Load,
		frameInterval: time.Second / 60,
	}
	for _, opt := range options {
		opt(r)
	}
	if r.buildScene == nil {
		r.buildScene = WGPUSceneBuilder(r.rendererOpts, r.sceneOptions...)
	}
	if r.factory == nil {
		r.factory = badge.NewFactory()
	}
	return r
}

// WGPUSceneBuilder returns the SceneBuilder that creates a WebGPU renderer on the surface. The
// manager owns the renderer.
//
// Parameters:
//   - rendererOptions: options passed on to renderer.NewRenderer
//   - options: options passed on to scene.NewManager
//
// Returns:
//   - SceneBuilder: the builder
func WGPUSceneBuilder(rendererOptions []renderer.RendererBuilderOption, options ...scene.ManagerBuilderOption) SceneBuilder {
	return func(surface Surface, width, height int, pixelRatio float32) (scene.Manager, error) {
		if surface == nil {
			return nil, errors.New("init without a drawing surface")
		}
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, surface, rendererOptions...)
		if err != nil {
			return nil, err
		}
		m, err := scene.NewManager(r, width, height, pixelRatio, append(options, scene.WithOwnedRenderer())...)
		if err != nil {
			r.Release()
			return nil, err
		}
		return m, nil
	}
}

func (r *router) Send(msg Message) error {
	select {
	case <-r.done:
		return ErrStopped
	default:
	}
	select {
	case r.inbox <- msg:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

func (r *router) Events() <-chan Event {
	return r.events
}

func (r *router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *router) Badge() badge.Badge {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *router) Scene() scene.Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scene
}

func (r *router) Run(ctx context.Context) error {
	started := false
	r.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("router: Run called twice")
	}

	// the GPU device is driven from one OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer r.teardown()

	ticker := time.NewTicker(r.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-r.inbox:
			if err := r.handle(msg); err != nil {
				common.Logger().Warn("message discarded", "kind", msg.Kind(), "err", err)
			}
		case <-ticker.C:
			r.frame()
		}
	}
}

// handle dispatches one message. Panics are turned into an error event so a broken badge or
// surface never takes the process down.
func (r *router) handle(msg Message) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%s panicked: %v", msg.Kind(), p)
			common.Logger().Error("router recovered from panic", "kind", msg.Kind(), "panic", p)
			if r.state == StateInitializing {
				r.state = StateUninitialized
			}
			r.emit(Event{Type: EventError, Err: err})
		}
	}()

	if im, ok := msg.(Init); ok {
		return r.handleInit(im)
	}
	if r.state != StateReady {
		return ErrNotReady
	}

	switch m := msg.(type) {
	case SwitchBadge:
		r.switchBadge(m.BadgeName)
		return nil
	case MouseMove:
		r.scene.UpdatePointerLight(m.X, m.Y)
		return nil
	case Resize:
		return r.scene.Resize(m.Width, m.Height)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Kind())
	}
}

func (r *router) handleInit(msg Init) error {
	if r.state != StateUninitialized {
		common.Logger().Warn("init ignored", "state", r.state)
		return nil
	}
	if msg.Width <= 0 || msg.Height <= 0 {
		err := fmt.Errorf("init: size %dx%d must be positive", msg.Width, msg.Height)
		r.emit(Event{Type: EventError, Err: err})
		return err
	}
	r.setState(StateInitializing)

	fail := func(err error) error {
		r.setState(StateUninitialized)
		r.emit(Event{Type: EventError, Err: err})
		return err
	}

	if msg.Native != "" && r.module == nil {
		m, err := r.loadModule(msg.Native)
		if err != nil {
			return fail(fmt.Errorf("init: native module: %w", err))
		}
		r.module = m
		r.factory.SetModule(m)
	}

	sc, err := r.buildScene(msg.Surface, msg.Width, msg.Height, msg.PixelRatio)
	if err != nil {
		return fail(fmt.Errorf("init: scene: %w", err))
	}
	r.scene = sc

	b, err := r.factory.ConstructNamed(msg.BadgeName)
	if err != nil {
		common.Logger().Warn("initial badge replaced by placeholder", "name", msg.BadgeName, "err", err)
	}
	if err := r.scene.Add(b.Root()); err != nil {
		b.Dispose()
		r.scene.Release()
		r.scene = nil
		return fail(fmt.Errorf("init: attach %s: %w", b.Variant(), err))
	}
	r.current = b

	r.setState(StateReady)
	if !r.readySent {
		r.readySent = true
		r.emit(Event{Type: EventReady})
	}
	return nil
}

// switchBadge tears the shown badge down completely before the next one is built.
func (r *router) switchBadge(name string) {
	if r.current != nil {
		r.scene.Remove(r.current.Root())
		r.current.Dispose()
		r.current = nil
	}

	b, err := r.factory.ConstructNamed(name)
	if err != nil {
		common.Logger().Warn("switched to placeholder", "name", name, "err", err)
	}
	if err := r.scene.Add(b.Root()); err != nil {
		common.Logger().Error("badge could not be attached", "variant", b.Variant(), "err", err)
		b.Dispose()
		return
	}
	r.current = b
	if d, ok := badge.Lookup(b.Variant()); ok {
		common.Logger().Info("badge switched", "title", d.Title)
	}
}

// frame advances the badge animation and renders one frame once the router is ready.
func (r *router) frame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateReady {
		return
	}

	defer func() {
		if p := recover(); p != nil {
			common.Logger().Error("frame recovered from panic", "panic", p)
		}
	}()

	if r.current != nil {
		light := r.scene.PointerLight().Position()
		r.current.Update(r.scene.Elapsed(), &light)
	}
	if err := r.scene.Render(); err != nil {
		if msg := err.Error(); msg != r.lastRenderErr {
			r.lastRenderErr = msg
			common.Logger().Error("frame failed", "err", err)
		}
		return
	}
	r.lastRenderErr = ""
	if r.profiler != nil {
		r.profiler.Tick()
	}
}

// teardown releases everything the router owns. Send fails from here on.
func (r *router) teardown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	close(r.done)

	if r.current != nil {
		r.current.Dispose()
		r.current = nil
	}
	if r.scene != nil {
		r.scene.Release()
		r.scene = nil
	}
	r.factory.Close()
	if r.module != nil {
		if err := r.module.Close(); err != nil {
			common.Logger().Warn("native module close", "err", err)
		}
		r.module = nil
	}
	r.state = StateUninitialized
	common.Logger().Info("router stopped")
}

func (r *router) setState(s State) {
	if r.state == s {
		return
	}
	common.Logger().Info("router state", "from", r.state, "to", s)
	r.state = s
}

// emit reports an event without blocking the loop. Events the host does not drain in time are
// dropped.
func (r *router) emit(e Event) {
	select {
	case r.events <- e:
	default:
		common.Logger().Warn("event dropped", "type", e.Type, "err", e.Err)
	}
}
