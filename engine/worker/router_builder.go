package worker

import (
	"time"

	"github.com/Carmen-Shannon/oxy-badges/engine/badge"
	"github.com/Carmen-Shannon/oxy-badges/engine/profiler"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/scene"
)

// RouterBuilderOption is a functional option for configuring a Router.
// Use the With* functions to create options that are applied directly to the router instance.
type RouterBuilderOption func(*router)

// WithSceneBuilder replaces the builder that creates the scene on Init. Defaults to
// WGPUSceneBuilder.
//
// Parameters:
//   - b: the scene builder
//
// Returns:
//   - RouterBuilderOption: option function to apply
func WithSceneBuilder(b SceneBuilder) RouterBuilderOption {
	return func(r *router) {
		r.buildScene = b
	}
}

// WithSceneOptions sets the options the default scene builder passes to scene.NewManager. Ignored
// when WithSceneBuilder is also given.
//
// Parameters:
//   - options: the scene options
//
// Returns:
//   - RouterBuilderOption: option function to apply
func WithSceneOptions(options ...scene.ManagerBuilderOption) RouterBuilderOption {
	return func(r *router) {
		r.sceneOptions = append(r.sceneOptions, options...)
	}
}

// WithRendererOptions sets the options the default scene builder passes to renderer.NewRenderer.
// Ignored when WithSceneBuilder is also given.
func WithRendererOptions(options ...renderer.RendererBuilderOption) RouterBuilderOption {
	return func(r *router) {
		r.rendererOpts = append(r.rendererOpts, options...)
	}
}

// WithModuleLoader replaces native.Load.
func WithModuleLoader(l ModuleLoader) RouterBuilderOption {
	return func(r *router) {
		if l != nil {
			r.loadModule = l
		}
	}
}

// WithFactory sets the badge factory. The router closes it when it stops.
//
// Parameters:
//   - f: the badge factory
//
// Returns:
//   - RouterBuilderOption: option function to apply
func WithFactory(f badge.Factory) RouterBuilderOption {
	return func(r *router) {
		r.factory = f
	}
}

// WithFrameRate sets how many frames per second the loop renders. Values <= 0 keep the default
// of 60.
//
// Parameters:
//   - fps: target frames per second
//
// Returns:
//   - RouterBuilderOption: option function to apply
func WithFrameRate(fps float64) RouterBuilderOption {
	return func(r *router) {
		if fps > 0 {
			r.frameInterval = time.Duration(float64(time.Second) / fps)
		}
	}
}

// WithProfiler reports frame stats through p after every rendered frame.
func WithProfiler(p *profiler.Profiler) RouterBuilderOption {
	return func(r *router) {
		r.profiler = p
	}
}
