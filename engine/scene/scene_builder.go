package scene

import (
	"time"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/postprocess"
	"github.com/cogentcore/webgpu/wgpu"
)

// ManagerBuilderOption is a functional option for configuring a Manager.
// Use the With* functions to create options.
type ManagerBuilderOption func(m *manager)

// WithClearColor sets the background the scene pass clears to. Defaults to opaque black.
//
// Parameters:
//   - c: the clear color
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithClearColor(c wgpu.Color) ManagerBuilderOption {
	return func(m *manager) {
		m.clearColor = c
	}
}

// WithBloom sets the bloom parameters.
//
// Parameters:
//   - config: the bloom configuration
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithBloom(config postprocess.BloomConfig) ManagerBuilderOption {
	return func(m *manager) {
		m.bloomConfig = config
	}
}

// WithChromaticAberration sets the chromatic aberration parameters.
//
// Parameters:
//   - config: the chromatic aberration configuration
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithChromaticAberration(config postprocess.ChromaticAberrationConfig) ManagerBuilderOption {
	return func(m *manager) {
		m.aberrationConfig = config
	}
}

// WithGodRays inserts the light shaft pass after bloom, with the pointer light as its source.
// The pass is left out unless this option is given.
//
// Parameters:
//   - config: the god rays configuration
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithGodRays(config postprocess.GodRaysConfig) ManagerBuilderOption {
	return func(m *manager) {
		m.godRaysEnabled = true
		m.godRaysConfig = config
	}
}

// WithOutput sets the tone mapping parameters of the final pass.
func WithOutput(config postprocess.OutputConfig) ManagerBuilderOption {
	return func(m *manager) {
		m.outputConfig = config
	}
}

// WithPointerSmoothing sets the fraction of the remaining distance the pointer light covers on
// each UpdatePointerLight. Values outside (0, 1] are ignored. Defaults to 0.1.
//
// Parameters:
//   - alpha: the smoothing factor
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithPointerSmoothing(alpha float32) ManagerBuilderOption {
	return func(m *manager) {
		if alpha > 0 && alpha <= 1 {
			m.smoothing = alpha
		}
	}
}

// WithShaderValidation compiles every material shader with naga before its pipeline is registered.
// A shader that fails to compile fails the Add that needed it. Off by default.
//
// Parameters:
//   - enabled: true to validate material shaders
//
// Returns:
//   - ManagerBuilderOption: option function to apply
func WithShaderValidation(enabled bool) ManagerBuilderOption {
	return func(m *manager) {
		m.validateShaders = enabled
	}
}

// WithClock replaces the time source behind Elapsed and the camera time uniform.
func WithClock(now func() time.Time) ManagerBuilderOption {
	return func(m *manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithOwnedRenderer makes Release also release the renderer, for managers that are the only user
// of their renderer.
func WithOwnedRenderer() ManagerBuilderOption {
	return func(m *manager) {
		m.ownsRenderer = true
	}
}
