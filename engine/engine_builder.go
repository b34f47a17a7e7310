package engine

import (
	"io"

	"github.com/Carmen-Shannon/oxy-badges/engine/worker"
)

// HostBuilderOption is a functional option for configuring a Host.
// Use the With* functions to create options that are applied directly to the host instance.
type HostBuilderOption func(*host)

// WithBadge sets the badge shown first. Defaults to "votes".
//
// Parameters:
//   - name: the badge name
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithBadge(name string) HostBuilderOption {
	return func(h *host) {
		h.badgeName = name
	}
}

// WithNative sets the locator of the weaver module sent with init. Empty skips loading it, which
// leaves the commentators badge as a placeholder.
//
// Parameters:
//   - locator: the module locator, see native.Load
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithNative(locator string) HostBuilderOption {
	return func(h *host) {
		h.native = locator
	}
}

// WithMaxPixelRatio caps the pixel ratio sent to the router. Values below 1 are ignored.
// Defaults to 2.
//
// Parameters:
//   - ratio: the cap
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithMaxPixelRatio(ratio float32) HostBuilderOption {
	return func(h *host) {
		if ratio >= 1 {
			h.maxPixelRatio = ratio
		}
	}
}

// WithRouterOptions sets the options used to create the router.
//
// Parameters:
//   - options: the router options
//
// Returns:
//   - HostBuilderOption: option function to apply
func WithRouterOptions(options ...worker.RouterBuilderOption) HostBuilderOption {
	return func(h *host) {
		h.routerOptions = append(h.routerOptions, options...)
	}
}

// WithRouter uses r instead of creating a router. WithRouterOptions is then ignored.
func WithRouter(r worker.Router) HostBuilderOption {
	return func(h *host) {
		h.router = r
	}
}

// WithSpinnerOutput sets where the loading spinner is drawn. Defaults to stderr.
func WithSpinnerOutput(w io.Writer) HostBuilderOption {
	return func(h *host) {
		if w != nil {
			h.spinnerOut = w
		}
	}
}
