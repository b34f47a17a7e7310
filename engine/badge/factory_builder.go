package badge

import (
	"math/rand"

	"github.com/Carmen-Shannon/oxy-badges/engine/native"
)

// FactoryBuilderOption is a functional option for configuring a Factory.
type FactoryBuilderOption func(*factory)

// WithModule is an option builder that installs the native module at construction.
//
// Parameters:
//   - m: the loaded module
//
// Returns:
//   - FactoryBuilderOption: a function that applies the module option to a factory
func WithModule(m native.Module) FactoryBuilderOption {
	return func(f *factory) {
		f.module = m
	}
}

// WithRand is an option builder that sets the random source of the particle fields.
//
// Parameters:
//   - rng: the random source, owned by the factory afterwards
//
// Returns:
//   - FactoryBuilderOption: a function that applies the random source option to a factory
func WithRand(rng *rand.Rand) FactoryBuilderOption {
	return func(f *factory) {
		f.rng = rng
	}
}

// WithWorkers is an option builder that sets how many geometry jobs run at once.
func WithWorkers(n int) FactoryBuilderOption {
	return func(f *factory) {
		f.workers = n
	}
}

// WithWeaverParams is an option builder that overrides the knot of the commentators badge.
func WithWeaverParams(params native.WeaverParams) FactoryBuilderOption {
	return func(f *factory) {
		f.weaver = params
	}
}
