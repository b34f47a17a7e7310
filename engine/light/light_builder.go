package light

import "github.com/Carmen-Shannon/oxy-badges/common"

// LightBuilderOption is a function that configures a Light instance during construction.
type LightBuilderOption func(*lightImpl)

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - x: the x position component
//   - y: the y position component
//   - z: the z position component
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a lightImpl
func WithPosition(x, y, z float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = [3]float32{x, y, z}
	}
}

// WithColor is an option builder that sets the linear RGB color of the light.
//
// Parameters:
//   - r, g, b: the color components
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColor(r, g, b float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = [3]float32{r, g, b}
	}
}

// WithColorHex is an option builder that sets the light color from a 0xRRGGBB sRGB value.
//
// Parameters:
//   - hex: the sRGB color
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a lightImpl
func WithColorHex(hex uint32) LightBuilderOption {
	return func(l *lightImpl) {
		l.color = common.ColorHex(hex)
	}
}

// WithIntensity is an option builder that sets the intensity multiplier of the light.
//
// Parameters:
//   - intensity: the intensity value
//
// Returns:
//   - LightBuilderOption: a function that applies the intensity option to a lightImpl
func WithIntensity(intensity float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.intensity = intensity
	}
}

// WithRange is an option builder that sets the cutoff distance of a point light.
// Zero disables the cutoff.
//
// Parameters:
//   - lightRange: the range value
//
// Returns:
//   - LightBuilderOption: a function that applies the range option to a lightImpl
func WithRange(lightRange float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.lightRange = lightRange
	}
}

// WithDecay is an option builder that sets the distance falloff exponent of a point light.
//
// Parameters:
//   - decay: the decay exponent, 2 being physically based
//
// Returns:
//   - LightBuilderOption: a function that applies the decay option to a lightImpl
func WithDecay(decay float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.decay = decay
	}
}

// WithEnabled is an option builder that sets whether the light starts enabled.
//
// Parameters:
//   - enabled: true to enable the light
//
// Returns:
//   - LightBuilderOption: a function that applies the enabled option to a lightImpl
func WithEnabled(enabled bool) LightBuilderOption {
	return func(l *lightImpl) {
		l.enabled = enabled
	}
}
