package material

import (
	"github.com/Carmen-Shannon/oxy-badges/common"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithColor is an option builder that sets the base color from a packed 0xRRGGBB sRGB value.
// The color is stored in linear space.
//
// Parameters:
//   - hex: the packed sRGB color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColor(hex uint32) MaterialBuilderOption {
	return func(m *material) {
		m.color = common.ColorHex(hex)
	}
}

// WithColorRGB is an option builder that sets the base color from linear RGB components.
//
// Parameters:
//   - c: the linear RGB color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color option to a material
func WithColorRGB(c [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.color = c
	}
}

// WithOpacity is an option builder that sets the alpha written by the shader, clamped to [0, 1].
//
// Parameters:
//   - opacity: the opacity
//
// Returns:
//   - MaterialBuilderOption: a function that applies the opacity option to a material
func WithOpacity(opacity float32) MaterialBuilderOption {
	return func(m *material) {
		m.opacity = common.Clamp(opacity, 0, 1)
	}
}

// WithTransparent is an option builder that enables or disables blending.
//
// Parameters:
//   - transparent: true to draw the material with blending
//
// Returns:
//   - MaterialBuilderOption: a function that applies the transparency option to a material
func WithTransparent(transparent bool) MaterialBuilderOption {
	return func(m *material) {
		m.transparent = transparent
	}
}

// WithBlending is an option builder that sets the blend mode. Additive blending implies transparency.
//
// Parameters:
//   - blending: the blend mode
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blending option to a material
func WithBlending(blending Blending) MaterialBuilderOption {
	return func(m *material) {
		m.blending = blending
		if blending == BlendingAdditive {
			m.transparent = true
		}
	}
}

// WithDepthWrite is an option builder that toggles depth buffer writes.
//
// Parameters:
//   - enabled: true to write depth
//
// Returns:
//   - MaterialBuilderOption: a function that applies the depth write option to a material
func WithDepthWrite(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.depthWrite = enabled
	}
}

// WithMetalness is an option builder that sets the metalness factor (0 = dielectric, 1 = metal).
//
// Parameters:
//   - metalness: the metalness factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the metalness option to a material
func WithMetalness(metalness float32) MaterialBuilderOption {
	return func(m *material) {
		m.metalness = common.Clamp(metalness, 0, 1)
	}
}

// WithRoughness is an option builder that sets the roughness factor (0 = mirror, 1 = fully rough).
//
// Parameters:
//   - roughness: the roughness factor
//
// Returns:
//   - MaterialBuilderOption: a function that applies the roughness option to a material
func WithRoughness(roughness float32) MaterialBuilderOption {
	return func(m *material) {
		m.roughness = common.Clamp(roughness, 0, 1)
	}
}

// WithSheen is an option builder that sets the sheen weight and its sRGB tint.
//
// Parameters:
//   - weight: the sheen intensity
//   - hex: the packed sRGB sheen color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sheen option to a material
func WithSheen(weight float32, hex uint32) MaterialBuilderOption {
	return func(m *material) {
		m.sheen = weight
		m.sheenColor = common.ColorHex(hex)
	}
}

// WithIridescence is an option builder that sets the thin-film iridescence weight and index of refraction.
//
// Parameters:
//   - weight: the iridescence intensity in [0, 1]
//   - ior: the thin-film index of refraction
//
// Returns:
//   - MaterialBuilderOption: a function that applies the iridescence option to a material
func WithIridescence(weight, ior float32) MaterialBuilderOption {
	return func(m *material) {
		m.iridescence = common.Clamp(weight, 0, 1)
		m.iridescenceIOR = ior
	}
}

// WithEmissive is an option builder that sets the emissive sRGB color and its intensity.
//
// Parameters:
//   - hex: the packed sRGB emissive color
//   - intensity: the emissive multiplier
//
// Returns:
//   - MaterialBuilderOption: a function that applies the emissive option to a material
func WithEmissive(hex uint32, intensity float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = common.ColorHex(hex)
		m.emissiveIntensity = intensity
	}
}

// WithSize is an option builder that sets the point size of a points material.
func WithSize(size float32) MaterialBuilderOption {
	return func(m *material) {
		m.size = size
	}
}

// WithSizeAttenuation is an option builder that toggles distance-based point size.
func WithSizeAttenuation(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.sizeAttenuation = enabled
	}
}

// WithNoiseScale is an option builder that sets the uv scale of the ink blot noise.
func WithNoiseScale(scale float32) MaterialBuilderOption {
	return func(m *material) {
		m.noiseScale = scale
	}
}

// WithTexture is an option builder that stages the texture sampled by a sprite material.
//
// Parameters:
//   - tex: the RGBA pixels to upload when the sprite is first drawn
//
// Returns:
//   - MaterialBuilderOption: a function that applies the texture option to a material
func WithTexture(tex common.TextureStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.texture = &tex
	}
}

// WithLightPosition is an option builder that sets the initial light position of the heart material.
func WithLightPosition(p [3]float32) MaterialBuilderOption {
	return func(m *material) {
		m.lightPosition = p
	}
}
