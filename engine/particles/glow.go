package particles

import (
	"image"
	"image/color"
	"math"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

// DefaultGlowTextureSize is the edge length in pixels of the glow texture used by NewGlowSprite.
const DefaultGlowTextureSize = 64

// glowStops is the alpha ramp of the radial gradient, from the center (0) to the rim (1).
var glowStops = [][2]float64{
	{0, 1},
	{0.2, 0.8},
	{0.5, 0.2},
	{1, 0},
}

// glowAlpha interpolates the gradient at distance d from the center, in units of the radius.
func glowAlpha(d float64) float64 {
	if d <= 0 {
		return glowStops[0][1]
	}
	for i := 1; i < len(glowStops); i++ {
		a, b := glowStops[i-1], glowStops[i]
		if d <= b[0] {
			t := (d - a[0]) / (b[0] - a[0])
			return a[1] + (b[1]-a[1])*t
		}
	}
	return 0
}

// GlowTexture renders a white radial gradient whose alpha falls from opaque at the center to
// transparent at the inscribed circle.
//
// Parameters:
//   - size: edge length in pixels, at least 1
//
// Returns:
//   - common.TextureStagingData: the RGBA pixels
func GlowTexture(size int) common.TextureStagingData {
	size = max(size, 1)
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := float64(size) / 2
	for y := range size {
		for x := range size {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			a := glowAlpha(math.Hypot(dx, dy))
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(a * 255))})
		}
	}
	return common.NewTextureStagingData(img)
}

// NewGlowSprite creates an additive billboard tinted with tint. It does not write depth so it
// never hides the badge behind it.
//
// Parameters:
//   - tint: color as a 0xRRGGBB hex value
//   - scale: width and height in world units
//
// Returns:
//   - *mesh.Sprite: the billboard
func NewGlowSprite(tint uint32, scale float32) *mesh.Sprite {
	mat := material.NewSprite(
		material.WithName("glow"),
		material.WithColor(tint),
		material.WithBlending(material.BlendingAdditive),
		material.WithDepthWrite(false),
		material.WithTexture(GlowTexture(DefaultGlowTextureSize)),
	)
	s := mesh.NewSprite("glow", mat)
	s.SetScale(scale, scale, 1)
	return s
}
