package mesh

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// Sprite texture and sampler bindings inside the object bind group.
const (
	spriteTextureBinding = 1
	spriteSamplerBinding = 2
)

// Sprite is a textured billboard that always faces the camera. Its X and Y scale set the size in
// world units.
type Sprite struct {
	surface
}

var _ Drawable = &Sprite{}

// NewSprite creates a billboard shaded by a sprite material, which must carry a texture by the
// time the sprite is uploaded.
//
// Parameters:
//   - name: label of the sprite and its GPU resources
//   - mat: a sprite material
//
// Returns:
//   - *Sprite: the billboard
func NewSprite(name string, mat material.Material) *Sprite {
	s := &Sprite{}
	s.surface = newSurface(s, name, geometry.Plane(1, 1), mat)
	return s
}

func (s *Sprite) Upload(r renderer.Renderer, layout wgpu.BindGroupLayoutDescriptor) error {
	return s.upload(r, layout, func() error {
		tex := s.mat.Texture()
		if tex == nil {
			return errors.New("sprite material has no texture")
		}
		if err := r.InitTextureView(s.provider, spriteTextureBinding, *tex); err != nil {
			return fmt.Errorf("sprite texture: %w", err)
		}
		if err := r.InitSampler(s.provider, spriteSamplerBinding, common.ClampedLinearSampler); err != nil {
			return fmt.Errorf("sprite sampler: %w", err)
		}
		return nil
	})
}
