package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// Points draws a particle cloud, one camera-facing quad instance per position. The quad spans one
// unit so the material size is the point diameter.
type Points struct {
	surface
	positions [][3]float32
}

var _ Drawable = &Points{}

// NewPoints creates a particle cloud. The positions are copied.
//
// Parameters:
//   - name: label of the cloud and its GPU resources
//   - positions: particle centers in local space
//   - mat: a points material
//
// Returns:
//   - *Points: the cloud
func NewPoints(name string, positions [][3]float32, mat material.Material) *Points {
	p := &Points{positions: append([][3]float32(nil), positions...)}
	p.surface = newSurface(p, name, geometry.Plane(1, 1), mat)
	return p
}

// Positions returns the particle centers.
func (p *Points) Positions() [][3]float32 {
	return p.positions
}

// Count returns the number of particles.
func (p *Points) Count() int {
	return len(p.positions)
}

// InstanceBytes serializes one GPUPointInstance per particle.
//
// Returns:
//   - []byte: the instance buffer contents
func (p *Points) InstanceBytes() []byte {
	var inst geometry.GPUPointInstance
	stride := inst.Size()
	buf := make([]byte, stride*len(p.positions))
	for i, pos := range p.positions {
		inst = geometry.GPUPointInstance{Position: pos, Scale: 1}
		inst.MarshalTo(buf[i*stride:])
	}
	return buf
}

func (p *Points) Upload(r renderer.Renderer, layout wgpu.BindGroupLayoutDescriptor) error {
	return p.upload(r, layout, func() error {
		if err := r.InitInstanceBuffer(p.provider, p.InstanceBytes(), len(p.positions)); err != nil {
			return fmt.Errorf("instance buffer: %w", err)
		}
		return nil
	})
}
