package mesh

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
)

// objectBinding is the binding of the per-object uniform inside the object bind group.
const objectBinding = 0

// Drawable is an Object the scene can draw: geometry shaded by a material, with the GPU buffers
// and bind group that feed them.
type Drawable interface {
	Object

	// Geometry returns the CPU-side geometry the vertex and index buffers are built from.
	Geometry() *geometry.Geometry

	// Material returns the material that shades the drawable. It may be shared with other drawables.
	Material() material.Material

	// Provider returns the provider holding the drawable's vertex, index and instance buffers and
	// its object bind group.
	Provider() bind_group_provider.BindGroupProvider

	// Upload creates the GPU buffers and the object bind group. Uploading twice is a no-op.
	//
	// Parameters:
	//   - r: the renderer that owns the device
	//   - layout: the object bind group layout of the material's pipeline
	//
	// Returns:
	//   - error: an error if the drawable was disposed or any GPU resource could not be created
	Upload(r renderer.Renderer, layout wgpu.BindGroupLayoutDescriptor) error

	// Uploaded reports whether Upload has succeeded.
	Uploaded() bool

	// UniformWrite returns the buffer write that refreshes the object uniform from the current
	// world matrix and material state.
	UniformWrite() bind_group_provider.BufferWrite

	// Dispose releases the GPU resources and the material. Only the first call has an effect.
	Dispose()

	// Disposed reports whether Dispose has been called.
	Disposed() bool
}

// surface is the state shared by every Drawable implementation.
type surface struct {
	node
	geom     *geometry.Geometry
	mat      material.Material
	provider bind_group_provider.BindGroupProvider
	uploaded bool
	disposed bool
}

func newSurface(self Object, name string, geom *geometry.Geometry, mat material.Material) surface {
	return surface{
		node:     newNode(self, name),
		geom:     geom,
		mat:      mat,
		provider: bind_group_provider.NewBindGroupProvider(name),
	}
}

func (s *surface) Geometry() *geometry.Geometry {
	return s.geom
}

func (s *surface) Material() material.Material {
	return s.mat
}

func (s *surface) Provider() bind_group_provider.BindGroupProvider {
	return s.provider
}

func (s *surface) Uploaded() bool {
	return s.uploaded
}

func (s *surface) UniformWrite() bind_group_provider.BufferWrite {
	return bind_group_provider.BufferWrite{
		Provider: s.provider,
		Binding:  objectBinding,
		Data:     s.mat.MarshalUniform(s.self.WorldMatrix()),
	}
}

func (s *surface) Disposed() bool {
	return s.disposed
}

func (s *surface) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.uploaded = false
	s.provider.Release()
	s.mat.Dispose()
}

// upload runs the steps every drawable shares around the type specific extra step.
func (s *surface) upload(r renderer.Renderer, layout wgpu.BindGroupLayoutDescriptor, extra func() error) error {
	if s.disposed {
		return fmt.Errorf("%s: upload after dispose", s.name)
	}
	if s.uploaded {
		return nil
	}
	if err := r.InitMeshBuffers(s.provider, s.geom.VertexBytes(), s.geom.IndexBytes(), s.geom.IndexCount()); err != nil {
		return fmt.Errorf("%s: mesh buffers: %w", s.name, err)
	}
	if extra != nil {
		if err := extra(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	if err := r.InitBindGroup(s.provider, layout, nil); err != nil {
		return fmt.Errorf("%s: object bind group: %w", s.name, err)
	}
	s.uploaded = true
	return nil
}

// Mesh draws indexed triangle geometry with a material.
type Mesh struct {
	surface
}

var _ Drawable = &Mesh{}

// NewMesh creates a mesh. Several meshes may share one geometry or material; each mesh still owns
// its GPU buffers.
//
// Parameters:
//   - name: label of the mesh and its GPU resources
//   - geom: the triangle geometry
//   - mat: the shading material
//
// Returns:
//   - *Mesh: the mesh
func NewMesh(name string, geom *geometry.Geometry, mat material.Material) *Mesh {
	m := &Mesh{}
	m.surface = newSurface(m, name, geom, mat)
	return m
}

func (m *Mesh) Upload(r renderer.Renderer, layout wgpu.BindGroupLayoutDescriptor) error {
	return m.upload(r, layout, nil)
}
