package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single mesh vertex.
// Matches the WGSL VertexInput struct used by the mesh shaders.
// Size: 32 bytes.
type GPUVertex struct {
	Position [3]float32 // offset  0: vertex position in model space (12 bytes)
	Normal   [3]float32 // offset 12: vertex normal for lighting (12 bytes)
	TexCoord [2]float32 // offset 24: UV texture coordinate (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the vertex into buf, which must be at least Size() bytes long.
//
// Parameters:
//   - buf: destination buffer
func (g *GPUVertex) MarshalTo(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[12+i*4:], math.Float32bits(g.Normal[i]))
	}
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.TexCoord[0]))
	binary.LittleEndian.PutUint32(buf[28:], math.Float32bits(g.TexCoord[1]))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalTo(buf)
	return buf
}

// GPUPointInstanceSource is the canonical WGSL definition of the PointInstance struct.
// Fields use locations 3 and 4 so the struct can follow VertexInput in the same pipeline.
//
//go:embed assets/point_instance.wgsl
var GPUPointInstanceSource string

// GPUPointInstance is the per-instance record of a particle billboard.
// Size: 16 bytes (vec3 position + f32 per-point scale).
type GPUPointInstance struct {
	Position [3]float32
	Scale    float32
}

// Size returns the size of the GPUPointInstance struct in bytes.
func (g *GPUPointInstance) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo serializes the instance into buf, which must be at least Size() bytes long.
func (g *GPUPointInstance) MarshalTo(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Scale))
}
