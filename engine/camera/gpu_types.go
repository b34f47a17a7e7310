package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (160 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the per-frame camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 160 bytes.
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset   0: combined view-projection matrix (mat4x4<f32>)
	View     [16]float32 // offset  64: view matrix, used by billboards (mat4x4<f32>)
	Position [4]float32  // offset 128: world-space camera position, w = elapsed seconds
	Viewport [4]float32  // offset 144: drawing width, drawing height, pixel ratio, unused
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (160)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.View[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[128+i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[144+i*4:], math.Float32bits(g.Viewport[i]))
	}
	return buf
}
