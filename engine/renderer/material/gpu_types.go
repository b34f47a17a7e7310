package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// putFloats writes vals into buf as consecutive little-endian float32 values starting at offset.
func putFloats(buf []byte, offset int, vals ...float32) {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v))
	}
}

// GPUPhysicalUniformSource is the canonical WGSL definition of the PhysicalUniform struct.
// Matches GPUPhysicalUniform layout exactly (192 bytes).
//
//go:embed assets/physical.wgsl
var GPUPhysicalUniformSource string

// GPUPhysicalUniform is the per-object uniform of the physically based surface shader.
// Matches the WGSL PhysicalUniform struct layout exactly (see GPUPhysicalUniformSource).
// Size: 192 bytes.
type GPUPhysicalUniform struct {
	Model        [16]float32 // offset   0: object world matrix (mat4x4<f32>)
	NormalMatrix [16]float32 // offset  64: inverse transpose of the world matrix (mat4x4<f32>)
	Color        [4]float32  // offset 128: linear base color, a = opacity
	Emissive     [4]float32  // offset 144: emissive color * intensity, w unused
	SheenColor   [4]float32  // offset 160: sheen tint, w = sheen weight
	Params       [4]float32  // offset 176: metalness, roughness, iridescence, iridescence IOR
}

// Size returns the size of the GPUPhysicalUniform struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUPhysicalUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPhysicalUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 192-byte buffer ready for GPU upload.
func (g *GPUPhysicalUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Model[:]...)
	putFloats(buf, 64, g.NormalMatrix[:]...)
	putFloats(buf, 128, g.Color[:]...)
	putFloats(buf, 144, g.Emissive[:]...)
	putFloats(buf, 160, g.SheenColor[:]...)
	putFloats(buf, 176, g.Params[:]...)
	return buf
}

// GPUHeartUniformSource is the canonical WGSL definition of the HeartUniform struct.
// Matches GPUHeartUniform layout exactly (176 bytes).
//
//go:embed assets/heart.wgsl
var GPUHeartUniformSource string

// GPUHeartUniform is the per-object uniform of the heart shader.
// Size: 176 bytes.
type GPUHeartUniform struct {
	Model         [16]float32 // offset   0
	NormalMatrix  [16]float32 // offset  64
	Color         [4]float32  // offset 128: linear color, a = opacity
	LightPosition [4]float32  // offset 144: world-space light position, w unused
	Params        [4]float32  // offset 160: elapsed seconds, unused x3
}

// Size returns the size of the GPUHeartUniform struct in bytes.
func (g *GPUHeartUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUHeartUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUHeartUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Model[:]...)
	putFloats(buf, 64, g.NormalMatrix[:]...)
	putFloats(buf, 128, g.Color[:]...)
	putFloats(buf, 144, g.LightPosition[:]...)
	putFloats(buf, 160, g.Params[:]...)
	return buf
}

// GPUInkUniformSource is the canonical WGSL definition of the InkUniform struct.
// Matches GPUInkUniform layout exactly (96 bytes).
//
//go:embed assets/ink.wgsl
var GPUInkUniformSource string

// GPUInkUniform is the per-object uniform of the ink blot backdrop shader.
// Size: 96 bytes.
type GPUInkUniform struct {
	Model  [16]float32 // offset  0
	Color  [4]float32  // offset 64: ink color, a = opacity
	Params [4]float32  // offset 80: elapsed seconds, noise scale, unused x2
}

// Size returns the size of the GPUInkUniform struct in bytes.
func (g *GPUInkUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInkUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUInkUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Model[:]...)
	putFloats(buf, 64, g.Color[:]...)
	putFloats(buf, 80, g.Params[:]...)
	return buf
}

// GPUPointsUniformSource is the canonical WGSL definition of the PointsUniform struct.
// Matches GPUPointsUniform layout exactly (96 bytes).
//
//go:embed assets/points.wgsl
var GPUPointsUniformSource string

// GPUPointsUniform is the per-object uniform of the instanced particle shader.
// Size: 96 bytes.
type GPUPointsUniform struct {
	Model  [16]float32 // offset  0
	Color  [4]float32  // offset 64: particle color, a = opacity
	Params [4]float32  // offset 80: point size, size attenuation flag (0 or 1), unused x2
}

// Size returns the size of the GPUPointsUniform struct in bytes.
func (g *GPUPointsUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPointsUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUPointsUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Model[:]...)
	putFloats(buf, 64, g.Color[:]...)
	putFloats(buf, 80, g.Params[:]...)
	return buf
}

// GPUSpriteUniformSource is the canonical WGSL definition of the SpriteUniform struct.
// Matches GPUSpriteUniform layout exactly (80 bytes).
//
//go:embed assets/sprite.wgsl
var GPUSpriteUniformSource string

// GPUSpriteUniform is the per-object uniform of the billboard shader.
// Size: 80 bytes.
type GPUSpriteUniform struct {
	Model [16]float32 // offset  0: billboard center and scale
	Color [4]float32  // offset 64: tint, a = opacity
}

// Size returns the size of the GPUSpriteUniform struct in bytes.
func (g *GPUSpriteUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSpriteUniform struct into a byte buffer suitable for GPU upload.
func (g *GPUSpriteUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Model[:]...)
	putFloats(buf, 64, g.Color[:]...)
	return buf
}
