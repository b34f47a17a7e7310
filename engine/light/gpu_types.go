package light

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPULightsSource is the canonical WGSL definition of the Lights struct.
// Matches GPULights layout exactly (48 bytes).
//
//go:embed assets/lights.wgsl
var GPULightsSource string

// GPULights is the GPU-aligned representation of the scene lighting for one frame:
// the summed ambient term and a single point light.
// Matches the WGSL Lights struct layout exactly (see GPULightsSource).
// Size: 48 bytes.
type GPULights struct {
	Ambient       [4]float32 // offset  0: summed ambient color * intensity, w unused
	PointPosition [4]float32 // offset 16: point light world position, w = range (0 = unlimited)
	PointColor    [4]float32 // offset 32: point light color * intensity, w = decay exponent
}

// Size returns the size of the GPULights struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPULights) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULights struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPULights) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Ambient[i]))
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.PointPosition[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.PointColor[i]))
	}
	return buf
}

// ToGPULights folds a light list into the per-frame lights uniform.
// Enabled ambient lights are summed; the first enabled point light is used and any
// further point lights are ignored. Without a point light the point color is zero.
//
// Parameters:
//   - lights: the scene lights
//
// Returns:
//   - GPULights: the GPU-aligned representation
func ToGPULights(lights []Light) GPULights {
	var out GPULights
	pointSet := false
	for _, l := range lights {
		if l == nil || !l.Enabled() {
			continue
		}
		c := l.Color()
		k := l.Intensity()
		switch l.Type() {
		case LightTypeAmbient:
			out.Ambient[0] += c[0] * k
			out.Ambient[1] += c[1] * k
			out.Ambient[2] += c[2] * k
		case LightTypePoint:
			if pointSet {
				continue
			}
			pointSet = true
			p := l.Position()
			out.PointPosition = [4]float32{p[0], p[1], p[2], l.Range()}
			out.PointColor = [4]float32{c[0] * k, c[1] * k, c[2] * k, l.Decay()}
		}
	}
	return out
}
