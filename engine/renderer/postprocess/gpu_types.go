package postprocess

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

// fullscreenSource declares FullscreenOutput and the vs_main that every pass shares. It is
// injected with //@badge:include fullscreen.
//
//go:embed assets/fullscreen.wgsl
var fullscreenSource string

// GPUHighPassParamsSource is the canonical WGSL definition of the HighPassParams struct.
//
//go:embed assets/high_pass.wgsl
var GPUHighPassParamsSource string

// GPUHighPassParams configures the bloom luminosity high pass.
// Size: 16 bytes.
type GPUHighPassParams struct {
	Params [4]float32 // offset 0: threshold, smooth width, unused, unused
}

// Size returns the size of the GPUHighPassParams struct in bytes.
func (g *GPUHighPassParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUHighPassParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Params[:]...)
	return buf
}

// GPUBlurParamsSource is the canonical WGSL definition of the BlurParams struct.
// Matches GPUBlurParams layout exactly (80 bytes).
//
//go:embed assets/blur.wgsl
var GPUBlurParamsSource string

// GPUBlurParams configures one direction of one level of the separable bloom blur.
// Coefficients are packed four to a vec4 because uniform arrays have a 16 byte stride.
// Size: 80 bytes.
type GPUBlurParams struct {
	Params       [4]float32  // offset  0: direction xy, texel size zw
	Kernel       [4]float32  // offset 16: x = kernel radius in taps
	Coefficients [12]float32 // offset 32: gaussian weights, index 0 is the center tap
}

// Size returns the size of the GPUBlurParams struct in bytes.
func (g *GPUBlurParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUBlurParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Params[:]...)
	putFloats(buf, 16, g.Kernel[:]...)
	putFloats(buf, 32, g.Coefficients[:]...)
	return buf
}

// GPUBloomCompositeParamsSource is the canonical WGSL definition of the BloomCompositeParams struct.
//
//go:embed assets/bloom_composite.wgsl
var GPUBloomCompositeParamsSource string

// GPUBloomCompositeParams weights the blur levels when they are summed.
// Size: 32 bytes.
type GPUBloomCompositeParams struct {
	Factors [4]float32 // offset  0: weights of levels 0..3
	Params  [4]float32 // offset 16: weight of level 4, strength, unused, unused
}

// Size returns the size of the GPUBloomCompositeParams struct in bytes.
func (g *GPUBloomCompositeParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUBloomCompositeParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Factors[:]...)
	putFloats(buf, 16, g.Params[:]...)
	return buf
}

// GPUCopyParamsSource is the canonical WGSL definition of the CopyParams struct.
//
//go:embed assets/copy.wgsl
var GPUCopyParamsSource string

// GPUCopyParams scales a texture copy.
// Size: 16 bytes.
type GPUCopyParams struct {
	Params [4]float32 // offset 0: x = opacity
}

// Size returns the size of the GPUCopyParams struct in bytes.
func (g *GPUCopyParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUCopyParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Params[:]...)
	return buf
}

// GPUChromaticAberrationParamsSource is the canonical WGSL definition of the
// ChromaticAberrationParams struct.
//
//go:embed assets/chromatic_aberration.wgsl
var GPUChromaticAberrationParamsSource string

// GPUChromaticAberrationParams configures the chromatic aberration pass.
// Size: 32 bytes.
type GPUChromaticAberrationParams struct {
	Params     [4]float32 // offset  0: amount, radial modulation flag, start radius, end radius
	Resolution [4]float32 // offset 16: target width and height in pixels
}

// Size returns the size of the GPUChromaticAberrationParams struct in bytes.
func (g *GPUChromaticAberrationParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUChromaticAberrationParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Params[:]...)
	putFloats(buf, 16, g.Resolution[:]...)
	return buf
}

// GPUFXAAParamsSource is the canonical WGSL definition of the FXAAParams struct.
//
//go:embed assets/fxaa.wgsl
var GPUFXAAParamsSource string

// GPUFXAAParams carries the texel size of the FXAA input.
// Size: 16 bytes.
type GPUFXAAParams struct {
	Resolution [4]float32 // offset 0: 1/width, 1/height
}

// Size returns the size of the GPUFXAAParams struct in bytes.
func (g *GPUFXAAParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUFXAAParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Resolution[:]...)
	return buf
}

// GPUOutputParamsSource is the canonical WGSL definition of the OutputParams struct.
//
//go:embed assets/output.wgsl
var GPUOutputParamsSource string

// GPUOutputParams configures tone mapping and color space conversion.
// Size: 16 bytes.
type GPUOutputParams struct {
	Params [4]float32 // offset 0: exposure, tone mapping flag, sRGB encode flag, unused
}

// Size returns the size of the GPUOutputParams struct in bytes.
func (g *GPUOutputParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUOutputParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Params[:]...)
	return buf
}

// GPUGodRaysParamsSource is the canonical WGSL definition of the GodRaysParams struct.
//
//go:embed assets/godrays.wgsl
var GPUGodRaysParamsSource string

// GPUGodRaysParams configures the light scattering pass.
// Size: 32 bytes.
type GPUGodRaysParams struct {
	Light  [4]float32 // offset  0: light uv xy, exposure, decay
	Params [4]float32 // offset 16: density, weight, clamp max, unused
}

// Size returns the size of the GPUGodRaysParams struct in bytes.
func (g *GPUGodRaysParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the struct for GPU upload.
func (g *GPUGodRaysParams) Marshal() []byte {
	buf := make([]byte, g.Size())
	putFloats(buf, 0, g.Light[:]...)
	putFloats(buf, 16, g.Params[:]...)
	return buf
}
