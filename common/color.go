package common

import "math"

// ColorHex converts a packed 0xRRGGBB sRGB color into linear RGB components in [0, 1].
// Scene lighting and the postprocess chain operate in linear space; the output pass
// converts back when writing to an sRGB surface.
//
// Parameters:
//   - hex: the packed sRGB color
//
// Returns:
//   - [3]float32: linear RGB components
func ColorHex(hex uint32) [3]float32 {
	r := float32((hex>>16)&0xff) / 255
	g := float32((hex>>8)&0xff) / 255
	b := float32(hex&0xff) / 255
	return [3]float32{SRGBToLinear(r), SRGBToLinear(g), SRGBToLinear(b)}
}

// SRGBToLinear converts a single sRGB encoded channel to linear space.
func SRGBToLinear(c float32) float32 {
	if c < 0.04045 {
		return c * 0.0773993808
	}
	return float32(math.Pow(float64(c)*0.9478672986+0.0521327014, 2.4))
}
