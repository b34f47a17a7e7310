package common

import "math"

// Add3 returns a + b.
func Add3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Sub3 returns a - b.
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Scale3 returns v scaled by s.
func Scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of a and b.
func Dot3(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a × b.
func Cross3(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length3 returns the Euclidean length of v.
func Length3(v [3]float32) float32 {
	return float32(math.Sqrt(float64(Dot3(v, v))))
}

// Distance3 returns the Euclidean distance between a and b.
func Distance3(a, b [3]float32) float32 {
	return Length3(Sub3(a, b))
}

// Normalize3 returns v scaled to unit length. A zero vector is returned unchanged.
func Normalize3(v [3]float32) [3]float32 {
	l := Length3(v)
	if l == 0 {
		return v
	}
	return Scale3(v, 1/l)
}

// Lerp3 moves a toward b by the fraction alpha and returns the result.
// An alpha of 0 returns a, an alpha of 1 returns b.
//
// Parameters:
//   - a: the start point
//   - b: the target point
//   - alpha: interpolation factor, typically in [0, 1]
//
// Returns:
//   - [3]float32: the interpolated point
func Lerp3(a, b [3]float32, alpha float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*alpha,
		a[1] + (b[1]-a[1])*alpha,
		a[2] + (b[2]-a[2])*alpha,
	}
}
