package common

import (
	"math"
	"testing"
)

func testFrustum() Frustum {
	var proj, view, vp [16]float32
	Perspective(proj[:], float32(50*math.Pi/180), 1, 0.1, 1000)
	LookAt(view[:], 0, 0, 12, 0, 0, 0, 0, 1, 0)
	Mul4(vp[:], proj[:], view[:])
	return ExtractFrustumFromMatrix(vp[:])
}

func TestFrustumContainsSphere(t *testing.T) {
	f := testFrustum()
	tests := []struct {
		name   string
		center [3]float32
		radius float32
		want   bool
	}{
		{"origin", [3]float32{0, 0, 0}, 1, true},
		{"far left", [3]float32{-500, 0, 0}, 1, false},
		{"straddling left edge", [3]float32{-6.5, 0, 0}, 1, true},
		{"above", [3]float32{0, 100, 0}, 1, false},
		{"behind camera", [3]float32{0, 0, 40}, 1, false},
		{"past far plane", [3]float32{0, 0, -2000}, 1, false},
		{"huge sphere", [3]float32{-500, 0, 0}, 600, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.ContainsSphere(tt.center, tt.radius); got != tt.want {
				t.Errorf("ContainsSphere(%v, %v) = %v, want %v", tt.center, tt.radius, got, tt.want)
			}
		})
	}
}

func TestMaxScale(t *testing.T) {
	var m [16]float32
	BuildModelMatrix(m[:], [3]float32{5, 5, 5}, [3]float32{0.3, 1.2, 0}, [3]float32{1, 3, 2})
	if s := MaxScale(m[:]); math.Abs(float64(s-3)) > 1e-5 {
		t.Errorf("MaxScale = %v, want 3", s)
	}
}
