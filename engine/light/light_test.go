package light

import (
	"math"
	"testing"
)

func TestFollowConvergesWithoutOvershoot(t *testing.T) {
	l := NewLight(LightTypePoint, WithPosition(0, 0, 8))
	target := [3]float32{4, -3, 8}

	prev := float32(math.Inf(1))
	for range 200 {
		p := l.Follow(target, 0.1)
		if p[0] > target[0] || p[1] < target[1] {
			t.Fatalf("overshot target: %v", p)
		}
		d := float32(math.Hypot(float64(target[0]-p[0]), float64(target[1]-p[1])))
		if d > prev {
			t.Fatalf("distance grew from %v to %v", prev, d)
		}
		prev = d
	}
	if prev > 1e-4 {
		t.Fatalf("distance after 200 steps = %v, want < 1e-4", prev)
	}
}

func TestFollowMovesTenPercent(t *testing.T) {
	l := NewLight(LightTypePoint)
	p := l.Follow([3]float32{10, 0, 0}, 0.1)
	if math.Abs(float64(p[0]-1)) > 1e-6 {
		t.Fatalf("first step moved to %v, want x = 1", p)
	}
}

func TestToGPULights(t *testing.T) {
	lights := []Light{
		NewLight(LightTypeAmbient, WithIntensity(0.5)),
		NewLight(LightTypePoint, WithPosition(1, 2, 8), WithIntensity(50), WithRange(100), WithDecay(2)),
		NewLight(LightTypePoint, WithPosition(9, 9, 9)),
		NewLight(LightTypeAmbient, WithEnabled(false)),
	}
	g := ToGPULights(lights)

	if g.Ambient != [4]float32{0.5, 0.5, 0.5, 0} {
		t.Fatalf("Ambient = %v", g.Ambient)
	}
	if g.PointPosition != [4]float32{1, 2, 8, 100} {
		t.Fatalf("PointPosition = %v", g.PointPosition)
	}
	if g.PointColor != [4]float32{50, 50, 50, 2} {
		t.Fatalf("PointColor = %v", g.PointColor)
	}
	if n := len(g.Marshal()); n != 48 {
		t.Fatalf("Marshal() length = %d, want 48", n)
	}
}
