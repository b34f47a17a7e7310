package particles

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

func TestPositionsFollowEachDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	cases := []struct {
		name   string
		inside func(p [3]float32) bool
	}{
		{"votes", func(p [3]float32) bool {
			return abs(p[0]) <= 6 && abs(p[1]) <= 6 && abs(p[2]) <= 6
		}},
		{"posters", func(p [3]float32) bool {
			return abs(p[0]) <= 0.1 && abs(p[2]) <= 0.1 && p[1] >= -2.5 && p[1] <= 7.5
		}},
		{"likes", func(p [3]float32) bool {
			// outline spans x in [-3, 8] and y in [0, 9.5] before centering and scaling
			return p[0] >= -2.96 && p[0] <= 2.96 && p[1] >= -2.56 && p[1] <= 2.76 && abs(p[2]) <= 0.76
		}},
		{"commentators", func(p [3]float32) bool {
			r := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
			return math.Abs(r-3.5) < 1e-4
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pts := Positions(tc.name, rng)
			if len(pts) != Fields[tc.name].Count {
				t.Fatalf("%d points, want %d", len(pts), Fields[tc.name].Count)
			}
			for i, p := range pts {
				if !tc.inside(p) {
					t.Fatalf("point %d %v outside the distribution", i, p)
				}
			}
		})
	}

	if Positions("unknown", rng) != nil {
		t.Error("unknown badge produced particles")
	}
}

func abs(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

func TestCreateBuildsAdditivePoints(t *testing.T) {
	g := Create("commentators", rand.New(rand.NewSource(2)))
	children := g.Children()
	if len(children) != 1 {
		t.Fatalf("%d children, want 1", len(children))
	}
	p, ok := children[0].(*mesh.Points)
	if !ok {
		t.Fatalf("child is %T, want *mesh.Points", children[0])
	}
	if p.Count() != 300 {
		t.Errorf("%d points", p.Count())
	}
	m := p.Material()
	if m.Kind() != material.KindPoints || m.Blending() != material.BlendingAdditive || m.DepthWrite() || !m.SizeAttenuation() {
		t.Errorf("material %s is not an additive, depth-write free, attenuated points material", m.PipelineKey())
	}
	if m.Size() != 0.06 {
		t.Errorf("size %f", m.Size())
	}

	if n := len(Create("unknown", rand.New(rand.NewSource(3))).Children()); n != 0 {
		t.Errorf("unknown badge group has %d children", n)
	}
}

func TestGlowTextureFallsOff(t *testing.T) {
	const size = 32
	tex := GlowTexture(size)
	if tex.Width != size || tex.Height != size || len(tex.Pixels) != size*size*4 {
		t.Fatalf("texture %dx%d with %d bytes", tex.Width, tex.Height, len(tex.Pixels))
	}
	alpha := func(x, y int) byte { return tex.Pixels[(y*size+x)*4+3] }
	center, mid, corner := alpha(size/2, size/2), alpha(size/2+size/4, size/2), alpha(0, 0)
	if !(center > mid && mid > corner) {
		t.Errorf("alpha does not fall off: center %d, mid %d, corner %d", center, mid, corner)
	}
	if corner != 0 {
		t.Errorf("corner alpha %d, want 0", corner)
	}
	if math.Abs(glowAlpha(0.2)-0.8) > 1e-9 || glowAlpha(2) != 0 {
		t.Error("gradient stops misplaced")
	}
}

func TestNewGlowSprite(t *testing.T) {
	s := NewGlowSprite(0xffd700, 6)
	if sc := s.Scale(); sc != [3]float32{6, 6, 1} {
		t.Errorf("scale %v", sc)
	}
	m := s.Material()
	if m.Texture() == nil || m.Blending() != material.BlendingAdditive || m.DepthWrite() {
		t.Errorf("glow material %s", m.PipelineKey())
	}
}
