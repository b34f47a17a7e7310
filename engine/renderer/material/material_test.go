package material

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestUniformSizes(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindPhysical, 192},
		{KindHeart, 176},
		{KindInk, 96},
		{KindPoints, 96},
		{KindSprite, 80},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			m := newMaterial(tt.kind)
			if got := m.UniformSize(); got != tt.want {
				t.Fatalf("UniformSize() = %d, want %d", got, tt.want)
			}
			var model [16]float32
			common.Identity(model[:])
			if got := len(m.MarshalUniform(model)); got != tt.want {
				t.Fatalf("len(MarshalUniform) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPipelineKey(t *testing.T) {
	tests := []struct {
		name string
		m    Material
		want string
	}{
		{"physical", NewPhysical(), "physical/opaque"},
		{"transparent sprite", NewSprite(), "sprite/alpha"},
		{"additive points", NewPoints(WithBlending(BlendingAdditive), WithDepthWrite(false)), "points/additive/nodepth"},
		{"ink", NewInk(), "ink/alpha/nodepth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.PipelineKey(); got != tt.want {
				t.Fatalf("PipelineKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShaderSourcesEmbedded(t *testing.T) {
	for _, k := range Kinds {
		src := ShaderSource(k)
		if src == "" {
			t.Fatalf("%s: no shader source", k)
		}
		for _, want := range []string{"fn vs_main", "fn fs_main", "//@badge:group 1 0"} {
			if !strings.Contains(src, want) {
				t.Errorf("%s: shader source missing %q", k, want)
			}
		}
	}
}

func TestPhysicalUniformPacking(t *testing.T) {
	m := NewPhysical(
		WithColorRGB([3]float32{0.25, 0.5, 0.75}),
		WithOpacity(0.5),
		WithMetalness(0.9),
		WithRoughness(0.3),
		WithIridescence(1, 1.8),
		WithEmissive(0xffffff, 0.2),
	)
	var model [16]float32
	common.Identity(model[:])
	model[12] = 3
	buf := m.MarshalUniform(model)

	if got := readFloat(buf, 48); got != 3 {
		t.Errorf("model translation x = %v, want 3", got)
	}
	if got := readFloat(buf, 128+12); got != 0.5 {
		t.Errorf("color alpha = %v, want 0.5", got)
	}
	if got := readFloat(buf, 144); math.Abs(float64(got-0.2)) > 1e-6 {
		t.Errorf("emissive r = %v, want 0.2", got)
	}
	wantParams := []float32{0.9, 0.3, 1, 1.8}
	for i, want := range wantParams {
		if got := readFloat(buf, 176+i*4); math.Abs(float64(got-want)) > 1e-6 {
			t.Errorf("params[%d] = %v, want %v", i, got, want)
		}
	}
}

func TestHeartUniformTracksLight(t *testing.T) {
	m := NewHeart(WithColor(0xff0055))
	if got := m.LightPosition(); got != [3]float32{0, 0, 8} {
		t.Fatalf("default light position = %v", got)
	}
	m.SetTime(2.5)
	m.SetLightPosition([3]float32{1, -2, 8})

	var model [16]float32
	common.Identity(model[:])
	buf := m.MarshalUniform(model)
	if got := readFloat(buf, 144+4); got != -2 {
		t.Errorf("light y = %v, want -2", got)
	}
	if got := readFloat(buf, 160); got != 2.5 {
		t.Errorf("time = %v, want 2.5", got)
	}
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	var model [16]float32
	common.BuildModelMatrix(model[:], [3]float32{5, 0, 0}, [3]float32{}, [3]float32{2, 1, 1})
	nm := NormalMatrix(model)
	if math.Abs(float64(nm[0]-0.5)) > 1e-6 {
		t.Errorf("nm[0] = %v, want 0.5", nm[0])
	}
	if nm[12] != 0 || nm[3] != 0 {
		t.Errorf("normal matrix carries translation: %v", nm)
	}

	var singular [16]float32
	nm = NormalMatrix(singular)
	if nm[0] != 1 || nm[5] != 1 || nm[10] != 1 || nm[15] != 1 {
		t.Errorf("singular model should yield identity, got %v", nm)
	}
}

func TestDisposeIsIdempotent(t *testing.T) {
	m := NewSprite(WithTexture(common.TextureStagingData{Pixels: make([]byte, 4), Width: 1, Height: 1}))
	if m.Texture() == nil {
		t.Fatal("texture not staged")
	}
	m.Dispose()
	m.Dispose()
	if !m.Disposed() || m.Texture() != nil {
		t.Fatal("dispose did not drop the texture")
	}
}
