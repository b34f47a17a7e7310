package pipeline

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestForMaterialMergesStageVisibility(t *testing.T) {
	p, err := ForMaterial(material.NewPhysical(), wgpu.TextureFormatRGBA16Float)
	if err != nil {
		t.Fatalf("ForMaterial: %v", err)
	}
	if p.PipelineKey() != "physical/opaque" {
		t.Fatalf("PipelineKey() = %q", p.PipelineKey())
	}
	frame := p.BindGroupLayoutDescriptor(0)
	if len(frame.Entries) != 2 {
		t.Fatalf("group 0 has %d entries, want 2", len(frame.Entries))
	}
	want := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	for _, e := range frame.Entries {
		if e.Visibility != want {
			t.Fatalf("binding %d visibility = %v, want vertex|fragment", e.Binding, e.Visibility)
		}
	}
	if p.TargetFormat() != wgpu.TextureFormatRGBA16Float {
		t.Fatalf("TargetFormat() = %v", p.TargetFormat())
	}
	if p.BlendEnabled() || !p.DepthWriteEnabled() || !p.DepthTestEnabled() {
		t.Fatal("opaque material pipeline should depth test, depth write and not blend")
	}
}

func TestMaterialPipelinesDrawBothFaces(t *testing.T) {
	p, err := ForMaterial(material.NewHeart(), wgpu.TextureFormatRGBA16Float)
	if err != nil {
		t.Fatalf("ForMaterial: %v", err)
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("CullMode() = %v, mirrored meshes need both faces", p.CullMode())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList || p.FrontFace() != wgpu.FrontFaceCCW {
		t.Errorf("topology %v front face %v", p.Topology(), p.FrontFace())
	}
	if p.WriteMask() != wgpu.ColorWriteMaskAll {
		t.Errorf("WriteMask() = %v", p.WriteMask())
	}
}

func TestForMaterialBlendStates(t *testing.T) {
	additive, err := ForMaterial(material.NewPoints(material.WithBlending(material.BlendingAdditive), material.WithDepthWrite(false)), wgpu.TextureFormatRGBA16Float)
	if err != nil {
		t.Fatalf("ForMaterial: %v", err)
	}
	if !additive.BlendEnabled() || additive.DepthWriteEnabled() {
		t.Fatal("additive points should blend without writing depth")
	}
	if additive.BlendState().Color.DstFactor != wgpu.BlendFactorOne {
		t.Fatalf("additive dst factor = %v", additive.BlendState().Color.DstFactor)
	}
	if n := len(additive.VertexLayouts()); n != 2 {
		t.Fatalf("points pipeline has %d vertex buffers, want 2", n)
	}

	alpha, err := ForMaterial(material.NewSprite(), wgpu.TextureFormatRGBA16Float)
	if err != nil {
		t.Fatalf("ForMaterial: %v", err)
	}
	if alpha.BlendState().Color.DstFactor != wgpu.BlendFactorOneMinusSrcAlpha {
		t.Fatalf("alpha dst factor = %v", alpha.BlendState().Color.DstFactor)
	}
}

func TestNewPipelineRequiresShaders(t *testing.T) {
	if _, err := NewPipeline("empty"); err == nil {
		t.Fatal("pipeline without shaders accepted")
	}
}

func TestMergeBindGroupLayoutsKeepsStageOnlyGroups(t *testing.T) {
	vs := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageVertex}}},
	}
	fs := map[int]wgpu.BindGroupLayoutDescriptor{
		0: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 1, Visibility: wgpu.ShaderStageFragment}}},
		1: {Entries: []wgpu.BindGroupLayoutEntry{{Binding: 0, Visibility: wgpu.ShaderStageFragment}}},
	}
	merged := mergeBindGroupLayouts(vs, fs)
	if len(merged) != 2 {
		t.Fatalf("got %d groups, want 2", len(merged))
	}
	g0 := merged[0].Entries
	if len(g0) != 2 || g0[0].Binding != 0 || g0[1].Binding != 1 {
		t.Fatalf("group 0 entries = %+v", g0)
	}
	if merged[1].Entries[0].Visibility != wgpu.ShaderStageFragment {
		t.Fatal("fragment-only group lost its visibility")
	}
}

// compilerGap reports naga errors for features it does not implement yet, which say nothing about
// the shader source.
func compilerGap(err error) bool {
	msg := err.Error()
	for _, s := range []string{"not yet implemented", "not supported", "lowering error", "SPIR-V generation error"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func TestForMaterialValidatesEveryKind(t *testing.T) {
	kinds := map[string]material.Material{
		"physical": material.NewPhysical(),
		"heart":    material.NewHeart(),
		"ink":      material.NewInk(),
		"points":   material.NewPoints(),
		"sprite":   material.NewSprite(),
	}
	for name, m := range kinds {
		t.Run(name, func(t *testing.T) {
			defer m.Dispose()
			p, err := ForMaterial(m, wgpu.TextureFormatRGBA16Float, shader.WithValidation(true))
			if err != nil {
				if compilerGap(err) {
					t.Skipf("compiler gap: %v", err)
				}
				t.Fatalf("ForMaterial: %v", err)
			}
			if p.PipelineKey() != m.PipelineKey() {
				t.Errorf("PipelineKey() = %q, want %q", p.PipelineKey(), m.PipelineKey())
			}
		})
	}
}

func TestForMaterialValidationRejectsBrokenSource(t *testing.T) {
	src := material.NewPhysical().ShaderSource()
	broken := strings.Replace(src, "return ", "let missing = undefined_symbol; return ", 1)
	if _, err := shader.NewShader("broken/vs", shader.ShaderTypeVertex, broken); err != nil {
		t.Fatalf("NewShader without validation: %v", err)
	}
	if _, err := shader.NewShader("broken/vs", shader.ShaderTypeVertex, broken, shader.WithValidation(true)); err == nil {
		t.Fatal("broken shader accepted with validation on")
	}
}
