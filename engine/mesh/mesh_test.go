package mesh

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-badges/common"
	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/renderertest"
	"github.com/cogentcore/webgpu/wgpu"
)

func objectLayout(t *testing.T, m material.Material) wgpu.BindGroupLayoutDescriptor {
	t.Helper()
	p, err := pipeline.ForMaterial(m, renderer.HDRFormat)
	if err != nil {
		t.Fatalf("ForMaterial: %v", err)
	}
	return p.BindGroupLayoutDescriptor(1)
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestWorldMatrixComposesParents(t *testing.T) {
	root := NewGroup("root")
	root.SetPosition(1, 0, 0)
	child := NewGroup("child")
	child.SetPosition(0, 2, 0)
	root.Add(child)

	p := common.TransformPoint(sliceOf(child.WorldMatrix()), [3]float32{0, 0, 0})
	if !near(p[0], 1) || !near(p[1], 2) || !near(p[2], 0) {
		t.Errorf("child origin at %v, want [1 2 0]", p)
	}

	// a mirrored parent flips the child's x
	root.SetScale(-1, 1, 1)
	root.SetPosition(0, 0, 0)
	child.SetPosition(3, 0, 0)
	p = common.TransformPoint(sliceOf(child.WorldMatrix()), [3]float32{0, 0, 0})
	if !near(p[0], -3) {
		t.Errorf("mirrored child origin at %v, want x = -3", p)
	}

	// rotating the parent a quarter turn about y carries +x onto -z
	root.SetScale(1, 1, 1)
	root.SetRotation(0, math.Pi/2, 0)
	child.SetPosition(1, 0, 0)
	p = common.TransformPoint(sliceOf(child.WorldMatrix()), [3]float32{0, 0, 0})
	if !near(p[0], 0) || !near(p[2], -1) {
		t.Errorf("rotated child origin at %v, want [0 0 -1]", p)
	}
}

func sliceOf(m [16]float32) []float32 {
	return m[:]
}

func TestAddReparentsAndRemoveDetaches(t *testing.T) {
	a, b := NewGroup("a"), NewGroup("b")
	child := NewGroup("child")
	a.Add(child)
	b.Add(child)

	if len(a.Children()) != 0 {
		t.Error("child still attached to its old parent")
	}
	if child.Parent() != Object(b) {
		t.Errorf("parent is %v, want b", child.Parent())
	}

	a.Add(a, nil)
	if len(a.Children()) != 0 {
		t.Error("group added itself or nil")
	}

	if !b.Remove(child) {
		t.Fatal("Remove of an attached child returned false")
	}
	if child.Parent() != nil {
		t.Error("removed child kept its parent")
	}
	if b.Remove(child) {
		t.Error("second Remove returned true")
	}
}

func TestTraverseVisibleSkipsHiddenSubtrees(t *testing.T) {
	root := NewGroup("root")
	shown, hidden, inner := NewGroup("shown"), NewGroup("hidden"), NewGroup("inner")
	hidden.Add(inner)
	root.Add(shown, hidden)
	hidden.SetVisible(false)

	var all, visible []string
	root.Traverse(func(o Object) { all = append(all, o.Name()) })
	root.TraverseVisible(func(o Object) { visible = append(visible, o.Name()) })

	if len(all) != 4 || all[0] != "root" || all[3] != "inner" {
		t.Errorf("Traverse visited %v", all)
	}
	if len(visible) != 2 || visible[1] != "shown" {
		t.Errorf("TraverseVisible visited %v", visible)
	}
}

func TestMeshUploadAndDispose(t *testing.T) {
	r := renderertest.New(64, 64)
	mat := material.NewPhysical(material.WithColor(0xffd700))
	geom := geometry.Cylinder(0.05, 0.2, 4, 8)
	m := NewMesh("quill", geom, mat)

	if err := m.Upload(r, objectLayout(t, mat)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := m.Upload(r, objectLayout(t, mat)); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	if got := len(r.Meshes()); got != 1 {
		t.Errorf("%d mesh uploads, want 1", got)
	}
	if m.Provider().IndexCount() != geom.IndexCount() {
		t.Errorf("index count %d, want %d", m.Provider().IndexCount(), geom.IndexCount())
	}

	w := m.UniformWrite()
	if len(w.Data) != mat.UniformSize() || w.Provider != m.Provider() {
		t.Errorf("uniform write of %d bytes to %v", len(w.Data), w.Provider)
	}

	root := NewGroup("badge")
	root.Add(m)
	if n := Dispose(root); n != 1 {
		t.Errorf("Dispose disposed %d drawables", n)
	}
	if n := Dispose(root); n != 0 {
		t.Errorf("second Dispose disposed %d drawables", n)
	}
	if !m.Provider().Released() || !mat.Disposed() {
		t.Error("dispose left the provider or material alive")
	}
	if err := m.Upload(r, objectLayout(t, mat)); err == nil {
		t.Error("Upload after Dispose succeeded")
	}
}

func TestSharedMaterialDisposedOnce(t *testing.T) {
	mat := material.NewPhysical()
	geom := geometry.Plane(1, 1)
	a, b := NewMesh("a", geom, mat), NewMesh("b", geom, mat)
	root := NewGroup("root")
	root.Add(a, b)

	if n := Dispose(root); n != 2 {
		t.Errorf("disposed %d drawables, want 2", n)
	}
	if !a.Provider().Released() || !b.Provider().Released() {
		t.Error("each mesh must release its own provider")
	}
}

func TestPointsInstanceBytes(t *testing.T) {
	p := NewPoints("cloud", [][3]float32{{1, 2, 3}, {-1, 0, 0.5}}, material.NewPoints(material.WithSize(0.08)))
	buf := p.InstanceBytes()
	if len(buf) != 32 {
		t.Fatalf("%d instance bytes, want 32", len(buf))
	}
	read := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
	}
	if read(0) != 1 || read(8) != 3 || read(12) != 1 || read(16) != -1 || read(24) != 0.5 {
		t.Errorf("unexpected instance data %v", buf)
	}

	r := renderertest.New(8, 8)
	if err := p.Upload(r, objectLayout(t, p.Material())); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if p.Provider().InstanceCount() != 2 {
		t.Errorf("instance count %d", p.Provider().InstanceCount())
	}
}

func TestSpriteUploadNeedsTexture(t *testing.T) {
	r := renderertest.New(8, 8)
	bare := NewSprite("bare", material.NewSprite())
	if err := bare.Upload(r, objectLayout(t, bare.Material())); err == nil {
		t.Error("sprite without a texture uploaded")
	}

	tex := common.TextureStagingData{Pixels: make([]byte, 4*4*4), Width: 4, Height: 4}
	s := NewSprite("glow", material.NewSprite(material.WithTexture(tex)))
	if err := s.Upload(r, objectLayout(t, s.Material())); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	s.Dispose()
	if s.Material().Texture() != nil {
		t.Error("dispose kept the sprite texture")
	}
}
