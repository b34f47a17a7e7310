package camera

import (
	"math"
	"testing"
)

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestDefaultsLookDownNegativeZ(t *testing.T) {
	c := NewCamera()

	if got := c.Position(); got != [3]float32{0, 0, 12} {
		t.Fatalf("Position() = %v, want (0, 0, 12)", got)
	}
	ndc := c.Project([3]float32{0, 0, 0})
	if !near(ndc[0], 0, 1e-5) || !near(ndc[1], 0, 1e-5) {
		t.Fatalf("origin projects to %v, want screen center", ndc)
	}
	if ndc[2] <= 0 || ndc[2] >= 1 {
		t.Fatalf("origin depth %v outside (0, 1)", ndc[2])
	}
}

func TestUnprojectInvertsProject(t *testing.T) {
	c := NewCamera(WithAspect(4.0 / 3.0))

	points := [][3]float32{
		{0, 0, 0},
		{2, -1, 3},
		{-4, 2.5, -6},
	}
	for _, p := range points {
		back := c.Unproject(c.Project(p))
		for i := range 3 {
			if !near(back[i], p[i], 1e-3) {
				t.Fatalf("Unproject(Project(%v)) = %v", p, back)
			}
		}
	}
}

func TestUnprojectRayThroughCorner(t *testing.T) {
	c := NewCamera(WithAspect(1))

	v := c.Unproject([3]float32{1, 1, 0.5})
	pos := c.Position()
	dir := [3]float32{v[0] - pos[0], v[1] - pos[1], v[2] - pos[2]}
	if dir[2] >= 0 {
		t.Fatalf("ray through the top right corner points away from the scene: %v", dir)
	}

	// At the plane z = 0 the visible half height is 12 * tan(25 degrees).
	dist := -pos[2] / dir[2]
	hit := [3]float32{pos[0] + dir[0]*dist, pos[1] + dir[1]*dist, 0}
	want := float32(12 * math.Tan(25*math.Pi/180))
	if !near(hit[0], want, 1e-3) || !near(hit[1], want, 1e-3) {
		t.Fatalf("corner ray hits %v, want (%v, %v, 0)", hit, want, want)
	}
}

func TestSetAspectRebuildsProjection(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()

	c.SetAspect(2)
	after := c.ProjectionMatrix()
	if after[0] == before[0] {
		t.Fatal("projection x scale did not change with aspect")
	}
	if after[5] != before[5] {
		t.Fatal("projection y scale changed with aspect")
	}
	if c.Aspect() != 2 {
		t.Fatalf("Aspect() = %v, want 2", c.Aspect())
	}
}

func TestUniformPacksTimeAndViewport(t *testing.T) {
	c := NewCamera()
	u := c.Uniform(3.5, 2048, 1536, 2)

	if u.Position[3] != 3.5 {
		t.Fatalf("Position.w = %v, want 3.5", u.Position[3])
	}
	if u.Viewport != [4]float32{2048, 1536, 2, 0} {
		t.Fatalf("Viewport = %v", u.Viewport)
	}
	if got := len(u.Marshal()); got != u.Size() || got != 160 {
		t.Fatalf("marshalled %d bytes, Size() = %d, want 160", got, u.Size())
	}
}
