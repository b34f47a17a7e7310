package mesh

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

func TestBoundingSphereFollowsWorldTransform(t *testing.T) {
	g := NewGroup("root")
	g.SetPosition(0, 2, 0)
	m := NewMesh("plane", geometry.Plane(2, 2), material.NewPhysical())
	m.SetPosition(3, 0, 0)
	m.SetScale(2, 1, 1)
	g.Add(m)

	center, radius := BoundingSphere(m)
	if !near(center[0], 3) || !near(center[1], 2) || !near(center[2], 0) {
		t.Errorf("center %v, want (3, 2, 0)", center)
	}
	// half diagonal sqrt(2), largest scale 2, slack 1.1
	if want := float32(1.41421356 * 2 * boundsSlack); !near(radius, want) {
		t.Errorf("radius %v, want %v", radius, want)
	}
}

func TestBoundingSphereOfPointsCoversPositions(t *testing.T) {
	p := NewPoints("cloud", [][3]float32{{-4, 0, 0}, {4, 0, 0}, {0, 1, 0}}, material.NewPoints())
	center, radius := BoundingSphere(p)
	if !near(center[0], 0) || !near(center[1], 0.5) {
		t.Errorf("center %v", center)
	}
	if radius < 4 {
		t.Errorf("radius %v does not reach the outer particles", radius)
	}

	empty := NewPoints("empty", nil, material.NewPoints())
	if _, r := BoundingSphere(empty); r <= 0 {
		t.Errorf("empty cloud radius %v, want the particle padding", r)
	}
}
