// Package badge builds the four badge scene graphs and animates them.
package badge

import (
	"math"

	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

// Badge is one constructed badge: a scene graph subtree plus the animation that drives it. A badge
// owns every GPU resource under its root and releases them in Dispose.
type Badge interface {
	// Root returns the subtree to add to the scene.
	//
	// Returns:
	//   - mesh.Object: the root group, never nil
	Root() mesh.Object

	// Variant returns the variant the badge was built for.
	Variant() Variant

	// Update advances the animation. It only touches the badge's own transforms and uniforms.
	//
	// Parameters:
	//   - elapsed: seconds since the render loop started
	//   - light: the pointer light position, or nil when no light is tracked
	Update(elapsed float64, light *[3]float32)

	// Dispose releases the GPU resources and materials of every drawable under the root. Only the
	// first call has an effect.
	Dispose()

	// Disposed reports whether Dispose has been called.
	Disposed() bool

	// Placeholder reports whether the badge is an empty stand-in built because the real one could
	// not be.
	Placeholder() bool
}

// base holds what every badge shares.
type base struct {
	variant  Variant
	root     *mesh.Group
	disposed bool
}

func newBase(v Variant) base {
	return base{variant: v, root: mesh.NewGroup(v.String())}
}

func (b *base) Root() mesh.Object {
	return b.root
}

func (b *base) Variant() Variant {
	return b.variant
}

func (b *base) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	mesh.Dispose(b.root)
}

func (b *base) Disposed() bool {
	return b.disposed
}

func (b *base) Placeholder() bool {
	return false
}

// placeholderBadge is an empty group that never animates.
type placeholderBadge struct {
	base
}

var _ Badge = &placeholderBadge{}

func newPlaceholder(v Variant) *placeholderBadge {
	return &placeholderBadge{base: newBase(v)}
}

func (b *placeholderBadge) Update(elapsed float64, light *[3]float32) {}

func (b *placeholderBadge) Placeholder() bool {
	return true
}

// votesBadge spins a pair of mirrored horns while two tilted rings turn the other way.
type votesBadge struct {
	base
	ringInner *mesh.Mesh
	ringOuter *mesh.Mesh
}

var _ Badge = &votesBadge{}

func (b *votesBadge) Update(elapsed float64, light *[3]float32) {
	t := float32(elapsed)
	b.root.SetRotation(0, t*0.2, 0)
	b.ringInner.SetRotation(ringInnerTilt, -t*0.4, 0)
	b.ringOuter.SetRotation(ringOuterTilt, -t*0.25, 0)
}

// postersBadge turns the tilted quill and bobs it, with a ring circling the tip.
type postersBadge struct {
	base
	quill *mesh.Group
	orbit *mesh.Mesh
	ink   material.Material
}

var _ Badge = &postersBadge{}

func (b *postersBadge) Update(elapsed float64, light *[3]float32) {
	t := float32(elapsed)
	b.quill.SetRotation(0, t*0.1, math.Pi/8)
	b.quill.SetPosition(0, float32(math.Sin(elapsed))*quillBob, 0)
	angle := elapsed * 0.5
	b.orbit.SetPosition(float32(math.Cos(angle))*orbitRadius, -1.5, float32(math.Sin(angle))*orbitRadius)
	b.orbit.SetRotation(math.Pi/2+float32(math.Cos(elapsed))*0.3, 0, 0)
	if b.ink != nil {
		b.ink.SetTime(t)
	}
}

// likesBadge turns the heart, feeds the pointer light into its shader and pulses its particles.
type likesBadge struct {
	base
	heart     material.Material
	particles mesh.Object
}

var _ Badge = &likesBadge{}

func (b *likesBadge) Update(elapsed float64, light *[3]float32) {
	t := float32(elapsed)
	b.heart.SetTime(t)
	if light != nil {
		b.heart.SetLightPosition(*light)
	}
	b.root.SetRotation(0, -t*0.15, 0)
	s := 1 + 0.05*float32(math.Sin(2*elapsed))
	b.particles.SetScale(s, s, s)
}

// commentatorsBadge tumbles the knot on two axes while the orbit copy turns against it.
type commentatorsBadge struct {
	base
	orbit *mesh.Mesh
}

var _ Badge = &commentatorsBadge{}

func (b *commentatorsBadge) Update(elapsed float64, light *[3]float32) {
	t := float32(elapsed)
	b.root.SetRotation(t*0.1, t*0.15, 0)
	b.orbit.SetRotation(0, 0, -t*0.3)
}
