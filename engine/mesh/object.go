// Package mesh is the scene graph of the badge renderer: a tree of transformable objects whose
// leaves are drawable meshes, particle clouds and billboards.
//
// The graph is not safe for concurrent use. A tree may be built on any goroutine, but once it has
// been added to a scene only the render goroutine may touch it.
package mesh

import (
	"github.com/Carmen-Shannon/oxy-badges/common"
)

// Object is a node of the scene graph with a position, Euler rotation and scale relative to its
// parent.
type Object interface {
	// Name returns the object's label.
	//
	// Returns:
	//   - string: the name given at construction
	Name() string

	// Position returns the translation relative to the parent.
	//
	// Returns:
	//   - [3]float32: the local position
	Position() [3]float32

	// Rotation returns the X, Y and Z Euler angles in radians, applied in X * Y * Z order.
	//
	// Returns:
	//   - [3]float32: the local rotation
	Rotation() [3]float32

	// Scale returns the per-axis scale factors. A negative factor mirrors the object.
	//
	// Returns:
	//   - [3]float32: the local scale
	Scale() [3]float32

	// SetPosition sets the translation relative to the parent.
	//
	// Parameters:
	//   - x, y, z: the local position
	SetPosition(x, y, z float32)

	// SetRotation sets the Euler angles in radians.
	//
	// Parameters:
	//   - x, y, z: rotation around each axis
	SetRotation(x, y, z float32)

	// SetScale sets the per-axis scale factors.
	//
	// Parameters:
	//   - x, y, z: scale along each axis
	SetScale(x, y, z float32)

	// Visible reports whether the object and its subtree are drawn.
	Visible() bool

	// SetVisible shows or hides the object and its subtree.
	SetVisible(visible bool)

	// Parent returns the object this one is attached to, or nil for a root.
	Parent() Object

	// Children returns a copy of the attached children in insertion order.
	Children() []Object

	// Add attaches children to this object, detaching each from its previous parent first.
	// Adding an object to itself is ignored.
	//
	// Parameters:
	//   - children: the objects to attach
	Add(children ...Object)

	// Remove detaches a direct child.
	//
	// Parameters:
	//   - child: the object to detach
	//
	// Returns:
	//   - bool: true if child was attached to this object
	Remove(child Object) bool

	// LocalMatrix composes the local transform into a column-major matrix.
	LocalMatrix() [16]float32

	// WorldMatrix composes the transforms from the root down to this object.
	WorldMatrix() [16]float32

	// Traverse calls fn for this object and every descendant, depth first, parents before children.
	//
	// Parameters:
	//   - fn: the visitor
	Traverse(fn func(Object))

	// TraverseVisible is Traverse restricted to visible subtrees.
	//
	// Parameters:
	//   - fn: the visitor
	TraverseVisible(fn func(Object))

	base() *node
}

// node carries the transform and hierarchy shared by every Object implementation. self is the
// outer object so that parents and visitors see the concrete type, not the embedded node.
type node struct {
	self     Object
	name     string
	position [3]float32
	rotation [3]float32
	scale    [3]float32
	visible  bool
	parent   Object
	children []Object
}

func newNode(self Object, name string) node {
	return node{
		self:    self,
		name:    name,
		scale:   [3]float32{1, 1, 1},
		visible: true,
	}
}

func (n *node) base() *node {
	return n
}

func (n *node) Name() string {
	return n.name
}

func (n *node) Position() [3]float32 {
	return n.position
}

func (n *node) Rotation() [3]float32 {
	return n.rotation
}

func (n *node) Scale() [3]float32 {
	return n.scale
}

func (n *node) SetPosition(x, y, z float32) {
	n.position = [3]float32{x, y, z}
}

func (n *node) SetRotation(x, y, z float32) {
	n.rotation = [3]float32{x, y, z}
}

func (n *node) SetScale(x, y, z float32) {
	n.scale = [3]float32{x, y, z}
}

func (n *node) Visible() bool {
	return n.visible
}

func (n *node) SetVisible(visible bool) {
	n.visible = visible
}

func (n *node) Parent() Object {
	return n.parent
}

func (n *node) Children() []Object {
	return append([]Object(nil), n.children...)
}

func (n *node) Add(children ...Object) {
	for _, c := range children {
		if c == nil || c == n.self {
			continue
		}
		cb := c.base()
		if cb.parent != nil {
			cb.parent.Remove(c)
		}
		cb.parent = n.self
		n.children = append(n.children, c)
	}
}

func (n *node) Remove(child Object) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.base().parent = nil
			return true
		}
	}
	return false
}

func (n *node) LocalMatrix() [16]float32 {
	var m [16]float32
	common.BuildModelMatrix(m[:], n.position, n.rotation, n.scale)
	return m
}

func (n *node) WorldMatrix() [16]float32 {
	local := n.LocalMatrix()
	if n.parent == nil {
		return local
	}
	parent := n.parent.WorldMatrix()
	var out [16]float32
	common.Mul4(out[:], parent[:], local[:])
	return out
}

func (n *node) Traverse(fn func(Object)) {
	fn(n.self)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

func (n *node) TraverseVisible(fn func(Object)) {
	if !n.visible {
		return
	}
	fn(n.self)
	for _, c := range n.children {
		c.TraverseVisible(fn)
	}
}
