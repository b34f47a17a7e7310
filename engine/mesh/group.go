package mesh

// Group is an Object without geometry, used to transform a set of children together.
type Group struct {
	node
}

var _ Object = &Group{}

// NewGroup creates an empty group at the origin with unit scale.
//
// Parameters:
//   - name: label of the group
//
// Returns:
//   - *Group: the group
func NewGroup(name string) *Group {
	g := &Group{}
	g.node = newNode(g, name)
	return g
}

// Drawables collects every Drawable in the subtree rooted at root, in traversal order.
//
// Parameters:
//   - root: the subtree to search, may be nil
//
// Returns:
//   - []Drawable: the drawables found
func Drawables(root Object) []Drawable {
	if root == nil {
		return nil
	}
	var out []Drawable
	root.Traverse(func(o Object) {
		if d, ok := o.(Drawable); ok {
			out = append(out, d)
		}
	})
	return out
}

// Dispose releases the GPU resources and materials of every Drawable under root. Drawables that
// were already disposed are skipped, so calling it twice on the same tree is harmless.
//
// Parameters:
//   - root: the subtree to dispose, may be nil
//
// Returns:
//   - int: the number of drawables disposed by this call
func Dispose(root Object) int {
	n := 0
	for _, d := range Drawables(root) {
		if d.Disposed() {
			continue
		}
		d.Dispose()
		n++
	}
	return n
}
