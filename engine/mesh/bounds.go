package mesh

import (
	"github.com/Carmen-Shannon/oxy-badges/common"
)

// boundsSlack widens every sphere to cover small vertex shader displacements such as the heart beat.
const boundsSlack = 1.1

// pointPadding covers the unit quad drawn around each particle.
const pointPadding = 0.5

// BoundingSphere returns a sphere enclosing the drawable in world space.
//
// Parameters:
//   - d: the drawable
//
// Returns:
//   - [3]float32: the sphere center
//   - float32: the sphere radius
func BoundingSphere(d Drawable) ([3]float32, float32) {
	var lo, hi [3]float32
	pad := float32(0)
	if p, ok := d.(*Points); ok {
		lo, hi = pointBounds(p.positions)
		pad = pointPadding
	} else if g := d.Geometry(); g != nil {
		lo, hi = g.Bounds()
	}

	mid := common.Scale3(common.Add3(lo, hi), 0.5)
	radius := common.Length3(common.Sub3(hi, lo))/2 + pad

	world := d.WorldMatrix()
	center := common.TransformPoint(world[:], mid)
	return center, radius * common.MaxScale(world[:]) * boundsSlack
}

func pointBounds(positions [][3]float32) (lo, hi [3]float32) {
	if len(positions) == 0 {
		return lo, hi
	}
	lo, hi = positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}
