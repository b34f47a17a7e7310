// Package geometry builds CPU-side triangle meshes and curves for the badge scene graph. Builders follow the
// parametrization of the classic three.js primitives so shapes keep their proportions when ported between renderers.
package geometry

import (
	"encoding/binary"
	"math"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

// Geometry is an indexed triangle list with per-vertex positions, normals and texture coordinates.
// All attribute slices have the same length.
type Geometry struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
}

// VertexCount returns the number of vertices in the geometry.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// IndexCount returns the number of indices in the geometry.
func (g *Geometry) IndexCount() int {
	return len(g.Indices)
}

// VertexBytes interleaves the vertex attributes into GPUVertex records ready for upload.
//
// Returns:
//   - []byte: VertexCount() * 32 bytes
func (g *Geometry) VertexBytes() []byte {
	var v GPUVertex
	stride := v.Size()
	buf := make([]byte, stride*len(g.Positions))
	for i := range g.Positions {
		v.Position = g.Positions[i]
		if i < len(g.Normals) {
			v.Normal = g.Normals[i]
		}
		if i < len(g.UVs) {
			v.TexCoord = g.UVs[i]
		}
		v.MarshalTo(buf[i*stride:])
	}
	return buf
}

// IndexBytes serializes the index list as little-endian uint32 values.
func (g *Geometry) IndexBytes() []byte {
	buf := make([]byte, 4*len(g.Indices))
	for i, idx := range g.Indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
// An empty geometry returns two zero vectors.
func (g *Geometry) Bounds() (lo, hi [3]float32) {
	if len(g.Positions) == 0 {
		return lo, hi
	}
	lo, hi = g.Positions[0], g.Positions[0]
	for _, p := range g.Positions[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return lo, hi
}

// Translate offsets every position by (x, y, z).
func (g *Geometry) Translate(x, y, z float32) *Geometry {
	for i := range g.Positions {
		g.Positions[i] = common.Add3(g.Positions[i], [3]float32{x, y, z})
	}
	return g
}

// Center translates the geometry so its bounding box is centred on the origin.
func (g *Geometry) Center() *Geometry {
	lo, hi := g.Bounds()
	c := common.Scale3(common.Add3(lo, hi), 0.5)
	return g.Translate(-c[0], -c[1], -c[2])
}

// Scale multiplies every position by the given factors. Normals are corrected with the
// inverse scale and renormalized so non-uniform scales keep lighting correct.
func (g *Geometry) Scale(x, y, z float32) *Geometry {
	for i := range g.Positions {
		p := g.Positions[i]
		g.Positions[i] = [3]float32{p[0] * x, p[1] * y, p[2] * z}
	}
	if x == y && y == z {
		return g
	}
	for i := range g.Normals {
		n := g.Normals[i]
		g.Normals[i] = common.Normalize3([3]float32{n[0] / x, n[1] / y, n[2] / z})
	}
	return g
}

// appendVertex adds one vertex and returns its index.
func (g *Geometry) appendVertex(p, n [3]float32, uv [2]float32) uint32 {
	g.Positions = append(g.Positions, p)
	g.Normals = append(g.Normals, n)
	g.UVs = append(g.UVs, uv)
	return uint32(len(g.Positions) - 1)
}

// rotateAroundAxis rotates v about the unit axis by angle radians (Rodrigues' rotation formula).
func rotateAroundAxis(v, axis [3]float32, angle float32) [3]float32 {
	c := float32(math.Cos(float64(angle)))
	s := float32(math.Sin(float64(angle)))
	term1 := common.Scale3(v, c)
	term2 := common.Scale3(common.Cross3(axis, v), s)
	term3 := common.Scale3(axis, common.Dot3(axis, v)*(1-c))
	return common.Add3(common.Add3(term1, term2), term3)
}
