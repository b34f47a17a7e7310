package geometry

import (
	"math"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

// ExtrudeOptions controls how a Shape is pushed into 3D.
type ExtrudeOptions struct {
	Depth          float32
	Steps          int
	CurveSegments  int
	BevelEnabled   bool
	BevelThickness float32
	BevelSize      float32
	BevelSegments  int
}

// DefaultExtrudeOptions mirrors the usual defaults of a bevelled extrusion.
var DefaultExtrudeOptions = ExtrudeOptions{
	Depth:          1,
	Steps:          1,
	CurveSegments:  12,
	BevelEnabled:   true,
	BevelThickness: 0.2,
	BevelSize:      0.1,
	BevelSegments:  3,
}

// Extrude pushes the outline of shape along +Z, optionally rounding both caps with a bevel. The result is
// flat shaded: every triangle owns its three vertices.
//
// Parameters:
//   - shape: the outline to extrude
//   - opts: depth, subdivision and bevel settings
//
// Returns:
//   - *Geometry: the extruded mesh
func Extrude(shape *Shape, opts ExtrudeOptions) *Geometry {
	contour := shape.contour(max(opts.CurveSegments, 1))
	g := &Geometry{}
	if len(contour) < 3 {
		return g
	}
	steps := max(opts.Steps, 1)
	bevelSegments := opts.BevelSegments
	bevelThickness, bevelSize := opts.BevelThickness, opts.BevelSize
	if !opts.BevelEnabled {
		bevelSegments, bevelThickness, bevelSize = 0, 0, 0
	}

	offsets := bevelVectors(contour)
	layer := func(z, bs float32) [][3]float32 {
		out := make([][3]float32, len(contour))
		for i, p := range contour {
			out[i] = [3]float32{p[0] + offsets[i][0]*bs, p[1] + offsets[i][1]*bs, z}
		}
		return out
	}

	// layers run from the front cap (most negative z) to the back cap
	var layers [][][3]float32
	for b := range bevelSegments {
		t := float64(b) / float64(bevelSegments)
		z := bevelThickness * float32(math.Cos(t*math.Pi/2))
		bs := bevelSize * float32(math.Sin(t*math.Pi/2))
		layers = append(layers, layer(-z, bs))
	}
	for s := 0; s <= steps; s++ {
		layers = append(layers, layer(opts.Depth/float32(steps)*float32(s), bevelSize))
	}
	for b := bevelSegments - 1; b >= 0; b-- {
		t := float64(b) / float64(bevelSegments)
		z := bevelThickness * float32(math.Cos(t*math.Pi/2))
		bs := bevelSize * float32(math.Sin(t*math.Pi/2))
		layers = append(layers, layer(opts.Depth+z, bs))
	}

	tris := triangulate(contour)
	front, back := layers[0], layers[len(layers)-1]
	for _, t := range tris {
		g.addFlatTriangle(front[t[2]], front[t[1]], front[t[0]])
	}
	for _, t := range tris {
		g.addFlatTriangle(back[t[0]], back[t[1]], back[t[2]])
	}

	n := len(contour)
	for l := 0; l < len(layers)-1; l++ {
		lo, hi := layers[l], layers[l+1]
		for i := range n {
			j := (i + 1) % n
			g.addFlatTriangle(lo[i], lo[j], hi[j])
			g.addFlatTriangle(lo[i], hi[j], hi[i])
		}
	}
	return g
}

// addFlatTriangle appends a triangle with its own vertices and a shared face normal.
// Zero-area triangles are dropped.
func (g *Geometry) addFlatTriangle(a, b, c [3]float32) {
	cr := common.Cross3(common.Sub3(b, a), common.Sub3(c, a))
	if common.Length3(cr) < 1e-10 {
		return
	}
	n := common.Normalize3(cr)
	for _, p := range [3][3]float32{a, b, c} {
		g.Indices = append(g.Indices, g.appendVertex(p, n, [2]float32{p[0], p[1]}))
	}
}

// bevelVectors returns per-vertex outward miter offsets of a counter-clockwise contour.
func bevelVectors(contour [][2]float32) [][2]float32 {
	n := len(contour)
	out := make([][2]float32, n)
	for i := range n {
		prev, cur, next := contour[(i+n-1)%n], contour[i], contour[(i+1)%n]
		n0 := edgeNormal(prev, cur)
		n1 := edgeNormal(cur, next)
		m := normalize2([2]float32{n0[0] + n1[0], n0[1] + n1[1]})
		d := m[0]*n0[0] + m[1]*n0[1]
		d = max(d, 0.3)
		out[i] = [2]float32{m[0] / d, m[1] / d}
	}
	return out
}

// edgeNormal is the outward normal of edge a->b on a counter-clockwise polygon.
func edgeNormal(a, b [2]float32) [2]float32 {
	d := normalize2([2]float32{b[0] - a[0], b[1] - a[1]})
	return [2]float32{d[1], -d[0]}
}

func normalize2(v [2]float32) [2]float32 {
	l := float32(math.Hypot(float64(v[0]), float64(v[1])))
	if l == 0 {
		return v
	}
	return [2]float32{v[0] / l, v[1] / l}
}

// triangulate splits a simple counter-clockwise polygon into triangles by ear clipping.
func triangulate(poly [][2]float32) [][3]int {
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}
	var tris [][3]int
	guard := 0
	for len(idx) > 3 && guard < len(poly)*len(poly) {
		guard++
		clipped := false
		for i := range idx {
			a := idx[(i+len(idx)-1)%len(idx)]
			b := idx[i]
			c := idx[(i+1)%len(idx)]
			if !isEar(poly, idx, a, b, c) {
				continue
			}
			tris = append(tris, [3]int{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// degenerate remainder; fan it so the cap stays closed
			break
		}
	}
	for i := 1; i+1 < len(idx); i++ {
		tris = append(tris, [3]int{idx[0], idx[i], idx[i+1]})
	}
	return tris
}

func cross2(o, a, b [2]float32) float32 {
	return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
}

func isEar(poly [][2]float32, idx []int, a, b, c int) bool {
	pa, pb, pc := poly[a], poly[b], poly[c]
	if cross2(pa, pb, pc) <= 0 {
		return false
	}
	for _, k := range idx {
		if k == a || k == b || k == c {
			continue
		}
		p := poly[k]
		if cross2(pa, pb, p) >= 0 && cross2(pb, pc, p) >= 0 && cross2(pc, pa, p) >= 0 {
			return false
		}
	}
	return true
}
