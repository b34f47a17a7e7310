package geometry

import (
	"math"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

// Tube sweeps a circle of the given radius along path.
// Closed paths reuse the first ring as the last so the seam is welded.
//
// Parameters:
//   - path: the curve to follow
//   - tubularSegments: number of rings along the path
//   - radius: tube radius
//   - radialSegments: vertices per ring
//
// Returns:
//   - *Geometry: the tube mesh
func Tube(path Curve, tubularSegments int, radius float32, radialSegments int) *Geometry {
	frames := ComputeFrenetFrames(path, tubularSegments)
	g := &Geometry{}

	ring := func(i int) {
		p := path.PointAt(float32(i) / float32(tubularSegments))
		n, b := frames.Normals[i], frames.Binormals[i]
		for j := 0; j <= radialSegments; j++ {
			v := float64(j) / float64(radialSegments) * math.Pi * 2
			sin := float32(math.Sin(v))
			cos := -float32(math.Cos(v))
			normal := common.Normalize3(common.Add3(common.Scale3(n, cos), common.Scale3(b, sin)))
			g.Positions = append(g.Positions, common.Add3(p, common.Scale3(normal, radius)))
			g.Normals = append(g.Normals, normal)
		}
	}
	for i := range tubularSegments {
		ring(i)
	}
	if path.Closed() {
		ring(0)
	} else {
		ring(tubularSegments)
	}

	for i := 0; i <= tubularSegments; i++ {
		for j := 0; j <= radialSegments; j++ {
			g.UVs = append(g.UVs, [2]float32{float32(i) / float32(tubularSegments), float32(j) / float32(radialSegments)})
		}
	}

	stride := uint32(radialSegments + 1)
	for j := 1; j <= tubularSegments; j++ {
		for i := 1; i <= radialSegments; i++ {
			a := stride*uint32(j-1) + uint32(i-1)
			b := stride*uint32(j) + uint32(i-1)
			c := stride*uint32(j) + uint32(i)
			d := stride*uint32(j-1) + uint32(i)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// Cylinder builds a capped frustum along the Y axis centred on the origin.
//
// Parameters:
//   - radiusTop: radius at y = +height/2
//   - radiusBottom: radius at y = -height/2
//   - height: total height
//   - radialSegments: segments around the circumference
//
// Returns:
//   - *Geometry: the cylinder mesh
func Cylinder(radiusTop, radiusBottom, height float32, radialSegments int) *Geometry {
	g := &Geometry{}
	half := height / 2
	slope := (radiusBottom - radiusTop) / height

	var rows [2][]uint32
	for y := range 2 {
		v := float32(y)
		radius := v*(radiusBottom-radiusTop) + radiusTop
		for x := 0; x <= radialSegments; x++ {
			u := float32(x) / float32(radialSegments)
			theta := float64(u) * math.Pi * 2
			sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
			idx := g.appendVertex(
				[3]float32{radius * sin, -v*height + half, radius * cos},
				common.Normalize3([3]float32{sin, slope, cos}),
				[2]float32{u, 1 - v},
			)
			rows[y] = append(rows[y], idx)
		}
	}
	for x := range radialSegments {
		a, b := rows[0][x], rows[1][x]
		c, d := rows[1][x+1], rows[0][x+1]
		if radiusTop > 0 {
			g.Indices = append(g.Indices, a, b, d)
		}
		if radiusBottom > 0 {
			g.Indices = append(g.Indices, b, c, d)
		}
	}

	if radiusTop > 0 {
		cylinderCap(g, radiusTop, half, radialSegments, true)
	}
	if radiusBottom > 0 {
		cylinderCap(g, radiusBottom, half, radialSegments, false)
	}
	return g
}

func cylinderCap(g *Geometry, radius, half float32, radialSegments int, top bool) {
	sign := float32(-1)
	if top {
		sign = 1
	}
	normal := [3]float32{0, sign, 0}
	centerStart := uint32(len(g.Positions))
	for range radialSegments {
		g.appendVertex([3]float32{0, half * sign, 0}, normal, [2]float32{0.5, 0.5})
	}
	ringStart := uint32(len(g.Positions))
	for x := 0; x <= radialSegments; x++ {
		theta := float64(x) / float64(radialSegments) * math.Pi * 2
		sin, cos := float32(math.Sin(theta)), float32(math.Cos(theta))
		g.appendVertex(
			[3]float32{radius * sin, half * sign, radius * cos},
			normal,
			[2]float32{cos*0.5 + 0.5, sin*0.5*sign + 0.5},
		)
	}
	for x := range uint32(radialSegments) {
		c := centerStart + x
		i := ringStart + x
		if top {
			g.Indices = append(g.Indices, i, i+1, c)
		} else {
			g.Indices = append(g.Indices, i+1, i, c)
		}
	}
}

// Cone builds a cone along the Y axis with its apex at +height/2.
//
// Parameters:
//   - radius: base radius
//   - height: total height
//   - radialSegments: segments around the circumference
//
// Returns:
//   - *Geometry: the cone mesh
func Cone(radius, height float32, radialSegments int) *Geometry {
	return Cylinder(0, radius, height, radialSegments)
}

// Torus builds a ring in the XY plane around the Z axis.
//
// Parameters:
//   - radius: distance from the centre of the torus to the centre of the tube
//   - tube: tube radius
//   - radialSegments: segments around the tube cross-section
//   - tubularSegments: segments around the ring
//
// Returns:
//   - *Geometry: the torus mesh
func Torus(radius, tube float32, radialSegments, tubularSegments int) *Geometry {
	g := &Geometry{}
	for j := 0; j <= radialSegments; j++ {
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * math.Pi * 2
			v := float64(j) / float64(radialSegments) * math.Pi * 2
			ring := radius + tube*float32(math.Cos(v))
			p := [3]float32{ring * float32(math.Cos(u)), ring * float32(math.Sin(u)), tube * float32(math.Sin(v))}
			center := [3]float32{radius * float32(math.Cos(u)), radius * float32(math.Sin(u)), 0}
			g.appendVertex(p, common.Normalize3(common.Sub3(p, center)),
				[2]float32{float32(i) / float32(tubularSegments), float32(j) / float32(radialSegments)})
		}
	}
	stride := uint32(tubularSegments + 1)
	for j := uint32(1); j <= uint32(radialSegments); j++ {
		for i := uint32(1); i <= uint32(tubularSegments); i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// Plane builds a width x height quad in the XY plane facing +Z.
func Plane(width, height float32) *Geometry {
	w, h := width/2, height/2
	n := [3]float32{0, 0, 1}
	g := &Geometry{}
	g.appendVertex([3]float32{-w, h, 0}, n, [2]float32{0, 0})
	g.appendVertex([3]float32{w, h, 0}, n, [2]float32{1, 0})
	g.appendVertex([3]float32{-w, -h, 0}, n, [2]float32{0, 1})
	g.appendVertex([3]float32{w, -h, 0}, n, [2]float32{1, 1})
	g.Indices = []uint32{0, 2, 1, 2, 3, 1}
	return g
}
