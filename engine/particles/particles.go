// Package particles builds the decorative point clouds and glow billboards that surround a badge.
package particles

import (
	"math"
	"math/rand"

	"github.com/Carmen-Shannon/oxy-badges/engine/geometry"
	"github.com/Carmen-Shannon/oxy-badges/engine/mesh"
	"github.com/Carmen-Shannon/oxy-badges/engine/renderer/material"
)

// Field describes the particle cloud of one badge.
type Field struct {
	Count int
	Color uint32
	Size  float32
}

// Fields maps a badge name to its particle cloud.
var Fields = map[string]Field{
	"votes":        {Count: 200, Color: 0xffd700, Size: 0.08},
	"posters":      {Count: 150, Color: 0xcccccc, Size: 0.05},
	"likes":        {Count: 100, Color: 0xff0055, Size: 0.1},
	"commentators": {Count: 300, Color: 0x8888ff, Size: 0.06},
}

// heartOutlineDivisions is the sampling density of the heart contour the likes cloud clings to.
const heartOutlineDivisions = 50

// HeartShape returns the heart outline shared by the likes badge and its particles. It spans
// roughly x in [-3, 8] and y in [0, 9.5].
func HeartShape() *geometry.Shape {
	return geometry.NewShape().
		MoveTo(2.5, 2.5).
		BezierCurveTo(2.5, 2.5, 2, 0, 0, 0).
		BezierCurveTo(-3, 0, -3, 3.5, -3, 3.5).
		BezierCurveTo(-3, 5.5, -1, 7.7, 2.5, 9.5).
		BezierCurveTo(6, 7.7, 8, 5.5, 8, 3.5).
		BezierCurveTo(8, 3.5, 8, 0, 5, 0).
		BezierCurveTo(3.5, 0, 2.5, 2.5, 2.5, 2.5)
}

// Positions generates the particle positions of a badge. Unknown names yield nil.
//
// Parameters:
//   - name: the badge name
//   - rng: the random source
//
// Returns:
//   - [][3]float32: the particle centers
func Positions(name string, rng *rand.Rand) [][3]float32 {
	field, ok := Fields[name]
	if !ok {
		return nil
	}
	out := make([][3]float32, field.Count)
	r := func() float32 { return rng.Float32() }

	switch name {
	case "votes":
		// uniform cube of half extent 6
		for i := range out {
			out[i] = [3]float32{(r()*2 - 1) * 6, (r()*2 - 1) * 6, (r()*2 - 1) * 6}
		}
	case "posters":
		// thin column rising from the quill tip
		for i := range out {
			out[i] = [3]float32{(r() - 0.5) * 0.2, r()*10 - 2.5, (r() - 0.5) * 0.2}
		}
	case "likes":
		outline := HeartShape().Points(heartOutlineDivisions)
		for i := range out {
			p := outline[i%len(outline)]
			out[i] = [3]float32{
				(p[0]-2.5)*0.4 + (r()-0.5)*1.5,
				(p[1]-4.5)*0.4 + (r()-0.5)*1.5,
				(r() - 0.5) * 1.5,
			}
		}
	case "commentators":
		// uniform over a sphere of radius 3.5
		const radius = 3.5
		for i := range out {
			theta := float64(r()) * 2 * math.Pi
			phi := math.Acos(float64(2*r() - 1))
			out[i] = [3]float32{
				float32(radius * math.Sin(phi) * math.Cos(theta)),
				float32(radius * math.Sin(phi) * math.Sin(theta)),
				float32(radius * math.Cos(phi)),
			}
		}
	}
	return out
}

// Material returns the additive, depth-write free points material of a particle field.
func Material(field Field) material.Material {
	return material.NewPoints(
		material.WithName("particles"),
		material.WithColor(field.Color),
		material.WithSize(field.Size),
		material.WithTransparent(true),
		material.WithBlending(material.BlendingAdditive),
		material.WithDepthWrite(false),
		material.WithSizeAttenuation(true),
	)
}

// Create builds the particle group of a badge. The group holds a single Points child, or nothing
// when the name is unknown.
//
// Parameters:
//   - name: the badge name
//   - rng: the random source
//
// Returns:
//   - *mesh.Group: the particle group, never nil
func Create(name string, rng *rand.Rand) *mesh.Group {
	group := mesh.NewGroup(name + " particles")
	field, ok := Fields[name]
	if !ok {
		return group
	}
	group.Add(mesh.NewPoints(name+" points", Positions(name, rng), Material(field)))
	return group
}
