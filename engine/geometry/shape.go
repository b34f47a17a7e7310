package geometry

import "math"

// cubicBezier is a single 2D cubic segment of a Shape outline.
type cubicBezier struct {
	p0, p1, p2, p3 [2]float32
}

func (c cubicBezier) point(t float32) [2]float32 {
	k := 1 - t
	b0 := k * k * k
	b1 := 3 * k * k * t
	b2 := 3 * k * t * t
	b3 := t * t * t
	return [2]float32{
		b0*c.p0[0] + b1*c.p1[0] + b2*c.p2[0] + b3*c.p3[0],
		b0*c.p0[1] + b1*c.p1[1] + b2*c.p2[1] + b3*c.p3[1],
	}
}

// Shape is a closed 2D outline assembled from a pen position and cubic bezier segments.
type Shape struct {
	cursor   [2]float32
	segments []cubicBezier
}

// NewShape creates an empty shape with the pen at the origin.
func NewShape() *Shape {
	return &Shape{}
}

// MoveTo places the pen without drawing.
func (s *Shape) MoveTo(x, y float32) *Shape {
	s.cursor = [2]float32{x, y}
	return s
}

// BezierCurveTo draws a cubic bezier from the pen through two control points to (x, y).
func (s *Shape) BezierCurveTo(cx1, cy1, cx2, cy2, x, y float32) *Shape {
	s.segments = append(s.segments, cubicBezier{
		p0: s.cursor,
		p1: [2]float32{cx1, cy1},
		p2: [2]float32{cx2, cy2},
		p3: [2]float32{x, y},
	})
	s.cursor = [2]float32{x, y}
	return s
}

// Points samples every segment with the given number of divisions and concatenates the result, skipping
// a point when it repeats the previous one.
//
// Parameters:
//   - divisions: intervals per bezier segment
//
// Returns:
//   - [][2]float32: the sampled outline
func (s *Shape) Points(divisions int) [][2]float32 {
	var out [][2]float32
	for _, seg := range s.segments {
		for i := 0; i <= divisions; i++ {
			p := seg.point(float32(i) / float32(divisions))
			if n := len(out); n > 0 && out[n-1] == p {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// contour returns the sampled outline with a closing duplicate removed, wound counter-clockwise.
func (s *Shape) contour(divisions int) [][2]float32 {
	pts := s.Points(divisions)
	for len(pts) > 1 && nearlyEqual2(pts[0], pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts
}

func nearlyEqual2(a, b [2]float32) bool {
	return math.Abs(float64(a[0]-b[0])) < 1e-6 && math.Abs(float64(a[1]-b[1])) < 1e-6
}

// signedArea is positive for counter-clockwise polygons.
func signedArea(pts [][2]float32) float32 {
	var a float32
	n := len(pts)
	for i := range n {
		p, q := pts[i], pts[(i+1)%n]
		a += p[0]*q[1] - q[0]*p[1]
	}
	return a / 2
}
