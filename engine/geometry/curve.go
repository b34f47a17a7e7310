package geometry

import (
	"math"

	"github.com/Carmen-Shannon/oxy-badges/common"
)

// arcLengthDivisions is the sample count of the arc-length lookup table.
const arcLengthDivisions = 200

// Curve is a parametric 3D curve sampled over t in [0, 1].
type Curve interface {
	// Point returns the position at parameter t in [0, 1].
	//
	// Parameters:
	//   - t: curve parameter
	//
	// Returns:
	//   - [3]float32: the position
	Point(t float32) [3]float32

	// PointAt returns the position at arc-length fraction u in [0, 1].
	//
	// Parameters:
	//   - u: fraction of the total curve length
	//
	// Returns:
	//   - [3]float32: the position
	PointAt(u float32) [3]float32

	// TangentAt returns the unit tangent at arc-length fraction u.
	//
	// Parameters:
	//   - u: fraction of the total curve length
	//
	// Returns:
	//   - [3]float32: the unit tangent
	TangentAt(u float32) [3]float32

	// Closed reports whether the curve loops back to its start.
	//
	// Returns:
	//   - bool: true for closed curves
	Closed() bool
}

// CatmullRom is a centripetal Catmull-Rom spline through a list of control points.
type CatmullRom struct {
	points  [][3]float32
	closed  bool
	lengths []float32
}

var _ Curve = &CatmullRom{}

// NewCatmullRom creates a centripetal Catmull-Rom spline through points. At least two points are required;
// fewer points produce a degenerate curve that always returns the first point (or the origin).
//
// Parameters:
//   - points: control points the curve passes through
//   - closed: whether the curve wraps from the last point back to the first
//
// Returns:
//   - *CatmullRom: the spline
func NewCatmullRom(points [][3]float32, closed bool) *CatmullRom {
	c := &CatmullRom{points: append([][3]float32(nil), points...), closed: closed}
	c.lengths = buildArcLengths(c)
	return c
}

// Closed reports whether the spline wraps around.
func (c *CatmullRom) Closed() bool {
	return c.closed
}

// Points returns a copy of the control points.
func (c *CatmullRom) Points() [][3]float32 {
	return append([][3]float32(nil), c.points...)
}

// Point evaluates the spline at parameter t.
func (c *CatmullRom) Point(t float32) [3]float32 {
	l := len(c.points)
	switch l {
	case 0:
		return [3]float32{}
	case 1:
		return c.points[0]
	}

	segments := l - 1
	if c.closed {
		segments = l
	}
	p := float32(segments) * t
	intPoint := int(math.Floor(float64(p)))
	weight := p - float32(intPoint)

	if c.closed {
		if intPoint <= 0 {
			intPoint += (int(math.Floor(math.Abs(float64(intPoint))/float64(l))) + 1) * l
		}
	} else if weight == 0 && intPoint == l-1 {
		intPoint = l - 2
		weight = 1
	}

	var p0, p3 [3]float32
	if c.closed || intPoint > 0 {
		p0 = c.points[(intPoint-1)%l]
	} else {
		p0 = common.Add3(common.Sub3(c.points[0], c.points[1]), c.points[0])
	}
	p1 := c.points[intPoint%l]
	p2 := c.points[(intPoint+1)%l]
	if c.closed || intPoint+2 < l {
		p3 = c.points[(intPoint+2)%l]
	} else {
		p3 = common.Add3(common.Sub3(c.points[l-1], c.points[l-2]), c.points[l-1])
	}

	dt0 := centripetalSpan(p0, p1)
	dt1 := centripetalSpan(p1, p2)
	dt2 := centripetalSpan(p2, p3)
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	var out [3]float32
	for i := range 3 {
		out[i] = nonuniformCatmullRom(p0[i], p1[i], p2[i], p3[i], dt0, dt1, dt2, weight)
	}
	return out
}

// PointAt evaluates the spline at an arc-length fraction.
func (c *CatmullRom) PointAt(u float32) [3]float32 {
	return c.Point(uToT(c.lengths, u))
}

// TangentAt returns the unit tangent at an arc-length fraction.
func (c *CatmullRom) TangentAt(u float32) [3]float32 {
	return tangent(c, uToT(c.lengths, u))
}

// centripetalSpan is the knot interval |p1 - p0|^0.5 of the centripetal parametrization.
func centripetalSpan(a, b [3]float32) float32 {
	d := common.Sub3(b, a)
	return float32(math.Pow(float64(common.Dot3(d, d)), 0.25))
}

// nonuniformCatmullRom evaluates one coordinate of a non-uniform Catmull-Rom segment between x1 and x2.
func nonuniformCatmullRom(x0, x1, x2, x3, dt0, dt1, dt2, t float32) float32 {
	t1 := (x1-x0)/dt0 - (x2-x0)/(dt0+dt1) + (x2-x1)/dt1
	t2 := (x2-x1)/dt1 - (x3-x1)/(dt1+dt2) + (x3-x2)/dt2
	t1 *= dt1
	t2 *= dt1

	c0 := x1
	c1 := t1
	c2 := -3*x1 + 3*x2 - 2*t1 - t2
	c3 := 2*x1 - 2*x2 + t1 + t2
	return c0 + c1*t + c2*t*t + c3*t*t*t
}

// pointer is the minimal evaluator needed for arc-length tables and tangents.
type pointer interface {
	Point(t float32) [3]float32
}

// buildArcLengths samples the cumulative length of c at arcLengthDivisions+1 evenly spaced parameters.
func buildArcLengths(c pointer) []float32 {
	lengths := make([]float32, arcLengthDivisions+1)
	last := c.Point(0)
	var sum float32
	for i := 1; i <= arcLengthDivisions; i++ {
		cur := c.Point(float32(i) / arcLengthDivisions)
		sum += common.Distance3(cur, last)
		lengths[i] = sum
		last = cur
	}
	return lengths
}

// uToT maps an arc-length fraction onto the curve parameter using a binary search over lengths.
func uToT(lengths []float32, u float32) float32 {
	il := len(lengths)
	total := lengths[il-1]
	if total == 0 {
		return u
	}
	target := u * total

	low, high := 0, il-1
	for low <= high {
		mid := low + (high-low)/2
		diff := lengths[mid] - target
		if diff < 0 {
			low = mid + 1
		} else if diff > 0 {
			high = mid - 1
		} else {
			high = mid
			break
		}
	}
	i := max(high, 0)
	if lengths[i] == target {
		return float32(i) / float32(il-1)
	}
	if i >= il-1 {
		return 1
	}
	before := lengths[i]
	segment := lengths[i+1] - before
	fraction := (target - before) / segment
	return (float32(i) + fraction) / float32(il-1)
}

// tangent estimates the unit tangent at parameter t by central differences.
func tangent(c pointer, t float32) [3]float32 {
	const delta = 1e-4
	t1 := max(t-delta, 0)
	t2 := min(t+delta, 1)
	return common.Normalize3(common.Sub3(c.Point(t2), c.Point(t1)))
}

// FrenetFrames holds parallel-transported tangent, normal and binormal vectors sampled along a curve.
type FrenetFrames struct {
	Tangents  [][3]float32
	Normals   [][3]float32
	Binormals [][3]float32
}

// ComputeFrenetFrames samples segments+1 rotation-minimizing frames along c. For closed curves the accumulated
// twist is distributed evenly so the first and last frames line up.
//
// Parameters:
//   - c: the curve to sample
//   - segments: number of intervals along the curve
//
// Returns:
//   - FrenetFrames: frames indexed 0..segments
func ComputeFrenetFrames(c Curve, segments int) FrenetFrames {
	f := FrenetFrames{
		Tangents:  make([][3]float32, segments+1),
		Normals:   make([][3]float32, segments+1),
		Binormals: make([][3]float32, segments+1),
	}
	for i := 0; i <= segments; i++ {
		f.Tangents[i] = c.TangentAt(float32(i) / float32(segments))
	}

	// initial normal along the axis least aligned with the first tangent
	t0 := f.Tangents[0]
	minComp := float32(math.MaxFloat32)
	var axis [3]float32
	for i := range 3 {
		a := float32(math.Abs(float64(t0[i])))
		if a <= minComp {
			minComp = a
			axis = [3]float32{}
			axis[i] = 1
		}
	}
	vec := common.Normalize3(common.Cross3(t0, axis))
	f.Normals[0] = common.Cross3(t0, vec)
	f.Binormals[0] = common.Cross3(t0, f.Normals[0])

	for i := 1; i <= segments; i++ {
		f.Normals[i] = f.Normals[i-1]
		f.Binormals[i] = f.Binormals[i-1]
		v := common.Cross3(f.Tangents[i-1], f.Tangents[i])
		if common.Length3(v) > 1e-6 {
			v = common.Normalize3(v)
			theta := float32(math.Acos(float64(common.Clamp(common.Dot3(f.Tangents[i-1], f.Tangents[i]), -1, 1))))
			f.Normals[i] = rotateAroundAxis(f.Normals[i], v, theta)
		}
		f.Binormals[i] = common.Cross3(f.Tangents[i], f.Normals[i])
	}

	if c.Closed() {
		theta := float32(math.Acos(float64(common.Clamp(common.Dot3(f.Normals[0], f.Normals[segments]), -1, 1))))
		theta /= float32(segments)
		if common.Dot3(f.Tangents[0], common.Cross3(f.Normals[0], f.Normals[segments])) > 0 {
			theta = -theta
		}
		for i := 1; i <= segments; i++ {
			f.Normals[i] = rotateAroundAxis(f.Normals[i], f.Tangents[i], theta*float32(i))
			f.Binormals[i] = common.Cross3(f.Tangents[i], f.Normals[i])
		}
	}
	return f
}
