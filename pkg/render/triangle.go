package render

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrDegenerate is returned for triangles whose projected area is zero, so
// no depth plane can be solved for them.
var ErrDegenerate = errors.New("degenerate triangle")

// degenerateEpsilon bounds |c| of the plane equation, which is twice the
// projected area in pixel units.
const degenerateEpsilon = 1e-6

// Winding is the vertex order of a triangle in the xy plane.
type Winding int

const (
	CounterClockwise Winding = iota
	Clockwise
	Collinear
)

func (w Winding) String() string {
	switch w {
	case CounterClockwise:
		return "ccw"
	case Clockwise:
		return "cw"
	default:
		return "collinear"
	}
}

// Triangle is three points in a fixed order. In the pipeline the points are
// in pixel space: x and y in pixels, z the projected depth (or zero for the
// flattened copy used for coverage).
type Triangle struct {
	P [3]math3d.Point3
}

// NewTriangle creates a triangle from three points.
func NewTriangle(a, b, c math3d.Point3) Triangle {
	return Triangle{P: [3]math3d.Point3{a, b, c}}
}

// Flatten returns a copy with every z set to zero.
func (t Triangle) Flatten() Triangle {
	for i := range t.P {
		t.P[i].Z = 0
	}
	return t
}

// BoundingBox returns the pixel bounds: floor of the minimum and ceil of
// the maximum on each axis.
func (t Triangle) BoundingBox() (minX, maxX, minY, maxY int) {
	lx := min(t.P[0].X, t.P[1].X, t.P[2].X)
	hx := max(t.P[0].X, t.P[1].X, t.P[2].X)
	ly := min(t.P[0].Y, t.P[1].Y, t.P[2].Y)
	hy := max(t.P[0].Y, t.P[1].Y, t.P[2].Y)
	return int(math32.Floor(lx)), int(math32.Ceil(hx)), int(math32.Floor(ly)), int(math32.Ceil(hy))
}

// ContainsPoint reports whether p lies inside or on the boundary of the
// triangle projected onto the xy plane. For each edge vᵢ→vᵢ₊₁ it takes
// (p - vᵢ) × (vᵢ₊₁ - vᵢ); p is inside when no two non-zero cross products
// point in opposite directions. Either winding is accepted.
func (t Triangle) ContainsPoint(p math3d.Point3) bool {
	var ref math3d.Vec3
	haveRef := false
	for i := range 3 {
		a := t.P[i]
		b := t.P[(i+1)%3]
		edge := math3d.V3(b.X-a.X, b.Y-a.Y, 0)
		toP := math3d.V3(p.X-a.X, p.Y-a.Y, 0)
		cross := toP.Cross(edge)

		if cross.LenSq() == 0 {
			// on the edge's line; decided by the other edges
			continue
		}
		if haveRef && ref.Dot(cross) < 0 {
			return false
		}
		ref = cross
		haveRef = true
	}
	return true
}

// SignedArea returns the signed area in the xy plane: positive when the
// vertices turn counter-clockwise with +Y up.
func (t Triangle) SignedArea() float32 {
	_, _, c, _ := t.PlaneEquation()
	return c / 2
}

// Winding reports the vertex order in the xy plane.
func (t Triangle) Winding() Winding {
	a := t.SignedArea()
	switch {
	case a > 0:
		return CounterClockwise
	case a < 0:
		return Clockwise
	default:
		return Collinear
	}
}

// PlaneEquation returns a, b, c, d with a·x + b·y + c·z + d = 0 for every
// point of the triangle's plane. (a, b, c) is (p1 - p0) × (p2 - p0).
func (t Triangle) PlaneEquation() (a, b, c, d float32) {
	p0, p1, p2 := t.P[0], t.P[1], t.P[2]
	a = (p1.Y-p0.Y)*(p2.Z-p0.Z) - (p1.Z-p0.Z)*(p2.Y-p0.Y)
	b = (p2.X-p0.X)*(p1.Z-p0.Z) - (p1.X-p0.X)*(p2.Z-p0.Z)
	c = (p1.X-p0.X)*(p2.Y-p0.Y) - (p2.X-p0.X)*(p1.Y-p0.Y)
	d = -(a*p0.X + b*p0.Y + c*p0.Z)
	return a, b, c, d
}

// DepthInterpolationVector returns the 1x4 row (-a/c, -b/c, 0, -d/c). The
// depth at (x, y) is the dot product of [x y 0 1] with it. The vector is
// independent of vertex order.
func (t Triangle) DepthInterpolationVector() (math3d.Matrix, error) {
	a, b, c, d := t.PlaneEquation()
	if math32.Abs(c) < degenerateEpsilon {
		return math3d.Matrix{}, fmt.Errorf("depth plane (c=%g): %w", c, ErrDegenerate)
	}
	return math3d.MatrixFrom(1, 4, []float32{-a / c, -b / c, 0, -d / c}), nil
}

// DepthAt evaluates the depth interpolation vector at (x, y).
func DepthAt(vec math3d.Matrix, x, y float32) float32 {
	return vec.At(0, 0)*x + vec.At(0, 1)*y + vec.At(0, 3)
}

// HorizontalSpan returns the inclusive pixel range covered on the scanline
// at y, searching only within [minX, maxX]. For each non-horizontal edge it
// finds the x where the edge's line crosses y and probes the pixel centers
// within two pixels of it. ok is false when nothing is covered.
func (t Triangle) HorizontalSpan(y float32, minX, maxX int) (l, r int, ok bool) {
	l, r = maxX+1, minX-1
	for i := range 3 {
		p1 := t.P[i]
		p2 := t.P[(i+1)%3]
		if p2.Y == p1.Y {
			continue
		}

		x := int(math32.Floor(p1.X + (p2.X-p1.X)*(y-p1.Y)/(p2.Y-p1.Y)))
		if x < minX || x > maxX {
			continue
		}

		for px := max(minX, x-2); px <= min(maxX, x+2); px++ {
			if t.ContainsPoint(math3d.P3(float32(px)+0.5, y, 0)) {
				l = min(l, px)
				r = max(r, px)
				ok = true
			}
		}
	}
	return l, r, ok
}

// Barycentric2D returns the weights of (x, y) relative to the vertices,
// projected onto the xy plane. ok is false for degenerate triangles.
func (t Triangle) Barycentric2D(x, y float32) (w [3]float32, ok bool) {
	p0, p1, p2 := t.P[0], t.P[1], t.P[2]
	den := (p1.Y-p2.Y)*(p0.X-p2.X) + (p2.X-p1.X)*(p0.Y-p2.Y)
	if den == 0 {
		return w, false
	}
	w[0] = ((p1.Y-p2.Y)*(x-p2.X) + (p2.X-p1.X)*(y-p2.Y)) / den
	w[1] = ((p2.Y-p0.Y)*(x-p2.X) + (p0.X-p2.X)*(y-p2.Y)) / den
	w[2] = 1 - w[0] - w[1]
	return w, true
}

// Normal returns (p1 - p0) × (p2 - p0), not normalized.
func (t Triangle) Normal() math3d.Vec3 {
	return t.P[1].Sub(t.P[0]).Cross(t.P[2].Sub(t.P[0]))
}

// RotateToAxis returns the rotation that turns the triangle's normal onto
// -Z, so the rotated triangle lies in a plane of constant z.
func (t Triangle) RotateToAxis() math3d.HomoTransform {
	return math3d.RotateToNegativeZ(t.Normal(), t.P[1].Sub(t.P[0]))
}

// Transform applies m to every vertex.
func (t Triangle) Transform(m math3d.HomoTransform) Triangle {
	for i := range t.P {
		t.P[i] = m.Apply(t.P[i])
	}
	return t
}
