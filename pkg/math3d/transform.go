package math3d

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// HomoTransform is a 4x4 homogeneous transform in row-vector convention:
// points are 1x4 rows multiplied on the left (p' = p · M), so the
// translation sits in the last row and a · b applies a first, then b.
//
// The zero value is the identity.
type HomoTransform struct {
	m Matrix
}

// IdentityTransform returns the identity transform.
func IdentityTransform() HomoTransform {
	return HomoTransform{m: IdentityMatrix(4)}
}

// TransformFromRows builds a transform from 16 values in row-major order.
func TransformFromRows(v [16]float32) HomoTransform {
	data := make([]float32, 16)
	copy(data, v[:])
	return HomoTransform{m: MatrixFrom(4, 4, data)}
}

// Translation returns a transform that offsets points by v.
func Translation(v Vec3) HomoTransform {
	return TransformFromRows([16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	})
}

// ScaleTransform returns a non-uniform scale.
func ScaleTransform(x, y, z float32) HomoTransform {
	return TransformFromRows([16]float32{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	})
}

// NegateZ mirrors the z axis.
func NegateZ() HomoTransform {
	return ScaleTransform(1, 1, -1)
}

// RotationAround returns a rotation of angle radians about axis.
func RotationAround(axis Vec3, angle float32) HomoTransform {
	x := V3(1, 0, 0).RotateAround(axis, angle)
	y := V3(0, 1, 0).RotateAround(axis, angle)
	z := V3(0, 0, 1).RotateAround(axis, angle)
	return TransformFromRows([16]float32{
		x.X, x.Y, x.Z, 0,
		y.X, y.Y, y.Z, 0,
		z.X, z.Y, z.Z, 0,
		0, 0, 0, 1,
	})
}

// RotateToNegativeZ returns the rotation that maps forward onto -Z and the
// component of up orthogonal to forward onto +Y.
func RotateToNegativeZ(forward, up Vec3) HomoTransform {
	f := forward.Normalize()
	r := f.Cross(up).Normalize()
	if r.LenSq() == 0 {
		// up is parallel to forward; any perpendicular will do
		r = f.Cross(V3(1, 0, 0)).Normalize()
		if r.LenSq() == 0 {
			r = f.Cross(V3(0, 1, 0)).Normalize()
		}
	}
	u := r.Cross(f)
	return TransformFromRows([16]float32{
		r.X, u.X, -f.X, 0,
		r.Y, u.Y, -f.Y, 0,
		r.Z, u.Z, -f.Z, 0,
		0, 0, 0, 1,
	})
}

func (t HomoTransform) matrix() Matrix {
	if t.m.data == nil {
		return IdentityMatrix(4)
	}
	return t.m
}

// Matrix returns the underlying 4x4 matrix.
func (t HomoTransform) Matrix() Matrix {
	return t.matrix()
}

// At returns element (i, j).
func (t HomoTransform) At(i, j int) float32 {
	return t.matrix().At(i, j)
}

// Mul returns t · o: apply t, then o.
func (t HomoTransform) Mul(o HomoTransform) HomoTransform {
	// 4x4 by 4x4 cannot mismatch
	m, _ := t.matrix().Mul(o.matrix())
	return HomoTransform{m: m}
}

// Then is an alias for Mul that reads left to right.
func (t HomoTransform) Then(o HomoTransform) HomoTransform {
	return t.Mul(o)
}

// ApplyH transforms p and returns the homogeneous result before the
// perspective divide.
func (t HomoTransform) ApplyH(p Point3) (x, y, z, w float32) {
	m := t.matrix()
	col := func(j int) float32 {
		return p.X*m.At(0, j) + p.Y*m.At(1, j) + p.Z*m.At(2, j) + m.At(3, j)
	}
	return col(0), col(1), col(2), col(3)
}

// Apply transforms p, dividing by w when w is neither 0 nor 1.
func (t HomoTransform) Apply(p Point3) Point3 {
	x, y, z, w := t.ApplyH(p)
	if w != 0 && w != 1 {
		return Point3{x / w, y / w, z / w}
	}
	return Point3{x, y, z}
}

// ApplyVec transforms a direction, ignoring translation.
func (t HomoTransform) ApplyVec(v Vec3) Vec3 {
	m := t.matrix()
	return Vec3{
		v.X*m.At(0, 0) + v.Y*m.At(1, 0) + v.Z*m.At(2, 0),
		v.X*m.At(0, 1) + v.Y*m.At(1, 1) + v.Z*m.At(2, 1),
		v.X*m.At(0, 2) + v.Y*m.At(1, 2) + v.Z*m.At(2, 2),
	}
}

// Mgl returns the transform as an mgl32 matrix with the same logical
// element layout.
func (t HomoTransform) Mgl() mgl32.Mat4 {
	m := t.matrix()
	var out mgl32.Mat4
	for i := range 4 {
		for j := range 4 {
			out.Set(i, j, m.At(i, j))
		}
	}
	return out
}

// TransformFromMgl converts an mgl32 matrix, preserving element layout.
func TransformFromMgl(g mgl32.Mat4) HomoTransform {
	var v [16]float32
	for i := range 4 {
		for j := range 4 {
			v[i*4+j] = g.At(i, j)
		}
	}
	return TransformFromRows(v)
}

// Inverse returns the inverse transform. It reports false when t is
// singular or the result is not finite.
func (t HomoTransform) Inverse() (HomoTransform, bool) {
	g := t.Mgl()
	det := g.Det()
	if det == 0 || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return HomoTransform{}, false
	}
	inv := g.Inv()
	for _, v := range inv {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return HomoTransform{}, false
		}
	}
	return TransformFromMgl(inv), true
}

// Transpose returns the transposed transform as a storage-sharing view.
func (t HomoTransform) Transpose() HomoTransform {
	return HomoTransform{m: t.matrix().T()}
}
