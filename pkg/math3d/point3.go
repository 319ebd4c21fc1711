package math3d

import "fmt"

// Point3 is a position in 3D space. Its homogeneous w is implicitly 1.
type Point3 struct {
	X, Y, Z float32
}

// P3 creates a new Point3.
func P3(x, y, z float32) Point3 {
	return Point3{x, y, z}
}

// Sub returns the vector from b to p.
func (p Point3) Sub(b Point3) Vec3 {
	return Vec3{p.X - b.X, p.Y - b.Y, p.Z - b.Z}
}

// Add offsets the point by v.
func (p Point3) Add(v Vec3) Point3 {
	return Point3{p.X + v.X, p.Y + v.Y, p.Z + v.Z}
}

// Vec returns the point as a vector from the origin.
func (p Point3) Vec() Vec3 {
	return Vec3(p)
}

// Homogeneous returns the point as a 4x1 column [x y z 1]ᵀ.
// Use T() for the 1x4 row form.
func (p Point3) Homogeneous() Matrix {
	return MatrixFrom(4, 1, []float32{p.X, p.Y, p.Z, 1})
}

// PointFromMatrix converts a 4x1 or 1x4 homogeneous matrix back to a point.
// The perspective divide is applied when w is neither 0 nor 1.
func PointFromMatrix(m Matrix) (Point3, error) {
	var x, y, z, w float32
	switch {
	case m.Rows() == 4 && m.Cols() == 1:
		x, y, z, w = m.At(0, 0), m.At(1, 0), m.At(2, 0), m.At(3, 0)
	case m.Rows() == 1 && m.Cols() == 4:
		x, y, z, w = m.At(0, 0), m.At(0, 1), m.At(0, 2), m.At(0, 3)
	default:
		return Point3{}, fmt.Errorf("point from %dx%d matrix: %w", m.Rows(), m.Cols(), ErrDimensionMismatch)
	}
	if w != 0 && w != 1 {
		return Point3{x / w, y / w, z / w}, nil
	}
	return Point3{x, y, z}, nil
}
