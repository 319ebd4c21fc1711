package math3d

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// ErrDimensionMismatch is returned when operand shapes are incompatible.
var ErrDimensionMismatch = errors.New("matrix dimension mismatch")

// Matrix is a dense float32 matrix stored row-major in a flat slice.
//
// Transposition flips a flag instead of moving data, so T() is O(1) and the
// result shares storage with its source. Logical element (i, j) lives at
// i*cols+j, or at j*cols+i when transposed, where cols is the stored
// (untransposed) column count.
type Matrix struct {
	data       []float32
	rows, cols int
	transposed bool
}

// NewMatrix returns a zero-filled rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{data: make([]float32, rows*cols), rows: rows, cols: cols}
}

// MatrixFrom wraps data (row-major, len rows*cols) as a matrix.
// The slice is used directly, not copied.
func MatrixFrom(rows, cols int, data []float32) Matrix {
	if len(data) != rows*cols {
		panic(fmt.Sprintf("math3d: %d values for %dx%d matrix", len(data), rows, cols))
	}
	return Matrix{data: data, rows: rows, cols: cols}
}

// IdentityMatrix returns the n x n identity.
func IdentityMatrix(n int) Matrix {
	m := NewMatrix(n, n)
	for i := range n {
		m.data[i*n+i] = 1
	}
	return m
}

// Rows returns the logical row count.
func (m Matrix) Rows() int {
	if m.transposed {
		return m.cols
	}
	return m.rows
}

// Cols returns the logical column count.
func (m Matrix) Cols() int {
	if m.transposed {
		return m.rows
	}
	return m.cols
}

// Transposed reports whether the matrix is a transposed view.
func (m Matrix) Transposed() bool {
	return m.transposed
}

func (m Matrix) offset(i, j int) int {
	if m.transposed {
		return j*m.cols + i
	}
	return i*m.cols + j
}

// At returns logical element (i, j).
func (m Matrix) At(i, j int) float32 {
	return m.data[m.offset(i, j)]
}

// Set writes logical element (i, j). Views returned by T share storage, so
// the write is visible through them.
func (m Matrix) Set(i, j int, v float32) {
	m.data[m.offset(i, j)] = v
}

// T returns the transpose as a view sharing storage with m.
func (m Matrix) T() Matrix {
	m.transposed = !m.transposed
	return m
}

// Clone returns a deep copy laid out row-major with no transpose flag.
func (m Matrix) Clone() Matrix {
	out := NewMatrix(m.Rows(), m.Cols())
	for i := range out.rows {
		for j := range out.cols {
			out.data[i*out.cols+j] = m.At(i, j)
		}
	}
	return out
}

// Mul returns the product m * b. It requires m.Cols() == b.Rows().
func (m Matrix) Mul(b Matrix) (Matrix, error) {
	if m.Cols() != b.Rows() {
		return Matrix{}, fmt.Errorf("mul %dx%d by %dx%d: %w",
			m.Rows(), m.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch)
	}
	out := NewMatrix(m.Rows(), b.Cols())
	n := m.Cols()
	for i := range out.rows {
		for j := range out.cols {
			var sum float32
			for k := range n {
				sum += m.At(i, k) * b.At(k, j)
			}
			out.data[i*out.cols+j] = sum
		}
	}
	return out, nil
}

// Add returns the element-wise sum. Shapes must match.
func (m Matrix) Add(b Matrix) (Matrix, error) {
	return m.zip(b, "add", func(x, y float32) float32 { return x + y })
}

// Sub returns the element-wise difference. Shapes must match.
func (m Matrix) Sub(b Matrix) (Matrix, error) {
	return m.zip(b, "sub", func(x, y float32) float32 { return x - y })
}

func (m Matrix) zip(b Matrix, op string, f func(x, y float32) float32) (Matrix, error) {
	if m.Rows() != b.Rows() || m.Cols() != b.Cols() {
		return Matrix{}, fmt.Errorf("%s %dx%d and %dx%d: %w",
			op, m.Rows(), m.Cols(), b.Rows(), b.Cols(), ErrDimensionMismatch)
	}
	out := NewMatrix(m.Rows(), m.Cols())
	for i := range out.rows {
		for j := range out.cols {
			out.data[i*out.cols+j] = f(m.At(i, j), b.At(i, j))
		}
	}
	return out, nil
}

// Scale returns m with every element multiplied by s.
func (m Matrix) Scale(s float32) Matrix {
	out := m.Clone()
	for i := range out.data {
		out.data[i] *= s
	}
	return out
}

// Scalar returns the single element of a 1x1 matrix.
func (m Matrix) Scalar() (float32, error) {
	if m.Rows() != 1 || m.Cols() != 1 {
		return 0, fmt.Errorf("scalar from %dx%d: %w", m.Rows(), m.Cols(), ErrDimensionMismatch)
	}
	return m.data[0], nil
}

// Equal reports whether m and b have the same logical shape and every
// element differs by at most eps.
func (m Matrix) Equal(b Matrix, eps float32) bool {
	if m.Rows() != b.Rows() || m.Cols() != b.Cols() {
		return false
	}
	for i := range m.Rows() {
		for j := range m.Cols() {
			if math32.Abs(m.At(i, j)-b.At(i, j)) > eps {
				return false
			}
		}
	}
	return true
}

func (m Matrix) String() string {
	var sb strings.Builder
	for i := range m.Rows() {
		sb.WriteByte('[')
		for j := range m.Cols() {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", m.At(i, j))
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}
