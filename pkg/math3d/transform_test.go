package math3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func pointApprox(a, b Point3) bool {
	return approx(a.X, b.X) && approx(a.Y, b.Y) && approx(a.Z, b.Z)
}

func TestZeroTransformIsIdentity(t *testing.T) {
	var zero HomoTransform
	p := P3(1, -2, 3)
	if got := zero.Apply(p); got != p {
		t.Errorf("zero.Apply = %v, want %v", got, p)
	}
	tr := Translation(V3(1, 1, 1))
	if got := zero.Mul(tr).Apply(p); got != P3(2, -1, 4) {
		t.Errorf("zero·T = %v", got)
	}
}

func TestTranslationThenScaleOrder(t *testing.T) {
	// row-vector convention: a·b applies a first
	m := Translation(V3(1, 0, 0)).Mul(ScaleTransform(2, 2, 2))
	if got := m.Apply(P3(1, 0, 0)); got != P3(4, 0, 0) {
		t.Errorf("translate then scale = %v, want (4,0,0)", got)
	}
	m = ScaleTransform(2, 2, 2).Mul(Translation(V3(1, 0, 0)))
	if got := m.Apply(P3(1, 0, 0)); got != P3(3, 0, 0) {
		t.Errorf("scale then translate = %v, want (3,0,0)", got)
	}
}

func TestApplyMatchesMatrixProduct(t *testing.T) {
	m := Translation(V3(1, 2, 3)).Mul(RotationAround(V3(1, 1, 0), 0.7))
	p := P3(0.5, -1, 2)

	row, err := p.Homogeneous().T().Mul(m.Matrix())
	if err != nil {
		t.Fatal(err)
	}
	want, err := PointFromMatrix(row)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.Apply(p); !pointApprox(got, want) {
		t.Errorf("Apply = %v, matrix product = %v", got, want)
	}
}

func TestTransformMulAssociative(t *testing.T) {
	a := Translation(V3(1, -2, 3))
	b := RotationAround(V3(0, 1, 1), 0.9)
	c := ScaleTransform(2, 0.5, 3).Transpose()

	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))
	if !left.Matrix().Equal(right.Matrix(), 1e-5) {
		t.Errorf("(AB)C =\n%v A(BC) =\n%v", left.Matrix(), right.Matrix())
	}
}

func TestApplyPerspectiveDivide(t *testing.T) {
	// copies z into w
	m := TransformFromRows([16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 1,
		0, 0, 0, 0,
	})
	if got := m.Apply(P3(4, 2, 2)); got != P3(2, 1, 1) {
		t.Errorf("Apply = %v, want (2,1,1)", got)
	}
}

func TestRotateToNegativeZ(t *testing.T) {
	tests := []struct {
		name        string
		forward, up Vec3
	}{
		{"already -z", Forward(), Up()},
		{"looking +x", V3(1, 0, 0), Up()},
		{"oblique", V3(1, -1, -2), Up()},
		{"up parallel", V3(0, 1, 0), Up()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RotateToNegativeZ(tt.forward, tt.up)
			got := r.ApplyVec(tt.forward.Normalize())
			if !vecApprox(got, Forward()) {
				t.Errorf("forward maps to %v, want (0,0,-1)", got)
			}
			// rotations preserve length
			v := V3(0.3, 2, -1)
			if !approx(r.ApplyVec(v).Len(), v.Len()) {
				t.Errorf("length changed: %v -> %v", v.Len(), r.ApplyVec(v).Len())
			}
		})
	}

	r := RotateToNegativeZ(V3(1, 0, 0), Up())
	if got := r.ApplyVec(Up()); !vecApprox(got, Up()) {
		t.Errorf("up maps to %v, want (0,1,0)", got)
	}
}

func TestRotationAround(t *testing.T) {
	r := RotationAround(Up(), math.Pi/2)
	if got := r.Apply(P3(0, 0, -1)); !pointApprox(got, P3(-1, 0, 0)) {
		t.Errorf("Apply = %v, want (-1,0,0)", got)
	}
}

func TestInverse(t *testing.T) {
	m := Translation(V3(1, 2, 3)).
		Mul(RotationAround(V3(0, 1, 1), 0.4)).
		Mul(ScaleTransform(2, 3, 0.5))

	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular")
	}
	p := P3(0.25, -4, 7)
	if got := m.Mul(inv).Apply(p); !pointApprox(got, p) {
		t.Errorf("m·m⁻¹ applied = %v, want %v", got, p)
	}
	if got := inv.Apply(m.Apply(p)); !pointApprox(got, p) {
		t.Errorf("round trip = %v, want %v", got, p)
	}
}

func TestInverseSingular(t *testing.T) {
	if _, ok := ScaleTransform(1, 0, 1).Inverse(); ok {
		t.Error("expected singular")
	}
}

func TestMglLayout(t *testing.T) {
	m := Translation(V3(5, 6, 7))
	g := m.Mgl()
	// translation in the last row means mgl's row 3
	if g.At(3, 0) != 5 || g.At(3, 1) != 6 || g.At(3, 2) != 7 {
		t.Errorf("mgl row 3 = %v %v %v", g.At(3, 0), g.At(3, 1), g.At(3, 2))
	}
	// row-vector transform equals mgl's column-vector transform on the transpose
	v := g.Transpose().Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	want := m.Apply(P3(1, 1, 1))
	if !approx(v.X(), want.X) || !approx(v.Y(), want.Y) || !approx(v.Z(), want.Z) {
		t.Errorf("mgl = %v, Apply = %v", v, want)
	}
	if back := TransformFromMgl(g); !back.Matrix().Equal(m.Matrix(), 0) {
		t.Errorf("TransformFromMgl mismatch:\n%v", back.Matrix())
	}
}

func TestTransposeView(t *testing.T) {
	m := Translation(V3(1, 2, 3))
	tr := m.Transpose()
	if tr.At(0, 3) != 1 || tr.At(1, 3) != 2 || tr.At(2, 3) != 3 {
		t.Errorf("Transpose last column = %v %v %v", tr.At(0, 3), tr.At(1, 3), tr.At(2, 3))
	}
	if m.At(3, 0) != 1 {
		t.Error("Transpose mutated receiver")
	}
}
