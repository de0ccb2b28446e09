package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func vecApproxEqual(a, b Vec3, tol float64) bool {
	return approxEqual(a.X, b.X, tol) && approxEqual(a.Y, b.Y, tol) && approxEqual(a.Z, b.Z, tol)
}

func TestVec3Arithmetic(t *testing.T) {
	a := V3(1, 2, 3)
	b := V3(4, 5, 6)

	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"add", a.Add(b), V3(5, 7, 9)},
		{"sub", b.Sub(a), V3(3, 3, 3)},
		{"mul", a.Mul(b), V3(4, 10, 18)},
		{"scale", a.Scale(2), V3(2, 4, 6)},
		{"div", b.Div(2), V3(2, 2.5, 3)},
		{"cross", V3(1, 0, 0).Cross(V3(0, 1, 0)), V3(0, 0, 1)},
		{"negate", a.Negate(), V3(-1, -2, -3)},
		{"clamp", V3(-1, 0.5, 3).Clamp(0, 1), V3(0, 0.5, 1)},
		{"sqrt", V3(4, 9, 16).Sqrt(), V3(2, 3, 4)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !vecApproxEqual(tc.got, tc.want, eps) {
				t.Errorf("got %+v, want %+v", tc.got, tc.want)
			}
		})
	}

	if d := a.Dot(b); d != 32 {
		t.Errorf("Dot = %v, want 32", d)
	}
	if l := V4(1, 2, 2, 4).Len(); l != 5 {
		t.Errorf("Vec4 Len = %v, want 5", l)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := V3(3, 4, 0).Normalize()
	if !approxEqual(n.Len(), 1, eps) {
		t.Errorf("normalized length = %v, want 1", n.Len())
	}
	if !vecApproxEqual(n, V3(0.6, 0.8, 0), eps) {
		t.Errorf("Normalize = %+v", n)
	}

	// The zero vector stays zero instead of producing NaNs.
	if z := (Vec3{}).Normalize(); !z.IsZero() {
		t.Errorf("Normalize(0) = %+v, want zero", z)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported as non-finite")
	}
	if V3(math.NaN(), 0, 0).IsFinite() {
		t.Error("NaN vector reported as finite")
	}
	if V3(0, math.Inf(1), 0).IsFinite() {
		t.Error("Inf vector reported as finite")
	}
}

func TestMat4TRS(t *testing.T) {
	// 90 degrees about Y maps +X to -Z.
	s := math.Sqrt2 / 2
	m := TRS(V3(1, 2, 3), V4(0, s, 0, s), V3(2, 2, 2))

	got := m.MulVec3(V3(1, 0, 0))
	want := V3(1, 2, 1)
	if !vecApproxEqual(got, want, 1e-9) {
		t.Errorf("TRS point = %+v, want %+v", got, want)
	}

	dir := m.MulVec3Dir(V3(1, 0, 0))
	if !vecApproxEqual(dir, V3(0, 0, -2), 1e-9) {
		t.Errorf("TRS direction = %+v", dir)
	}

	if !vecApproxEqual(m.Translation(), V3(1, 2, 3), eps) {
		t.Errorf("Translation = %+v", m.Translation())
	}
	if !approxEqual(m.MaxScale(), 2, 1e-9) {
		t.Errorf("MaxScale = %v, want 2", m.MaxScale())
	}
}

func TestRotateQuatZeroIsIdentity(t *testing.T) {
	if RotateQuat(Vec4{}) != Identity() {
		t.Error("zero quaternion should yield identity")
	}
	if RotateQuat(V4(0, 0, 0, 1)) != Identity() {
		t.Error("identity quaternion should yield identity")
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(V3(1, 1, 1), V3(0, 0, -1))
	if p := r.At(2.5); !vecApproxEqual(p, V3(1, 1, -1.5), eps) {
		t.Errorf("At(2.5) = %+v", p)
	}
}
