package math

import (
	"math"
	"testing"
)

func approxVec3(a, b Vec3, tol float32) bool {
	d := a.Sub(b)
	return math.Abs(float64(d.X)) <= float64(tol) &&
		math.Abs(float64(d.Y)) <= float64(tol) &&
		math.Abs(float64(d.Z)) <= float64(tol)
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	if got, want := v1.Add(v2), NewVec3(5, 7, 9); got != want {
		t.Errorf("Add: expected %v, got %v", want, got)
	}
	if got, want := v2.Sub(v1), NewVec3(3, 3, 3); got != want {
		t.Errorf("Sub: expected %v, got %v", want, got)
	}
	if got, want := v1.Mul(2), NewVec3(2, 4, 6); got != want {
		t.Errorf("Mul: expected %v, got %v", want, got)
	}
	if dot := v1.Dot(v2); dot != 32 {
		t.Errorf("Dot: expected 32, got %v", dot)
	}

	// Right x Up = Front in a right-handed system
	if cross := Vec3Right.Cross(Vec3Up); cross != Vec3Front {
		t.Errorf("Cross: expected %v, got %v", Vec3Front, cross)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(10, -10, 4)

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0): expected %v, got %v", a, got)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1): expected %v, got %v", b, got)
	}
	if got, want := a.Lerp(b, 0.1), NewVec3(1, -1, 0.4); !approxVec3(got, want, 1e-6) {
		t.Errorf("Lerp(0.1): expected %v, got %v", want, got)
	}
}

func TestSmoothStep(t *testing.T) {
	cases := []struct {
		x, want float32
	}{
		{-1, 0},
		{0, 0},
		{10, 0.5},
		{20, 1},
		{25, 1},
	}
	for _, c := range cases {
		if got := SmoothStep(0, 20, c.x); got != c.want {
			t.Errorf("SmoothStep(0, 20, %v): expected %v, got %v", c.x, c.want, got)
		}
	}
}

func TestMat4Translation(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	if m[3][0] != 1 || m[3][1] != 2 || m[3][2] != 3 {
		t.Errorf("Translation: expected (1,2,3), got (%v,%v,%v)", m[3][0], m[3][1], m[3][2])
	}
	if got := m.MulVec3(Vec3Zero); got != translation {
		t.Errorf("Translation: expected %v, got %v", translation, got)
	}
	if got := m.GetTranslation(); got != translation {
		t.Errorf("GetTranslation: expected %v, got %v", translation, got)
	}
}

func TestMat4TRSOrder(t *testing.T) {
	// Scale, then a quarter turn about Y, then translate.
	rot := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	m := Mat4TRS(NewVec3(0, 1, 0), rot, NewVec3(0.5, 0.5, 0.5))

	got := m.MulVec3(NewVec3(2, 0, 0))
	want := NewVec3(0, 1, -1)
	if !approxVec3(got, want, 1e-5) {
		t.Errorf("TRS: expected %v, got %v", want, got)
	}
}

func TestQuaternionRotation(t *testing.T) {
	// 90 degrees about Y takes +X to -Z
	q := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))

	if got := q.RotateVector(Vec3Right); !approxVec3(got, NewVec3(0, 0, -1), 0.001) {
		t.Errorf("Quaternion rotation: expected approximately (0,0,-1), got %v", got)
	}

	// The matrix form must agree with RotateVector
	if got := q.ToMat4().MulVec3(Vec3Right); !approxVec3(got, q.RotateVector(Vec3Right), 1e-6) {
		t.Errorf("ToMat4: expected %v, got %v", q.RotateVector(Vec3Right), got)
	}
}

func TestQuaternionLocalComposition(t *testing.T) {
	// Yaw a quarter turn, then roll about the new local X: local X must not move.
	yaw := QuaternionFromAxisAngle(Vec3Up, float32(math.Pi/2))
	roll := QuaternionFromAxisAngle(Vec3Right, 0.3)
	q := yaw.Mul(roll).Normalize()

	if got, want := q.RotateVector(Vec3Right), yaw.RotateVector(Vec3Right); !approxVec3(got, want, 1e-5) {
		t.Errorf("local composition: expected %v, got %v", want, got)
	}
}

func TestMat4LookAt(t *testing.T) {
	eye := NewVec3(0, 0, 5)
	m := Mat4LookAt(eye, Vec3Zero, Vec3Up)

	// The view matrix takes the eye to the origin
	if got := m.MulVec3(eye); !approxVec3(got, Vec3Zero, 0.001) {
		t.Errorf("LookAt: expected eye to transform to origin, got %v", got)
	}
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4Identity()
	m2 := Mat4Identity()

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}
