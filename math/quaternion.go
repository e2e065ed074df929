package math

import "github.com/chewxy/math32"

type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{X: 0, Y: 0, Z: 0, W: 1}
}

func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	s := math32.Sin(angle / 2)
	c := math32.Cos(angle / 2)

	axis = axis.Normalize()
	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// Mul returns the Hamilton product q * other. Rotating by the result applies
// other first, so q.Mul(delta) turns delta about q's local axes.
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

func (q Quaternion) Normalize() Quaternion {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length > 0 {
		invLength := 1 / length
		return Quaternion{
			X: q.X * invLength,
			Y: q.Y * invLength,
			Z: q.Z * invLength,
			W: q.W * invLength,
		}
	}
	return q
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	qVec := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := qVec.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(qVec.Cross(t))
}

// ToMat4 returns the rotation for row vectors: row i is the image of basis i.
func (q Quaternion) ToMat4() Mat4 {
	xx := q.X * q.X
	yy := q.Y * q.Y
	zz := q.Z * q.Z
	xy := q.X * q.Y
	xz := q.X * q.Z
	yz := q.Y * q.Z
	wx := q.W * q.X
	wy := q.W * q.Y
	wz := q.W * q.Z

	return Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}
