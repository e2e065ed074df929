package math

import "github.com/chewxy/math32"

// Mat4 is stored row-major and used with row vectors (v * M), so translation
// lives in row 3. Passed to GLSL with transpose=false it reads as the
// column-major equivalent, which is why shaders multiply "M * v".
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func Mat4Zero() Mat4 {
	return Mat4{}
}

// Mul returns m * other. With row vectors the left operand is applied first.
func (m Mat4) Mul(other Mat4) Mat4 {
	result := Mat4Zero()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

func (m Mat4) MulVec(v Vec4) Vec4 {
	return v.MulMat(m)
}

// MulVec3 transforms a point (w = 1), dividing by the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec(v.ToVec4(1.0)).ToVec3DivW()
}

// GetTranslation returns the translation row.
func (m Mat4) GetTranslation() Vec3 {
	return Vec3{X: m[3][0], Y: m[3][1], Z: m[3][2]}
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

// Mat4TRS composes scale, then rotation, then translation.
func Mat4TRS(translation Vec3, rotation Quaternion, scale Vec3) Mat4 {
	return Mat4Scale(scale).Mul(rotation.ToMat4()).Mul(Mat4Translation(translation))
}

func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	tanHalfFovy := math32.Tan(fovY / 2)

	m := Mat4Zero()
	m[0][0] = 1 / (aspect * tanHalfFovy)
	m[1][1] = 1 / tanHalfFovy
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

func Mat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (top - bottom)
	m[2][2] = -2 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(top + bottom) / (top - bottom)
	m[3][2] = -(far + near) / (far - near)
	return m
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	return Mat4{
		{xAxis.X, yAxis.X, zAxis.X, 0},
		{xAxis.Y, yAxis.Y, zAxis.Y, 0},
		{xAxis.Z, yAxis.Z, zAxis.Z, 0},
		{-xAxis.Dot(eye), -yAxis.Dot(eye), -zAxis.Dot(eye), 1},
	}
}
