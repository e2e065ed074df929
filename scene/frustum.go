package scene

import "streak-viewer/math"

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math.Vec3
	D      float32
}

func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // left, right, bottom, top, near, far
}

// FrustumFromVP extracts normalized planes from a view-projection matrix.
// Clip coordinates are v * vp, so clip.x is the dot product of v with column
// 0 of vp, and so on.
func FrustumFromVP(vp math.Mat4) Frustum {
	col := func(j int) math.Vec4 {
		return math.Vec4{X: vp[0][j], Y: vp[1][j], Z: vp[2][j], W: vp[3][j]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)

	var f Frustum
	f.Planes[0] = planeOf(c3, c0, 1)
	f.Planes[1] = planeOf(c3, c0, -1)
	f.Planes[2] = planeOf(c3, c1, 1)
	f.Planes[3] = planeOf(c3, c1, -1)
	f.Planes[4] = planeOf(c3, c2, 1)
	f.Planes[5] = planeOf(c3, c2, -1)
	return f
}

func planeOf(w, c math.Vec4, sign float32) Plane {
	a, b, cc, d := w.X+sign*c.X, w.Y+sign*c.Y, w.Z+sign*c.Z, w.W+sign*c.W
	l := math.Vec3{X: a, Y: b, Z: cc}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: math.Vec3{X: a / l, Y: b / l, Z: cc / l}, D: d / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// IntersectsFrustum reports false only when the box is fully outside one plane.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		v := box.Max
		if p.Normal.X < 0 {
			v.X = box.Min.X
		}
		if p.Normal.Y < 0 {
			v.Y = box.Min.Y
		}
		if p.Normal.Z < 0 {
			v.Z = box.Min.Z
		}
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// WorldBounds transforms the mesh's local bounds by m and returns the
// enclosing world-space box.
func (m *Mesh) WorldBounds(world math.Mat4) AABB {
	mn, mx := m.Min, m.Max
	var out AABB
	for i := 0; i < 8; i++ {
		c := mn
		if i&1 != 0 {
			c.X = mx.X
		}
		if i&2 != 0 {
			c.Y = mx.Y
		}
		if i&4 != 0 {
			c.Z = mx.Z
		}
		p := world.MulVec3(c)
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out.Min = math.Vec3{X: min(out.Min.X, p.X), Y: min(out.Min.Y, p.Y), Z: min(out.Min.Z, p.Z)}
		out.Max = math.Vec3{X: max(out.Max.X, p.X), Y: max(out.Max.Y, p.Y), Z: max(out.Max.Z, p.Z)}
	}
	return out
}
