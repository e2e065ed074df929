package scene

import (
	"github.com/chewxy/math32"

	reMath "streak-viewer/math"
)

// Camera is a perspective camera described by its pose: a position and the
// point it looks at.
type Camera struct {
	Position    reMath.Vec3
	Target      reMath.Vec3
	Up          reMath.Vec3
	FOV         float32 // vertical, radians
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		Position:    reMath.Vec3Zero,
		Target:      reMath.Vec3Front,
		Up:          reMath.Vec3Up,
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
	}
}

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.Position = pos
}

// LookAt aims the camera at target without moving it.
func (c *Camera) LookAt(target reMath.Vec3) {
	c.Target = target
}

func (c *Camera) GetViewMatrix() reMath.Mat4 {
	return reMath.Mat4LookAt(c.Position, c.Target, c.Up)
}

func (c *Camera) GetProjectionMatrix() reMath.Mat4 {
	return reMath.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewProjectionMatrix() reMath.Mat4 {
	return c.GetViewMatrix().Mul(c.GetProjectionMatrix())
}

// OrbitControls lets the user orbit and zoom the camera around a target with
// the mouse. Gestures accumulate until Update applies them.
type OrbitControls struct {
	Target      reMath.Vec3
	RotateSpeed float32
	ZoomScale   float32 // distance factor per scroll step
	MinDistance float32
	MaxDistance float32

	// Viewport height in pixels; a drag of that length turns a full circle.
	ViewportHeight float32

	dragging     bool
	lastX, lastY float64
	deltaTheta   float32
	deltaPhi     float32
	scale        float32
}

func NewOrbitControls(target reMath.Vec3) *OrbitControls {
	return &OrbitControls{
		Target:         target,
		RotateSpeed:    1.0,
		ZoomScale:      0.95,
		MinDistance:    0.5,
		MaxDistance:    500,
		ViewportHeight: 720,
		scale:          1,
	}
}

func (o *OrbitControls) Dragging() bool {
	return o.dragging
}

func (o *OrbitControls) BeginDrag(x, y float64) {
	o.dragging = true
	o.lastX, o.lastY = x, y
}

func (o *OrbitControls) Drag(x, y float64) {
	if !o.dragging {
		return
	}
	h := o.ViewportHeight
	if h <= 0 {
		h = 1
	}
	dx := float32(x - o.lastX)
	dy := float32(y - o.lastY)
	o.deltaTheta -= 2 * math32.Pi * dx / h * o.RotateSpeed
	o.deltaPhi -= 2 * math32.Pi * dy / h * o.RotateSpeed
	o.lastX, o.lastY = x, y
}

func (o *OrbitControls) EndDrag() {
	o.dragging = false
}

// Zoom applies scroll steps; positive steps move closer.
func (o *OrbitControls) Zoom(steps float32) {
	o.scale *= math32.Pow(o.ZoomScale, steps)
}

// Update applies pending gestures around Target and aims the camera at it.
func (o *OrbitControls) Update(c *Camera) {
	offset := c.Position.Sub(o.Target)

	radius := offset.Length()
	if radius == 0 {
		radius = o.MinDistance
		offset = reMath.Vec3{Z: -radius}
	}
	theta := math32.Atan2(offset.X, offset.Z)
	phi := math32.Acos(reMath.Clamp(offset.Y/radius, -1, 1))

	theta += o.deltaTheta
	phi = reMath.Clamp(phi+o.deltaPhi, 0.01, math32.Pi-0.01)
	radius = reMath.Clamp(radius*o.scale, o.MinDistance, o.MaxDistance)

	sinPhi := math32.Sin(phi)
	offset = reMath.Vec3{
		X: radius * sinPhi * math32.Sin(theta),
		Y: radius * math32.Cos(phi),
		Z: radius * sinPhi * math32.Cos(theta),
	}

	c.Position = o.Target.Add(offset)
	c.Target = o.Target

	o.deltaTheta = 0
	o.deltaPhi = 0
	o.scale = 1
}
