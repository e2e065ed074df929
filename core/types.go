package core

import (
	"streak-viewer/math"
)

type Color struct {
	R, G, B, A float32
}

var ColorWhite = Color{1, 1, 1, 1}

// ColorHex converts 0xRRGGBB into an opaque Color.
func ColorHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xff) / 255,
		G: float32((hex>>8)&0xff) / 255,
		B: float32(hex&0xff) / 255,
		A: 1,
	}
}

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
	Color    Color
}

// Transform is a node's local placement. Rotation accumulates incremental
// turns; there is no Euler storage.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

func (t Transform) GetMatrix() math.Mat4 {
	return math.Mat4TRS(t.Position, t.Rotation, t.Scale)
}

type Rect struct {
	X, Y, Width, Height float32
}
