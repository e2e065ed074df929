package math

// Vec2 holds texture coordinates.
type Vec2 struct {
	X, Y float32
}
