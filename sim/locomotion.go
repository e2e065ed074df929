package sim

import (
	"streak-viewer/input"
	"streak-viewer/math"
	"streak-viewer/scene"
)

// Local axes of the actor model. The model travels along +X.
var (
	travelAxis = math.Vec3Right
	rollAxis   = math.Vec3Right
	pitchAxis  = math.Vec3{Z: 1}
)

// Locomotion advances the actor once per frame. Steps are per call, not per
// second, so motion speed follows the frame rate.
type Locomotion struct {
	TiltAngle float32 // radians per frame while a turn key is held
}

func NewLocomotion() *Locomotion {
	return &Locomotion{TiltAngle: DefaultTilt}
}

// Advance moves the actor forward by the current speed, applies held turn
// keys in the order left, right, back, forward, and then adjusts the speed.
func (l *Locomotion) Advance(actor *scene.Node, keys *input.State, throttle *Throttle) {
	actor.TranslateOnAxis(travelAxis, float32(throttle.Value()))

	if keys.IsPressed(input.Left) {
		actor.RotateOnAxis(rollAxis, -l.TiltAngle)
	}
	if keys.IsPressed(input.Right) {
		actor.RotateOnAxis(rollAxis, l.TiltAngle)
	}
	if keys.IsPressed(input.Back) {
		actor.RotateOnAxis(pitchAxis, l.TiltAngle)
	}
	if keys.IsPressed(input.Forward) {
		actor.RotateOnAxis(pitchAxis, -l.TiltAngle)
	}

	if keys.IsPressed(input.SpeedUp) {
		throttle.Increase()
	}
	if keys.IsPressed(input.SpeedDown) {
		throttle.Decrease()
	}
}
