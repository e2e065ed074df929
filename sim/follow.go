package sim

import (
	"time"

	"streak-viewer/math"
	"streak-viewer/scene"
)

// InteractionClock remembers the latest manual camera gesture. It never moves
// backwards.
type InteractionClock struct {
	last time.Time
}

func (c *InteractionClock) Touch(t time.Time) {
	if t.After(c.last) {
		c.last = t
	}
}

// Last is the zero time until the first gesture.
func (c *InteractionClock) Last() time.Time {
	return c.last
}

// Follow keeps the camera behind the actor unless the user moved it recently.
type Follow struct {
	Offset     math.Vec3 // in the actor's local frame, scale included
	Blend      float32   // fraction of the remaining distance covered per frame
	ResetDelay time.Duration
}

func NewFollow() *Follow {
	return &Follow{
		Offset:     math.Vec3{X: -10, Y: 3, Z: 0},
		Blend:      0.1,
		ResetDelay: 2 * time.Second,
	}
}

// Desired is where the camera wants to be for the actor's current pose.
func (f *Follow) Desired(actor *scene.Node) math.Vec3 {
	return actor.LocalToWorld(f.Offset)
}

// Update blends the camera toward the desired pose and aims it at the actor.
// It reports whether the camera was moved.
func (f *Follow) Update(cam *scene.Camera, actor *scene.Node, clock *InteractionClock, now time.Time) bool {
	if now.Sub(clock.Last()) <= f.ResetDelay {
		return false
	}
	cam.Position = cam.Position.Lerp(f.Desired(actor), f.Blend)
	cam.LookAt(actor.WorldPosition())
	return true
}
