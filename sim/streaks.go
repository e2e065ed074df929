package sim

import (
	"streak-viewer/math"
	"streak-viewer/scene"
)

// DefaultStreakThreshold is the speed above which streaks are shown.
const DefaultStreakThreshold = 0.15

// Streaks drives the speed effect: whether the cloud is drawn and the actor
// position the point shader fades around.
type Streaks struct {
	Threshold   float64
	MaxDistance float32

	Visible       bool
	ActorPosition math.Vec3
}

func NewStreaks() *Streaks {
	return &Streaks{Threshold: DefaultStreakThreshold, MaxDistance: 20}
}

func (s *Streaks) Update(actor *scene.Node, speed float64) {
	s.Visible = speed > s.Threshold
	s.ActorPosition = actor.WorldPosition()
}
