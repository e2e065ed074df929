package sim

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"streak-viewer/input"
	"streak-viewer/scene"
)

// ErrActorAssigned is returned when a second actor is handed to the scheduler.
var ErrActorAssigned = errors.New("actor already assigned")

// SceneAssets holds what asynchronous loading has delivered so far. Every
// field is nil until its load completes.
type SceneAssets struct {
	Actor      *scene.Node
	Terrain    *scene.Node
	Background *scene.Texture
}

// Frame is the per-frame state handed to the renderer alongside the scene.
type Frame struct {
	Streaks       StreakUniforms
	SpeedFraction float32
}

// StreakUniforms is what the point shader needs for one frame.
type StreakUniforms struct {
	Visible       bool
	ActorPosition [3]float32
	MaxDistance   float32
}

// Drawer renders one frame.
type Drawer interface {
	Draw(sc *scene.Scene, frame Frame) error
}

type State int

const (
	Unready State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "unready"
}

// Scheduler runs one frame per Tick: drain input, move the actor, update the
// streaks, follow with the camera, apply manual orbit, then draw.
type Scheduler struct {
	Scene      *scene.Scene
	Assets     SceneAssets
	Keys       *input.State
	Throttle   *Throttle
	Locomotion *Locomotion
	Streaks    *Streaks
	Follow     *Follow
	Orbit      *scene.OrbitControls
	Clock      *InteractionClock

	queue  *input.Queue
	drawer Drawer
	log    *logrus.Logger
	state  State
	frames uint64
}

func NewScheduler(sc *scene.Scene, queue *input.Queue, drawer Drawer, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		Scene:      sc,
		Keys:       input.NewState(),
		Throttle:   DefaultThrottle(),
		Locomotion: NewLocomotion(),
		Streaks:    NewStreaks(),
		Follow:     NewFollow(),
		Orbit:      scene.NewOrbitControls(sc.Camera.Target),
		Clock:      &InteractionClock{},
		queue:      queue,
		drawer:     drawer,
		log:        log,
	}
}

func (s *Scheduler) State() State { return s.state }

// Frames is the number of completed ticks.
func (s *Scheduler) Frames() uint64 { return s.frames }

// SetActor adds the actor to the scene and starts the simulation. It can only
// happen once.
func (s *Scheduler) SetActor(actor *scene.Node) error {
	if s.Assets.Actor != nil {
		return ErrActorAssigned
	}
	s.Assets.Actor = actor
	s.Scene.AddNode(actor)
	s.state = Running
	s.log.WithField("node", actor.Name).Info("actor ready")
	return nil
}

// SetTerrain adds the static terrain to the scene, replacing any previous one.
func (s *Scheduler) SetTerrain(terrain *scene.Node) {
	if s.Assets.Terrain != nil {
		s.Scene.RemoveNode(s.Assets.Terrain)
	}
	s.Assets.Terrain = terrain
	s.Scene.AddNode(terrain)
}

func (s *Scheduler) SetBackground(tex *scene.Texture) {
	s.Assets.Background = tex
	s.Scene.Background = tex
}

// Tick advances one frame at time now and draws it.
func (s *Scheduler) Tick(now time.Time) error {
	s.queue.Drain(func(cmd input.Command) { s.apply(cmd, now) })

	if s.state == Running {
		actor := s.Assets.Actor
		s.Locomotion.Advance(actor, s.Keys, s.Throttle)
		s.Streaks.Update(actor, s.Throttle.Value())
		s.Follow.Update(s.Scene.Camera, actor, s.Clock, now)

		s.Orbit.Target = actor.WorldPosition()
		s.Orbit.Update(s.Scene.Camera)
	}

	if err := s.drawer.Draw(s.Scene, s.frame()); err != nil {
		return fmt.Errorf("draw frame %d: %w", s.frames, err)
	}
	s.frames++
	return nil
}

func (s *Scheduler) frame() Frame {
	p := s.Streaks.ActorPosition
	return Frame{
		Streaks: StreakUniforms{
			Visible:       s.state == Running && s.Streaks.Visible,
			ActorPosition: [3]float32{p.X, p.Y, p.Z},
			MaxDistance:   s.Streaks.MaxDistance,
		},
		SpeedFraction: float32(s.Throttle.Fraction()),
	}
}

// apply routes one queued command. Until the actor exists, key presses and
// camera gestures are dropped; releases still go through so no key sticks.
func (s *Scheduler) apply(cmd input.Command, now time.Time) {
	running := s.state == Running

	switch c := cmd.(type) {
	case input.KeyCommand:
		if c.Pressed && !running {
			return
		}
		s.Keys.SetKey(c.Key, c.Pressed)
	case input.SelectCommand:
		entry := s.log.WithField("controller", c.Controller)
		if c.Pressed {
			entry.Debug("select start")
		} else {
			entry.Debug("select end")
		}
	case input.DragCommand:
		if !running {
			return
		}
		switch c.Phase {
		case input.DragStart:
			s.Orbit.BeginDrag(c.X, c.Y)
			s.Clock.Touch(now)
		case input.DragMove:
			s.Orbit.Drag(c.X, c.Y)
		case input.DragEnd:
			s.Orbit.EndDrag()
		}
	case input.ZoomCommand:
		if !running {
			return
		}
		s.Orbit.Zoom(float32(c.Delta))
		s.Clock.Touch(now)
	}
}
