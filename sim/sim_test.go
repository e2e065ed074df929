package sim

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streak-viewer/input"
	"streak-viewer/math"
	"streak-viewer/scene"
)

func newActor() *scene.Node {
	actor := scene.NewNode("dog")
	actor.SetScale(math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	actor.SetPosition(math.Vec3{Y: 1})
	return actor
}

func pressed(keys ...input.Key) *input.State {
	s := input.NewState()
	for _, k := range keys {
		s.SetKey(k, true)
	}
	return s
}

func TestThrottleStaysInRange(t *testing.T) {
	th := DefaultThrottle()
	for i := 0; i < 2000; i++ {
		th.Increase()
		require.LessOrEqual(t, th.Value(), DefaultMaxSpeed)
	}
	assert.Equal(t, DefaultMaxSpeed, th.Value())
	th.Increase()
	assert.Equal(t, DefaultMaxSpeed, th.Value())

	for i := 0; i < 2000; i++ {
		th.Decrease()
		require.GreaterOrEqual(t, th.Value(), DefaultMinSpeed)
	}
	assert.Equal(t, DefaultMinSpeed, th.Value())
	th.Decrease()
	assert.Equal(t, DefaultMinSpeed, th.Value())
}

func TestThrottleExactStepsReachBound(t *testing.T) {
	th := NewThrottle(0.04, 0.04, 0.2, 0.0002)
	for i := 0; i < 800; i++ {
		th.Increase()
	}
	assert.Equal(t, 0.2, th.Value())
	assert.Equal(t, 1.0, th.Fraction())
}

func TestThrottleMixedSequence(t *testing.T) {
	th := DefaultThrottle()
	ops := []bool{true, false, false, true, true, true, false}
	for i := 0; i < 500; i++ {
		if ops[i%len(ops)] {
			th.Increase()
		} else {
			th.Decrease()
		}
		require.True(t, th.Value() >= th.Min() && th.Value() <= th.Max())
	}
}

func TestThrottleRangeChangeClamps(t *testing.T) {
	th := DefaultThrottle()
	th.SetRange(0.12, 0.3, 0.001)
	assert.Equal(t, 0.12, th.Value())
	assert.Equal(t, 0.0, th.Fraction())

	th = NewThrottle(5, 0.2, 0.04, 0.0002)
	assert.Equal(t, 0.2, th.Value(), "bounds are reordered and initial clamped")
}

func TestAdvanceWithoutKeys(t *testing.T) {
	actor := newActor()
	th := DefaultThrottle()
	before := actor.Transform.Rotation

	NewLocomotion().Advance(actor, input.NewState(), th)

	p := actor.WorldPosition()
	assert.InDelta(t, 0.1, p.X, 1e-7)
	assert.InDelta(t, 1, p.Y, 1e-7)
	assert.InDelta(t, 0, p.Z, 1e-7)
	assert.Equal(t, before, actor.Transform.Rotation)
	assert.Equal(t, DefaultSpeed, th.Value())
}

func TestAdvanceFollowsHeading(t *testing.T) {
	actor := newActor()
	actor.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Up, math32.Pi/2))

	NewLocomotion().Advance(actor, input.NewState(), DefaultThrottle())

	// local +X turned a quarter about Y points along world -Z
	p := actor.WorldPosition()
	assert.InDelta(t, 0, p.X, 1e-6)
	assert.InDelta(t, -0.1, p.Z, 1e-6)
}

func TestAdvanceRotationOrder(t *testing.T) {
	actor := newActor()
	loco := NewLocomotion()
	loco.Advance(actor, pressed(input.Left, input.Forward), DefaultThrottle())

	want := math.QuaternionIdentity().
		Mul(math.QuaternionFromAxisAngle(math.Vec3Right, -DefaultTilt)).
		Mul(math.QuaternionFromAxisAngle(math.Vec3{Z: 1}, -DefaultTilt)).
		Normalize()
	got := actor.Transform.Rotation
	assert.InDelta(t, want.X, got.X, 1e-6)
	assert.InDelta(t, want.Y, got.Y, 1e-6)
	assert.InDelta(t, want.Z, got.Z, 1e-6)
	assert.InDelta(t, want.W, got.W, 1e-6)

	// the opposite order differs in Y for non-commuting rotations
	other := math.QuaternionFromAxisAngle(math.Vec3{Z: 1}, -DefaultTilt).
		Mul(math.QuaternionFromAxisAngle(math.Vec3Right, -DefaultTilt))
	assert.NotEqual(t, math32.Signbit(other.Y), math32.Signbit(got.Y))
}

func TestAdvanceTurnSigns(t *testing.T) {
	cases := []struct {
		key  input.Key
		axis math.Vec3
		sign float32
	}{
		{input.Left, math.Vec3Right, -1},
		{input.Right, math.Vec3Right, 1},
		{input.Back, math.Vec3{Z: 1}, 1},
		{input.Forward, math.Vec3{Z: 1}, -1},
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			actor := newActor()
			NewLocomotion().Advance(actor, pressed(tc.key), DefaultThrottle())

			want := math.QuaternionFromAxisAngle(tc.axis, tc.sign*DefaultTilt)
			got := actor.Transform.Rotation
			assert.InDelta(t, want.X, got.X, 1e-6)
			assert.InDelta(t, want.Z, got.Z, 1e-6)
			assert.InDelta(t, want.W, got.W, 1e-6)
		})
	}
}

func TestAdvanceSpeedKeys(t *testing.T) {
	th := DefaultThrottle()
	NewLocomotion().Advance(newActor(), pressed(input.SpeedUp), th)
	assert.InDelta(t, 0.1002, th.Value(), 1e-12)

	th = DefaultThrottle()
	NewLocomotion().Advance(newActor(), pressed(input.SpeedUp, input.SpeedDown), th)
	assert.InDelta(t, 0.1, th.Value(), 1e-12)

	// translation uses the speed from before the adjustment
	th = DefaultThrottle()
	actor := newActor()
	NewLocomotion().Advance(actor, pressed(input.SpeedDown), th)
	assert.InDelta(t, 0.1, actor.WorldPosition().X, 1e-7)
}

func TestStreakVisibility(t *testing.T) {
	actor := newActor()
	s := NewStreaks()

	s.Update(actor, 0.15)
	assert.False(t, s.Visible)
	s.Update(actor, 0.1500001)
	assert.True(t, s.Visible)
	s.Update(actor, 0.04)
	assert.False(t, s.Visible)

	actor.SetPosition(math.Vec3{X: 3, Y: 4, Z: 5})
	s.Update(actor, 0.2)
	assert.Equal(t, math.Vec3{X: 3, Y: 4, Z: 5}, s.ActorPosition)
}

func TestInteractionClockMonotonic(t *testing.T) {
	var c InteractionClock
	assert.True(t, c.Last().IsZero())

	t0 := time.Unix(100, 0)
	c.Touch(t0)
	c.Touch(t0.Add(-time.Second))
	assert.Equal(t, t0, c.Last())
	c.Touch(t0.Add(time.Second))
	assert.Equal(t, t0.Add(time.Second), c.Last())
}

func TestFollowHoldsAfterInteraction(t *testing.T) {
	actor := newActor()
	cam := scene.NewCamera(1.3, 1, 0.25, 1000)
	cam.SetPosition(math.Vec3{Y: 2, Z: -5})
	cam.LookAt(math.Vec3{Y: 2, Z: 1})

	now := time.Unix(1000, 0)
	clock := &InteractionClock{}
	clock.Touch(now.Add(-2 * time.Second))

	f := NewFollow()
	assert.False(t, f.Update(cam, actor, clock, now), "exactly at the delay")
	assert.Equal(t, math.Vec3{Y: 2, Z: -5}, cam.Position)
	assert.Equal(t, math.Vec3{Y: 2, Z: 1}, cam.Target)

	clock.Touch(now.Add(-500 * time.Millisecond))
	assert.False(t, f.Update(cam, actor, clock, now))
	assert.Equal(t, math.Vec3{Y: 2, Z: -5}, cam.Position)
}

func TestFollowBlendsTowardDesired(t *testing.T) {
	actor := newActor()
	cam := scene.NewCamera(1.3, 1, 0.25, 1000)
	cam.SetPosition(math.Vec3{Y: 2, Z: -5})

	now := time.Unix(1000, 0)
	clock := &InteractionClock{}
	clock.Touch(now.Add(-2001 * time.Millisecond))

	f := NewFollow()
	desired := f.Desired(actor)
	// offset (-10, 3, 0) through scale 0.5 and position (0, 1, 0)
	assert.InDelta(t, -5, desired.X, 1e-6)
	assert.InDelta(t, 2.5, desired.Y, 1e-6)

	before := cam.Position.Distance(desired)
	require.True(t, f.Update(cam, actor, clock, now))
	after := cam.Position.Distance(desired)
	assert.Less(t, after, before)
	assert.InDelta(t, before*0.9, after, 1e-4)
	assert.Equal(t, actor.WorldPosition(), cam.Target)

	// never touched: the clock's zero time is long past
	cam.SetPosition(math.Vec3{})
	assert.True(t, f.Update(cam, actor, &InteractionClock{}, now))
}

type recordingDrawer struct {
	frames []Frame
	err    error
}

func (d *recordingDrawer) Draw(_ *scene.Scene, f Frame) error {
	d.frames = append(d.frames, f)
	return d.err
}

func newTestScheduler(t *testing.T) (*Scheduler, *input.Queue, *recordingDrawer) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	sc := scene.NewScene()
	cam := scene.NewCamera(1.3, 16.0/9, 0.25, 1000)
	cam.SetPosition(math.Vec3{Y: 2, Z: -5})
	cam.LookAt(math.Vec3{Y: 2, Z: 1})
	sc.SetCamera(cam)

	q := input.NewQueue(16)
	d := &recordingDrawer{}
	return NewScheduler(sc, q, d, log), q, d
}

func TestSchedulerUnreadyMutatesNothing(t *testing.T) {
	s, q, d := newTestScheduler(t)
	now := time.Unix(1000, 0)

	q.Push(input.KeyCommand{Key: input.SpeedUp, Pressed: true})
	q.Push(input.KeyCommand{Key: input.Left, Pressed: true})
	q.Push(input.DragCommand{Phase: input.DragStart, X: 0, Y: 0})
	q.Push(input.DragCommand{Phase: input.DragMove, X: 300, Y: 40})
	q.Push(input.ZoomCommand{Delta: 3})
	q.Push(input.SelectCommand{Controller: 0, Pressed: true})

	camBefore := *s.Scene.Camera
	streaksBefore := *s.Streaks

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Tick(now.Add(time.Duration(i)*16*time.Millisecond)))
	}

	assert.Equal(t, Unready, s.State())
	assert.Equal(t, DefaultSpeed, s.Throttle.Value())
	assert.Equal(t, camBefore, *s.Scene.Camera)
	assert.Equal(t, streaksBefore, *s.Streaks)
	assert.True(t, s.Clock.Last().IsZero())
	assert.False(t, s.Keys.IsPressed(input.SpeedUp))
	assert.False(t, s.Orbit.Dragging())
	assert.Zero(t, q.Len())

	require.Len(t, d.frames, 3)
	assert.False(t, d.frames[0].Streaks.Visible)
	assert.InDelta(t, 0.375, d.frames[0].SpeedFraction, 1e-6)
	assert.Equal(t, uint64(3), s.Frames())
}

func TestSchedulerKeyUpAppliedWhileUnready(t *testing.T) {
	s, q, _ := newTestScheduler(t)
	now := time.Unix(1000, 0)

	require.NoError(t, s.SetActor(newActor()))
	q.Push(input.KeyCommand{Key: input.Left, Pressed: true})
	require.NoError(t, s.Tick(now))
	require.True(t, s.Keys.IsPressed(input.Left))

	// a fresh scheduler never saw the press, so only the release can land
	s2, q2, _ := newTestScheduler(t)
	s2.Keys.SetKey(input.Right, true)
	q2.Push(input.KeyCommand{Key: input.Right, Pressed: false})
	require.NoError(t, s2.Tick(now))
	assert.False(t, s2.Keys.IsPressed(input.Right))
}

func TestSchedulerRunningFrame(t *testing.T) {
	s, q, d := newTestScheduler(t)
	actor := newActor()
	require.NoError(t, s.SetActor(actor))
	assert.Equal(t, Running, s.State())
	assert.ErrorIs(t, s.SetActor(newActor()), ErrActorAssigned)

	now := time.Unix(1000, 0)
	q.Push(input.KeyCommand{Key: input.SpeedUp, Pressed: true})
	camBefore := s.Scene.Camera.Position
	require.NoError(t, s.Tick(now))

	assert.InDelta(t, 0.1, actor.WorldPosition().X, 1e-6)
	assert.InDelta(t, 0.1002, s.Throttle.Value(), 1e-12)
	assert.NotEqual(t, camBefore, s.Scene.Camera.Position)
	assert.Equal(t, actor.WorldPosition(), s.Scene.Camera.Target)
	assert.Equal(t, actor.WorldPosition(), s.Orbit.Target)

	require.Len(t, d.frames, 1)
	f := d.frames[0]
	assert.False(t, f.Streaks.Visible)
	p := actor.WorldPosition()
	assert.Equal(t, [3]float32{p.X, p.Y, p.Z}, f.Streaks.ActorPosition)
	assert.Equal(t, float32(20), f.Streaks.MaxDistance)
}

func TestSchedulerStreaksAtSpeed(t *testing.T) {
	s, _, d := newTestScheduler(t)
	require.NoError(t, s.SetActor(newActor()))
	s.Throttle = NewThrottle(0.16, DefaultMinSpeed, DefaultMaxSpeed, DefaultSpeedStep)

	require.NoError(t, s.Tick(time.Unix(1000, 0)))
	assert.True(t, d.frames[0].Streaks.Visible)
}

func TestSchedulerManualOrbitPausesFollow(t *testing.T) {
	s, q, _ := newTestScheduler(t)
	require.NoError(t, s.SetActor(newActor()))
	now := time.Unix(1000, 0)

	q.Push(input.DragCommand{Phase: input.DragStart, X: 100, Y: 100})
	q.Push(input.DragCommand{Phase: input.DragMove, X: 160, Y: 100})
	q.Push(input.DragCommand{Phase: input.DragEnd})
	require.NoError(t, s.Tick(now))
	assert.Equal(t, now, s.Clock.Last())

	// within the reset delay the camera only orbits the moving actor
	desired := s.Follow.Desired(s.Assets.Actor)
	pos := s.Scene.Camera.Position
	require.NoError(t, s.Tick(now.Add(time.Second)))
	target := s.Assets.Actor.WorldPosition()
	assert.Equal(t, target, s.Scene.Camera.Target)
	assert.InDelta(t, pos.Sub(target).Length(), s.Scene.Camera.Position.Sub(target).Length(), 0.2)
	assert.NotEqual(t, desired, s.Scene.Camera.Position)

	q.Push(input.ZoomCommand{Delta: 1})
	require.NoError(t, s.Tick(now.Add(1500*time.Millisecond)))
	assert.Equal(t, now.Add(1500*time.Millisecond), s.Clock.Last())
}

func TestSchedulerDrawError(t *testing.T) {
	s, _, d := newTestScheduler(t)
	d.err = errors.New("lost context")
	err := s.Tick(time.Unix(1000, 0))
	require.Error(t, err)
	assert.ErrorIs(t, err, d.err)
	assert.Equal(t, uint64(0), s.Frames())
}

func TestSchedulerAssets(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	first := scene.NewNode("terrain")
	s.SetTerrain(first)
	second := scene.NewNode("terrain2")
	s.SetTerrain(second)
	assert.Nil(t, s.Scene.Root.Find("terrain"))
	assert.Same(t, second, s.Scene.Root.Find("terrain2"))

	tex := scene.NewSolidTexture("sky", 1, 2, 3, 255)
	s.SetBackground(tex)
	assert.Same(t, tex, s.Scene.Background)
	assert.Same(t, tex, s.Assets.Background)
}
