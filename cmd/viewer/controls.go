package main

import (
	"github.com/sirupsen/logrus"

	"streak-viewer/config"
	"streak-viewer/core"
	"streak-viewer/input"
	"streak-viewer/math"
	"streak-viewer/sim"
)

func defaultBindings() (*input.Bindings, error) {
	return input.NewBindings(
		input.Binding{Code: core.KeyW, Label: "W", Key: input.Forward},
		input.Binding{Code: core.KeyS, Label: "S", Key: input.Back},
		input.Binding{Code: core.KeyA, Label: "A", Key: input.Left},
		input.Binding{Code: core.KeyD, Label: "D", Key: input.Right},
		input.Binding{Code: core.KeyUp, Label: "Up", Key: input.SpeedUp},
		input.Binding{Code: core.KeyDown, Label: "Down", Key: input.SpeedDown},
	)
}

// controls turns window callbacks into queued commands.
type controls struct {
	bindings *input.Bindings
	queue    *input.Queue
	log      *logrus.Logger

	cursorX, cursorY float64
	dragging         bool
}

func (c *controls) push(cmd input.Command) {
	if !c.queue.Push(cmd) {
		c.log.WithField("command", cmd).Warn("input queue full, dropping command")
	}
}

func (c *controls) onKey(code int, pressed bool) {
	key, ok := c.bindings.Lookup(code)
	if !ok {
		return
	}
	c.push(input.KeyCommand{Key: key, Pressed: pressed})
}

func (c *controls) onMouseButton(button int, pressed bool) {
	if button != core.MouseLeft || pressed == c.dragging {
		return
	}
	c.dragging = pressed
	phase := input.DragEnd
	if pressed {
		phase = input.DragStart
	}
	c.push(input.DragCommand{Phase: phase, X: c.cursorX, Y: c.cursorY})
}

func (c *controls) onCursor(x, y float64) {
	c.cursorX, c.cursorY = x, y
	if c.dragging {
		c.push(input.DragCommand{Phase: input.DragMove, X: x, Y: y})
	}
}

func (c *controls) onScroll(_, yoff float64) {
	if yoff != 0 {
		c.push(input.ZoomCommand{Delta: yoff})
	}
}

func (c *controls) onSelect(pad int, pressed bool) {
	c.push(input.SelectCommand{Controller: pad, Pressed: pressed})
}

func vec3(a [3]float32) math.Vec3 {
	return math.Vec3{X: a[0], Y: a[1], Z: a[2]}
}

// applyTuning copies the simulation settings of cfg into s. The current
// speed is kept, clamped to the new range.
func applyTuning(s *sim.Scheduler, cfg *config.Config) {
	l := cfg.Locomotion
	s.Throttle.SetRange(l.MinSpeed, l.MaxSpeed, l.SpeedStep)
	s.Locomotion.TiltAngle = l.TiltAngle

	s.Follow.Offset = vec3(cfg.Follow.Offset)
	s.Follow.Blend = cfg.Follow.Blend
	s.Follow.ResetDelay = cfg.Follow.ResetDelay

	s.Streaks.Threshold = cfg.Streaks.Threshold
	s.Streaks.MaxDistance = cfg.Streaks.MaxDistance
}
