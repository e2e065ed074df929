package sim

import "math"

// Default locomotion constants.
const (
	DefaultSpeed     = 0.1
	DefaultMinSpeed  = 0.04
	DefaultMaxSpeed  = 0.2
	DefaultSpeedStep = 0.0002
	DefaultTilt      = 0.01
)

// boundEpsilon absorbs the rounding error of repeated steps so that an exact
// number of steps lands on a bound.
const boundEpsilon = 1e-9

// Throttle is the actor's forward speed, kept within [Min, Max].
type Throttle struct {
	min, max, step float64
	speed          float64
}

func NewThrottle(initial, lo, hi, step float64) *Throttle {
	t := &Throttle{}
	t.SetRange(lo, hi, step)
	t.speed = t.clamp(initial)
	return t
}

// DefaultThrottle starts at 0.1 within [0.04, 0.2] moving in 0.0002 steps.
func DefaultThrottle() *Throttle {
	return NewThrottle(DefaultSpeed, DefaultMinSpeed, DefaultMaxSpeed, DefaultSpeedStep)
}

// SetRange changes the bounds and step, clamping the current speed.
func (t *Throttle) SetRange(lo, hi, step float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	t.min, t.max, t.step = lo, hi, step
	t.speed = t.clamp(t.speed)
}

func (t *Throttle) Value() float64 { return t.speed }
func (t *Throttle) Min() float64   { return t.min }
func (t *Throttle) Max() float64   { return t.max }

func (t *Throttle) Increase() {
	t.speed = t.clamp(t.speed + t.step)
}

func (t *Throttle) Decrease() {
	t.speed = t.clamp(t.speed - t.step)
}

// Fraction maps the speed onto [0, 1] for the speed indicator.
func (t *Throttle) Fraction() float64 {
	if t.max == t.min {
		return 0
	}
	return (t.speed - t.min) / (t.max - t.min)
}

func (t *Throttle) clamp(v float64) float64 {
	switch {
	case v <= t.min || math.Abs(v-t.min) < boundEpsilon:
		return t.min
	case v >= t.max || math.Abs(v-t.max) < boundEpsilon:
		return t.max
	}
	return v
}
