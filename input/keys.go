// Package input holds the actor control keys, the per-frame key state and the
// command queue that carries host events into the frame loop.
package input

// Key names a control, independent of the physical key bound to it.
type Key string

const (
	Forward   Key = "forward"
	Back      Key = "back"
	Left      Key = "left"
	Right     Key = "right"
	SpeedUp   Key = "speed-up"
	SpeedDown Key = "speed-down"
)

// Keys is the recognized key set in a stable order.
var Keys = []Key{Forward, Back, Left, Right, SpeedUp, SpeedDown}

// Valid reports whether k belongs to the recognized key set.
func Valid(k Key) bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}
