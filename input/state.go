package input

// State is the pressed/released status of the recognized keys. It has a single
// writer (the queue drain) and is read once per frame.
type State struct {
	pressed map[Key]bool
}

func NewState() *State {
	return &State{pressed: make(map[Key]bool, len(Keys))}
}

// SetKey records a press or release. Unrecognized names are ignored.
func (s *State) SetKey(name Key, pressed bool) {
	if !Valid(name) {
		return
	}
	s.pressed[name] = pressed
}

// IsPressed is false for any key never set.
func (s *State) IsPressed(name Key) bool {
	return s.pressed[name]
}

// Reset releases every key.
func (s *State) Reset() {
	clear(s.pressed)
}
