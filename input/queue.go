package input

// Command is a host event waiting to be applied on the next frame.
type Command interface {
	isCommand()
}

// KeyCommand is a press or release edge of a control key.
type KeyCommand struct {
	Key     Key
	Pressed bool
}

// SelectCommand is a controller select start (Pressed) or end edge.
type SelectCommand struct {
	Controller int
	Pressed    bool
}

// DragPhase marks where a manual camera drag is.
type DragPhase int

const (
	DragStart DragPhase = iota
	DragMove
	DragEnd
)

// DragCommand is a manual camera orbit gesture in window pixels.
type DragCommand struct {
	Phase DragPhase
	X, Y  float64
}

// ZoomCommand is a scroll step; positive moves the camera closer.
type ZoomCommand struct {
	Delta float64
}

func (KeyCommand) isCommand()    {}
func (SelectCommand) isCommand() {}
func (DragCommand) isCommand()   {}
func (ZoomCommand) isCommand()   {}

// DefaultQueueSize holds several frames worth of events.
const DefaultQueueSize = 256

// Queue buffers commands between host callbacks and the frame loop.
type Queue struct {
	commands chan Command
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{commands: make(chan Command, size)}
}

// Push enqueues cmd without blocking. It returns false when the queue is full
// and the command was dropped.
func (q *Queue) Push(cmd Command) bool {
	select {
	case q.commands <- cmd:
		return true
	default:
		return false
	}
}

// Drain hands every queued command to fn in arrival order and returns how many
// were applied. Commands pushed during the drain wait for the next one.
func (q *Queue) Drain(fn func(Command)) int {
	n := len(q.commands)
	for i := 0; i < n; i++ {
		fn(<-q.commands)
	}
	return n
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	return len(q.commands)
}
