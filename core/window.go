package core

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW and the GL context must stay on the main thread.
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	selectDown [glfw.JoystickLast + 1]bool
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
	Samples    int
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "Streak Viewer",
		Resizable: true,
		VSync:     true,
		Samples:   4,
	}
}

// Callback types. They run on the main thread inside PollEvents.
type (
	KeyCallback         func(key int, pressed bool)
	MouseButtonCallback func(button int, pressed bool)
	CursorCallback      func(x, y float64)
	ScrollCallback      func(xoff, yoff float64)
	ResizeCallback      func(width, height int)
	// SelectCallback reports gamepad select (A button) edges.
	SelectCallback func(pad int, pressed bool)
)

func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))
	if config.Samples > 0 {
		glfw.WindowHint(glfw.Samples, config.Samples)
	}

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})

	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) Close() {
	w.Handle.SetShouldClose(true)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) SetKeyCallback(cb KeyCallback) {
	w.Handle.SetKeyCallback(func(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		// Repeats carry no new edge.
		if action == glfw.Repeat {
			return
		}
		cb(int(key), action == glfw.Press)
	})
}

func (w *Window) SetMouseButtonCallback(cb MouseButtonCallback) {
	w.Handle.SetMouseButtonCallback(func(win *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		cb(int(button), action == glfw.Press)
	})
}

func (w *Window) SetCursorPosCallback(cb CursorCallback) {
	w.Handle.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		cb(x, y)
	})
}

func (w *Window) SetScrollCallback(cb ScrollCallback) {
	w.Handle.SetScrollCallback(func(win *glfw.Window, xoff, yoff float64) {
		cb(xoff, yoff)
	})
}

func (w *Window) SetResizeCallback(cb ResizeCallback) {
	w.Handle.SetFramebufferSizeCallback(func(win *glfw.Window, width, height int) {
		cb(width, height)
	})
}

// PollGamepads reports select-button edges for every connected gamepad.
// GLFW has no gamepad events, so this must run once per frame.
func (w *Window) PollGamepads(cb SelectCallback) {
	for joy := glfw.Joystick1; joy <= glfw.JoystickLast; joy++ {
		down := false
		if joy.Present() && joy.IsGamepad() {
			if state := joy.GetGamepadState(); state != nil {
				down = state.Buttons[glfw.ButtonA] == glfw.Press
			}
		}
		if down != w.selectDown[joy] {
			w.selectDown[joy] = down
			cb(int(joy), down)
		}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	MouseLeft   = int(glfw.MouseButtonLeft)
	MouseRight  = int(glfw.MouseButtonRight)
	MouseMiddle = int(glfw.MouseButtonMiddle)
)

const (
	KeyA      = int(glfw.KeyA)
	KeyD      = int(glfw.KeyD)
	KeyS      = int(glfw.KeyS)
	KeyW      = int(glfw.KeyW)
	KeyUp     = int(glfw.KeyUp)
	KeyDown   = int(glfw.KeyDown)
	KeyEscape = int(glfw.KeyEscape)
)
