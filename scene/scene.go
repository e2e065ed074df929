package scene

import (
	"streak-viewer/core"
	"streak-viewer/math"
)

// Scene manages a collection of nodes and the active camera
type Scene struct {
	Root     *Node
	Camera   *Camera
	Lights   []*Light
	Ambient  core.Color
	SkyColor core.Color

	// Background is an equirectangular environment image; nil until loaded,
	// in which case SkyColor clears the frame.
	Background *Texture

	// Streaks is the speed effect cloud; nil until generated.
	Streaks *StreakCloud
}

// Light types
const (
	LightTypeDirectional = iota
	LightTypeAmbient
)

// Light represents a light source
type Light struct {
	Type      int
	Direction math.Vec3 // direction the light travels
	Color     core.Color
	Intensity float32
}

func NewScene() *Scene {
	return &Scene{
		Root:     NewNode("Root"),
		Lights:   make([]*Light, 0),
		Ambient:  core.Color{R: 0.2, G: 0.2, B: 0.2, A: 1.0},
		SkyColor: core.Color{R: 0.5, G: 0.7, B: 1.0, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

func (s *Scene) AddLight(light *Light) {
	s.Lights = append(s.Lights, light)
}

// GetVisibleNodes returns all nodes with meshes whose whole ancestor chain is
// visible.
func (s *Scene) GetVisibleNodes() []*Node {
	var visible []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh != nil {
			visible = append(visible, n)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(s.Root)
	return visible
}
