package scene

import (
	"sync/atomic"

	"streak-viewer/core"
	"streak-viewer/math"
)

// Node represents an object in the scene graph
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Mesh      *Mesh
	Visible   bool
	Id        uint32

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

var nodeIdCounter atomic.Uint32

// NewNode is safe to call from loader goroutines.
func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Children:         make([]*Node, 0),
		Visible:          true,
		Id:               nodeIdCounter.Add(1),
		worldMatrixDirty: true,
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	child.MarkWorldMatrixDirty()
	n.Children = append(n.Children, child)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

func (n *Node) GetWorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		localMatrix := n.Transform.GetMatrix()
		if n.Parent != nil {
			// Row vectors: local first, then the parent chain.
			n.worldMatrix = localMatrix.Mul(n.Parent.GetWorldMatrix())
		} else {
			n.worldMatrix = localMatrix
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

// WorldPosition is the node origin in world space.
func (n *Node) WorldPosition() math.Vec3 {
	return n.GetWorldMatrix().GetTranslation()
}

// LocalToWorld maps a point in the node's own frame (scale included) to world space.
func (n *Node) LocalToWorld(p math.Vec3) math.Vec3 {
	return n.GetWorldMatrix().MulVec3(p)
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

// TranslateOnAxis moves the node distance units along a local axis. Scale
// does not shorten the step.
func (n *Node) TranslateOnAxis(axis math.Vec3, distance float32) {
	dir := n.Transform.Rotation.RotateVector(axis.Normalize())
	n.Transform.Position = n.Transform.Position.Add(dir.Mul(distance))
	n.MarkWorldMatrixDirty()
}

// RotateOnAxis turns the node about one of its own local axes.
func (n *Node) RotateOnAxis(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.Transform.Rotation = n.Transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

// Traverse visits all nodes in the graph
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
