package scene

import (
	"streak-viewer/core"
	"streak-viewer/math"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name       string
	Vertices   []core.Vertex
	Indices    []uint32
	IndexCount uint32

	// Material holds surface shading properties. If nil, DefaultMaterial() is used.
	Material *Material

	// Local-space bounds, computed by CreateMeshFromData.
	Min, Max math.Vec3

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	GPUData interface{}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space bounds.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name:       name,
		Vertices:   vertices,
		Indices:    indices,
		IndexCount: uint32(len(indices)),
	}
	if len(vertices) > 0 {
		m.Min, m.Max = vertices[0].Position, vertices[0].Position
		for _, v := range vertices[1:] {
			p := v.Position
			m.Min = math.Vec3{X: min(m.Min.X, p.X), Y: min(m.Min.Y, p.Y), Z: min(m.Min.Z, p.Z)}
			m.Max = math.Vec3{X: max(m.Max.X, p.X), Y: max(m.Max.Y, p.Y), Z: max(m.Max.Z, p.Z)}
		}
	}
	return m
}

// TriangleCount is the number of indexed (or sequential) triangles.
func (m *Mesh) TriangleCount() int {
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}
