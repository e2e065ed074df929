package scene

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"streak-viewer/core"
	"streak-viewer/math"
)

// Model is a loaded glTF asset. Root groups the file's top-level nodes so the
// whole model can be placed with one transform.
type Model struct {
	Root *Node
	// Textures need GPU upload before the first draw.
	Textures []*Texture
	// Warnings lists parts of the file that were skipped.
	Warnings []string
}

type gltfLoader struct {
	doc      *gltf.Document
	dir      string
	model    *Model
	textures []*Texture
	mats     []*Material
	meshes   [][]*Mesh
}

// LoadGLTF opens a .glb or .gltf file and builds a node tree under a new root
// named name. PBR metallic-roughness is approximated to Blinn-Phong.
func LoadGLTF(path, name string) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	l := &gltfLoader{
		doc:   doc,
		dir:   filepath.Dir(path),
		model: &Model{Root: NewNode(name)},
	}
	l.loadTextures()
	l.loadMaterials()
	l.loadMeshes()
	for _, n := range l.buildNodes() {
		l.model.Root.AddChild(n)
	}
	return l.model, nil
}

func (l *gltfLoader) warn(format string, args ...any) {
	l.model.Warnings = append(l.model.Warnings, fmt.Sprintf(format, args...))
}

func (l *gltfLoader) loadTextures() {
	l.textures = make([]*Texture, len(l.doc.Textures))
	for i, gt := range l.doc.Textures {
		if gt.Source == nil {
			continue
		}
		src := *gt.Source
		img := l.doc.Images[src]

		var (
			tex *Texture
			err error
		)
		switch {
		case img.BufferView != nil:
			var raw []byte
			raw, err = modeler.ReadBufferView(l.doc, l.doc.BufferViews[*img.BufferView])
			if err == nil {
				name := img.Name
				if name == "" {
					name = fmt.Sprintf("image_%d", src)
				}
				tex, err = decodeImageBytes(name, raw)
			}
		case img.URI != "" && !img.IsEmbeddedResource():
			tex, err = LoadTexture(filepath.Join(l.dir, img.URI), 0)
		default:
			continue
		}
		if err != nil {
			l.warn("image %d: %v", src, err)
			continue
		}
		l.textures[i] = tex
		l.model.Textures = append(l.model.Textures, tex)
	}
}

func (l *gltfLoader) loadMaterials() {
	l.mats = make([]*Material, len(l.doc.Materials))
	for i, gm := range l.doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])}
			if bt := pbr.BaseColorTexture; bt != nil && bt.Index < len(l.textures) {
				mat.AlbedoTexture = l.textures[bt.Index]
			}
			// smooth surfaces get a tight highlight, metals a bright one
			rough := float32(pbr.RoughnessFactorOrDefault())
			mat.Shininess = (1-rough)*(1-rough)*128 + 1
			s := float32(pbr.MetallicFactorOrDefault()) * 0.7
			mat.Specular = core.Color{R: s, G: s, B: s, A: 1}
		}
		if gm.EmissiveFactor != [3]float64{} {
			e := gm.EmissiveFactor
			mat.Emissive = core.Color{R: float32(e[0]), G: float32(e[1]), B: float32(e[2]), A: 1}
		}
		l.mats[i] = mat
	}
}

func (l *gltfLoader) loadMeshes() {
	l.meshes = make([][]*Mesh, len(l.doc.Meshes))
	for mi, gm := range l.doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := l.loadPrimitive(gm.Name, pi, prim)
			if err != nil {
				l.warn("mesh %d primitive %d: %v", mi, pi, err)
				continue
			}
			if prim.Material != nil && *prim.Material < len(l.mats) {
				m.Material = l.mats[*prim.Material]
			}
			l.meshes[mi] = append(l.meshes[mi], m)
		}
	}
}

func (l *gltfLoader) loadPrimitive(meshName string, idx int, prim *gltf.Primitive) (*Mesh, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported mode %v", prim.Mode)
	}
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(l.doc, l.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var (
		normals [][3]float32
		uvs     [][2]float32
	)
	if i, ok := prim.Attributes["NORMAL"]; ok {
		normals, _ = modeler.ReadNormal(l.doc, l.doc.Accessors[i], nil)
	}
	if i, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, _ = modeler.ReadTextureCoord(l.doc, l.doc.Accessors[i], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(l.doc, l.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	name := fmt.Sprintf("%s_p%d", meshName, idx)
	if meshName == "" {
		name = fmt.Sprintf("primitive_%d", idx)
	}
	return CreateMeshFromData(name, verts, indices), nil
}

// buildNodes creates the node hierarchy and returns the scene roots.
func (l *gltfLoader) buildNodes() []*Node {
	nodes := make([]*Node, len(l.doc.Nodes))
	for i, gn := range l.doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)

		t := gn.TranslationOrDefault()
		n.SetPosition(math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])})
		s := gn.ScaleOrDefault()
		n.SetScale(math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])})
		r := gn.RotationOrDefault()
		n.SetRotation(math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])})

		if gn.Mesh != nil && *gn.Mesh < len(l.meshes) {
			prims := l.meshes[*gn.Mesh]
			if len(prims) == 1 {
				n.Mesh = prims[0]
			} else {
				for pi, p := range prims {
					child := NewNode(fmt.Sprintf("%s_prim%d", name, pi))
					child.Mesh = p
					n.AddChild(child)
				}
			}
		}
		nodes[i] = n
	}

	hasParent := make([]bool, len(nodes))
	for i, gn := range l.doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) && !hasParent[c] {
				nodes[i].AddChild(nodes[c])
				hasParent[c] = true
			}
		}
	}

	var roots []*Node
	if l.doc.Scene != nil && *l.doc.Scene < len(l.doc.Scenes) {
		for _, idx := range l.doc.Scenes[*l.doc.Scene].Nodes {
			if idx < len(nodes) {
				roots = append(roots, nodes[idx])
			}
		}
		return roots
	}
	for i, n := range nodes {
		if !hasParent[i] {
			roots = append(roots, n)
		}
	}
	return roots
}

// decodeImageBytes decodes an embedded PNG or JPEG into an RGBA8 texture.
func decodeImageBytes(name string, data []byte) (*Texture, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return textureFromImage(name, img, 0), nil
}
