package scene

import "streak-viewer/core"

// Material describes surface appearance for the Blinn-Phong mesh shader.
type Material struct {
	Name      string
	Albedo    core.Color // multiplied with AlbedoTexture when set
	Specular  core.Color
	Shininess float32
	Emissive  core.Color
	Unlit     bool

	// Upload via the renderer before the first draw.
	AlbedoTexture *Texture
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Albedo:    core.ColorWhite,
		Specular:  core.Color{R: 0.3, G: 0.3, B: 0.3, A: 1},
		Shininess: 32,
	}
}
