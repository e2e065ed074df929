package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// Texture holds CPU-side pixel data for a 2D texture.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, top-to-bottom).
	Pixels []byte
	// GLID is the OpenGL texture object ID, set by opengl.UploadTexture.
	GLID uint32
}

// LoadTexture reads a PNG, JPEG or Radiance HDR file from disk. When maxWidth
// is positive, wider images are scaled down to it keeping the aspect ratio.
func LoadTexture(path string, maxWidth int) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return textureFromImage(path, img, maxWidth), nil
}

// textureFromImage converts any image to RGBA8, optionally downscaling it.
func textureFromImage(name string, img image.Image, maxWidth int) *Texture {
	src := img.Bounds()
	w, h := src.Dx(), src.Dy()
	if maxWidth > 0 && w > maxWidth {
		h = max(1, h*maxWidth/w)
		w = maxWidth
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == src.Dx() && h == src.Dy() {
		draw.Draw(rgba, rgba.Bounds(), img, src.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(rgba, rgba.Bounds(), img, src, draw.Src, nil)
	}

	return &Texture{
		Name:   name,
		Width:  w,
		Height: h,
		Pixels: rgba.Pix,
	}
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
	}
}
