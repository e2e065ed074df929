package opengl

import (
	"errors"
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"streak-viewer/scene"
)

// TextureOptions selects sampling state at upload time.
type TextureOptions struct {
	// Clamp stops sampling from wrapping at the edges (sprites, HUD).
	Clamp bool
	// NoMipmaps skips mip generation (environment maps sampled at level 0).
	NoMipmaps bool
}

// UploadTexture copies tex to the GPU and sets its GLID. It must run on the
// thread that owns the GL context. Uploading an already uploaded texture is a
// no-op.
func UploadTexture(tex *scene.Texture, opts TextureOptions) error {
	if tex == nil {
		return errors.New("nil texture")
	}
	if tex.GLID != 0 {
		return nil
	}
	if len(tex.Pixels) < tex.Width*tex.Height*4 || tex.Width == 0 {
		return fmt.Errorf("texture %q: %d bytes for %dx%d", tex.Name, len(tex.Pixels), tex.Width, tex.Height)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	wrap := int32(gl.REPEAT)
	if opts.Clamp {
		wrap = gl.CLAMP_TO_EDGE
	}
	minFilter := int32(gl.LINEAR_MIPMAP_LINEAR)
	if opts.NoMipmaps {
		minFilter = gl.LINEAR
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(tex.Width), int32(tex.Height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&tex.Pixels[0]))
	if !opts.NoMipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tex.GLID = id
	return nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its GLID.
func DeleteTexture(tex *scene.Texture) {
	if tex == nil || tex.GLID == 0 {
		return
	}
	gl.DeleteTextures(1, &tex.GLID)
	tex.GLID = 0
}
