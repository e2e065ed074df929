package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"streak-viewer/core"
	"streak-viewer/math"
)

const hudVertSrc = `
#version 410 core
layout(location = 0) in vec2 inCorner;

uniform mat4 projection;
uniform vec4 rect; // x, y, width, height in pixels

void main() {
    vec2 p = rect.xy + inCorner * rect.zw;
    gl_Position = projection * vec4(p, 0.0, 1.0);
}
` + "\x00"

const hudFragSrc = `
#version 410 core
uniform vec4 color;
out vec4 outColor;

void main() {
    outColor = color;
}
` + "\x00"

// unit quad as two triangles
var hudQuad = []float32{
	0, 0, 1, 0, 1, 1,
	0, 0, 1, 1, 0, 1,
}

// HUDRenderer draws flat screen-space rectangles.
type HUDRenderer struct {
	prog     uint32
	vao, vbo uint32

	projLoc  int32
	rectLoc  int32
	colorLoc int32
}

func newHUDRenderer() (*HUDRenderer, error) {
	prog, err := newProgram(hudVertSrc, hudFragSrc)
	if err != nil {
		return nil, fmt.Errorf("hud shader: %w", err)
	}
	h := &HUDRenderer{
		prog:     prog,
		projLoc:  gl.GetUniformLocation(prog, gl.Str("projection\x00")),
		rectLoc:  gl.GetUniformLocation(prog, gl.Str("rect\x00")),
		colorLoc: gl.GetUniformLocation(prog, gl.Str("color\x00")),
	}

	gl.GenVertexArrays(1, &h.vao)
	gl.GenBuffers(1, &h.vbo)
	gl.BindVertexArray(h.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, h.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(hudQuad)*4, gl.Ptr(hudQuad), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 8, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	return h, nil
}

// DrawBar fills rect with bg and its left fraction with fill.
func (h *HUDRenderer) DrawBar(rect core.Rect, fraction float32, bg, fill core.Color, screenW, screenH float32) {
	if screenW <= 0 || screenH <= 0 {
		return
	}
	proj := math.Mat4Orthographic(0, screenW, 0, screenH, -1, 1)

	gl.Disable(gl.DEPTH_TEST)
	gl.UseProgram(h.prog)
	gl.UniformMatrix4fv(h.projLoc, 1, false, (*float32)(unsafe.Pointer(&proj[0][0])))
	gl.BindVertexArray(h.vao)

	h.fill(rect, bg)
	if w := rect.Width * math.Clamp(fraction, 0, 1); w > 0 {
		h.fill(core.Rect{X: rect.X, Y: rect.Y, Width: w, Height: rect.Height}, fill)
	}

	gl.BindVertexArray(0)
	gl.Enable(gl.DEPTH_TEST)
}

func (h *HUDRenderer) fill(r core.Rect, c core.Color) {
	gl.Uniform4f(h.rectLoc, r.X, r.Y, r.Width, r.Height)
	gl.Uniform4f(h.colorLoc, c.R, c.G, c.B, c.A)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

func (h *HUDRenderer) destroy() {
	gl.DeleteVertexArrays(1, &h.vao)
	gl.DeleteBuffers(1, &h.vbo)
	gl.DeleteProgram(h.prog)
}
