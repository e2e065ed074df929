package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"streak-viewer/math"
	"streak-viewer/scene"
)

// StreakUniforms are the per-frame inputs of the point shader.
type StreakUniforms struct {
	ActorPosition math.Vec3
	MaxDistance   float32
	PointSize     float32
}

// The fade must match scene.StreakAlpha.
const streakVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4  vp;
uniform vec3  actorPosition;
uniform float maxDistance;
uniform float pointSize;

out float fragAlpha;

void main() {
    float d = distance(inPosition, actorPosition);
    fragAlpha    = 1.0 - smoothstep(0.0, maxDistance, d);
    gl_Position  = vp * vec4(inPosition, 1.0);
    gl_PointSize = pointSize;
}
` + "\x00"

const streakFragSrc = `
#version 410 core
in float fragAlpha;
out vec4 outColor;

uniform sampler2D pointTex;
uniform bool hasPointTex;

void main() {
    if (fragAlpha <= 0.0) {
        discard;
    }
    vec4 col = vec4(1.0);
    if (hasPointTex) {
        col = texture(pointTex, gl_PointCoord);
    }
    outColor = vec4(col.rgb, col.a * fragAlpha);
}
` + "\x00"

// StreakRenderer draws a scene.StreakCloud. The positions are uploaded once
// into a static buffer; only uniforms change per frame.
type StreakRenderer struct {
	prog uint32

	vpLoc          int32
	actorLoc       int32
	maxDistLoc     int32
	pointSizeLoc   int32
	pointTexLoc    int32
	hasPointTexLoc int32
}

type gpuCloud struct {
	vao, vbo uint32
	count    int32
}

func newStreakRenderer() (*StreakRenderer, error) {
	prog, err := newProgram(streakVertSrc, streakFragSrc)
	if err != nil {
		return nil, fmt.Errorf("streak shader: %w", err)
	}
	loc := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}
	sr := &StreakRenderer{
		prog:           prog,
		vpLoc:          loc("vp"),
		actorLoc:       loc("actorPosition"),
		maxDistLoc:     loc("maxDistance"),
		pointSizeLoc:   loc("pointSize"),
		pointTexLoc:    loc("pointTex"),
		hasPointTexLoc: loc("hasPointTex"),
	}
	gl.UseProgram(prog)
	gl.Uniform1i(sr.pointTexLoc, 0)
	return sr, nil
}

func (sr *StreakRenderer) upload(cloud *scene.StreakCloud) *gpuCloud {
	if g, ok := cloud.GPUData.(*gpuCloud); ok {
		return g
	}
	if cloud.Count == 0 {
		return nil
	}
	g := &gpuCloud{count: int32(cloud.Count)}
	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(cloud.Positions)*4, gl.Ptr(cloud.Positions), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)
	cloud.GPUData = g
	return g
}

// Draw renders the cloud additively without writing depth, so points never
// hide each other or the actor.
func (sr *StreakRenderer) Draw(cloud *scene.StreakCloud, vp math.Mat4, u StreakUniforms) {
	g := sr.upload(cloud)
	if g == nil {
		return
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	gl.DepthMask(false)
	gl.Enable(gl.PROGRAM_POINT_SIZE)

	gl.UseProgram(sr.prog)
	gl.UniformMatrix4fv(sr.vpLoc, 1, false, (*float32)(unsafe.Pointer(&vp[0][0])))
	gl.Uniform3f(sr.actorLoc, u.ActorPosition.X, u.ActorPosition.Y, u.ActorPosition.Z)
	gl.Uniform1f(sr.maxDistLoc, u.MaxDistance)
	gl.Uniform1f(sr.pointSizeLoc, u.PointSize)
	if tex := cloud.Point; tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(sr.hasPointTexLoc, 1)
	} else {
		gl.Uniform1i(sr.hasPointTexLoc, 0)
	}

	gl.BindVertexArray(g.vao)
	gl.DrawArrays(gl.POINTS, 0, g.count)
	gl.BindVertexArray(0)

	gl.Disable(gl.PROGRAM_POINT_SIZE)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

// Release frees the cloud's GPU buffer.
func (sr *StreakRenderer) Release(cloud *scene.StreakCloud) {
	if g, ok := cloud.GPUData.(*gpuCloud); ok {
		gl.DeleteVertexArrays(1, &g.vao)
		gl.DeleteBuffers(1, &g.vbo)
		cloud.GPUData = nil
	}
}

func (sr *StreakRenderer) destroy() {
	gl.DeleteProgram(sr.prog)
}
