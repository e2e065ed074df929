package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"streak-viewer/core"
	"streak-viewer/math"
	"streak-viewer/scene"
)

// Skybox draws an equirectangular environment image on an inverted unit
// cube, falling back to a gradient until the image has loaded. The vertex
// shader uses the xyww trick so every fragment lands at depth 1.0.
type Skybox struct {
	vao  uint32
	vbo  uint32
	prog uint32

	vpLoc      int32
	zenithLoc  int32
	horizonLoc int32
	groundLoc  int32
	envLoc     int32
	hasEnvLoc  int32

	// Gradient used until the environment image is uploaded.
	ZenithColor, HorizonColor, GroundColor core.Color
}

// skyVertSrc transforms cube vertices with a view matrix that has its
// translation stripped, then forces depth = 1.0 via the xyww trick.
const skyVertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;

uniform mat4 skyVP;

out vec3 fragDir;

void main() {
    fragDir = inPosition;
    vec4 pos = skyVP * vec4(inPosition, 1.0);
    // xyww → after perspective divide: z/w = w/w = 1.0 (far plane)
    gl_Position = pos.xyww;
}
` + "\x00"

// skyFragSrc maps the view direction to longitude/latitude texture
// coordinates. Row 0 of the image is straight up.
const skyFragSrc = `
#version 410 core
in vec3 fragDir;
out vec4 outColor;

uniform vec3 zenith;
uniform vec3 horizon;
uniform vec3 ground;
uniform sampler2D envMap;
uniform bool hasEnv;

const float PI = 3.14159265359;

void main() {
    vec3 dir = normalize(fragDir);
    if (hasEnv) {
        vec2 uv = vec2(atan(dir.z, dir.x) / (2.0 * PI) + 0.5,
                       acos(clamp(dir.y, -1.0, 1.0)) / PI);
        // level 0 avoids the mip seam where u wraps
        outColor = vec4(textureLod(envMap, uv, 0.0).rgb, 1.0);
        return;
    }

    float t = dir.y;
    vec3 color;
    if (t >= 0.0) {
        // Subtle power curve makes the zenith transition feel natural
        color = mix(horizon, zenith, pow(t, 0.4));
    } else {
        // Ground fades in quickly below the horizon
        color = mix(horizon, ground, min(-t * 3.0, 1.0));
    }
    outColor = vec4(color, 1.0);
}
` + "\x00"

// 36 positions (xyz) for a unit cube, standard CCW winding from the outside.
// Face culling is disabled during draw so we see the inside faces.
var skyboxVerts = []float32{
	// -Z face
	-1, -1, -1, 1, 1, -1, 1, -1, -1,
	1, 1, -1, -1, -1, -1, -1, 1, -1,
	// +Z face
	-1, -1, 1, 1, -1, 1, 1, 1, 1,
	1, 1, 1, -1, 1, 1, -1, -1, 1,
	// -X face
	-1, 1, 1, -1, 1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, 1, -1, 1, 1,
	// +X face
	1, 1, 1, 1, -1, -1, 1, 1, -1,
	1, -1, -1, 1, 1, 1, 1, -1, 1,
	// -Y face
	-1, -1, -1, 1, -1, -1, 1, -1, 1,
	1, -1, 1, -1, -1, 1, -1, -1, -1,
	// +Y face
	-1, 1, -1, 1, 1, 1, 1, 1, -1,
	1, 1, 1, -1, 1, -1, -1, 1, 1,
}

// NewSkybox compiles the sky shader and uploads the cube geometry. The
// fallback gradient is a dusk palette.
func NewSkybox() (*Skybox, error) {
	prog, err := newProgram(skyVertSrc, skyFragSrc)
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}

	sb := &Skybox{
		prog:       prog,
		vpLoc:      gl.GetUniformLocation(prog, gl.Str("skyVP\x00")),
		zenithLoc:  gl.GetUniformLocation(prog, gl.Str("zenith\x00")),
		horizonLoc: gl.GetUniformLocation(prog, gl.Str("horizon\x00")),
		groundLoc:  gl.GetUniformLocation(prog, gl.Str("ground\x00")),
		envLoc:     gl.GetUniformLocation(prog, gl.Str("envMap\x00")),
		hasEnvLoc:  gl.GetUniformLocation(prog, gl.Str("hasEnv\x00")),

		ZenithColor:  core.Color{R: 0.12, G: 0.16, B: 0.35, A: 1},
		HorizonColor: core.Color{R: 0.85, G: 0.55, B: 0.40, A: 1},
		GroundColor:  core.Color{R: 0.20, G: 0.17, B: 0.15, A: 1},
	}
	gl.UseProgram(prog)
	gl.Uniform1i(sb.envLoc, 0)

	gl.GenVertexArrays(1, &sb.vao)
	gl.GenBuffers(1, &sb.vbo)
	gl.BindVertexArray(sb.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, sb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(skyboxVerts)*4, gl.Ptr(skyboxVerts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 12, gl.PtrOffset(0))
	gl.BindVertexArray(0)

	return sb, nil
}

// Draw renders the sky around the camera. The translation of view is
// dropped so the sky stays at infinity.
func (sb *Skybox) Draw(view, proj math.Mat4, env *scene.Texture) {
	view[3][0], view[3][1], view[3][2] = 0, 0, 0
	skyVP := view.Mul(proj)

	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(false)

	gl.UseProgram(sb.prog)
	gl.UniformMatrix4fv(sb.vpLoc, 1, false, (*float32)(unsafe.Pointer(&skyVP[0][0])))
	if env != nil && env.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, env.GLID)
		gl.Uniform1i(sb.hasEnvLoc, 1)
	} else {
		gl.Uniform1i(sb.hasEnvLoc, 0)
		gl.Uniform3f(sb.zenithLoc, sb.ZenithColor.R, sb.ZenithColor.G, sb.ZenithColor.B)
		gl.Uniform3f(sb.horizonLoc, sb.HorizonColor.R, sb.HorizonColor.G, sb.HorizonColor.B)
		gl.Uniform3f(sb.groundLoc, sb.GroundColor.R, sb.GroundColor.G, sb.GroundColor.B)
	}

	gl.BindVertexArray(sb.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)

	gl.DepthMask(true)
	gl.DepthFunc(gl.LESS)
}

// Destroy frees all GPU resources owned by this skybox.
func (sb *Skybox) Destroy() {
	gl.DeleteVertexArrays(1, &sb.vao)
	gl.DeleteBuffers(1, &sb.vbo)
	gl.DeleteProgram(sb.prog)
}
