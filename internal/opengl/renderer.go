package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sirupsen/logrus"

	"streak-viewer/core"
	"streak-viewer/math"
	"streak-viewer/scene"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Renderer is the OpenGL backend: lit meshes, the sky, the streak cloud and
// the HUD bar.
type Renderer struct {
	program uint32

	mvpLoc   int32
	modelLoc int32

	lightDirLoc       int32
	lightColorLoc     int32
	lightIntensityLoc int32
	ambientColorLoc   int32
	cameraPosLoc      int32

	matAlbedoLoc    int32
	matSpecularLoc  int32
	matShininessLoc int32
	matEmissiveLoc  int32
	albedoTexLoc    int32
	hasTextureLoc   int32
	unlitLoc        int32

	gpuMeshes map[*scene.Mesh]*GPUMesh

	skybox  *Skybox
	streaks *StreakRenderer
	hud     *HUDRenderer

	viewportW, viewportH int32
}

const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;
out vec3 fragWorldPos;

void main() {
    vec4 worldPos = model * vec4(inPosition, 1.0);
    gl_Position  = mvp * vec4(inPosition, 1.0);
    fragColor    = inColor;
    fragNormal   = mat3(model) * inNormal;
    fragUV       = inUV;
    fragWorldPos = worldPos.xyz;
}
` + "\x00"

// Blinn-Phong with one directional light and a flat ambient term.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;
in vec3 fragWorldPos;

out vec4 outColor;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;
uniform vec3  cameraPos;

uniform vec3  matAlbedo;
uniform vec3  matSpecular;
uniform float matShininess;
uniform vec3  matEmissive;
uniform sampler2D albedoTex;
uniform bool  hasTexture;
uniform bool  unlit;

void main() {
    vec4 base = vec4(matAlbedo, 1.0) * fragColor;
    if (hasTexture) {
        base *= texture(albedoTex, fragUV);
    }
    if (base.a < 0.05) {
        discard;
    }
    if (unlit) {
        outColor = base;
        return;
    }

    vec3 N = normalize(fragNormal);
    vec3 L = normalize(-lightDir);
    vec3 V = normalize(cameraPos - fragWorldPos);
    vec3 H = normalize(L + V);

    float diff = max(dot(N, L), 0.0);
    float spec = diff > 0.0 ? pow(max(dot(N, H), 0.0), matShininess) : 0.0;

    vec3 color = ambientColor * base.rgb
               + lightColor * lightIntensity * (diff * base.rgb + spec * matSpecular)
               + matEmissive;
    outColor = vec4(color, base.a);
}
` + "\x00"

// NewRenderer initialises GL on the current context and compiles every
// program the viewer needs.
func NewRenderer(log *logrus.Logger) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.WithFields(logrus.Fields{
		"version":  gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer": gl.GoStr(gl.GetString(gl.RENDERER)),
	}).Info("OpenGL ready")

	prog, err := newProgram(vertSrc, fragSrc)
	if err != nil {
		return nil, fmt.Errorf("mesh shader: %w", err)
	}

	loc := func(name string) int32 {
		return gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}
	r := &Renderer{
		program: prog,

		mvpLoc:   loc("mvp"),
		modelLoc: loc("model"),

		lightDirLoc:       loc("lightDir"),
		lightColorLoc:     loc("lightColor"),
		lightIntensityLoc: loc("lightIntensity"),
		ambientColorLoc:   loc("ambientColor"),
		cameraPosLoc:      loc("cameraPos"),

		matAlbedoLoc:    loc("matAlbedo"),
		matSpecularLoc:  loc("matSpecular"),
		matShininessLoc: loc("matShininess"),
		matEmissiveLoc:  loc("matEmissive"),
		albedoTexLoc:    loc("albedoTex"),
		hasTextureLoc:   loc("hasTexture"),
		unlitLoc:        loc("unlit"),

		gpuMeshes: make(map[*scene.Mesh]*GPUMesh),
	}

	if r.skybox, err = NewSkybox(); err != nil {
		r.Destroy()
		return nil, err
	}
	if r.streaks, err = newStreakRenderer(); err != nil {
		r.Destroy()
		return nil, err
	}
	if r.hud, err = newHUDRenderer(); err != nil {
		r.Destroy()
		return nil, err
	}

	gl.UseProgram(prog)
	gl.Uniform1i(r.albedoTexLoc, 0)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.MULTISAMPLE)
	return r, nil
}

func (r *Renderer) SetViewport(width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (r *Renderer) Viewport() (int, int) {
	return int(r.viewportW), int(r.viewportH)
}

// BeginFrame clears the target and sets the per-frame lighting uniforms.
func (r *Renderer) BeginFrame(sky core.Color, lights []*scene.Light, ambient core.Color, camPos math.Vec3) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.ClearColor(sky.R, sky.G, sky.B, sky.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.UseProgram(r.program)
	gl.Uniform3f(r.cameraPosLoc, camPos.X, camPos.Y, camPos.Z)

	dir := math.Vec3{X: -1, Y: -1, Z: -1}.Normalize()
	color := core.ColorWhite
	intensity := float32(0)
	for _, l := range lights {
		if l == nil {
			continue
		}
		switch l.Type {
		case scene.LightTypeDirectional:
			dir = l.Direction.Normalize()
			color = l.Color
			intensity = l.Intensity
		case scene.LightTypeAmbient:
			ambient = core.Color{
				R: ambient.R + l.Color.R*l.Intensity,
				G: ambient.G + l.Color.G*l.Intensity,
				B: ambient.B + l.Color.B*l.Intensity,
				A: 1,
			}
		}
	}
	gl.Uniform3f(r.ambientColorLoc, ambient.R, ambient.G, ambient.B)
	gl.Uniform3f(r.lightDirLoc, dir.X, dir.Y, dir.Z)
	gl.Uniform3f(r.lightColorLoc, color.R, color.G, color.B)
	gl.Uniform1f(r.lightIntensityLoc, intensity)
}

// DrawSky draws the environment behind everything already on screen. bg may
// be nil, in which case the gradient is used.
func (r *Renderer) DrawSky(view, proj math.Mat4, bg *scene.Texture) {
	r.skybox.Draw(view, proj, bg)
}

// DrawStreaks draws the point cloud with the given per-frame uniforms.
func (r *Renderer) DrawStreaks(cloud *scene.StreakCloud, vp math.Mat4, u StreakUniforms) {
	r.streaks.Draw(cloud, vp, u)
}

// ReleaseStreaks frees the GPU buffer of an uploaded cloud.
func (r *Renderer) ReleaseStreaks(cloud *scene.StreakCloud) {
	r.streaks.Release(cloud)
}

// DrawBar draws a horizontal progress bar in window pixels, origin bottom-left.
func (r *Renderer) DrawBar(rect core.Rect, fraction float32, bg, fill core.Color) {
	r.hud.DrawBar(rect, fraction, bg, fill, float32(r.viewportW), float32(r.viewportH))
}

// DrawMesh draws a mesh with the given MVP and model matrices.
func (r *Renderer) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4) {
	gpu := r.ensureUploaded(mesh)
	if gpu == nil {
		return
	}

	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(r.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))

	mat := mesh.Material
	if mat == nil {
		mat = scene.DefaultMaterial()
	}
	r.applyMaterial(mat)

	gl.BindVertexArray(gpu.VAO)
	if gpu.HasIndices {
		gl.DrawElements(gl.TRIANGLES, gpu.IndexCount, gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(gl.TRIANGLES, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
}

func (r *Renderer) applyMaterial(mat *scene.Material) {
	gl.Uniform3f(r.matAlbedoLoc, mat.Albedo.R, mat.Albedo.G, mat.Albedo.B)
	gl.Uniform3f(r.matSpecularLoc, mat.Specular.R, mat.Specular.G, mat.Specular.B)
	gl.Uniform1f(r.matShininessLoc, mat.Shininess)
	gl.Uniform3f(r.matEmissiveLoc, mat.Emissive.R, mat.Emissive.G, mat.Emissive.B)
	gl.Uniform1i(r.unlitLoc, boolInt(mat.Unlit))

	if tex := mat.AlbedoTexture; tex != nil && tex.GLID != 0 {
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, tex.GLID)
		gl.Uniform1i(r.hasTextureLoc, 1)
	} else {
		gl.Uniform1i(r.hasTextureLoc, 0)
	}
}

// ReleaseMesh frees the GPU buffers of an uploaded mesh.
func (r *Renderer) ReleaseMesh(mesh *scene.Mesh) {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		gl.DeleteVertexArrays(1, &gpu.VAO)
		gl.DeleteBuffers(1, &gpu.VBO)
		if gpu.HasIndices {
			gl.DeleteBuffers(1, &gpu.EBO)
		}
		delete(r.gpuMeshes, mesh)
		mesh.GPUData = nil
	}
}

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	if r.skybox != nil {
		r.skybox.Destroy()
	}
	if r.streaks != nil {
		r.streaks.destroy()
	}
	if r.hud != nil {
		r.hud.destroy()
	}
	gl.DeleteProgram(r.program)
}

func (r *Renderer) ensureUploaded(mesh *scene.Mesh) *GPUMesh {
	if gpu, ok := r.gpuMeshes[mesh]; ok {
		return gpu
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	gpu := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &gpu.VAO)
	gl.GenBuffers(1, &gpu.VBO)
	gl.BindVertexArray(gpu.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, gpu.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if gpu.HasIndices {
		gl.GenBuffers(1, &gpu.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gpu.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}
	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = gpu
	mesh.GPUData = gpu
	return gpu
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// ── Shader helpers ────────────────────────────────────────────────────────────

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src)
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
