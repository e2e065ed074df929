package renderer

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"streak-viewer/core"
	"streak-viewer/internal/opengl"
	"streak-viewer/math"
	"streak-viewer/scene"
	"streak-viewer/sim"
)

// Speed bar layout in framebuffer pixels, anchored bottom-left.
var (
	SpeedBarRect = core.Rect{X: 10, Y: 10, Width: 200, Height: 20}
	SpeedBarBG   = core.ColorHex(0xcccccc)
	SpeedBarFill = core.ColorHex(0x0000ff)
)

// RenderEngine draws scenes through the OpenGL backend. It implements
// sim.Drawer.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *core.Window
	log    *logrus.Logger

	FrustumCulling bool
	PointSize      float32

	// Per-frame stats (populated during Draw)
	lastObjects   int
	lastTriangles int
	lastCulled    int
}

var _ sim.Drawer = (*RenderEngine)(nil)

func NewRenderEngine(window *core.Window, log *logrus.Logger) (*RenderEngine, error) {
	glRenderer, err := opengl.NewRenderer(log)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenGL renderer: %w", err)
	}
	w, h := window.GetFramebufferSize()
	glRenderer.SetViewport(w, h)

	return &RenderEngine{
		gl:             glRenderer,
		window:         window,
		log:            log,
		FrustumCulling: true,
		PointSize:      1,
	}, nil
}

// Draw renders one frame: sky, visible meshes, the streak cloud when shown,
// then the speed bar.
func (re *RenderEngine) Draw(sc *scene.Scene, frame sim.Frame) error {
	if sc == nil || sc.Camera == nil {
		return errors.New("no scene or camera")
	}
	cam := sc.Camera
	view := cam.GetViewMatrix()
	proj := cam.GetProjectionMatrix()
	vp := view.Mul(proj)

	re.gl.BeginFrame(sc.SkyColor, sc.Lights, sc.Ambient, cam.Position)
	re.gl.DrawSky(view, proj, sc.Background)

	frustum := scene.FrustumFromVP(vp)
	objects, triangles, culled := 0, 0, 0
	for _, node := range sc.GetVisibleNodes() {
		model := node.GetWorldMatrix()
		if re.FrustumCulling && !node.Mesh.WorldBounds(model).IntersectsFrustum(&frustum) {
			culled++
			continue
		}
		re.gl.DrawMesh(node.Mesh, model.Mul(vp), model)
		objects++
		triangles += node.Mesh.TriangleCount()
	}
	re.lastObjects, re.lastTriangles, re.lastCulled = objects, triangles, culled

	if sc.Streaks != nil && frame.Streaks.Visible {
		p := frame.Streaks.ActorPosition
		re.gl.DrawStreaks(sc.Streaks, vp, opengl.StreakUniforms{
			ActorPosition: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			MaxDistance:   frame.Streaks.MaxDistance,
			PointSize:     re.PointSize,
		})
	}

	re.gl.DrawBar(SpeedBarRect, frame.SpeedFraction, SpeedBarBG, SpeedBarFill)
	return nil
}

// Present swaps the window buffers.
func (re *RenderEngine) Present() {
	re.window.SwapBuffers()
}

// Resize follows a framebuffer size change.
func (re *RenderEngine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	re.gl.SetViewport(width, height)
}

// UploadTexture must be called on the render thread.
func (re *RenderEngine) UploadTexture(tex *scene.Texture, opts opengl.TextureOptions) error {
	return opengl.UploadTexture(tex, opts)
}

// UploadModel uploads every texture of a loaded model. Failures are logged
// and the affected materials fall back to their flat albedo.
func (re *RenderEngine) UploadModel(m *scene.Model) {
	for _, tex := range m.Textures {
		if err := opengl.UploadTexture(tex, opengl.TextureOptions{}); err != nil {
			re.log.WithError(err).WithField("model", m.Root.Name).Warn("texture upload failed")
		}
	}
}

// DrawStats reports what the last Draw submitted.
func (re *RenderEngine) DrawStats() (objects, triangles, culled int) {
	return re.lastObjects, re.lastTriangles, re.lastCulled
}

// ReleaseScene frees the GPU copies of the scene's textures and streak cloud.
// Meshes are freed by Destroy.
func (re *RenderEngine) ReleaseScene(sc *scene.Scene) {
	opengl.DeleteTexture(sc.Background)
	if sc.Streaks != nil {
		opengl.DeleteTexture(sc.Streaks.Point)
		re.gl.ReleaseStreaks(sc.Streaks)
	}
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
