package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/sirupsen/logrus"

	"streak-viewer/assets"
	"streak-viewer/config"
	"streak-viewer/core"
	"streak-viewer/input"
	"streak-viewer/internal/opengl"
	"streak-viewer/math"
	"streak-viewer/renderer"
	"streak-viewer/scene"
	"streak-viewer/sim"
)

func main() {
	configPath := flag.String("config", "viewer.yaml", "path to the YAML config; defaults are used if it does not exist")
	watch := flag.Bool("watch", false, "reload tuning when the config file changes")
	debug := flag.Bool("debug", false, "enable debug logging")
	width := flag.Int("width", 0, "window width, overrides the config")
	height := flag.Int("height", 0, "window height, overrides the config")
	flag.Parse()

	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}
	log.Level = logrus.InfoLevel
	if *debug {
		log.Level = logrus.DebugLevel
	}

	if err := run(log, *configPath, *watch, *width, *height); err != nil {
		log.WithError(err).Error("viewer stopped")
		os.Exit(1)
	}
}

func loadConfig(log *logrus.Logger, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", path).Info("no config file, using defaults")
		return config.Default(), nil
	}
	return cfg, err
}

func run(log *logrus.Logger, configPath string, watch bool, width, height int) error {
	cfg, err := loadConfig(log, configPath)
	if err != nil {
		return err
	}
	if width > 0 {
		cfg.Window.Width = width
	}
	if height > 0 {
		cfg.Window.Height = height
	}

	wc := core.DefaultWindowConfig()
	wc.Title = cfg.Window.Title
	wc.Width, wc.Height = cfg.Window.Width, cfg.Window.Height
	wc.VSync = cfg.Window.VSync
	wc.Samples = cfg.Window.Samples
	window, err := core.NewWindow(wc)
	if err != nil {
		return err
	}
	defer window.Destroy()

	engine, err := renderer.NewRenderEngine(window, log)
	if err != nil {
		return err
	}
	defer engine.Destroy()
	engine.PointSize = cfg.Streaks.PointSize

	sc := buildScene(cfg, window)
	defer engine.ReleaseScene(sc)
	queue := input.NewQueue(input.DefaultQueueSize)
	sched := sim.NewScheduler(sc, queue, engine, log)
	l := cfg.Locomotion
	sched.Throttle = sim.NewThrottle(l.Speed, l.MinSpeed, l.MaxSpeed, l.SpeedStep)
	sched.Orbit.ViewportHeight = float32(window.Height)
	applyTuning(sched, cfg)

	bindings, err := defaultBindings()
	if err != nil {
		return err
	}
	ctl := &controls{bindings: bindings, queue: queue, log: log}
	window.SetKeyCallback(func(key int, pressed bool) {
		if key == core.KeyEscape && pressed {
			window.Close()
			return
		}
		ctl.onKey(key, pressed)
	})
	window.SetMouseButtonCallback(ctl.onMouseButton)
	window.SetCursorPosCallback(ctl.onCursor)
	window.SetScrollCallback(ctl.onScroll)
	window.SetResizeCallback(func(w, h int) {
		engine.Resize(w, h)
		sc.Camera.UpdateAspectRatio(float32(w), float32(h))
		sched.Orbit.ViewportHeight = float32(window.Height)
	})

	ctx, cancel := context.WithCancel(context.Background())
	loader := assets.NewLoader(log)
	defer func() {
		cancel()
		loader.Wait()
	}()
	loader.LoadTexture(ctx, assets.Background, cfg.Assets.Skybox, cfg.Assets.SkyboxMaxWidth)
	loader.LoadModel(ctx, assets.Actor, cfg.Assets.Actor, "actor")
	loader.LoadModel(ctx, assets.Terrain, cfg.Assets.Terrain, "terrain")
	if cfg.Assets.StreakSprite != "" {
		loader.LoadTexture(ctx, assets.StreakSprite, cfg.Assets.StreakSprite, 0)
	}

	start := time.Now()
	cloud, err := scene.GenerateStreakCloud(ctx, cfg.Streaks.Count, cfg.Streaks.Spread, cfg.Streaks.Seed)
	if err != nil {
		return err
	}
	sc.Streaks = cloud
	log.WithFields(logrus.Fields{"points": cloud.Count, "took": time.Since(start)}).Info("streak cloud ready")

	var updates <-chan *config.Config
	if watch {
		w, err := config.Watch(configPath, log)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer w.Close()
		updates = w.Updates
	}

	log.Info("controls:")
	for _, line := range bindings.Help() {
		log.Info(line)
	}
	log.Info("  drag       - orbit camera, scroll to zoom, Esc to quit")

	handle := func(res assets.Result) {
		if err := placeAsset(sched, engine, cloud, cfg, res); err != nil {
			log.WithError(err).WithField("kind", res.Kind).Error("asset rejected")
		}
	}

	fpsFrames, fpsStart := 0, time.Now()
	for !window.ShouldClose() {
		window.PollEvents()
		window.PollGamepads(ctl.onSelect)
		loader.Poll(handle)

		select {
		case next, ok := <-updates:
			if ok {
				applyTuning(sched, next)
				engine.PointSize = next.Streaks.PointSize
			}
		default:
		}

		if err := sched.Tick(time.Now()); err != nil {
			return err
		}
		engine.Present()

		fpsFrames++
		if elapsed := time.Since(fpsStart); elapsed >= time.Second {
			objects, tris, culled := engine.DrawStats()
			window.SetTitle(fmt.Sprintf("%s - %.0f FPS", cfg.Window.Title, float64(fpsFrames)/elapsed.Seconds()))
			log.WithFields(logrus.Fields{
				"state": sched.State(), "speed": sched.Throttle.Value(),
				"objects": objects, "triangles": tris, "culled": culled,
			}).Debug("frame stats")
			fpsFrames, fpsStart = 0, time.Now()
		}
	}
	return nil
}

func buildScene(cfg *config.Config, window *core.Window) *scene.Scene {
	sc := scene.NewScene()
	sc.Ambient = core.ColorHex(cfg.Lights.Ambient)

	// the light sits at Direction, so it travels the opposite way
	sc.AddLight(&scene.Light{
		Type:      scene.LightTypeDirectional,
		Direction: vec3(cfg.Lights.Direction).Normalize().Negate(),
		Color:     core.ColorWhite,
		Intensity: cfg.Lights.DirectionalIntensity,
	})

	w, h := window.GetFramebufferSize()
	cam := scene.NewCamera(cfg.Camera.FOV*math32.Pi/180, 1, cfg.Camera.Near, cfg.Camera.Far)
	cam.UpdateAspectRatio(float32(w), float32(h))
	cam.SetPosition(vec3(cfg.Camera.Position))
	cam.LookAt(vec3(cfg.Camera.Target))
	sc.SetCamera(cam)
	return sc
}

// placeAsset uploads a finished load and hands it to the scheduler. It runs
// on the render thread.
func placeAsset(s *sim.Scheduler, engine *renderer.RenderEngine, cloud *scene.StreakCloud, cfg *config.Config, res assets.Result) error {
	switch res.Kind {
	case assets.Background:
		if err := engine.UploadTexture(res.Texture, opengl.TextureOptions{NoMipmaps: true}); err != nil {
			return err
		}
		s.SetBackground(res.Texture)
	case assets.StreakSprite:
		if err := engine.UploadTexture(res.Texture, opengl.TextureOptions{Clamp: true}); err != nil {
			return err
		}
		cloud.Point = res.Texture
	case assets.Actor:
		engine.UploadModel(res.Model)
		root := res.Model.Root
		k := cfg.Actor.Scale
		root.SetScale(math.Vec3{X: k, Y: k, Z: k})
		root.SetPosition(vec3(cfg.Actor.Position))
		return s.SetActor(root)
	case assets.Terrain:
		engine.UploadModel(res.Model)
		s.SetTerrain(res.Model.Root)
	}
	return nil
}
