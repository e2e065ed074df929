package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Window     Window     `yaml:"window"`
	Assets     Assets     `yaml:"assets"`
	Actor      Actor      `yaml:"actor"`
	Camera     Camera     `yaml:"camera"`
	Locomotion Locomotion `yaml:"locomotion"`
	Follow     Follow     `yaml:"follow"`
	Streaks    Streaks    `yaml:"streaks"`
	Lights     Lights     `yaml:"lights"`
}

type Window struct {
	Title   string `yaml:"title"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	VSync   bool   `yaml:"vsync"`
	Samples int    `yaml:"samples"`
}

type Assets struct {
	Skybox         string `yaml:"skybox"`
	SkyboxMaxWidth int    `yaml:"skybox_max_width"`
	Actor          string `yaml:"actor"`
	Terrain        string `yaml:"terrain"`
	StreakSprite   string `yaml:"streak_sprite"` // optional
}

type Actor struct {
	Scale    float32    `yaml:"scale"`
	Position [3]float32 `yaml:"position"`
}

type Camera struct {
	FOV      float32    `yaml:"fov"` // vertical, degrees
	Near     float32    `yaml:"near"`
	Far      float32    `yaml:"far"`
	Position [3]float32 `yaml:"position"`
	Target   [3]float32 `yaml:"target"`
}

type Locomotion struct {
	Speed     float64 `yaml:"speed"`
	MinSpeed  float64 `yaml:"min_speed"`
	MaxSpeed  float64 `yaml:"max_speed"`
	SpeedStep float64 `yaml:"speed_step"`
	TiltAngle float32 `yaml:"tilt_angle"` // radians per frame
}

type Follow struct {
	Offset     [3]float32    `yaml:"offset"`
	Blend      float32       `yaml:"blend"`
	ResetDelay time.Duration `yaml:"reset_delay"`
}

type Streaks struct {
	Count       int     `yaml:"count"`
	Spread      float32 `yaml:"spread"`
	MaxDistance float32 `yaml:"max_distance"`
	Threshold   float64 `yaml:"threshold"`
	Seed        uint64  `yaml:"seed"`
	PointSize   float32 `yaml:"point_size"`
}

type Lights struct {
	Ambient              uint32     `yaml:"ambient"` // 0xRRGGBB
	DirectionalIntensity float32    `yaml:"directional_intensity"`
	Direction            [3]float32 `yaml:"direction"` // towards the light
}

// Default reproduces the stock scene.
func Default() *Config {
	return &Config{
		Window: Window{Title: "Streak Viewer", Width: 1280, Height: 720, VSync: true, Samples: 4},
		Assets: Assets{
			Skybox:         "images/qwantani_dusk_2_4k.hdr",
			SkyboxMaxWidth: 4096,
			Actor:          "models/Dog.glb",
			Terrain:        "models/World_poly.glb",
			StreakSprite:   "images/white_texture.jpg",
		},
		Actor: Actor{Scale: 0.5, Position: [3]float32{0, 1, 0}},
		Camera: Camera{
			FOV: 75, Near: 0.25, Far: 1000,
			Position: [3]float32{0, 2, -5},
			Target:   [3]float32{0, 2, 1},
		},
		Locomotion: Locomotion{Speed: 0.1, MinSpeed: 0.04, MaxSpeed: 0.2, SpeedStep: 0.0002, TiltAngle: 0.01},
		Follow:     Follow{Offset: [3]float32{-10, 3, 0}, Blend: 0.1, ResetDelay: 2 * time.Second},
		Streaks:    Streaks{Count: 5_000_000, Spread: 500, MaxDistance: 20, Threshold: 0.15, Seed: 1, PointSize: 1},
		Lights:     Lights{Ambient: 0x404040, DirectionalIntensity: 0.5, Direction: [3]float32{1, 1, 1}},
	}
}

// Load overlays the YAML file at path onto Default and validates the result.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, invalid(format, args...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Window.Samples >= 0, "window.samples %d", c.Window.Samples)
	check(c.Assets.Actor != "", "assets.actor is required")
	check(c.Assets.Terrain != "", "assets.terrain is required")
	check(c.Assets.Skybox != "", "assets.skybox is required")
	check(c.Actor.Scale > 0, "actor.scale %v", c.Actor.Scale)

	check(c.Camera.FOV > 0 && c.Camera.FOV < 180, "camera.fov %v", c.Camera.FOV)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera clip range %v..%v", c.Camera.Near, c.Camera.Far)

	l := c.Locomotion
	check(l.MinSpeed < l.MaxSpeed, "locomotion.min_speed %v not below max_speed %v", l.MinSpeed, l.MaxSpeed)
	check(l.Speed >= l.MinSpeed && l.Speed <= l.MaxSpeed, "locomotion.speed %v outside [%v, %v]", l.Speed, l.MinSpeed, l.MaxSpeed)
	check(l.SpeedStep > 0, "locomotion.speed_step %v", l.SpeedStep)

	check(c.Follow.Blend > 0 && c.Follow.Blend <= 1, "follow.blend %v", c.Follow.Blend)
	check(c.Follow.ResetDelay >= 0, "follow.reset_delay %v", c.Follow.ResetDelay)

	check(c.Streaks.Count >= 0, "streaks.count %d", c.Streaks.Count)
	check(c.Streaks.Spread > 0, "streaks.spread %v", c.Streaks.Spread)
	check(c.Streaks.MaxDistance > 0, "streaks.max_distance %v", c.Streaks.MaxDistance)
	check(c.Streaks.PointSize > 0, "streaks.point_size %v", c.Streaks.PointSize)

	return errors.Join(errs...)
}
