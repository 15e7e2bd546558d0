// Package config loads server and gameplay tuning from a YAML file, falling
// back to built-in defaults when the file is absent.
package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Stability StabilityConfig `yaml:"stability"`
	Health    HealthConfig    `yaml:"health"`
	Game      GameConfig      `yaml:"game"`
	Camera    CameraConfig    `yaml:"camera"`
	HighScore HighScoreConfig `yaml:"high_score"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type PhysicsConfig struct {
	StepHz         int     `yaml:"step_hz"`
	LinearDamping  float64 `yaml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping"`
}

// StabilityConfig holds the allowance factors of the placement evaluator.
// Cylinder factors are tighter than box factors: circular footprints forgive
// less eccentric load.
type StabilityConfig struct {
	BoxGreen      float64 `yaml:"box_green"`
	BoxYellow     float64 `yaml:"box_yellow"`
	CylinderGreen float64 `yaml:"cylinder_green"`
	CylinderYell  float64 `yaml:"cylinder_yellow"`
}

// HealthConfig holds the tower health thresholds. WarningCos is looser
// (closer to 1) than TipCos so warnings fire before the tower is
// unrecoverable.
type HealthConfig struct {
	TipCos     float64 `yaml:"tip_cos"`
	WarningCos float64 `yaml:"warning_cos"`
	FallY      float64 `yaml:"fall_y"`
}

type GameConfig struct {
	PlaceCooldown    time.Duration `yaml:"place_cooldown"`
	SpawnClearance   float64       `yaml:"spawn_clearance"`
	MoveStep         float64       `yaml:"move_step"`
	MaxOffset        float64       `yaml:"max_offset"`
	RotateStepCoarse float64       `yaml:"rotate_step_coarse"`
	RotateStepFine   float64       `yaml:"rotate_step_fine"`
	BlockFriction    float64       `yaml:"block_friction_scale"`
	BlockRestitution float64       `yaml:"block_restitution_scale"`
}

type CameraConfig struct {
	MinPolar         float64 `yaml:"min_polar"`
	MaxPolar         float64 `yaml:"max_polar"`
	MinZoom          float64 `yaml:"min_zoom"`
	MaxZoom          float64 `yaml:"max_zoom"`
	RotSpeedX        float64 `yaml:"rot_speed_x"`
	RotSpeedY        float64 `yaml:"rot_speed_y"`
	ZoomSpeed        float64 `yaml:"zoom_speed"`
	TouchSensitivity float64 `yaml:"touch_sensitivity"`
	PinchZoomSpeed   float64 `yaml:"pinch_zoom_speed"`
	PanSpeed         float64 `yaml:"pan_speed"`
	GestureLockPx    float64 `yaml:"gesture_lock_px"`
}

type HighScoreConfig struct {
	Path string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Physics: PhysicsConfig{
			StepHz:         60,
			LinearDamping:  0.05,
			AngularDamping: 0.1,
		},
		Stability: StabilityConfig{
			BoxGreen:      0.4,
			BoxYellow:     0.8,
			CylinderGreen: 0.3,
			CylinderYell:  0.6,
		},
		Health: HealthConfig{
			TipCos:     0.866, // about 30 degrees of tilt
			WarningCos: 0.95,
			FallY:      -5.0,
		},
		Game: GameConfig{
			PlaceCooldown:    250 * time.Millisecond,
			SpawnClearance:   0.25,
			MoveStep:         0.25,
			MaxOffset:        4.0,
			RotateStepCoarse: math.Pi / 4,
			RotateStepFine:   math.Pi / 36,
			BlockFriction:    0.8,
			BlockRestitution: 0.4,
		},
		Camera: CameraConfig{
			MinPolar:         0.15,
			MaxPolar:         math.Pi/2 - 0.05,
			MinZoom:          4.0,
			MaxZoom:          50.0,
			RotSpeedX:        0.01,
			RotSpeedY:        0.01,
			ZoomSpeed:        0.01,
			TouchSensitivity: 0.5,
			PinchZoomSpeed:   0.05,
			PanSpeed:         0.0015,
			GestureLockPx:    2.0,
		},
		HighScore: HighScoreConfig{
			Path: "towerstack_highscore.json",
		},
	}
}

// Load reads the config at path, merged over the defaults. A missing file is
// not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Physics.StepHz <= 0 {
		return fmt.Errorf("physics.step_hz must be positive, got %d", c.Physics.StepHz)
	}
	if c.Stability.BoxGreen > c.Stability.BoxYellow {
		return fmt.Errorf("stability.box_green must not exceed box_yellow")
	}
	if c.Stability.CylinderGreen > c.Stability.CylinderYell {
		return fmt.Errorf("stability.cylinder_green must not exceed cylinder_yellow")
	}
	if c.Health.WarningCos < c.Health.TipCos {
		return fmt.Errorf("health.warning_cos must be looser (larger) than tip_cos")
	}
	if c.Camera.MinPolar > c.Camera.MaxPolar {
		return fmt.Errorf("camera.min_polar must not exceed max_polar")
	}
	if c.Camera.MinZoom > c.Camera.MaxZoom {
		return fmt.Errorf("camera.min_zoom must not exceed max_zoom")
	}
	return nil
}

// StepDuration returns the fixed physics step as a duration.
func (c *Config) StepDuration() time.Duration {
	return time.Second / time.Duration(c.Physics.StepHz)
}

// StepSeconds returns the fixed physics step in seconds.
func (c *Config) StepSeconds() float64 {
	return 1.0 / float64(c.Physics.StepHz)
}
