// Package config loads the description of a chain scene from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/akmonengine/tether/control"
	"github.com/caarlos0/env/v11"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt        = 1.0 / 60.0
	DefaultSteps     = 600
	DefaultSubsteps  = 50
	DefaultCount     = 100
	DefaultSpacing   = 0.001
	DefaultNodeSize  = 0.075
	DefaultMoveSpeed = 0.3
	// DefaultGroundHeight is the top surface of the floor
	DefaultGroundHeight = -17.5
)

// ErrInvalidConfig is returned by Validate and everything that loads a config
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	World  WorldConfig     `yaml:"world"`
	Chain  ChainConfig     `yaml:"chain"`
	Ground GroundConfig    `yaml:"ground"`
	Script []SegmentConfig `yaml:"script,omitempty"`
}

type WorldConfig struct {
	Gravity       mgl64.Vec3 `yaml:"gravity,flow"`
	Substeps      int        `yaml:"substeps"       env:"TETHER_SUBSTEPS"`
	Workers       int        `yaml:"workers"        env:"TETHER_WORKERS"`
	Dt            float64    `yaml:"dt"             env:"TETHER_DT"`
	Steps         int        `yaml:"steps"          env:"TETHER_STEPS"`
	SleepTime     float64    `yaml:"sleep_time"     env:"TETHER_SLEEP_TIME"`
	SleepVelocity float64    `yaml:"sleep_velocity" env:"TETHER_SLEEP_VELOCITY"`
}

type ChainConfig struct {
	Origin     mgl64.Vec3 `yaml:"origin,flow"`
	Direction  mgl64.Vec3 `yaml:"direction,flow"`
	Count      int        `yaml:"count"      env:"TETHER_CHAIN_COUNT"`
	Spacing    float64    `yaml:"spacing"    env:"TETHER_CHAIN_SPACING"`
	NodeSize   float64    `yaml:"node_size"  env:"TETHER_CHAIN_NODE_SIZE"`
	Compliance float64    `yaml:"compliance" env:"TETHER_CHAIN_COMPLIANCE"`
	MoveSpeed  float64    `yaml:"move_speed" env:"TETHER_CHAIN_MOVE_SPEED"`
}

type GroundConfig struct {
	Enabled         bool    `yaml:"enabled"          env:"TETHER_GROUND"`
	Height          float64 `yaml:"height"           env:"TETHER_GROUND_HEIGHT"`
	Restitution     float64 `yaml:"restitution"`
	StaticFriction  float64 `yaml:"static_friction"`
	DynamicFriction float64 `yaml:"dynamic_friction"`
}

// SegmentConfig holds the signals pressed from tick From (included) to tick To (excluded)
type SegmentConfig struct {
	From    int      `yaml:"from"`
	To      int      `yaml:"to"`
	Signals []string `yaml:"signals,flow"`
}

// DefaultConfig is the rope hanging from the origin above the floor
func DefaultConfig() *Config {
	return &Config{
		World: WorldConfig{
			Gravity:       mgl64.Vec3{0, -9.81, 0},
			Substeps:      DefaultSubsteps,
			Workers:       1,
			Dt:            DefaultDt,
			Steps:         DefaultSteps,
			SleepTime:     0.1,
			SleepVelocity: 0.05,
		},
		Chain: ChainConfig{
			Origin:    mgl64.Vec3{0, 0, 0},
			Direction: mgl64.Vec3{0, 1, 0},
			Count:     DefaultCount,
			Spacing:   DefaultSpacing,
			NodeSize:  DefaultNodeSize,
			MoveSpeed: DefaultMoveSpeed,
		},
		Ground: GroundConfig{
			Enabled:         true,
			Height:          DefaultGroundHeight,
			StaticFriction:  0.5,
			DynamicFriction: 0.3,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode reads YAML on top of DefaultConfig, missing keys keep their default
func Decode(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg as YAML to w
func Encode(w io.Writer, cfg *Config) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return encoder.Close()
}

// ApplyEnv overrides cfg with the TETHER_* variables that are set
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return cfg.Validate()
}

func (c *Config) Validate() error {
	if c.World.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidConfig, c.World.Dt)
	}
	if c.World.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.World.Substeps)
	}
	if c.World.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.World.Workers)
	}
	if c.World.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative, got %d", ErrInvalidConfig, c.World.Steps)
	}
	if c.Ground.Restitution < 0 || c.Ground.Restitution > 1 {
		return fmt.Errorf("%w: ground restitution must be within [0, 1], got %v", ErrInvalidConfig, c.Ground.Restitution)
	}

	for i, segment := range c.Script {
		if segment.From < 0 || segment.To < segment.From {
			return fmt.Errorf("%w: script segment %d has range [%d, %d)", ErrInvalidConfig, i, segment.From, segment.To)
		}
		for _, name := range segment.Signals {
			if _, ok := control.ParseSignal(name); !ok {
				return fmt.Errorf("%w: script segment %d has unknown signal %q", ErrInvalidConfig, i, name)
			}
		}
	}

	return nil
}
