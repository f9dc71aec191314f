package config

import (
	"slices"

	"github.com/go-gl/mathgl/mgl64"
)

var Presets = map[string]func() *Config{
	"rope": rope,
	"pendulum": func() *Config {
		cfg := DefaultConfig()
		cfg.Chain.Count = 2
		cfg.Chain.Spacing = 3.0
		cfg.Chain.NodeSize = 1.0
		return cfg
	},
	"swing": func() *Config {
		cfg := rope()
		cfg.Chain.Count = 20
		cfg.Chain.Direction = mgl64.Vec3{1, 0, 0}
		cfg.Chain.NodeSize = 0.25
		cfg.Chain.Compliance = 1e-6
		cfg.World.Steps = 300
		return cfg
	},
}

// rope is the default scene with the head dragged back and forth
func rope() *Config {
	cfg := DefaultConfig()
	cfg.Script = []SegmentConfig{
		{From: 0, To: 60, Signals: []string{"left"}},
		{From: 120, To: 180, Signals: []string{"right"}},
		{From: 240, To: 300, Signals: []string{"forward", "up"}},
	}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, nil if unknown
func GetPreset(name string) *Config {
	preset, ok := Presets[name]
	if !ok {
		return nil
	}
	return preset()
}

// ListPresets returns the preset names in alphabetical order
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
