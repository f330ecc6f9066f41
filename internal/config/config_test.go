package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/fluidsim/internal/fluid"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Physics.MaxParticles != 4048 {
		t.Errorf("expected 4048 max particles, got %d", cfg.Physics.MaxParticles)
	}
	if cfg.Physics.Diameter() != 30 {
		t.Errorf("expected diameter 30, got %v", cfg.Physics.Diameter())
	}
	if cfg.Prime.Rows != 80 {
		t.Errorf("expected 80 prime rows, got %d", cfg.Prime.Rows)
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if cfg == nil {
			t.Fatalf("preset %s listed but missing", name)
		}
		if cfg.Name != name {
			t.Errorf("preset %s has name %s", name, cfg.Name)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestGetPresetReturnsCopy(t *testing.T) {
	cfg := GetPreset("rain")
	cfg.Emitters[0].Every = 999
	cfg.Run.Ticks = 1

	again := GetPreset("rain")
	if again.Emitters[0].Every == 999 || again.Run.Ticks == 1 {
		t.Error("mutating a preset copy changed the registry")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fluid.yaml")
	cfg := GetPreset("fountain")
	cfg.Physics.Viscosity = 0.25
	cfg.Run.Seed = 42

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Name != "fountain" || loaded.Run.Seed != 42 {
		t.Errorf("round trip lost fields: %+v", loaded.Run)
	}
	if loaded.Physics.Viscosity != 0.25 {
		t.Errorf("expected viscosity 0.25, got %v", loaded.Physics.Viscosity)
	}
	if len(loaded.Emitters) != 1 || loaded.Emitters[0].Every != 6 {
		t.Errorf("emitters lost: %+v", loaded.Emitters)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("viewport:\n  width: 1024\nphysics:\n  gravity: 0.1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Viewport.Width != 1024 || cfg.Viewport.Height != DefaultHeight {
		t.Errorf("unexpected viewport %+v", cfg.Viewport)
	}
	if cfg.Physics.Gravity != 0.1 || cfg.Physics.Radius != fluid.DefaultRadius {
		t.Errorf("unexpected physics %+v", cfg.Physics)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.Viewport.Width = 0 }},
		{"zero ticks", func(c *Config) { c.Run.Ticks = 0 }},
		{"zero sample interval", func(c *Config) { c.Run.SampleEvery = 0 }},
		{"emitter every", func(c *Config) { c.Emitters = []EmitterConfig{{Every: 0}} }},
		{"emitter stop", func(c *Config) { c.Emitters = []EmitterConfig{{Every: 1, Start: 10, Stop: 5}} }},
		{"bad physics", func(c *Config) { c.Physics.MaxParticles = 0 }},
		{"negative pour interval", func(c *Config) { c.Live.PourInterval = -1 }},
		{"zero pour interval", func(c *Config) { c.Live.PourInterval = 0 }},
		{"zero prime spacing", func(c *Config) { c.Prime.Spacing = 0 }},
		{"negative prime spacing", func(c *Config) { c.Prime.Spacing = -10 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Physics.Radius = -1
	if err := cfg.Validate(); !errors.Is(err, fluid.ErrInvalidParams) {
		t.Errorf("expected wrapped fluid.ErrInvalidParams, got %v", err)
	}
}

func TestSetParam(t *testing.T) {
	cfg := DefaultConfig()
	for _, name := range ParamNames() {
		if err := cfg.SetParam(name, 0.5); err != nil {
			t.Errorf("set %s: %v", name, err)
		}
		if got := cfg.PhysicsParams()[name]; got != 0.5 {
			t.Errorf("%s = %v after set", name, got)
		}
	}
	if err := cfg.SetParam("mass", 1); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
