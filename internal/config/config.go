package config

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fluidsim/internal/fluid"
)

const (
	DefaultWidth        = 800.0
	DefaultHeight       = 600.0
	DefaultTicks        = 2000
	DefaultSampleEvery  = 1
	DefaultPrimeRows    = 80
	DefaultPrimeX       = 0.5
	DefaultPrimeY       = 0.3
	DefaultPrimeSpacing = 10.0
	DefaultFPS          = 60
	DefaultScale        = 4.0
	DefaultPourInterval = 0.08
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	Name     string          `yaml:"name"`
	Viewport ViewportConfig  `yaml:"viewport"`
	Physics  fluid.Params    `yaml:"physics"`
	Run      RunConfig       `yaml:"run"`
	Prime    PrimeConfig     `yaml:"prime"`
	Emitters []EmitterConfig `yaml:"emitters"`
	Live     LiveConfig      `yaml:"live"`
}

type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type RunConfig struct {
	Ticks       int   `yaml:"ticks"`
	SampleEvery int   `yaml:"sample_every"`
	Seed        int64 `yaml:"seed"`
}

// PrimeConfig describes the column of pours that fills a fresh or resized
// viewport. X and Y are fractions of the viewport size.
type PrimeConfig struct {
	Rows    int     `yaml:"rows"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Spacing float64 `yaml:"spacing"`
}

// EmitterConfig pours at a fixed point every Every ticks between Start and
// Stop (Stop 0 means forever). X and Y are viewport fractions; Jitter is in
// world units.
type EmitterConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Every  int     `yaml:"every"`
	Start  int     `yaml:"start"`
	Stop   int     `yaml:"stop"`
	Jitter float64 `yaml:"jitter"`
}

type LiveConfig struct {
	FPS          int     `yaml:"fps"`
	Scale        float64 `yaml:"scale"` // world units per braille dot
	PourInterval float64 `yaml:"pour_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:     "column",
		Viewport: ViewportConfig{Width: DefaultWidth, Height: DefaultHeight},
		Physics:  fluid.DefaultParams(),
		Run: RunConfig{
			Ticks:       DefaultTicks,
			SampleEvery: DefaultSampleEvery,
		},
		Prime: PrimeConfig{
			Rows:    DefaultPrimeRows,
			X:       DefaultPrimeX,
			Y:       DefaultPrimeY,
			Spacing: DefaultPrimeSpacing,
		},
		Live: LiveConfig{
			FPS:          DefaultFPS,
			Scale:        DefaultScale,
			PourInterval: DefaultPourInterval,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) Validate() error {
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("%w: viewport must be positive, got %gx%g", ErrInvalidConfig, c.Viewport.Width, c.Viewport.Height)
	}
	if c.Run.Ticks <= 0 {
		return fmt.Errorf("%w: ticks must be positive, got %d", ErrInvalidConfig, c.Run.Ticks)
	}
	if c.Run.SampleEvery <= 0 {
		return fmt.Errorf("%w: sample_every must be positive, got %d", ErrInvalidConfig, c.Run.SampleEvery)
	}
	if c.Prime.Rows < 0 {
		return fmt.Errorf("%w: prime rows must not be negative", ErrInvalidConfig)
	}
	if c.Prime.Rows > 0 && c.Prime.Spacing <= 0 {
		return fmt.Errorf("%w: prime spacing must be positive, got %g", ErrInvalidConfig, c.Prime.Spacing)
	}
	for i, e := range c.Emitters {
		if e.Every <= 0 {
			return fmt.Errorf("%w: emitter %d: every must be positive", ErrInvalidConfig, i)
		}
		if e.Stop != 0 && e.Stop < e.Start {
			return fmt.Errorf("%w: emitter %d: stop before start", ErrInvalidConfig, i)
		}
	}
	if c.Live.FPS <= 0 || c.Live.Scale <= 0 {
		return fmt.Errorf("%w: live fps and scale must be positive", ErrInvalidConfig)
	}
	if c.Live.PourInterval <= 0 {
		return fmt.Errorf("%w: pour interval must be positive, got %g", ErrInvalidConfig, c.Live.PourInterval)
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Emitters = append([]EmitterConfig(nil), c.Emitters...)
	return &cp
}

// PhysicsParams lists the tunable physics constants by name.
func (c *Config) PhysicsParams() map[string]float64 {
	p := c.Physics
	return map[string]float64{
		"radius":       p.Radius,
		"rest_density": p.RestDensity,
		"pressure":     p.Pressure,
		"viscosity":    p.Viscosity,
		"gravity":      p.Gravity,
	}
}

// ParamNames returns the names accepted by SetParam, sorted.
func ParamNames() []string {
	names := make([]string, 0, 5)
	for k := range DefaultConfig().PhysicsParams() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (c *Config) SetParam(name string, v float64) error {
	switch name {
	case "radius":
		c.Physics.Radius = v
	case "rest_density":
		c.Physics.RestDensity = v
	case "pressure":
		c.Physics.Pressure = v
	case "viscosity":
		c.Physics.Viscosity = v
	case "gravity":
		c.Physics.Gravity = v
	default:
		return fmt.Errorf("unknown parameter: %s (available: %v)", name, ParamNames())
	}
	return nil
}
