package config

import "sort"

func preset(name string, mutate func(c *Config)) *Config {
	c := DefaultConfig()
	c.Name = name
	mutate(c)
	return c
}

var Presets = map[string]*Config{
	"column": preset("column", func(c *Config) {}),
	"dam": preset("dam", func(c *Config) {
		c.Prime = PrimeConfig{Rows: 50, X: 0.2, Y: 0.1, Spacing: 10}
		c.Run.Ticks = 1500
	}),
	"rain": preset("rain", func(c *Config) {
		c.Prime.Rows = 0
		c.Emitters = []EmitterConfig{
			{X: 0.2, Y: 0.05, Every: 20, Jitter: 30},
			{X: 0.5, Y: 0.05, Every: 25, Start: 10, Jitter: 30},
			{X: 0.8, Y: 0.05, Every: 20, Start: 5, Jitter: 30},
		}
		c.Run.Ticks = 3000
	}),
	"fountain": preset("fountain", func(c *Config) {
		c.Prime.Rows = 20
		c.Emitters = []EmitterConfig{{X: 0.5, Y: 0.1, Every: 6, Stop: 1200}}
		c.Run.Ticks = 2400
	}),
	"viscous": preset("viscous", func(c *Config) {
		c.Physics.Viscosity = 0.4
		c.Physics.Pressure = 1.5
	}),
	"empty": preset("empty", func(c *Config) {
		c.Prime.Rows = 0
		c.Run.Ticks = 100
	}),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
