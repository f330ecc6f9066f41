package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view.
type Theme struct {
	Name     string
	Particle lipgloss.Color
	Accent   lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Warning  lipgloss.Color
}

var (
	ThemeWater = Theme{
		Name:     "water",
		Particle: lipgloss.Color("#96e6f0"),
		Accent:   lipgloss.Color("#00a8cc"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Warning:  lipgloss.Color("#ffcc00"),
	}

	ThemeRetro = Theme{
		Name:     "retro",
		Particle: lipgloss.Color("#00ff00"),
		Accent:   lipgloss.Color("#88ff88"),
		Text:     lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Warning:  lipgloss.Color("#ffff00"),
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Particle: lipgloss.Color("#ffffff"),
		Accent:   lipgloss.Color("#0088ff"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Warning:  lipgloss.Color("#ffaa00"),
	}

	ThemeLava = Theme{
		Name:     "lava",
		Particle: lipgloss.Color("#ff6b3d"),
		Accent:   lipgloss.Color("#feca57"),
		Text:     lipgloss.Color("#fff5f5"),
		Muted:    lipgloss.Color("#8b6b8c"),
		Warning:  lipgloss.Color("#ff4757"),
	}

	Themes = []Theme{
		ThemeWater,
		ThemeRetro,
		ThemeMinimal,
		ThemeLava,
	}
)

// GetTheme returns a theme by name, falling back to water.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeWater
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
