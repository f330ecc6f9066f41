package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const statsWidth = 38

type styles struct {
	canvas    lipgloss.Style
	stats     lipgloss.Style
	header    lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	warn      lipgloss.Style
	graph     lipgloss.Style
	help      lipgloss.Style
	running   lipgloss.Style
	paused    lipgloss.Style
	recording lipgloss.Style
	sparkHigh lipgloss.Style
	sparkMid  lipgloss.Style
	sparkLow  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Particle),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(statsWidth),
		header:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginBottom(1),
		label:     lipgloss.NewStyle().Foreground(t.Muted).Width(12),
		value:     lipgloss.NewStyle().Foreground(t.Text),
		warn:      lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		graph:     lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:      lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		running:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88")),
		paused:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00")),
		recording: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff4444")).Blink(true),
		sparkHigh: lipgloss.NewStyle().Foreground(t.Warning),
		sparkMid:  lipgloss.NewStyle().Foreground(t.Accent),
		sparkLow:  lipgloss.NewStyle().Foreground(t.Muted),
	}
}

// ProgressBar renders a fill bar; it turns to the warning style when
// nearly full.
func (s styles) ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.9 {
		return s.warn.Render(bar)
	}
	return s.value.Render(bar)
}

// SparklineChart renders the last width values as a one-line sparkline.
func (s styles) SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for _, v := range values {
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(s.sparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(s.sparkMid.Render(c))
		default:
			result.WriteString(s.sparkLow.Render(c))
		}
	}
	return result.String()
}
