package viz

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fluidsim/internal/config"
)

var presetInfo = map[string]string{
	"column":   "tall column collapses",
	"dam":      "dam break from the left",
	"rain":     "three jittered drips",
	"fountain": "steady central pour",
	"viscous":  "thick, slow fluid",
	"empty":    "blank tank, pour by hand",
}

const (
	stateMenu = iota
	stateConfig
	stateSim
)

var (
	menuTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	menuSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	menuCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	menuSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	menuDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	menuIdle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	menuKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// App lets the user pick a preset and tune its physics before starting the
// live view.
type App struct {
	state       int
	cursor      int
	presets     []string
	cfg         *config.Config
	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string
	size        *tea.WindowSizeMsg
	live        Model
	err         error
}

func NewApp() App {
	return App{
		state:      stateMenu,
		presets:    config.ListPresets(),
		paramNames: config.ParamNames(),
	}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if a.state == stateSim {
		if size, ok := msg.(tea.WindowSizeMsg); ok {
			a.size = &size
		}
		next, cmd := a.live.Update(msg)
		a.live = next.(Model)
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.size = &msg
	case tea.KeyMsg:
		if a.state == stateMenu {
			return a.menuKey(msg)
		}
		return a.configKey(msg)
	}
	return a, nil
}

func (a App) menuKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(a.presets)-1 {
			a.cursor++
		}
	case "enter", " ":
		a.cfg = config.GetPreset(a.presets[a.cursor])
		a.state, a.paramCursor, a.err = stateConfig, 0, nil
	}
	return a, nil
}

func (a App) configKey(msg tea.KeyMsg) (App, tea.Cmd) {
	name := a.paramNames[a.paramCursor]
	if a.editing {
		switch msg.String() {
		case "enter":
			if v, err := strconv.ParseFloat(a.editBuf, 64); err == nil {
				a.cfg.SetParam(name, v)
			}
			a.editing, a.editBuf = false, ""
		case "esc":
			a.editing, a.editBuf = false, ""
		case "backspace":
			if len(a.editBuf) > 0 {
				a.editBuf = a.editBuf[:len(a.editBuf)-1]
			}
		default:
			if s := msg.String(); len(s) == 1 && strings.ContainsAny(s, "0123456789.-") {
				a.editBuf += s
			}
		}
		return a, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	case "q", "esc":
		a.state = stateMenu
	case "up", "k":
		if a.paramCursor > 0 {
			a.paramCursor--
		}
	case "down", "j":
		if a.paramCursor < len(a.paramNames)-1 {
			a.paramCursor++
		}
	case "enter", " ":
		a.editing, a.editBuf = true, strconv.FormatFloat(a.cfg.PhysicsParams()[name], 'g', -1, 64)
	case "left", "h":
		a.cfg.SetParam(name, a.cfg.PhysicsParams()[name]*0.9)
	case "right", "l":
		a.cfg.SetParam(name, a.cfg.PhysicsParams()[name]*1.1)
	case "s":
		return a.start()
	}
	return a, nil
}

func (a App) start() (App, tea.Cmd) {
	live, err := NewModel(a.cfg)
	if err != nil {
		a.err = err
		return a, nil
	}
	if a.size != nil {
		live.resize(a.size.Width, a.size.Height)
	}
	a.live, a.state = live, stateSim
	return a, live.Init()
}

func (a App) View() string {
	switch a.state {
	case stateConfig:
		return a.viewConfig()
	case stateSim:
		return a.live.View()
	}
	return a.viewMenu()
}

func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(menuKey.Render(pairs[i]) + menuIdle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func (a App) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render("FLUIDSIM") + "\n    " + menuSub.Render("particle fluid in your terminal") + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	for i, name := range a.presets {
		desc := presetInfo[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-10s", name)), menuDesc.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", menuIdle.Render(fmt.Sprintf("%-10s", name)), menuIdle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (a App) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + menuTitle.Render(strings.ToUpper(a.cfg.Name)) + "\n    " + menuSub.Render(presetInfo[a.cfg.Name]) + "\n    " + menuSub.Render("─────────────────────────") + "\n\n")
	vals := a.cfg.PhysicsParams()
	for i, name := range a.paramNames {
		valStr := fmt.Sprintf("%8.3f", vals[name])
		if a.editing && i == a.paramCursor {
			valStr = fmt.Sprintf("%8s", a.editBuf+"_")
		}
		if i == a.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", menuCursor.Render("▸"), menuSelected.Render(fmt.Sprintf("%-13s", name)), menuDesc.Bold(true).Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("      %s %s\n", menuIdle.Render(fmt.Sprintf("%-13s", name)), menuIdle.Render(valStr)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + menuDesc.Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// RunInteractive opens the preset picker full screen.
func RunInteractive() error {
	_, err := tea.NewProgram(NewApp(), tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
