package viz

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/experiment"
	"github.com/san-kum/fluidsim/internal/export"
	"github.com/san-kum/fluidsim/internal/fluid"
)

const (
	// top-left terminal cell of the canvas, from canvasStyle padding
	canvasTop  = 1
	canvasLeft = 2

	historyCapacity = 300
	minCanvasCols   = 8
	minCanvasRows   = 4
)

type TickMsg time.Time

// Model is the interactive fluid view: a braille canvas of the particles
// next to a stats panel. Dragging the left mouse button pours.
type Model struct {
	cfg    *config.Config
	sim    *fluid.Simulation
	canvas *Canvas
	scale  float64

	termW, termH int
	running      bool
	showHelp     bool

	mouseDown      bool
	mouseX, mouseY float64
	pourTimer      float64
	frameTime      float64

	emitters    []experiment.Emitter
	emittersOn  bool
	emitterTick int
	randSource  *rand.Rand

	energyHistory  []float64
	densityHistory []float64

	theme    Theme
	st       styles
	recorder *Recorder
	message  string
}

func NewModel(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	s, err := fluid.New(cfg.Physics, cfg.Viewport.Width, cfg.Viewport.Height)
	if err != nil {
		return Model{}, err
	}
	theme := ThemeWater
	m := Model{
		cfg:            cfg,
		sim:            s,
		scale:          cfg.Live.Scale,
		canvas:         NewCanvas(int(cfg.Viewport.Width/(2*cfg.Live.Scale)), int(cfg.Viewport.Height/(4*cfg.Live.Scale))),
		running:        true,
		frameTime:      1 / float64(cfg.Live.FPS),
		emitters:       experiment.EmittersFromConfig(cfg.Emitters, cfg.Viewport.Width, cfg.Viewport.Height),
		emittersOn:     len(cfg.Emitters) > 0,
		randSource:     rand.New(rand.NewSource(cfg.Run.Seed)),
		energyHistory:  make([]float64, 0, historyCapacity),
		densityHistory: make([]float64, 0, historyCapacity),
		theme:          theme,
		st:             newStyles(theme),
	}
	experiment.Prime(s, cfg.Prime)
	m.draw()
	return m, nil
}

func (m Model) Simulation() *fluid.Simulation { return m.sim }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.Live.FPS), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.sim.Reset()
			experiment.Prime(m.sim, m.cfg.Prime)
			m.restart()
		case "c":
			m.sim.Reset()
			m.restart()
		case "p":
			m.emittersOn = !m.emittersOn && len(m.emitters) > 0
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "g":
			m.toggleRecording()
		case "s":
			m.snapshot()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw()

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		if m.recorder != nil {
			m.recorder.Capture(m.canvas)
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.mouseDown = true
		}
	case tea.MouseActionRelease:
		m.mouseDown = false
	}
	m.mouseX, m.mouseY = m.cellToWorld(msg.X, msg.Y)
}

// cellToWorld maps a terminal cell to the world position at the centre of
// that braille cell.
func (m Model) cellToWorld(x, y int) (float64, float64) {
	col, row := x-canvasLeft, y-canvasTop
	wx := (float64(col)*2 + 1) * m.scale
	wy := (float64(row)*4 + 2) * m.scale
	return wx, wy
}

// resize fits the viewport to the terminal, then discards and re-primes the
// fluid.
func (m *Model) resize(termW, termH int) {
	m.termW, m.termH = termW, termH
	cols := termW - statsWidth - 2*canvasLeft - 2
	rows := termH - 2*canvasTop
	if cols < minCanvasCols || rows < minCanvasRows {
		m.message = "terminal too small"
		return
	}

	w := float64(cols*2) * m.scale
	h := float64(rows*4) * m.scale
	if err := m.sim.Resize(w, h); err != nil {
		slog.Warn("resize_failed", "err", err)
		m.message = err.Error()
		return
	}
	m.canvas = NewCanvas(cols, rows)
	m.emitters = experiment.EmittersFromConfig(m.cfg.Emitters, w, h)
	experiment.Prime(m.sim, m.cfg.Prime)
	m.restart()
	m.message = ""
	m.draw()
	slog.Debug("resized", "width", w, "height", h, "particles", m.sim.ParticleCount())
}

func (m *Model) step() {
	m.pourTimer += m.frameTime
	if m.mouseDown && m.pourTimer > m.cfg.Live.PourInterval {
		m.pourTimer = 0
		m.sim.Pour(m.mouseX, m.mouseY)
	}
	if m.emittersOn {
		for _, em := range m.emitters {
			if em.Due(m.emitterTick) {
				em.Fire(m.sim, m.randSource)
			}
		}
	}
	m.emitterTick++

	m.sim.Step()
	st := m.sim.Stats()
	m.energyHistory = appendCapped(m.energyHistory, st.KineticEnergy)
	m.densityHistory = appendCapped(m.densityHistory, st.MeanDensity)
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// restart clears the graphs and rewinds the emitter schedule to tick zero.
func (m *Model) restart() {
	m.emitterTick = 0
	m.energyHistory = m.energyHistory[:0]
	m.densityHistory = m.densityHistory[:0]
}

func (m *Model) draw() {
	m.canvas.Clear()
	for x, y := range m.sim.Particles() {
		m.canvas.Plot(x, y, m.scale)
	}
}

func (m *Model) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder(hexColor(string(m.theme.Particle)))
		m.message = "recording"
		return
	}
	path := fmt.Sprintf("fluidsim_%d.gif", time.Now().Unix())
	if err := m.recorder.Save(path); err != nil {
		m.message = err.Error()
	} else {
		m.message = "saved " + path
	}
	m.recorder = nil
}

func (m *Model) snapshot() {
	w, h := m.sim.Viewport()
	path := fmt.Sprintf("fluidsim_%d.svg", m.sim.Tick())
	svg := export.ParticlesToSVG(m.sim.Particles(), w, h)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		m.message = err.Error()
		return
	}
	m.message = "saved " + path
}

func (m Model) View() string {
	canvasView := m.st.canvas.Render(m.canvas.String())
	st := m.sim.Stats()
	p := m.sim.Params()

	var s strings.Builder
	s.WriteString(m.st.header.Render(strings.ToUpper(m.cfg.Name)) + "\n")

	switch {
	case m.recorder != nil:
		s.WriteString(m.st.recording.Render(fmt.Sprintf("● REC %d", m.recorder.Len())))
	case m.running:
		s.WriteString(m.st.running.Render("RUNNING"))
	default:
		s.WriteString(m.st.paused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(statsWidth-16), asciigraph.Caption("Kinetic energy"))
		s.WriteString(m.st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(m.st.label.Render(label) + m.st.value.Render(value) + "\n")
	}
	n := m.sim.ParticleCount()
	row("Particles", fmt.Sprintf("%d / %d", n, p.MaxParticles))
	s.WriteString(m.st.ProgressBar(float64(n)/float64(p.MaxParticles), statsWidth-6) + "\n")
	row("Contacts", fmt.Sprintf("%d / %d", st.Contacts, p.MaxContacts()))
	row("Density", fmt.Sprintf("%.2f (max %.2f)", st.MeanDensity, st.MaxDensity))
	s.WriteString(m.st.SparklineChart(m.densityHistory, statsWidth-6) + "\n")
	row("Tick", fmt.Sprintf("%d", m.sim.Tick()))
	cols, rows := m.sim.GridSize()
	row("Grid", fmt.Sprintf("%dx%d", cols, rows))
	if m.emittersOn {
		row("Emitters", fmt.Sprintf("%d on", len(m.emitters)))
	}

	if d := m.sim.Drops(); d.Total() > 0 {
		s.WriteString(m.st.warn.Render(fmt.Sprintf("dropped p:%d c:%d b:%d", d.Particles, d.Contacts, d.Bucket)) + "\n")
	}
	if m.message != "" {
		s.WriteString(m.st.warn.Render(m.message) + "\n")
	}

	s.WriteString(m.st.help.Render("drag:Pour SP:Pause R:Reset C:Clear\nP:Emitters T:Theme G:GIF S:SVG\n?:Help Q:Quit"))

	statsView := m.st.stats.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

const helpText = `
  Mouse drag - Pour particles
  Space      - Pause/Resume
  R          - Reset and refill
  C          - Clear all particles
  P          - Toggle preset emitters
  T          - Cycle themes
  G          - Start/stop GIF recording
  S          - Save SVG snapshot
  ?          - Toggle this help
  Q          - Quit`

// Run starts the live view full screen with mouse tracking.
func Run(cfg *config.Config) error {
	m, err := NewModel(cfg)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
