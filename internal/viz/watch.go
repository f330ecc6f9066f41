package viz

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/san-kum/fluidsim/internal/fluid"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Watcher redraws the fluid to a terminal while a headless run steps it.
// Register it as an observer; frames are rate limited to fps.
type Watcher struct {
	sim       *fluid.Simulation
	out       io.Writer
	canvas    *Canvas
	interval  time.Duration
	lastFrame time.Time
}

func NewWatcher(sim *fluid.Simulation, out io.Writer, cols, rows, fps int) *Watcher {
	if fps <= 0 {
		fps = 30
	}
	return &Watcher{
		sim:      sim,
		out:      out,
		canvas:   NewCanvas(cols, rows),
		interval: time.Second / time.Duration(fps),
	}
}

// Scale is the number of world units per dot that fits the whole viewport.
func (w *Watcher) Scale() float64 {
	vw, vh := w.sim.Viewport()
	return math.Max(vw/float64(w.canvas.DotsWide()), vh/float64(w.canvas.DotsHigh()))
}

func (w *Watcher) OnStep(st fluid.TickStats) {
	if time.Since(w.lastFrame) < w.interval {
		return
	}
	w.lastFrame = time.Now()
	w.Render(st)
}

// Render draws one frame regardless of the rate limit.
func (w *Watcher) Render(st fluid.TickStats) {
	scale := w.Scale()
	w.canvas.Clear()
	for x, y := range w.sim.Particles() {
		w.canvas.Plot(x, y, scale)
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  tick=%d  particles=%d  contacts=%d\n", st.Tick, st.Particles, st.Contacts))
	b.WriteString("  " + strings.Repeat("-", w.canvas.Width) + "\n")
	for _, row := range w.canvas.Grid {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}
	b.WriteString("  " + strings.Repeat("-", w.canvas.Width) + "\n")
	b.WriteString(fmt.Sprintf("  density=%.2f max=%.2f ke=%.1f\n", st.MeanDensity, st.MaxDensity, st.KineticEnergy))

	fmt.Fprint(w.out, b.String())
}

func (w *Watcher) Start() { fmt.Fprint(w.out, hideCursor) }
func (w *Watcher) Stop()  { fmt.Fprint(w.out, showCursor) }
