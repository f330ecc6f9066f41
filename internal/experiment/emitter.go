package experiment

import (
	"math/rand"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/fluid"
)

// Emitter pours at a fixed world position on a tick schedule.
type Emitter struct {
	X, Y   float64
	Every  int
	Start  int
	Stop   int // exclusive, 0 = never
	Jitter float64
}

func EmittersFromConfig(cfgs []config.EmitterConfig, width, height float64) []Emitter {
	out := make([]Emitter, len(cfgs))
	for i, c := range cfgs {
		out[i] = Emitter{
			X:      c.X * width,
			Y:      c.Y * height,
			Every:  c.Every,
			Start:  c.Start,
			Stop:   c.Stop,
			Jitter: c.Jitter,
		}
	}
	return out
}

func (e Emitter) Due(tick int) bool {
	if tick < e.Start || (e.Stop != 0 && tick >= e.Stop) {
		return false
	}
	return (tick-e.Start)%e.Every == 0
}

// Fire pours one row, shifted horizontally by up to Jitter.
func (e Emitter) Fire(s *fluid.Simulation, rng *rand.Rand) int {
	x := e.X
	if e.Jitter > 0 {
		x += (rng.Float64()*2 - 1) * e.Jitter
	}
	return s.Pour(x, e.Y)
}

// Prime fills the viewport with a column of pours, Spacing apart, starting
// at the configured fraction of the viewport and growing downwards.
func Prime(s *fluid.Simulation, p config.PrimeConfig) int {
	w, h := s.Viewport()
	x, y := w*p.X, h*p.Y
	added := 0
	for i := 0; i < p.Rows; i++ {
		added += s.Pour(x, y+p.Spacing*float64(i))
	}
	return added
}
