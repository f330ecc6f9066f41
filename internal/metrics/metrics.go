package metrics

import (
	"log/slog"

	"github.com/san-kum/fluidsim/internal/fluid"
)

// Metric folds per-tick statistics into a single number.
type Metric interface {
	Name() string
	Observe(st fluid.TickStats)
	Value() float64
	Reset()
}

// Set fans a tick out to several metrics and can be registered on a
// simulation as its observer.
type Set []Metric

func (s Set) OnStep(st fluid.TickStats) {
	for _, m := range s {
		m.Observe(st)
	}
}

func (s Set) Reset() {
	for _, m := range s {
		m.Reset()
	}
}

// Values maps every metric name to its current value.
func (s Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s))
	for _, m := range s {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s Set) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(s))
	for _, m := range s {
		attrs = append(attrs, slog.Float64(m.Name(), m.Value()))
	}
	return slog.GroupValue(attrs...)
}

func DefaultMetrics() Set {
	return Set{
		NewKineticEnergy(),
		NewKineticQuantile(0.9),
		NewDensityPeak(),
		NewContactsPerParticle(),
		NewDropRate(),
		NewSettled(0.01),
	}
}
