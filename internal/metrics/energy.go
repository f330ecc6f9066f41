package metrics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/fluidsim/internal/fluid"
)

// KineticEnergy is the mean total kinetic energy over observed ticks.
type KineticEnergy struct {
	name    string
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic_mean"}
}

func (k *KineticEnergy) Name() string { return k.name }

func (k *KineticEnergy) Observe(st fluid.TickStats) {
	k.total += st.KineticEnergy
	k.samples++
}

func (k *KineticEnergy) Value() float64 {
	if k.samples == 0 {
		return 0
	}
	return k.total / float64(k.samples)
}

func (k *KineticEnergy) Reset() {
	k.total = 0
	k.samples = 0
}

// KineticQuantile reports the p-quantile of kinetic energy over the run.
type KineticQuantile struct {
	name   string
	p      float64
	values []float64
}

func NewKineticQuantile(p float64) *KineticQuantile {
	return &KineticQuantile{
		name: fmt.Sprintf("kinetic_p%d", int(p*100+0.5)),
		p:    p,
	}
}

func (k *KineticQuantile) Name() string { return k.name }

func (k *KineticQuantile) Observe(st fluid.TickStats) {
	k.values = append(k.values, st.KineticEnergy)
}

func (k *KineticQuantile) Value() float64 {
	if len(k.values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), k.values...)
	sort.Float64s(sorted)
	return stat.Quantile(k.p, stat.Empirical, sorted, nil)
}

func (k *KineticQuantile) Reset() { k.values = k.values[:0] }

// Settled is the fraction of ticks whose kinetic energy per particle stays
// under threshold.
type Settled struct {
	name      string
	threshold float64
	calm      int
	samples   int
}

func NewSettled(threshold float64) *Settled {
	return &Settled{name: "settled", threshold: threshold}
}

func (s *Settled) Name() string { return s.name }

func (s *Settled) Observe(st fluid.TickStats) {
	s.samples++
	if st.Particles == 0 || st.KineticEnergy/float64(st.Particles) < s.threshold {
		s.calm++
	}
}

func (s *Settled) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return float64(s.calm) / float64(s.samples)
}

func (s *Settled) Reset() {
	s.calm = 0
	s.samples = 0
}
