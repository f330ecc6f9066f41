package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fluidsim/internal/fluid"
)

func ticks(energies ...float64) []fluid.TickStats {
	out := make([]fluid.TickStats, len(energies))
	for i, e := range energies {
		out[i] = fluid.TickStats{Tick: uint64(i + 1), Particles: 10, KineticEnergy: e}
	}
	return out
}

func feed(m Metric, sts []fluid.TickStats) {
	for _, st := range sts {
		m.Observe(st)
	}
}

func TestKineticEnergyMean(t *testing.T) {
	m := NewKineticEnergy()
	assert.Equal(t, 0.0, m.Value(), "empty")

	feed(m, ticks(1, 2, 3, 6))
	assert.InDelta(t, 3.0, m.Value(), 1e-12)

	m.Reset()
	assert.Equal(t, 0.0, m.Value(), "after reset")
}

func TestKineticQuantile(t *testing.T) {
	m := NewKineticQuantile(0.9)
	assert.Equal(t, "kinetic_p90", m.Name())

	// unsorted input; empirical quantile of 1..10 at 0.9 is 9
	feed(m, ticks(10, 3, 7, 1, 9, 2, 8, 4, 6, 5))
	assert.Equal(t, 9.0, m.Value())

	m.Reset()
	assert.Equal(t, 0.0, m.Value())
}

func TestDensityPeak(t *testing.T) {
	m := NewDensityPeak()
	m.Observe(fluid.TickStats{MaxDensity: 1.5})
	m.Observe(fluid.TickStats{MaxDensity: 4.0})
	m.Observe(fluid.TickStats{MaxDensity: 2.0})
	assert.Equal(t, 4.0, m.Value())
}

func TestContactsPerParticleSkipsEmptyTicks(t *testing.T) {
	m := NewContactsPerParticle()
	m.Observe(fluid.TickStats{Particles: 0, Contacts: 0})
	m.Observe(fluid.TickStats{Particles: 10, Contacts: 20})
	m.Observe(fluid.TickStats{Particles: 10, Contacts: 40})
	assert.InDelta(t, 3.0, m.Value(), 1e-12)
}

func TestDropRate(t *testing.T) {
	m := NewDropRate()
	m.Observe(fluid.TickStats{DroppedParticles: 3})
	m.Observe(fluid.TickStats{DroppedContacts: 2, DroppedBucket: 1})
	m.Observe(fluid.TickStats{})
	assert.InDelta(t, 2.0, m.Value(), 1e-12)
}

func TestSettled(t *testing.T) {
	m := NewSettled(0.5)
	assert.Equal(t, 1.0, m.Value(), "no samples counts as settled")

	// per particle: 0.1, 1.0, 0.2, 2.0
	feed(m, ticks(1, 10, 2, 20))
	assert.InDelta(t, 0.5, m.Value(), 1e-12)
}

func TestSetAsObserver(t *testing.T) {
	sim, err := fluid.New(fluid.DefaultParams(), 400, 300)
	require.NoError(t, err)

	set := DefaultMetrics()
	sim.AddObserver(set)
	sim.Pour(200, 100)
	for i := 0; i < 20; i++ {
		sim.Step()
	}

	vals := set.Values()
	require.Len(t, vals, len(set))
	assert.Greater(t, vals["kinetic_mean"], 0.0)
	assert.Greater(t, vals["density_peak"], 0.0)
	assert.Equal(t, 0.0, vals["drop_rate"])

	set.Reset()
	assert.Equal(t, 0.0, set.Values()["kinetic_mean"])
}
