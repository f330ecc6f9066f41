package metrics

import (
	"math"

	"github.com/san-kum/fluidsim/internal/fluid"
)

type DensityPeak struct {
	name string
	peak float64
}

func NewDensityPeak() *DensityPeak { return &DensityPeak{name: "density_peak"} }

func (d *DensityPeak) Name() string               { return d.name }
func (d *DensityPeak) Observe(st fluid.TickStats) { d.peak = math.Max(d.peak, st.MaxDensity) }
func (d *DensityPeak) Value() float64             { return d.peak }
func (d *DensityPeak) Reset()                     { d.peak = 0 }

// ContactsPerParticle averages contacts/particles over ticks that had
// particles.
type ContactsPerParticle struct {
	name    string
	total   float64
	samples int
}

func NewContactsPerParticle() *ContactsPerParticle {
	return &ContactsPerParticle{name: "contacts_per_particle"}
}

func (c *ContactsPerParticle) Name() string { return c.name }

func (c *ContactsPerParticle) Observe(st fluid.TickStats) {
	if st.Particles == 0 {
		return
	}
	c.total += float64(st.Contacts) / float64(st.Particles)
	c.samples++
}

func (c *ContactsPerParticle) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.total / float64(c.samples)
}

func (c *ContactsPerParticle) Reset() {
	c.total = 0
	c.samples = 0
}

// DropRate is the number of dropped inserts of any kind per tick.
type DropRate struct {
	name    string
	dropped uint64
	ticks   int
}

func NewDropRate() *DropRate { return &DropRate{name: "drop_rate"} }

func (d *DropRate) Name() string { return d.name }

func (d *DropRate) Observe(st fluid.TickStats) {
	d.dropped += st.DroppedParticles + st.DroppedContacts + st.DroppedBucket
	d.ticks++
}

func (d *DropRate) Value() float64 {
	if d.ticks == 0 {
		return 0
	}
	return float64(d.dropped) / float64(d.ticks)
}

func (d *DropRate) Reset() {
	d.dropped = 0
	d.ticks = 0
}
