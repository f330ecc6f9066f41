package fluid

import "iter"

// Contact is a transient pair of particles closer than one diameter.
// A is the particle that discovered the pair, B the one already resident
// in the grid; the normal points from B to A.
type Contact struct {
	A, B     int
	Distance float64
	Weight   float64
	NX, NY   float64
}

// ContactPool is a fixed-size arena of contacts reused every tick.
type ContactPool struct {
	contacts []Contact
	used     int
	diameter float64
	dropped  uint64
}

func NewContactPool(capacity int, diameter float64) *ContactPool {
	return &ContactPool{
		contacts: make([]Contact, capacity),
		diameter: diameter,
	}
}

func (p *ContactPool) Reset()   { p.used = 0 }
func (p *ContactPool) Len() int { return p.used }
func (p *ContactPool) Cap() int { return len(p.contacts) }

// Dropped counts contacts discarded because the pool was full.
func (p *ContactPool) Dropped() uint64 { return p.dropped }

// At returns the i-th contact of the current tick.
func (p *ContactPool) At(i int) *Contact { return &p.contacts[i] }

// Add records a contact and accumulates w²+w³ into the density of both
// particles. It is a no-op returning false when the pool is full.
func (p *ContactPool) Add(ps *ParticleStore, a, b int, distance, nx, ny float64) bool {
	if p.used >= len(p.contacts) {
		p.dropped++
		return false
	}
	c := &p.contacts[p.used]
	p.used++

	c.A, c.B = a, b
	c.Distance = distance
	c.Weight = 1 - distance/p.diameter
	dens := c.Weight * c.Weight
	dens += dens * c.Weight
	ps.Density[a] += dens
	ps.Density[b] += dens
	c.NX, c.NY = nx, ny
	return true
}

// All yields the contacts of the current tick.
func (p *ContactPool) All() iter.Seq[Contact] {
	return func(yield func(Contact) bool) {
		for i := 0; i < p.used; i++ {
			if !yield(p.contacts[i]) {
				return
			}
		}
	}
}
