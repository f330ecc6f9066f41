package fluid

import "iter"

// ParticleStore is a fixed-capacity struct-of-arrays particle buffer.
// Particles are identified by index and only ever appended; Reset drops
// them all at once.
type ParticleStore struct {
	PosX, PosY     []float64
	VelX, VelY     []float64
	ForceX, ForceY []float64
	Density        []float64

	count    int
	capacity int
	pourVel  float64
	dropped  uint64
}

func NewParticleStore(capacity int, pourVelocity float64) *ParticleStore {
	return &ParticleStore{
		PosX:     make([]float64, capacity),
		PosY:     make([]float64, capacity),
		VelX:     make([]float64, capacity),
		VelY:     make([]float64, capacity),
		ForceX:   make([]float64, capacity),
		ForceY:   make([]float64, capacity),
		Density:  make([]float64, capacity),
		capacity: capacity,
		pourVel:  pourVelocity,
	}
}

// Append adds a particle at (x, y) moving down at the pour velocity. It
// returns false and leaves the store untouched when it is full.
func (s *ParticleStore) Append(x, y float64) bool {
	if s.count >= s.capacity {
		s.dropped++
		return false
	}
	i := s.count
	s.PosX[i], s.PosY[i] = x, y
	s.VelX[i], s.VelY[i] = 0, s.pourVel
	s.ForceX[i], s.ForceY[i] = 0, 0
	s.Density[i] = 0
	s.count++
	return true
}

// Reset sets the live count to zero. Stale slots are overwritten by the
// next Append.
func (s *ParticleStore) Reset() { s.count = 0 }

func (s *ParticleStore) Len() int { return s.count }
func (s *ParticleStore) Cap() int { return s.capacity }

// Dropped counts appends rejected because the store was full.
func (s *ParticleStore) Dropped() uint64 { return s.dropped }

func (s *ParticleStore) Position(i int) (float64, float64) { return s.PosX[i], s.PosY[i] }
func (s *ParticleStore) Velocity(i int) (float64, float64) { return s.VelX[i], s.VelY[i] }

// All yields the position of every live particle in index order.
func (s *ParticleStore) All() iter.Seq2[float64, float64] {
	return func(yield func(float64, float64) bool) {
		for i := 0; i < s.count; i++ {
			if !yield(s.PosX[i], s.PosY[i]) {
				return
			}
		}
	}
}

func (s *ParticleStore) ForEach(visit func(x, y float64)) {
	for i := 0; i < s.count; i++ {
		visit(s.PosX[i], s.PosY[i])
	}
}
