package fluid

import (
	"fmt"
	"iter"
	"math"
)

// Simulation owns every buffer of one fluid and runs the per-tick pipeline.
// It is not safe for concurrent use; the host calls Step once per frame and
// reads particles between steps.
type Simulation struct {
	params Params

	particles *ParticleStore
	grid      *SpatialGrid
	contacts  *ContactPool

	neighbors  *NeighborSolver
	forces     *ForceSolver
	integrator *Integrator
	border     *BorderConstraint

	width, height float64
	tick          uint64
	stats         TickStats
	lastDrops     DropCounters
	observers     []Observer
}

// New allocates a simulation for a width x height viewport. All storage is
// sized here; Step does not allocate.
func New(params Params, width, height float64) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := validateViewport(width, height); err != nil {
		return nil, err
	}

	d := params.Diameter()
	cols, rows := GridDims(width, height, d)
	s := &Simulation{
		params:     params,
		particles:  NewParticleStore(params.MaxParticles, params.PourVelocity),
		grid:       NewSpatialGrid(cols, rows, params.BucketCapacity),
		contacts:   NewContactPool(params.MaxContacts(), d),
		neighbors:  NewNeighborSolver(d),
		forces:     NewForceSolver(params),
		integrator: &Integrator{Epsilon: params.DensityEpsilon},
		border: &BorderConstraint{
			Radius:    params.Radius,
			Stiffness: params.BorderStiff,
			Damping:   params.BorderDamping,
		},
		observers: make([]Observer, 0),
	}
	s.setViewport(width, height)
	return s, nil
}

func validateViewport(w, h float64) error {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: %gx%g", ErrInvalidViewport, w, h)
	}
	return nil
}

func (s *Simulation) setViewport(w, h float64) {
	s.width, s.height = w, h
	s.border.Width, s.border.Height = w, h
}

func (s *Simulation) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Step advances the fluid by one tick. The order is fixed: forces are
// computed from this tick's positions and the accumulators are cleared only
// after the integrator has consumed them.
func (s *Simulation) Step() {
	ps := s.particles

	s.grid.Clear()
	ApplyGravity(ps, s.params.Gravity)
	s.neighbors.FindContacts(ps, s.grid, s.contacts)
	s.forces.Accumulate(ps, s.contacts)
	s.border.Apply(ps)

	s.tick++
	st := TickStats{
		Tick:      s.tick,
		Particles: ps.Len(),
		Contacts:  s.contacts.Len(),
	}
	s.integrator.Integrate(ps, &st)

	drops := s.Drops()
	st.DroppedParticles = drops.Particles - s.lastDrops.Particles
	st.DroppedContacts = drops.Contacts - s.lastDrops.Contacts
	st.DroppedBucket = drops.Bucket - s.lastDrops.Bucket
	s.lastDrops = drops
	s.stats = st

	for _, o := range s.observers {
		o.OnStep(st)
	}
}

// Pour inserts a horizontal row of particles centred on (x, y), spaced
// PourSpacing apart. It stops at capacity and returns how many were added.
func (s *Simulation) Pour(x, y float64) int {
	added := 0
	for k := -s.params.PourHalfWidth; k <= s.params.PourHalfWidth; k++ {
		if !s.particles.Append(x+float64(k)*s.params.PourSpacing, y) {
			// count the rest of the row as dropped too
			rest := uint64(s.params.PourHalfWidth - k)
			s.particles.dropped += rest
			break
		}
		added++
	}
	return added
}

// Resize reconfigures the grid for a new viewport and discards every
// particle. Particles are not re-bucketed into the new geometry.
func (s *Simulation) Resize(width, height float64) error {
	if err := validateViewport(width, height); err != nil {
		return err
	}
	cols, rows := GridDims(width, height, s.params.Diameter())
	s.grid.Reshape(cols, rows)
	s.setViewport(width, height)
	s.Reset()
	return nil
}

// Reset drops all particles and contacts, keeping the viewport.
func (s *Simulation) Reset() {
	s.particles.Reset()
	s.contacts.Reset()
	s.grid.Clear()
}

func (s *Simulation) ParticleCount() int { return s.particles.Len() }

// ForEachParticle visits the position of every live particle. visit must
// not call back into the simulation.
func (s *Simulation) ForEachParticle(visit func(x, y float64)) { s.particles.ForEach(visit) }

// Particles returns a restartable iterator over live particle positions.
func (s *Simulation) Particles() iter.Seq2[float64, float64] { return s.particles.All() }

// Contacts iterates the contacts built by the last Step.
func (s *Simulation) Contacts() iter.Seq[Contact] { return s.contacts.All() }

// Store exposes the particle buffers read-only by convention.
func (s *Simulation) Store() *ParticleStore { return s.particles }

func (s *Simulation) Params() Params                 { return s.params }
func (s *Simulation) Tick() uint64                   { return s.tick }
func (s *Simulation) Stats() TickStats               { return s.stats }
func (s *Simulation) Viewport() (float64, float64)   { return s.width, s.height }
func (s *Simulation) GridSize() (cols int, rows int) { return s.grid.Cols(), s.grid.Rows() }

func (s *Simulation) Drops() DropCounters {
	return DropCounters{
		Particles: s.particles.Dropped(),
		Contacts:  s.contacts.Dropped(),
		Bucket:    s.grid.Dropped(),
	}
}
