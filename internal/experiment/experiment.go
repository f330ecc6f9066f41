package experiment

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/fluid"
	"github.com/san-kum/fluidsim/internal/metrics"
)

// Sample is one recorded tick.
type Sample struct {
	Tick             uint64  `csv:"tick" json:"tick"`
	Particles        int     `csv:"particles" json:"particles"`
	Contacts         int     `csv:"contacts" json:"contacts"`
	MeanDensity      float64 `csv:"mean_density" json:"mean_density"`
	MaxDensity       float64 `csv:"max_density" json:"max_density"`
	KineticEnergy    float64 `csv:"kinetic_energy" json:"kinetic_energy"`
	Skipped          int     `csv:"skipped" json:"skipped"`
	DroppedParticles uint64  `csv:"dropped_particles" json:"dropped_particles"`
	DroppedContacts  uint64  `csv:"dropped_contacts" json:"dropped_contacts"`
	DroppedBucket    uint64  `csv:"dropped_bucket" json:"dropped_bucket"`
}

func SampleFrom(st fluid.TickStats) Sample {
	return Sample{
		Tick:             st.Tick,
		Particles:        st.Particles,
		Contacts:         st.Contacts,
		MeanDensity:      st.MeanDensity,
		MaxDensity:       st.MaxDensity,
		KineticEnergy:    st.KineticEnergy,
		Skipped:          st.Skipped,
		DroppedParticles: st.DroppedParticles,
		DroppedContacts:  st.DroppedContacts,
		DroppedBucket:    st.DroppedBucket,
	}
}

// Point is a particle snapshot.
type Point struct {
	X  float64 `csv:"x" json:"x"`
	Y  float64 `csv:"y" json:"y"`
	VX float64 `csv:"vx" json:"vx"`
	VY float64 `csv:"vy" json:"vy"`
}

type Result struct {
	Config  *config.Config
	Samples []Sample
	Final   []Point
	Metrics map[string]float64
	Drops   fluid.DropCounters
	Ticks   int
	Elapsed time.Duration
}

type Experiment struct {
	cfg        *config.Config
	sim        *fluid.Simulation
	metrics    metrics.Set
	emitters   []Emitter
	randSource *rand.Rand
}

func New(cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := fluid.New(cfg.Physics, cfg.Viewport.Width, cfg.Viewport.Height)
	if err != nil {
		return nil, err
	}
	e := &Experiment{
		cfg:        cfg,
		sim:        s,
		metrics:    make(metrics.Set, 0),
		emitters:   EmittersFromConfig(cfg.Emitters, cfg.Viewport.Width, cfg.Viewport.Height),
		randSource: rand.New(rand.NewSource(cfg.Run.Seed)),
	}
	s.AddObserver(fluid.ObserverFunc(func(st fluid.TickStats) { e.metrics.OnStep(st) }))
	return e, nil
}

func (e *Experiment) AddMetric(m metrics.Metric)    { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o fluid.Observer)  { e.sim.AddObserver(o) }
func (e *Experiment) Simulation() *fluid.Simulation { return e.sim }

// Run primes the fluid, then steps it for the configured number of ticks,
// firing emitters before each step. On cancellation the partial result is
// returned with the context error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	cfg := e.cfg
	start := time.Now()

	e.sim.Reset()
	e.metrics.Reset()
	primed := Prime(e.sim, cfg.Prime)
	slog.Debug("primed", "particles", primed, "preset", cfg.Name)

	result := &Result{
		Config:  cfg,
		Samples: make([]Sample, 0, cfg.Run.Ticks/cfg.Run.SampleEvery+1),
		Metrics: make(map[string]float64),
	}
	watch := &dropWatch{}

	for i := 0; i < cfg.Run.Ticks; i++ {
		select {
		case <-ctx.Done():
			e.finish(result, start)
			return result, ctx.Err()
		default:
		}

		for _, em := range e.emitters {
			if em.Due(i) {
				em.Fire(e.sim, e.randSource)
			}
		}

		e.sim.Step()
		st := e.sim.Stats()
		watch.observe(st)
		result.Ticks++

		if (i+1)%cfg.Run.SampleEvery == 0 {
			result.Samples = append(result.Samples, SampleFrom(st))
		}
	}

	e.finish(result, start)
	slog.Info("run_complete",
		"preset", cfg.Name,
		"ticks", result.Ticks,
		"particles", e.sim.ParticleCount(),
		"drops", result.Drops,
		"metrics", e.metrics,
		"elapsed_ms", result.Elapsed.Milliseconds(),
	)
	return result, nil
}

func (e *Experiment) finish(r *Result, start time.Time) {
	for k, v := range e.metrics.Values() {
		r.Metrics[k] = v
	}
	r.Drops = e.sim.Drops()
	r.Final = Snapshot(e.sim)
	r.Elapsed = time.Since(start)
}

// Snapshot copies every live particle.
func Snapshot(s *fluid.Simulation) []Point {
	ps := s.Store()
	out := make([]Point, ps.Len())
	for i := range out {
		x, y := ps.Position(i)
		vx, vy := ps.Velocity(i)
		out[i] = Point{X: x, Y: y, VX: vx, VY: vy}
	}
	return out
}

// dropWatch warns once per drop kind.
type dropWatch struct {
	particles, contacts, bucket bool
}

func (w *dropWatch) observe(st fluid.TickStats) {
	if st.DroppedParticles > 0 && !w.particles {
		w.particles = true
		slog.Warn("particle_capacity_reached", "tick", st.Tick, "dropped", st.DroppedParticles)
	}
	if st.DroppedContacts > 0 && !w.contacts {
		w.contacts = true
		slog.Warn("contact_capacity_reached", "tick", st.Tick, "dropped", st.DroppedContacts)
	}
	if st.DroppedBucket > 0 && !w.bucket {
		w.bucket = true
		slog.Warn("grid_bucket_full", "tick", st.Tick, "dropped", st.DroppedBucket)
	}
}
