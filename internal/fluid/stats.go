package fluid

import "log/slog"

// TickStats describes one completed Step. Drop figures are the drops that
// happened since the previous Step, pours included.
type TickStats struct {
	Tick             uint64
	Particles        int
	Contacts         int
	DroppedContacts  uint64
	DroppedBucket    uint64
	DroppedParticles uint64
	Skipped          int // integrations skipped for near-zero density
	MeanDensity      float64
	MaxDensity       float64
	KineticEnergy    float64
}

// LogValue implements slog.LogValuer.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("tick", s.Tick),
		slog.Int("particles", s.Particles),
		slog.Int("contacts", s.Contacts),
		slog.Uint64("dropped_contacts", s.DroppedContacts),
		slog.Uint64("dropped_bucket", s.DroppedBucket),
		slog.Uint64("dropped_particles", s.DroppedParticles),
		slog.Int("skipped", s.Skipped),
		slog.Float64("mean_density", s.MeanDensity),
		slog.Float64("max_density", s.MaxDensity),
		slog.Float64("kinetic_energy", s.KineticEnergy),
	)
}

// DropCounters are cumulative since the Simulation was created. Resize and
// Reset do not clear them.
type DropCounters struct {
	Particles uint64
	Contacts  uint64
	Bucket    uint64
}

func (d DropCounters) Total() uint64 { return d.Particles + d.Contacts + d.Bucket }

// LogValue implements slog.LogValuer.
func (d DropCounters) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("particles", d.Particles),
		slog.Uint64("contacts", d.Contacts),
		slog.Uint64("bucket", d.Bucket),
	)
}

// Observer is notified after every Step.
type Observer interface {
	OnStep(st TickStats)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(st TickStats)

func (f ObserverFunc) OnStep(st TickStats) { f(st) }
