package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/metrics"
)

// Sweep runs one experiment per value of a physics parameter between Min
// and Max inclusive.
type Sweep struct {
	Base    *config.Config
	Param   string
	Min     float64
	Max     float64
	Steps   int
	Workers int
}

type SweepResult struct {
	Value       float64 `csv:"value" json:"value"`
	Particles   int     `csv:"particles" json:"particles"`
	KineticMean float64 `csv:"kinetic_mean" json:"kinetic_mean"`
	KineticP90  float64 `csv:"kinetic_p90" json:"kinetic_p90"`
	DensityPeak float64 `csv:"density_peak" json:"density_peak"`
	Settled     float64 `csv:"settled" json:"settled"`
	Drops       uint64  `csv:"drops" json:"drops"`
}

func (sw Sweep) Values() []float64 {
	if sw.Steps == 1 {
		return []float64{sw.Min}
	}
	step := (sw.Max - sw.Min) / float64(sw.Steps-1)
	vals := make([]float64, sw.Steps)
	for i := range vals {
		vals[i] = sw.Min + float64(i)*step
	}
	return vals
}

// RunSweep runs the points concurrently and returns results in parameter
// order. The first failure cancels the remaining points.
func RunSweep(ctx context.Context, sw Sweep) ([]SweepResult, error) {
	if sw.Steps <= 0 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sw.Steps)
	}
	probe := sw.Base.Clone()
	if err := probe.SetParam(sw.Param, 0); err != nil {
		return nil, err
	}

	workers := sw.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	vals := sw.Values()
	results := make([]SweepResult, len(vals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, v := range vals {
		g.Go(func() error {
			cfg := sw.Base.Clone()
			if err := cfg.SetParam(sw.Param, v); err != nil {
				return err
			}
			exp, err := New(cfg)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
			}
			for _, m := range metrics.DefaultMetrics() {
				exp.AddMetric(m)
			}
			res, err := exp.Run(gctx)
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sw.Param, v, err)
			}
			results[i] = SweepResult{
				Value:       v,
				Particles:   len(res.Final),
				KineticMean: res.Metrics["kinetic_mean"],
				KineticP90:  res.Metrics["kinetic_p90"],
				DensityPeak: res.Metrics["density_peak"],
				Settled:     res.Metrics["settled"],
				Drops:       res.Drops.Total(),
			}
			slog.Debug("sweep_point", "param", sw.Param, "value", v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
