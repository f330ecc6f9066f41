package fluid

import "math"

// ForceSolver turns contacts into pairwise pressure and viscosity forces.
// Both terms are applied equal and opposite to the two particles.
type ForceSolver struct {
	RestDensity float64
	Pressure    float64
	Viscosity   float64
}

func NewForceSolver(p Params) *ForceSolver {
	return &ForceSolver{
		RestDensity: p.RestDensity,
		Pressure:    p.Pressure,
		Viscosity:   p.Viscosity,
	}
}

func (f *ForceSolver) Accumulate(ps *ParticleStore, pool *ContactPool) {
	for i := 0; i < pool.Len(); i++ {
		c := pool.At(i)
		a, b := c.A, c.B

		// purely repulsive: never pulls particles together
		pressure := c.Weight * (ps.Density[a] + ps.Density[b] - f.RestDensity) * f.Pressure
		pressure = math.Max(0, pressure)

		px, py := c.NX*pressure, c.NY*pressure
		ps.ForceX[a] += px
		ps.ForceY[a] += py
		ps.ForceX[b] -= px
		ps.ForceY[b] -= py

		visc := c.Weight * f.Viscosity
		vx := (ps.VelX[b] - ps.VelX[a]) * visc
		vy := (ps.VelY[b] - ps.VelY[a]) * visc
		ps.ForceX[a] += vx
		ps.ForceY[a] += vy
		ps.ForceX[b] -= vx
		ps.ForceY[b] -= vy
	}
}
