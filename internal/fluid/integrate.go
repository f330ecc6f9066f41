package fluid

// Integrator advances particles by one semi-implicit Euler tick.
type Integrator struct {
	Epsilon float64
}

// Integrate applies force/density to velocity, moves every particle and
// resets force and density for the next tick. Particles whose density is at
// or below Epsilon keep their velocity. Density and energy figures are
// written to st before the accumulators are cleared.
func (in *Integrator) Integrate(ps *ParticleStore, st *TickStats) {
	var sum, peak, kinetic float64
	skipped := 0
	n := ps.Len()
	for i := 0; i < n; i++ {
		d := ps.Density[i]
		sum += d
		if d > peak {
			peak = d
		}

		if d > in.Epsilon {
			ps.VelX[i] += ps.ForceX[i] / d
			ps.VelY[i] += ps.ForceY[i] / d
		} else {
			skipped++
		}

		ps.PosX[i] += ps.VelX[i]
		ps.PosY[i] += ps.VelY[i]
		kinetic += 0.5 * (ps.VelX[i]*ps.VelX[i] + ps.VelY[i]*ps.VelY[i])

		ps.ForceX[i], ps.ForceY[i] = 0, 0
		ps.Density[i] = 0
	}
	st.Skipped = skipped
	st.MaxDensity = peak
	st.KineticEnergy = kinetic
	st.MeanDensity = 0
	if n > 0 {
		st.MeanDensity = sum / float64(n)
	}
}

// BorderConstraint pushes particles within Radius of a viewport edge back
// inside. The correction is soft: half the penetration is added to the
// velocity and half of the edge-ward velocity is removed each tick.
type BorderConstraint struct {
	Radius        float64
	Stiffness     float64
	Damping       float64
	Width, Height float64
}

func (b *BorderConstraint) Apply(ps *ParticleStore) {
	r := b.Radius
	right, bottom := b.Width-r, b.Height-r
	for i := 0; i < ps.Len(); i++ {
		px, py := ps.PosX[i], ps.PosY[i]

		if px < r {
			ps.VelX[i] += (r-px)*b.Stiffness - ps.VelX[i]*b.Damping
		}
		if py < r {
			ps.VelY[i] += (r-py)*b.Stiffness - ps.VelY[i]*b.Damping
		}
		if px > right {
			ps.VelX[i] += (right-px)*b.Stiffness - ps.VelX[i]*b.Damping
		}
		if py > bottom {
			ps.VelY[i] += (bottom-py)*b.Stiffness - ps.VelY[i]*b.Damping
		}
	}
}

// ApplyGravity adds a constant downward velocity to every live particle.
func ApplyGravity(ps *ParticleStore, g float64) {
	for i := 0; i < ps.Len(); i++ {
		ps.VelY[i] += g
	}
}
