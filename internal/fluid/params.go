package fluid

import "fmt"

const (
	DefaultRadius         = 15.0
	DefaultRestDensity    = 2.0
	DefaultPressure       = 2.0
	DefaultViscosity      = 0.1
	DefaultGravity        = 0.05
	DefaultMaxParticles   = 4048
	DefaultBucketCapacity = 10
	DefaultContactFactor  = 10
	DefaultDensityEpsilon = 0.0001
	DefaultPourVelocity   = 5.0
	DefaultPourSpacing    = 20.0
	DefaultPourHalfWidth  = 4
	DefaultBorderStiff    = 0.5
	DefaultBorderDamping  = 0.5
)

// Params holds the tunable constants of the fluid model. The values are not
// physically calibrated; one tick is one unit of time.
type Params struct {
	Radius         float64 `yaml:"radius"`
	RestDensity    float64 `yaml:"rest_density"`
	Pressure       float64 `yaml:"pressure"`
	Viscosity      float64 `yaml:"viscosity"`
	Gravity        float64 `yaml:"gravity"`
	MaxParticles   int     `yaml:"max_particles"`
	BucketCapacity int     `yaml:"bucket_capacity"`
	ContactFactor  int     `yaml:"contact_factor"` // contacts per particle slot
	DensityEpsilon float64 `yaml:"density_epsilon"`
	PourVelocity   float64 `yaml:"pour_velocity"`
	PourSpacing    float64 `yaml:"pour_spacing"`
	PourHalfWidth  int     `yaml:"pour_half_width"`
	BorderStiff    float64 `yaml:"border_stiffness"`
	BorderDamping  float64 `yaml:"border_damping"`
}

func DefaultParams() Params {
	return Params{
		Radius:         DefaultRadius,
		RestDensity:    DefaultRestDensity,
		Pressure:       DefaultPressure,
		Viscosity:      DefaultViscosity,
		Gravity:        DefaultGravity,
		MaxParticles:   DefaultMaxParticles,
		BucketCapacity: DefaultBucketCapacity,
		ContactFactor:  DefaultContactFactor,
		DensityEpsilon: DefaultDensityEpsilon,
		PourVelocity:   DefaultPourVelocity,
		PourSpacing:    DefaultPourSpacing,
		PourHalfWidth:  DefaultPourHalfWidth,
		BorderStiff:    DefaultBorderStiff,
		BorderDamping:  DefaultBorderDamping,
	}
}

func (p Params) Diameter() float64 { return p.Radius + p.Radius }

// MaxContacts is the fixed size of the contact pool.
func (p Params) MaxContacts() int { return p.MaxParticles * p.ContactFactor }

// PourSize is the number of particles a single pour tries to insert.
func (p Params) PourSize() int { return 2*p.PourHalfWidth + 1 }

func (p Params) Validate() error {
	switch {
	case p.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive, got %g", ErrInvalidParams, p.Radius)
	case p.MaxParticles <= 0:
		return fmt.Errorf("%w: max_particles must be positive, got %d", ErrInvalidParams, p.MaxParticles)
	case p.BucketCapacity <= 0:
		return fmt.Errorf("%w: bucket_capacity must be positive, got %d", ErrInvalidParams, p.BucketCapacity)
	case p.ContactFactor <= 0:
		return fmt.Errorf("%w: contact_factor must be positive, got %d", ErrInvalidParams, p.ContactFactor)
	case p.DensityEpsilon < 0:
		return fmt.Errorf("%w: density_epsilon must not be negative, got %g", ErrInvalidParams, p.DensityEpsilon)
	case p.PourHalfWidth < 0:
		return fmt.Errorf("%w: pour_half_width must not be negative, got %d", ErrInvalidParams, p.PourHalfWidth)
	case p.Pressure < 0 || p.Viscosity < 0:
		return fmt.Errorf("%w: pressure and viscosity must not be negative", ErrInvalidParams)
	}
	return nil
}
