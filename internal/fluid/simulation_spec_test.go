package fluid_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/fluidsim/internal/fluid"
)

// prime fills the viewport the way the live view does after a resize: a
// tall column of pours in the upper middle.
func prime(s *fluid.Simulation, rows int) {
	w, h := s.Viewport()
	for i := 0; i < rows; i++ {
		s.Pour(w*0.5, h*0.3+10*float64(i))
	}
}

var _ = Describe("Simulation", func() {
	var (
		params fluid.Params
		sim    *fluid.Simulation
	)

	BeforeEach(func() {
		params = fluid.DefaultParams()
		var err error
		sim, err = fluid.New(params, 400, 400)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("stepping a primed fluid", func() {
		BeforeEach(func() {
			prime(sim, 40)
		})

		It("keeps every contact inside the interaction diameter", func() {
			d := params.Diameter()
			for tick := 0; tick < 120; tick++ {
				sim.Step()
				for c := range sim.Contacts() {
					Expect(c.Distance).To(BeNumerically(">=", 0))
					Expect(c.Distance).To(BeNumerically("<", d))
					Expect(c.Weight).To(BeNumerically(">", 0))
					Expect(c.Weight).To(BeNumerically("<=", 1))
				}
			}
		})

		It("never reports a pair twice in one tick", func() {
			for tick := 0; tick < 60; tick++ {
				sim.Step()
				if sim.Stats().DroppedBucket > 0 {
					continue
				}
				seen := make(map[[2]int]bool)
				for c := range sim.Contacts() {
					key := [2]int{min(c.A, c.B), max(c.A, c.B)}
					Expect(seen).NotTo(HaveKey(key))
					seen[key] = true
				}
			}
		})

		It("stays within capacity and finite", func() {
			for tick := 0; tick < 300; tick++ {
				if tick%10 == 0 {
					sim.Pour(200, 40)
				}
				sim.Step()
				Expect(sim.ParticleCount()).To(BeNumerically("<=", params.MaxParticles))
			}
			for x, y := range sim.Particles() {
				Expect(math.IsNaN(x) || math.IsInf(x, 0)).To(BeFalse())
				Expect(math.IsNaN(y) || math.IsInf(y, 0)).To(BeFalse())
			}
		})

		It("publishes stats to observers", func() {
			var got []fluid.TickStats
			sim.AddObserver(fluid.ObserverFunc(func(st fluid.TickStats) { got = append(got, st) }))
			sim.Step()
			sim.Step()

			Expect(got).To(HaveLen(2))
			Expect(got[1].Tick).To(Equal(uint64(2)))
			Expect(got[1].Particles).To(Equal(sim.ParticleCount()))
			Expect(got[1].Contacts).To(BeNumerically(">", 0))
			Expect(got[1].MeanDensity).To(BeNumerically(">", 0))
		})
	})

	Describe("capacity", func() {
		It("leaves the count unchanged when pouring into a full store", func() {
			for sim.ParticleCount() < params.MaxParticles {
				sim.Pour(200, 200)
			}
			before := sim.Drops().Particles
			Expect(sim.Pour(200, 200)).To(Equal(0))
			Expect(sim.ParticleCount()).To(Equal(params.MaxParticles))
			Expect(sim.Drops().Particles).To(Equal(before + uint64(params.PourSize())))
		})

		It("drops contacts past the pool size instead of failing", func() {
			small := fluid.DefaultParams()
			small.MaxParticles = 30
			small.ContactFactor = 1
			s, err := fluid.New(small, 400, 400)
			Expect(err).NotTo(HaveOccurred())

			// three coincident rows give far more than 30 close pairs
			for i := 0; i < 3; i++ {
				s.Pour(200, 200)
			}
			s.Step()

			Expect(s.Stats().Contacts).To(Equal(30))
			Expect(s.Stats().DroppedContacts).To(BeNumerically(">", 0))
		})

		It("drops bucket inserts past the bucket size", func() {
			for i := 0; i < 12; i++ {
				sim.Store().Append(100, 100)
			}
			sim.Step()

			Expect(sim.Stats().DroppedBucket).To(Equal(uint64(2)))
			Expect(sim.Drops().Bucket).To(Equal(uint64(2)))
		})
	})

	Describe("resize", func() {
		It("resets the fluid and regrids", func() {
			prime(sim, 10)
			sim.Step()

			Expect(sim.Resize(610, 305)).To(Succeed())
			Expect(sim.ParticleCount()).To(BeZero())
			cols, rows := sim.GridSize()
			Expect(cols).To(Equal(20))
			Expect(rows).To(Equal(10))
		})
	})
})
