package fluid

import "testing"

func benchSim(b *testing.B, rows int) *Simulation {
	s, err := New(DefaultParams(), 1200, 900)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < rows; i++ {
		s.Pour(600, 270+10*float64(i))
	}
	// let the column spread before timing
	for i := 0; i < 50; i++ {
		s.Step()
	}
	return s
}

func BenchmarkStep720(b *testing.B) {
	s := benchSim(b, 80)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}

func BenchmarkStepFull(b *testing.B) {
	s := benchSim(b, 450)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step()
	}
}

func BenchmarkFindContacts(b *testing.B) {
	s := benchSim(b, 80)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.grid.Clear()
		s.neighbors.FindContacts(s.particles, s.grid, s.contacts)
		for j := 0; j < s.particles.Len(); j++ {
			s.particles.Density[j] = 0
		}
	}
}
