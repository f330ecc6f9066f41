package fluid

import "testing"

func TestParticleStoreAppend(t *testing.T) {
	ps := NewParticleStore(2, 5)

	if !ps.Append(1, 2) || !ps.Append(3, 4) {
		t.Fatal("expected appends below capacity to succeed")
	}
	if ps.Append(5, 6) {
		t.Error("expected append at capacity to fail")
	}
	if ps.Len() != 2 {
		t.Errorf("expected 2 particles, got %d", ps.Len())
	}
	if x, y := ps.Position(1); x != 3 || y != 4 {
		t.Errorf("append at capacity overwrote particle 1: got (%v, %v)", x, y)
	}
	if vx, vy := ps.Velocity(0); vx != 0 || vy != 5 {
		t.Errorf("expected velocity (0, 5), got (%v, %v)", vx, vy)
	}
	if ps.Dropped() != 1 {
		t.Errorf("expected 1 dropped append, got %d", ps.Dropped())
	}
}

func TestParticleStoreResetReusesSlots(t *testing.T) {
	ps := NewParticleStore(4, 5)
	ps.Append(1, 1)
	ps.VelX[0] = 42
	ps.Density[0] = 3

	ps.Reset()
	if ps.Len() != 0 {
		t.Fatalf("expected empty store after reset, got %d", ps.Len())
	}

	ps.Append(7, 8)
	if ps.VelX[0] != 0 || ps.Density[0] != 0 {
		t.Errorf("stale slot leaked into new particle: vx=%v density=%v", ps.VelX[0], ps.Density[0])
	}
}

func TestParticleStoreIteration(t *testing.T) {
	ps := NewParticleStore(8, 5)
	for i := 0; i < 5; i++ {
		ps.Append(float64(i), float64(10*i))
	}

	for pass := 0; pass < 2; pass++ {
		n := 0
		for x, y := range ps.All() {
			if x != float64(n) || y != float64(10*n) {
				t.Errorf("pass %d: particle %d at (%v, %v)", pass, n, x, y)
			}
			n++
		}
		if n != 5 {
			t.Errorf("pass %d: expected 5 particles, got %d", pass, n)
		}
	}

	n := 0
	for range ps.All() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("early break visited %d particles", n)
	}

	sum := 0.0
	ps.ForEach(func(x, y float64) { sum += x })
	if sum != 10 {
		t.Errorf("expected x sum 10, got %v", sum)
	}
}
