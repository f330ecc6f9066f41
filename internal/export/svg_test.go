package export

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"
)

func positions(pts ...[2]float64) func(yield func(float64, float64) bool) {
	return func(yield func(float64, float64) bool) {
		for _, p := range pts {
			if !yield(p[0], p[1]) {
				return
			}
		}
	}
}

func wellFormed(t *testing.T, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			t.Fatalf("invalid svg: %v", err)
		}
	}
}

func TestParticlesToSVG(t *testing.T) {
	svg := ParticlesToSVG(positions([2]float64{100, 50}, [2]float64{3, 3}), 800, 600)
	wellFormed(t, svg)

	if !strings.Contains(svg, `width="800" height="600"`) {
		t.Error("expected viewport dimensions")
	}
	if strings.Count(svg, `width="6" height="6"`) != 2 {
		t.Errorf("expected 2 particle squares:\n%s", svg)
	}
	if !strings.Contains(svg, `<rect x="97.0" y="47.0"`) {
		t.Error("particle square should be centred on its position")
	}
	if !strings.Contains(svg, ParticleColor) {
		t.Error("expected particle fill colour")
	}
}

func TestParticlesToSVGEmpty(t *testing.T) {
	svg := ParticlesToSVG(positions(), 10, 10)
	wellFormed(t, svg)
	if strings.Contains(svg, `width="6"`) {
		t.Error("expected no particles")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG([]float64{0, 1, 2, 1}, 300, 100, "#00ff00")
	wellFormed(t, svg)

	if !strings.Contains(svg, `d="M0.0,`) {
		t.Error("path should start at x=0")
	}
	if strings.Count(svg, " L") != 3 {
		t.Errorf("expected 3 line segments:\n%s", svg)
	}
	if !strings.Contains(svg, " L300.0,") {
		t.Error("path should end at the right edge")
	}

	if SeriesToSVG([]float64{1}, 300, 100, "#fff") != "" {
		t.Error("expected empty output for a single value")
	}
}
