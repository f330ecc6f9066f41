package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/fluidsim/internal/experiment"
)

type ExportData struct {
	Run       RunMetadata         `json:"run"`
	Samples   []experiment.Sample `json:"samples"`
	Particles []experiment.Point  `json:"particles"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	particles, err := s.LoadParticles(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:       *meta,
		Samples:   samples,
		Particles: particles,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
