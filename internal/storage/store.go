package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/experiment"
)

const (
	metadataFile  = "metadata.json"
	samplesFile   = "samples.csv"
	particlesFile = "particles.csv"
	configFile    = "config.yaml"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type DropSummary struct {
	Particles uint64 `json:"particles"`
	Contacts  uint64 `json:"contacts"`
	Bucket    uint64 `json:"bucket"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Preset      string             `json:"preset"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Ticks       int                `json:"ticks"`
	SampleEvery int                `json:"sample_every"`
	Width       float64            `json:"width"`
	Height      float64            `json:"height"`
	Particles   int                `json:"particles"`
	Drops       DropSummary        `json:"drops"`
	ElapsedMS   int64              `json:"elapsed_ms"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (s *Store) runDir(runID string) string { return filepath.Join(s.baseDir, runID) }

// Save writes a run directory and returns its id.
func (s *Store) Save(res *experiment.Result) (string, error) {
	cfg := res.Config
	now := time.Now()
	if err := s.Init(); err != nil {
		return "", err
	}
	runID, err := s.createRunDir(cfg.Name, now)
	if err != nil {
		return "", err
	}
	runDir := s.runDir(runID)

	meta := RunMetadata{
		ID:          runID,
		Preset:      cfg.Name,
		Timestamp:   now,
		Seed:        cfg.Run.Seed,
		Ticks:       res.Ticks,
		SampleEvery: cfg.Run.SampleEvery,
		Width:       cfg.Viewport.Width,
		Height:      cfg.Viewport.Height,
		Particles:   len(res.Final),
		Drops: DropSummary{
			Particles: res.Drops.Particles,
			Contacts:  res.Drops.Contacts,
			Bucket:    res.Drops.Bucket,
		},
		ElapsedMS: res.Elapsed.Milliseconds(),
		Metrics:   res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("writing %s: %w", metadataFile, err)
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", fmt.Errorf("writing %s: %w", configFile, err)
	}
	if err := writeCSV(filepath.Join(runDir, samplesFile), res.Samples); err != nil {
		return "", fmt.Errorf("writing %s: %w", samplesFile, err)
	}
	if err := writeCSV(filepath.Join(runDir, particlesFile), res.Final); err != nil {
		return "", fmt.Errorf("writing %s: %w", particlesFile, err)
	}

	return runID, nil
}

// createRunDir makes a fresh directory named after the preset and time,
// suffixing a counter on collision.
func (s *Store) createRunDir(name string, now time.Time) (string, error) {
	base := fmt.Sprintf("%s_%d", name, now.UnixNano())
	runID := base
	for i := 1; ; i++ {
		err := os.Mkdir(s.runDir(runID), 0755)
		if err == nil {
			return runID, nil
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeCSV writes records with a header. An empty slice still gets a header
// so the file can be read back.
func writeCSV[T any](path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&records, f)
}

func readCSV[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]T, 0)
	if err := gocsv.UnmarshalFile(f, &out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return out, nil
		}
		return nil, err
	}
	return out, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse %s metadata: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]experiment.Sample, error) {
	return readCSV[experiment.Sample](filepath.Join(s.runDir(runID), samplesFile))
}

func (s *Store) LoadParticles(runID string) ([]experiment.Point, error) {
	return readCSV[experiment.Point](filepath.Join(s.runDir(runID), particlesFile))
}

func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.runDir(runID), configFile))
}
