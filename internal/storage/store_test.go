package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/fluidsim/internal/config"
	"github.com/san-kum/fluidsim/internal/experiment"
	"github.com/san-kum/fluidsim/internal/fluid"
)

func testResult() *experiment.Result {
	cfg := config.GetPreset("dam")
	cfg.Run.Seed = 42
	return &experiment.Result{
		Config: cfg,
		Samples: []experiment.Sample{
			{Tick: 1, Particles: 9, Contacts: 8, MeanDensity: 1.5, KineticEnergy: 112.5},
			{Tick: 2, Particles: 9, Contacts: 10, MeanDensity: 1.75, KineticEnergy: 110.25, DroppedBucket: 1},
		},
		Final: []experiment.Point{
			{X: 100, Y: 200, VX: 0.5, VY: -1.25},
			{X: 120, Y: 200, VX: 0, VY: 3},
		},
		Metrics: map[string]float64{"kinetic_mean": 111.375},
		Drops:   fluid.DropCounters{Bucket: 1},
		Ticks:   2,
		Elapsed: 3 * time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Preset != "dam" {
		t.Errorf("expected preset 'dam', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 || meta.Ticks != 2 || meta.Particles != 2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Drops.Bucket != 1 {
		t.Errorf("expected 1 bucket drop, got %d", meta.Drops.Bucket)
	}
	if meta.Metrics["kinetic_mean"] != 111.375 {
		t.Errorf("expected kinetic_mean 111.375, got %f", meta.Metrics["kinetic_mean"])
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[1] != testResult().Samples[1] {
		t.Errorf("sample round trip mismatch: %+v", samples[1])
	}

	particles, err := st.LoadParticles(runID)
	if err != nil {
		t.Fatalf("load particles failed: %v", err)
	}
	if len(particles) != 2 || particles[0].VY != -1.25 {
		t.Errorf("unexpected particles %+v", particles)
	}

	cfg, err := st.LoadConfig(runID)
	if err != nil {
		t.Fatalf("load config failed: %v", err)
	}
	if cfg.Prime.Rows != 50 || cfg.Run.Seed != 42 {
		t.Errorf("config snapshot lost fields: %+v", cfg.Prime)
	}
}

func TestStoreEmptyRun(t *testing.T) {
	st := New(t.TempDir())
	res := testResult()
	res.Samples = nil
	res.Final = nil

	runID, err := st.Save(res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		t.Fatalf("load samples failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected no samples, got %d", len(samples))
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty store failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(testResult())
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(testResult())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "not-a-run"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected runs oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(testResult())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(runID, &buf); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Run.ID != runID {
		t.Errorf("expected run %s, got %s", runID, data.Run.ID)
	}
	if len(data.Samples) != 2 || len(data.Particles) != 2 {
		t.Errorf("expected 2 samples and 2 particles, got %d and %d", len(data.Samples), len(data.Particles))
	}
}
