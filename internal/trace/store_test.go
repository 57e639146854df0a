package trace

import (
	"testing"
)

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	meta := RunMetadata{
		Seed:       42,
		DropX:      300,
		Class:      "default",
		Rows:       12,
		Buckets:    5,
		Risk:       "medium",
		Landed:     true,
		Bucket:     "bucket-2",
		Multiplier: 1.5,
		PegHits:    14,
		Ticks:      480,
		Corrections: map[string]int{
			"stall": 1,
		},
		Metrics: map[string]float64{
			"max_speed": 412.3,
		},
	}

	ticks := []TickSample{
		{Tick: 1, X: 300.0, Y: 21.0, VX: 2.5, VY: 61.0},
		{Tick: 2, X: 300.04, Y: 22.2, VX: 2.4, VY: 76.0},
	}

	runID, err := st.Save(meta, ticks)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if runID == "" {
		t.Error("expected non-empty run id")
	}

	loaded, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.ID != runID {
		t.Errorf("expected id %s, got %s", runID, loaded.ID)
	}
	if loaded.Seed != 42 {
		t.Errorf("expected seed 42, got %d", loaded.Seed)
	}
	if loaded.Bucket != "bucket-2" {
		t.Errorf("expected bucket-2, got %s", loaded.Bucket)
	}
	if loaded.Corrections["stall"] != 1 {
		t.Errorf("corrections lost: %v", loaded.Corrections)
	}
	if loaded.Metrics["max_speed"] != 412.3 {
		t.Errorf("expected max_speed 412.3, got %f", loaded.Metrics["max_speed"])
	}

	samples, err := st.LoadTicks(runID)
	if err != nil {
		t.Fatalf("load ticks failed: %v", err)
	}

	if len(samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(samples))
	}
	if samples[0].Tick != 1 || samples[1].Tick != 2 {
		t.Errorf("tick order lost: %v", samples)
	}
	if samples[1].Y != 22.2 {
		t.Errorf("expected y 22.2, got %f", samples[1].Y)
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save(RunMetadata{Class: "default"}, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New("/nonexistent/pegfall-data")

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}
}

func TestLoadMissingRun(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("drop_0"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadTicks("drop_0"); err == nil {
		t.Error("expected error for missing ticks")
	}
}

func TestSaveEmptyTrajectory(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	runID, err := st.Save(RunMetadata{}, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	samples, err := st.LoadTicks(runID)
	if err != nil {
		t.Fatalf("load ticks failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected empty trajectory, got %d samples", len(samples))
	}
}
