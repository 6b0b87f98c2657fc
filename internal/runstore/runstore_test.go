package runstore

import (
	"path/filepath"
	"testing"
)

func TestOpen_EmptyPathDisablesHistory(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	if s != nil {
		t.Fatal("expected a nil Store for an empty path")
	}
	if err := s.Save(Run{ID: "x"}); err != nil {
		t.Fatalf("Save on nil store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close on nil store: %v", err)
	}
}

func TestStore_SaveAndRecent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	run := Run{
		ID:                NewRunID(),
		StartedAt:         "2026-01-01T00:00:00Z",
		DurationMS:        1500,
		Assets:            4,
		PrecisionStep:     10,
		HullLayers:        2,
		YearsSelector:     "first-to-last",
		TotalAllocations:  1001,
		AxesJSON:          `[{"x":"stddev","y":"gain"}]`,
		FrontierSizesJSON: `{"stddev/gain":42}`,
	}
	if err := s.Save(run); err != nil {
		t.Fatalf("Save: %v", err)
	}

	recent, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("got %d runs, want 1", len(recent))
	}
	if recent[0].ID != run.ID || recent[0].TotalAllocations != run.TotalAllocations {
		t.Errorf("recent run = %+v, want %+v", recent[0], run)
	}
}
