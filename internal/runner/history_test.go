package runner

import (
	"path/filepath"
	"testing"
	"time"
)

func TestHistoryPutReplacesAndOrders(t *testing.T) {
	h, err := OpenHistory(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatalf("OpenHistory: %v", err)
	}
	defer h.Close()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		started := base.Add(time.Duration(i) * time.Minute)
		if err := h.Put(Status{RunID: id, Phase: PhaseRunning, StartedAt: &started}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}
	startedB := base.Add(time.Minute)
	if err := h.Put(Status{RunID: "b", Phase: PhaseCompleted, StartedAt: &startedB}); err != nil {
		t.Fatalf("Put b again: %v", err)
	}

	runs, err := h.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 || runs[0].RunID != "c" || runs[1].RunID != "b" || runs[2].RunID != "a" {
		t.Fatalf("runs = %+v", runs)
	}
	if runs[1].Phase != PhaseCompleted {
		t.Fatalf("run b not replaced: %+v", runs[1])
	}

	limited, err := h.List(2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("List(2) = %d, %v", len(limited), err)
	}

	if err := h.Put(Status{}); err == nil {
		t.Fatalf("expected error for empty run id")
	}
}
