package indexdb

import (
	"path/filepath"
	"testing"
)

func TestRunLifecycle(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	id, err := idx.StartRun(42, 20, "demo", "digest-a", "runs/a.replay.zst")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if id == "" {
		t.Fatalf("empty run id")
	}
	if err := idx.FinishRun(id, 1200, "final-digest"); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	runs, err := idx.Runs(10)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Seed != 42 || r.Scenario != "demo" {
		t.Fatalf("run row = %+v", r)
	}
	if r.FinalTick != 1200 || r.FinalDigest != "final-digest" {
		t.Fatalf("final state not recorded: %+v", r)
	}
}

func TestBenchmarkRows(t *testing.T) {
	idx, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer idx.Close()

	id, err := idx.StartRun(1, 20, "benchmark", "d", "")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	err = idx.RecordBenchmark(BenchmarkResult{
		RunID: id, Scenario: "benchmark", Ticks: 6000,
		WallMillis: 1234, TicksPerSec: 4862.2, CacheHits: 900, CacheMisses: 40,
	})
	if err != nil {
		t.Fatalf("record benchmark: %v", err)
	}

	var count int
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM benchmarks WHERE run_id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("benchmark rows = %d, want 1", count)
	}
}

func TestWarningsFlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	id, err := idx.StartRun(1, 20, "", "d", "")
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	for i := 0; i < 5; i++ {
		idx.RecordWarning(id, uint64(i), "stockpile full")
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	var count int
	if err := reopened.db.QueryRow(`SELECT COUNT(*) FROM warnings WHERE run_id = ?`, id).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 5 {
		t.Fatalf("warning rows = %d, want 5", count)
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("open with empty path succeeded")
	}
}
