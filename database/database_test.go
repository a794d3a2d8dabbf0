package database

import (
	"path/filepath"
	"testing"

	"photofingerprint/types"
)

func TestRunReportRoundTrip(t *testing.T) {
	db, err := InitDatabase(filepath.Join(t.TempDir(), "report.db"))
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	defer db.Close()

	options := types.WorkerOptions{
		Mode:         types.DuplicateWorker,
		SrcDirectory: "/fingerprints",
		DstDirectory: "/candidates",
		NumThreads:   4,
	}
	runID, err := BeginRun(db, options)
	if err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	matches := []types.MatchResult{
		{Candidate: "/candidates/b.jpg", Match: "/orig/a.jpg", Classification: "identical", Distortion: 0},
		{Candidate: "/candidates/c.jpg", Match: "/orig/a.jpg", Classification: "similar", Distortion: 480},
	}
	for _, m := range matches {
		if err := RecordMatch(db, runID, m); err != nil {
			t.Fatalf("RecordMatch: %v", err)
		}
	}
	if err := RecordSkip(db, runID, "/candidates/broken.jpg", "failed to load image"); err != nil {
		t.Fatalf("RecordSkip: %v", err)
	}
	if err := FinishRun(db, runID, 10, 1); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	stats, err := GetRunStats(db, runID)
	if err != nil {
		t.Fatalf("GetRunStats: %v", err)
	}
	if stats.Mode != "find" {
		t.Errorf("Mode = %q, want find", stats.Mode)
	}
	if stats.Processed != 10 || stats.Skipped != 1 {
		t.Errorf("counters = %d/%d, want 10/1", stats.Processed, stats.Skipped)
	}
	if stats.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", stats.MatchCount)
	}
}

func TestInitDatabaseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.db")
	for i := 0; i < 2; i++ {
		db, err := InitDatabase(path)
		if err != nil {
			t.Fatalf("InitDatabase attempt %d: %v", i+1, err)
		}
		db.Close()
	}
}
