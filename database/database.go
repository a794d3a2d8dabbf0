// Package database persists an optional run report in SQLite: one row per
// run, one row per emitted match, one row per skipped file. Fingerprints
// themselves are never stored here; they live as files on disk.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"photofingerprint/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		source_dir TEXT,
		dest_dir TEXT,
		threads INTEGER,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		processed INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		candidate TEXT NOT NULL,
		match TEXT NOT NULL,
		classification TEXT NOT NULL,
		distortion REAL,
		FOREIGN KEY(run_id) REFERENCES runs(id)
	);
	CREATE TABLE IF NOT EXISTS skipped_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		cause TEXT,
		FOREIGN KEY(run_id) REFERENCES runs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_matches_run ON matches(run_id);
	CREATE INDEX IF NOT EXISTS idx_matches_candidate ON matches(candidate);
	CREATE INDEX IF NOT EXISTS idx_skipped_run ON skipped_files(run_id);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating report schema: %v", err)
	}

	return db, nil
}

// BeginRun records the start of a run and returns its row id
func BeginRun(db *sql.DB, options types.WorkerOptions) (int64, error) {
	result, err := db.Exec(
		"INSERT INTO runs (mode, source_dir, dest_dir, threads, started_at) VALUES (?, ?, ?, ?, ?)",
		options.Mode.String(), options.SrcDirectory, options.DstDirectory,
		options.NumThreads, time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("cannot record run start: %v", err)
	}
	return result.LastInsertId()
}

// FinishRun records the completion of a run with its final counters
func FinishRun(db *sql.DB, runID int64, processed, skipped int) error {
	_, err := db.Exec(
		"UPDATE runs SET finished_at = ?, processed = ?, skipped = ? WHERE id = ?",
		time.Now().Format(time.RFC3339), processed, skipped, runID,
	)
	if err != nil {
		return fmt.Errorf("cannot record run completion: %v", err)
	}
	return nil
}

// RecordMatch stores one emitted match result
func RecordMatch(db *sql.DB, runID int64, result types.MatchResult) error {
	_, err := db.Exec(
		"INSERT INTO matches (run_id, candidate, match, classification, distortion) VALUES (?, ?, ?, ?, ?)",
		runID, result.Candidate, result.Match, result.Classification, result.Distortion,
	)
	if err != nil {
		return fmt.Errorf("cannot record match for %s: %v", result.Candidate, err)
	}
	return nil
}

// RecordSkip stores one skipped file with its cause
func RecordSkip(db *sql.DB, runID int64, path, cause string) error {
	_, err := db.Exec(
		"INSERT INTO skipped_files (run_id, path, cause) VALUES (?, ?, ?)",
		runID, path, cause,
	)
	if err != nil {
		return fmt.Errorf("cannot record skipped file %s: %v", path, err)
	}
	return nil
}

// RunStats summarizes a completed run
type RunStats struct {
	Mode       string
	Processed  int
	Skipped    int
	MatchCount int
}

// GetRunStats returns the summary statistics for a run
func GetRunStats(db *sql.DB, runID int64) (*RunStats, error) {
	stats := &RunStats{}

	err := db.QueryRow(
		"SELECT mode, processed, skipped FROM runs WHERE id = ?", runID,
	).Scan(&stats.Mode, &stats.Processed, &stats.Skipped)
	if err != nil {
		return nil, fmt.Errorf("cannot read run %d: %v", runID, err)
	}

	err = db.QueryRow(
		"SELECT COUNT(*) FROM matches WHERE run_id = ?", runID,
	).Scan(&stats.MatchCount)
	if err != nil {
		return nil, fmt.Errorf("cannot count matches for run %d: %v", runID, err)
	}

	return stats, nil
}
