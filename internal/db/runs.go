package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one invocation of the playback pipeline.
type Run struct {
	ID          string
	SourceFile  string
	FrequencyHz uint64
	Sequences   int
	TotalPulses int
	Repeats     int
	PauseUs     int64
	DryRun      bool
	Outcome     string
	Transmits   int
	AirTimeUs   uint64
	Warnings    int
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// NewRunID returns a fresh random identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// RecordRun inserts r. An empty ID is replaced with a new one, which is
// returned.
func (db *DB) RecordRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = NewRunID()
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", r.ID, err)
	}
	if r.Outcome == "" {
		return "", fmt.Errorf("run %s has no outcome", r.ID)
	}

	_, err := db.Exec(`
		INSERT INTO playback_runs (
			run_id, source_file, frequency_hz, sequences, total_pulses,
			repeats, pause_us, dry_run, outcome, transmits, air_time_us,
			warnings, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SourceFile, int64(r.FrequencyHz), r.Sequences, r.TotalPulses,
		r.Repeats, r.PauseUs, boolToInt(r.DryRun), r.Outcome, r.Transmits, int64(r.AirTimeUs),
		r.Warnings, r.Error, r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return r.ID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		return []Run{}, nil
	}

	rows, err := db.Query(`
		SELECT run_id, source_file, frequency_hz, sequences, total_pulses,
			repeats, pause_us, dry_run, outcome, transmits, air_time_us,
			warnings, error, started_at, finished_at
		FROM playback_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r      Run
			freq   int64
			air    int64
			dryRun int
		)
		if err := rows.Scan(
			&r.ID, &r.SourceFile, &freq, &r.Sequences, &r.TotalPulses,
			&r.Repeats, &r.PauseUs, &dryRun, &r.Outcome, &r.Transmits, &air,
			&r.Warnings, &r.Error, &r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.FrequencyHz = uint64(freq)
		r.AirTimeUs = uint64(air)
		r.DryRun = dryRun != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
