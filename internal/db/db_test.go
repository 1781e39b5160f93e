package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_AppliesMigrations(t *testing.T) {
	db := newTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// running again is a no-op
	require.NoError(t, db.MigrateUp())
}

func TestNewDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	_, err = db.RecordRun(Run{SourceFile: "a.sub", Outcome: "completed", StartedAt: time.Now(), FinishedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.RecentRuns(10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordRun_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	start := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := db.RecordRun(Run{
		SourceFile:  "garage.sub",
		FrequencyHz: 433920000,
		Sequences:   1,
		TotalPulses: 50,
		Repeats:     3,
		PauseUs:     10000,
		DryRun:      true,
		Outcome:     "completed",
		Transmits:   3,
		AirTimeUs:   123456,
		Warnings:    2,
		StartedAt:   start,
		FinishedAt:  start.Add(2 * time.Second),
	})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	runs, err := db.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "garage.sub", got.SourceFile)
	assert.Equal(t, uint64(433920000), got.FrequencyHz)
	assert.Equal(t, 50, got.TotalPulses)
	assert.Equal(t, int64(10000), got.PauseUs)
	assert.True(t, got.DryRun)
	assert.Equal(t, uint64(123456), got.AirTimeUs)
	assert.Equal(t, 2, got.Warnings)
	assert.True(t, start.Equal(got.StartedAt))
	assert.True(t, start.Add(2*time.Second).Equal(got.FinishedAt))
}

func TestRecordRun_Validation(t *testing.T) {
	db := newTestDB(t)

	_, err := db.RecordRun(Run{ID: "not-a-uuid", Outcome: "completed"})
	assert.Error(t, err)

	_, err = db.RecordRun(Run{SourceFile: "x.sub"})
	assert.Error(t, err)

	id := NewRunID()
	got, err := db.RecordRun(Run{ID: id, Outcome: "failed", Error: "bridge error"})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = db.RecordRun(Run{ID: id, Outcome: "failed"})
	assert.Error(t, err, "duplicate id must be rejected")
}

func TestRecentRuns_OrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		_, err := db.RecordRun(Run{
			SourceFile: "f.sub",
			Outcome:    "completed",
			Transmits:  i,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	runs, err := db.RecentRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].Transmits)
	assert.Equal(t, 2, runs[1].Transmits)

	runs, err = db.RecentRuns(0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
