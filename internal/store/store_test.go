package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLog(t *testing.T) *ActionLog {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "actions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestActionLog_RecordAndRecent(t *testing.T) {
	s := openTestLog(t)

	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	s.Record(Entry{ID: "a1", Action: "fly_to", Success: true, LatencyMs: 12, CreatedAt: base})
	s.Record(Entry{ID: "a2", Action: "add_marker", Success: true, LatencyMs: 3, CreatedAt: base.Add(time.Minute)})
	s.Record(Entry{ID: "a3", Action: "remove_marker", Success: false, Error: "Marker m1 not found", LatencyMs: 1, CreatedAt: base.Add(2 * time.Minute)})

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.Equal(t, "a3", entries[0].ID)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "Marker m1 not found", entries[0].Error)
	assert.Equal(t, "a1", entries[2].ID)
	assert.True(t, entries[2].Success)
	assert.Equal(t, base, entries[2].CreatedAt)
}

func TestActionLog_RecentLimit(t *testing.T) {
	s := openTestLog(t)
	for i := 0; i < 5; i++ {
		s.Record(Entry{ID: "x", Action: "zoom_in", Success: true, CreatedAt: time.Now()})
	}

	entries, err := s.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestActionLog_Prune(t *testing.T) {
	s := openTestLog(t)

	old := time.Now().Add(-48 * time.Hour)
	s.Record(Entry{ID: "old", Action: "fly_to", Success: true, CreatedAt: old})
	s.Record(Entry{ID: "new", Action: "fly_to", Success: true, CreatedAt: time.Now()})

	removed, err := s.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	entries, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].ID)
}

func TestActionLog_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.db")

	s, err := Open(path)
	require.NoError(t, err)
	s.Record(Entry{ID: "persisted", Action: "set_weather", Success: true, CreatedAt: time.Now()})
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "persisted", entries[0].ID)
}
