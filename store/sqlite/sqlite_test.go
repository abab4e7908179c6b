package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwage/attendance-engine/engine"
	"github.com/shiftwage/attendance-engine/logbook"
	"github.com/shiftwage/attendance-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot() logbook.Snapshot {
	return logbook.Snapshot{
		Logs: map[string][]logbook.AttendanceLog{
			"2025-03-10": {{
				ID: 1, Date: "2025-03-10", Start: "09:00", End: "17:00", TagID: 7,
				DailyWage:   engine.MustDecimal("8000"),
				WorkedHours: engine.MustDecimal("8"),
			}},
		},
		Tags: []engine.RateProfile{engine.SanitizeProfile(engine.RateProfile{
			ID: 7, Name: "cafe", BaseRate: engine.MustDecimal("1000"),
		})},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sawa", sampleSnapshot()))

	snap, err := s.Load(ctx, "sawa")
	require.NoError(t, err)
	require.Len(t, snap.Logs["2025-03-10"], 1)
	log := snap.Logs["2025-03-10"][0]
	assert.True(t, log.DailyWage.Equal(engine.MustDecimal("8000")))
	require.Len(t, snap.Tags, 1)
	assert.True(t, snap.Tags[0].BaseRate.Equal(engine.MustDecimal("1000")))
}

func TestLoad_UnknownUser_ReturnsEmptySnapshot(t *testing.T) {
	s := newTestStore(t)

	snap, err := s.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, snap.Logs)
	assert.Empty(t, snap.Tags)
}

func TestSave_Overwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "sawa", sampleSnapshot()))
	require.NoError(t, s.Save(ctx, "sawa", logbook.EmptySnapshot()))

	snap, err := s.Load(ctx, "sawa")
	require.NoError(t, err)
	assert.Empty(t, snap.Logs, "last writer wins")

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sawa"}, users, "overwrite keeps a single row")
}

func TestListUsers_Sorted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"yuki", "sawa", "aoi"} {
		require.NoError(t, s.Save(ctx, name, sampleSnapshot()))
	}

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"aoi", "sawa", "yuki"}, users)
}
