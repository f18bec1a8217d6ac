package eventdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewAppliesMigrations(t *testing.T) {
	db := newTestDB(t)
	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)

	// Reopening the same file must be a no-op, not a failure.
	path := filepath.Join(t.TempDir(), "reopen.db")
	first, err := New(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())
	second, err := New(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestRunRoundTrip(t *testing.T) {
	db := newTestDB(t)

	runID, err := db.BeginRun("hms_recon.dat", 942, "prune")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	require.NoError(t, db.RecordSelection(runID, Selection{
		EventID: "ev-1", Status: StatusSelected,
		TrackIndex: 0, NTracks: 3,
		Chi2PerNDoF: 1.2, XpTar: 0.01, YTar: 0.5, YpTar: -0.02, Delta: 3.4, P: 2.1,
		RejectCodes: []int{0, 21, 100},
	}))
	require.NoError(t, db.RecordSelection(runID, Selection{
		EventID: "ev-2", Status: StatusSelected,
		TrackIndex: 1, NTracks: 2, Chi2PerNDoF: 0.8, Delta: -1.4,
	}))
	require.NoError(t, db.RecordSelection(runID, Selection{
		EventID: "ev-3", Status: StatusNone, NTracks: 0,
	}))
	require.NoError(t, db.RecordSelection(runID, Selection{
		EventID: "ev-4", Status: StatusError, NTracks: 2,
	}))

	sum, err := db.Summary(runID)
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Events: 4, Selected: 2, None: 1, Errors: 1}, sum)

	deltas, err := db.SelectedDeltas(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{3.4, -1.4}, deltas)

	chi2, err := db.SelectedChi2(runID)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.2, 0.8}, chi2)
}

func TestSummaryScopedToRun(t *testing.T) {
	db := newTestDB(t)

	first, err := db.BeginRun("a.dat", 10, "chi2")
	require.NoError(t, err)
	second, err := db.BeginRun("b.dat", 20, "scin")
	require.NoError(t, err)

	require.NoError(t, db.RecordSelection(first, Selection{EventID: "e1", Status: StatusSelected}))
	require.NoError(t, db.RecordSelection(second, Selection{EventID: "e1", Status: StatusNone}))

	sum, err := db.Summary(first)
	require.NoError(t, err)
	assert.Equal(t, RunSummary{Events: 1, Selected: 1}, sum)
}

func TestLatestRun(t *testing.T) {
	db := newTestDB(t)

	_, err := db.BeginRun("old.dat", 1, "chi2")
	require.NoError(t, err)
	wantID, err := db.BeginRun("new.dat", 500, "scin")
	require.NoError(t, err)

	run, err := db.LatestRun()
	require.NoError(t, err)
	assert.Equal(t, wantID, run.ID)
	assert.Equal(t, "new.dat", run.MatrixFile)
	assert.Equal(t, 500, run.NTerms)
	assert.Equal(t, "scin", run.Method)
	assert.False(t, run.StartedAt.IsZero())
}

func TestLatestRunEmpty(t *testing.T) {
	db := newTestDB(t)
	_, err := db.LatestRun()
	assert.Error(t, err)
}
