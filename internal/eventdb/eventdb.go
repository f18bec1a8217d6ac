// Package eventdb persists per-run golden-track selection results to
// sqlite for downstream reporting. One row per event records which
// track (if any) was selected and its target-frame quantities; per-run
// metadata ties results back to the matrix and strategy that produced
// them.
package eventdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle.
type DB struct {
	*sql.DB
}

// Event statuses.
const (
	StatusSelected = "selected"
	StatusNone     = "none"
	StatusError    = "error"
)

// New opens (creating if needed) a results database and brings its
// schema up to date.
func New(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results db: %w", err)
	}
	db := &DB{sqlDB}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Run is one analysis pass over an event stream.
type Run struct {
	ID         string
	StartedAt  time.Time
	MatrixFile string
	NTerms     int
	Method     string
}

// BeginRun registers a new run and returns its ID.
func (db *DB) BeginRun(matrixFile string, nTerms int, method string) (string, error) {
	id := uuid.NewString()
	_, err := db.Exec(
		`INSERT INTO runs (id, matrix_file, n_terms, method) VALUES (?, ?, ?, ?)`,
		id, matrixFile, nTerms, method,
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// Selection is the per-event outcome to record. For StatusNone and
// StatusError the kinematic fields are ignored.
type Selection struct {
	EventID     string
	Status      string
	TrackIndex  int
	NTracks     int
	Chi2PerNDoF float64
	XpTar       float64
	YTar        float64
	YpTar       float64
	Delta       float64
	P           float64
	RejectCodes []int
}

// RecordSelection stores one event's result under a run.
func (db *DB) RecordSelection(runID string, sel Selection) error {
	var codes any
	if sel.RejectCodes != nil {
		b, err := json.Marshal(sel.RejectCodes)
		if err != nil {
			return fmt.Errorf("marshal reject codes: %w", err)
		}
		codes = string(b)
	}
	_, err := db.Exec(`
		INSERT INTO selections (
			run_id, event_id, status, track_index, n_tracks,
			chi2_per_ndof, xptar, ytar, yptar, delta, p, reject_codes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, sel.EventID, sel.Status, sel.TrackIndex, sel.NTracks,
		sel.Chi2PerNDoF, sel.XpTar, sel.YTar, sel.YpTar, sel.Delta, sel.P, codes,
	)
	if err != nil {
		return fmt.Errorf("record selection: %w", err)
	}
	return nil
}

// RunSummary aggregates a run's event statuses.
type RunSummary struct {
	Events   int
	Selected int
	None     int
	Errors   int
}

// Summary returns the status counts for a run.
func (db *DB) Summary(runID string) (RunSummary, error) {
	rows, err := db.Query(
		`SELECT status, COUNT(*) FROM selections WHERE run_id = ? GROUP BY status`,
		runID,
	)
	if err != nil {
		return RunSummary{}, fmt.Errorf("run summary: %w", err)
	}
	defer rows.Close()

	var s RunSummary
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return RunSummary{}, fmt.Errorf("run summary: %w", err)
		}
		s.Events += n
		switch status {
		case StatusSelected:
			s.Selected = n
		case StatusNone:
			s.None = n
		case StatusError:
			s.Errors = n
		}
	}
	return s, rows.Err()
}

// SelectedDeltas returns the momentum deviations of every selected
// event in a run, in insertion order.
func (db *DB) SelectedDeltas(runID string) ([]float64, error) {
	return db.selectedColumn(runID, `SELECT delta FROM selections
		WHERE run_id = ? AND status = 'selected' ORDER BY rowid`)
}

// SelectedChi2 returns the chi2/ndof of every selected event in a run.
func (db *DB) SelectedChi2(runID string) ([]float64, error) {
	return db.selectedColumn(runID, `SELECT chi2_per_ndof FROM selections
		WHERE run_id = ? AND status = 'selected' ORDER BY rowid`)
}

func (db *DB) selectedColumn(runID, query string) ([]float64, error) {
	rows, err := db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("selected column: %w", err)
	}
	defer rows.Close()

	var vals []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("selected column: %w", err)
		}
		vals = append(vals, v)
	}
	return vals, rows.Err()
}

// LatestRun returns the most recently started run's metadata.
func (db *DB) LatestRun() (Run, error) {
	var r Run
	err := db.QueryRow(`SELECT id, started_at, matrix_file, n_terms, method
		FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`).
		Scan(&r.ID, &r.StartedAt, &r.MatrixFile, &r.NTerms, &r.Method)
	if err != nil {
		return Run{}, fmt.Errorf("latest run: %w", err)
	}
	return r, nil
}
