// Package events supplies spectrometer events to the analysis pipeline.
//
// Events arrive as JSON Lines: one event object per line, carrying the
// candidate tracks from the upstream focal-plane fitter and a snapshot
// of the hodoscope state for the event. The package owns no detector
// logic; it only decodes and hands the core read-only views.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spectro-data/golden.report/internal/spectro"
)

// Event is one trigger's worth of data.
type Event struct {
	ID        string             `json:"id"`
	Tracks    []*spectro.Track   `json:"tracks"`
	Hodoscope *HodoscopeSnapshot `json:"hodoscope"`
}

// HodoscopeSnapshot is the per-event hodoscope state: plane geometry
// and the paddles that fired. It implements spectro.HodoscopeView.
type HodoscopeSnapshot struct {
	StartTime float64         `json:"start_time"` // reference start time (ns)
	Planes    []PlaneSnapshot `json:"planes"`
}

// PlaneSnapshot is one hodoscope plane.
type PlaneSnapshot struct {
	NPaddles int     `json:"n_paddles"`
	Center   float64 `json:"center"`  // cm
	Spacing  float64 `json:"spacing"` // cm
	Hits     []int   `json:"hits"`    // zero-based paddle indices with hits
}

// NPaddles implements spectro.HodoscopeView. Out-of-range planes read
// as empty.
func (h *HodoscopeSnapshot) NPaddles(plane int) int {
	if plane < 0 || plane >= len(h.Planes) {
		return 0
	}
	return h.Planes[plane].NPaddles
}

// PlaneCenter implements spectro.HodoscopeView.
func (h *HodoscopeSnapshot) PlaneCenter(plane int) float64 {
	if plane < 0 || plane >= len(h.Planes) {
		return 0
	}
	return h.Planes[plane].Center
}

// PlaneSpacing implements spectro.HodoscopeView.
func (h *HodoscopeSnapshot) PlaneSpacing(plane int) float64 {
	if plane < 0 || plane >= len(h.Planes) {
		return 0
	}
	return h.Planes[plane].Spacing
}

// HitPaddles implements spectro.HodoscopeView.
func (h *HodoscopeSnapshot) HitPaddles(plane int) []int {
	if plane < 0 || plane >= len(h.Planes) {
		return nil
	}
	return h.Planes[plane].Hits
}

// StartTimeCenter implements spectro.HodoscopeView.
func (h *HodoscopeSnapshot) StartTimeCenter() float64 { return h.StartTime }

// Reader streams events from a JSON Lines source. Blank lines and #
// comment lines are skipped.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

// NewReader wraps an event stream.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	// Events with many tracks can exceed the default token size.
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{sc: sc}
}

// Next returns the next event, or io.EOF when the stream ends.
func (r *Reader) Next() (*Event, error) {
	for r.sc.Scan() {
		r.line++
		text := strings.TrimSpace(r.sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return nil, fmt.Errorf("events: line %d: %w", r.line, err)
		}
		return &ev, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
