package events

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spectro-data/golden.report/internal/spectro"
)

var _ spectro.HodoscopeView = (*HodoscopeSnapshot)(nil)

func TestReaderNext(t *testing.T) {
	stream := `
# run 1042, shift B
{"id":"ev-1","tracks":[{"x":1.5,"ndof":4,"chi2":2.0}]}

{"id":"ev-2","tracks":[],"hodoscope":{"start_time":38.5,"planes":[{"n_paddles":16,"center":20,"spacing":2,"hits":[7,8]}]}}
`
	r := NewReader(strings.NewReader(stream))

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.ID != "ev-1" {
		t.Errorf("ID = %q, want ev-1", ev.ID)
	}
	if len(ev.Tracks) != 1 || ev.Tracks[0].X != 1.5 || ev.Tracks[0].NDoF != 4 {
		t.Errorf("unexpected tracks: %+v", ev.Tracks)
	}

	ev, err = r.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if ev.ID != "ev-2" {
		t.Errorf("ID = %q, want ev-2", ev.ID)
	}
	if ev.Hodoscope == nil {
		t.Fatal("expected hodoscope snapshot")
	}
	if got := ev.Hodoscope.StartTimeCenter(); got != 38.5 {
		t.Errorf("StartTimeCenter() = %v, want 38.5", got)
	}
	if got := ev.Hodoscope.NPaddles(0); got != 16 {
		t.Errorf("NPaddles(0) = %d, want 16", got)
	}
	if got := ev.Hodoscope.HitPaddles(0); len(got) != 2 || got[0] != 7 {
		t.Errorf("HitPaddles(0) = %v, want [7 8]", got)
	}

	if _, err = r.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next() at end = %v, want io.EOF", err)
	}
}

func TestReaderBadLine(t *testing.T) {
	r := NewReader(strings.NewReader(`{"id":"ok"}` + "\n" + `{broken`))
	if _, err := r.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	_, err := r.Next()
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want line number context", err)
	}
}

func TestSnapshotOutOfRangePlanes(t *testing.T) {
	h := &HodoscopeSnapshot{Planes: []PlaneSnapshot{{NPaddles: 8, Center: 10, Spacing: 1}}}
	if h.NPaddles(3) != 0 {
		t.Error("out-of-range plane should read empty")
	}
	if h.PlaneCenter(-1) != 0 || h.PlaneSpacing(5) != 0 {
		t.Error("out-of-range geometry should read zero")
	}
	if h.HitPaddles(2) != nil {
		t.Error("out-of-range hits should be nil")
	}
}
