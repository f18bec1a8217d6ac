// Package spectro implements target-frame reconstruction and golden-track
// selection for spectrometer events.
//
// Candidate tracks are produced upstream by the focal-plane fitter. Per
// event, the Reconstructor maps each track's focal-plane parameters to
// target-frame quantities through a polynomial transport matrix, and the
// Selector then picks at most one "golden" track to represent the event.
package spectro

import "fmt"

// Track is one candidate trajectory for an event. The focal-plane
// parameters and the quality block are supplied by the upstream fitter
// and are read-only here; the target-frame block is filled in by
// Reconstructor.ReconstructTarget.
type Track struct {
	// Focal-plane parameters.
	X     float64 `json:"x"`     // dispersive position (cm)
	Theta float64 `json:"theta"` // dispersive slope dx/dz (rad)
	Y     float64 `json:"y"`     // non-dispersive position (cm)
	Phi   float64 `json:"phi"`   // non-dispersive slope dy/dz (rad)

	// Fit quality, particle ID and timing from upstream detectors.
	NDoF       int     `json:"ndof"`
	Chi2       float64 `json:"chi2"`
	DeDx       float64 `json:"dedx"`
	Beta       float64 `json:"beta"`
	Energy     float64 `json:"energy"`
	NPMT       int     `json:"npmt"`
	BetaChi2   float64 `json:"beta_chi2"`
	FPTime     float64 `json:"fp_time"`
	GoodPlaneX bool    `json:"good_plane_x"` // matching X hodoscope plane had a good time
	GoodPlaneY bool    `json:"good_plane_y"`

	// Target-frame quantities, set by reconstruction.
	XpTar float64 `json:"xptar"` // dispersive angle at target (rad)
	YTar  float64 `json:"ytar"`  // horizontal position at target (cm)
	YpTar float64 `json:"yptar"` // non-dispersive angle at target (rad)
	Delta float64 `json:"delta"` // momentum deviation from central (percent)
	P     float64 `json:"p"`     // momentum (GeV/c)
}

// Chi2PerNDoF returns the track's goodness-of-fit per degree of freedom.
// A track with zero degrees of freedom yields +Inf (or NaN for zero
// chi-square), which naturally loses every ranking comparison.
func (t *Track) Chi2PerNDoF() float64 {
	return t.Chi2 / float64(t.NDoF)
}

// Method identifies which selection strategy produced a result.
type Method string

const (
	MethodChi2  Method = "chi2"  // minimum chi2/ndof, optionally sorted
	MethodScin  Method = "scin"  // scintillator-consistency ranking
	MethodPrune Method = "prune" // sequential multi-criteria pruning
)

// SelectionResult reports the outcome of golden-track selection for one
// event. Index is the position of the chosen track in the input slice,
// or -1 when no track was selected. RejectCodes is populated only by the
// prune strategy: one accumulated code per input track, summing the
// weights of every prune pass the track failed.
type SelectionResult struct {
	Index       int
	Method      Method
	RejectCodes []int
}

// None reports whether no track was selected.
func (r SelectionResult) None() bool { return r.Index < 0 }

// InitError is a fatal setup failure: a missing collaborator, an
// unreadable transport matrix file, or a matrix file truncated before
// its closing marker. A run must not start after an InitError.
type InitError struct {
	Op  string
	Err error
}

func (e *InitError) Error() string { return fmt.Sprintf("spectro: %s: %v", e.Op, e.Err) }

func (e *InitError) Unwrap() error { return e.Err }

// DataError is a recoverable per-event failure: the event's trajectory
// set contained an absent entry where one was expected. The event's
// selection is abandoned but the run continues.
type DataError struct {
	Index int
	Msg   string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("spectro: track %d: %s", e.Index, e.Msg)
}
