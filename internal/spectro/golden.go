package spectro

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Strategy selects which golden-track policy a Selector runs. Exactly
// one strategy is active per run; the combination of both the
// scintillator and prune flags is rejected at config validation.
type Strategy int

const (
	// StrategyChi2 ranks tracks by chi2/ndof with a stable sort and
	// takes the first. With sorting disabled it keeps the upstream
	// geometric-match order and takes the first entry as-is.
	StrategyChi2 Strategy = iota
	// StrategyScin restricts to tracks passing the particle-ID windows,
	// then ranks by hodoscope paddle consistency before chi2/ndof.
	StrategyScin
	// StrategyPrune applies the ordered prune passes, each only when it
	// leaves at least one survivor, then takes the best chi2/ndof
	// survivor.
	StrategyPrune
)

func (s Strategy) method() Method {
	switch s {
	case StrategyScin:
		return MethodScin
	case StrategyPrune:
		return MethodPrune
	default:
		return MethodChi2
	}
}

// Hard floors for the prune thresholds. A configured threshold below
// its floor is widened to the floor, so a track can never be
// over-constrained below the minimum tolerance.
const (
	pruneFloorXp      = 0.08 // rad
	pruneFloorYp      = 0.04 // rad
	pruneFloorYtar    = 4.0  // cm
	pruneFloorDelta   = 13.0 // percent
	pruneFloorBeta    = 0.1
	pruneFloorDf      = 1.0
	pruneFloorChiBeta = 2.0
	pruneFloorFpTime  = 5.0 // ns
	pruneFloorNPMT    = 6.0

	// Beta chi-square must additionally sit above this floor for a
	// track to count as having a measured beta at all.
	betaChi2Floor = 0.01
)

// Reject-code weights, one per prune pass, in pass order. They only
// accumulate diagnostics; ranking never reads them.
const (
	rejectXp      = 1
	rejectYp      = 2
	rejectYtar    = 10
	rejectDelta   = 20
	rejectBeta    = 100
	rejectDf      = 200
	rejectNPMT    = 100000
	rejectChiBeta = 1000
	rejectFpTime  = 2000
	rejectPlaneY  = 10000
	rejectPlaneX  = 20000
)

// SelectorConfig carries the strategy choice plus the thresholds the
// strategies read. Zero-value windows admit nothing, so configs should
// come from TuningConfig which fills in the operational defaults.
type SelectorConfig struct {
	Strategy   Strategy
	SortTracks bool

	// Particle rest mass (GeV/c²), for the computed beta in the prune
	// beta pass.
	PartMass float64

	// Scintillator-strategy admissibility windows.
	NDoFMin   float64
	DeDxMin   float64
	DeDxMax   float64
	BetaMin   float64
	BetaMax   float64
	EnergyMin float64
	EnergyMax float64

	// Prune thresholds; each is clamped to its hard floor before use.
	PruneXp      float64
	PruneYp      float64
	PruneYtar    float64
	PruneDelta   float64
	PruneBeta    float64
	PruneDf      float64
	PruneChiBeta float64
	PruneFpTime  float64
	PruneNPMT    float64
}

// Selector chooses at most one golden track per event. It is stateless
// across events; all per-event scratch lives in the Select call.
type Selector struct {
	cfg     SelectorConfig
	matcher *ScintMatcher
	hodo    HodoscopeView
}

// NewSelector builds a Selector. The scintillator and prune strategies
// both consult the hodoscope (paddle matching and the start-time
// reference respectively), so for those a matcher with a non-nil view is
// a hard requirement; its absence is an InitError.
func NewSelector(cfg SelectorConfig, matcher *ScintMatcher) (*Selector, error) {
	s := &Selector{cfg: cfg, matcher: matcher}
	if cfg.Strategy == StrategyScin || cfg.Strategy == StrategyPrune {
		if matcher == nil || matcher.Hodo == nil {
			return nil, &InitError{
				Op:  "build selector",
				Err: errors.New("hodoscope view required but not provided"),
			}
		}
		s.hodo = matcher.Hodo
	}
	return s, nil
}

// Select runs the configured strategy over one event's track set and
// returns the selection. The input slice is externally owned and never
// reordered or mutated. An absent entry yields a *DataError and no
// selection for the event.
func (s *Selector) Select(tracks []*Track) (SelectionResult, error) {
	none := SelectionResult{Index: -1, Method: s.cfg.Strategy.method()}
	if len(tracks) == 0 {
		return none, nil
	}
	for i, t := range tracks {
		if t == nil {
			return none, &DataError{Index: i, Msg: "absent track in event set"}
		}
	}
	switch s.cfg.Strategy {
	case StrategyScin:
		return s.selectScin(tracks)
	case StrategyPrune:
		return s.selectPrune(tracks)
	default:
		return s.selectChi2(tracks)
	}
}

// selectChi2 implements the default strategy: a stable chi2/ndof sort
// of a local index permutation (ties keep upstream order), first entry
// wins. With sorting disabled the upstream order stands.
func (s *Selector) selectChi2(tracks []*Track) (SelectionResult, error) {
	order := make([]int, len(tracks))
	for i := range order {
		order[i] = i
	}
	if s.cfg.SortTracks {
		sort.SliceStable(order, func(i, j int) bool {
			return tracks[order[i]].Chi2PerNDoF() < tracks[order[j]].Chi2PerNDoF()
		})
	}
	return SelectionResult{Index: order[0], Method: MethodChi2}, nil
}

// selectScin implements the scintillator-consistency strategy. The
// running-minimum comparison chain below is deliberately literal: the
// <= / < structure decides how exact floating-point ties resolve, and
// downstream calibrations depend on that behaviour.
func (s *Selector) selectScin(tracks []*Track) (SelectionResult, error) {
	const (
		bigChi2     = 1e10
		bigMismatch = 100.0
	)
	chi2Min := bigChi2
	y2dMin := bigMismatch
	x2dMin := bigMismatch
	good := -1

	for i, t := range tracks {
		if float64(t.NDoF) <= s.cfg.NDoFMin {
			continue
		}
		chi2PerDeg := t.Chi2PerNDoF()
		if t.DeDx <= s.cfg.DeDxMin || t.DeDx >= s.cfg.DeDxMax ||
			t.Beta <= s.cfg.BetaMin || t.Beta >= s.cfg.BetaMax ||
			t.Energy <= s.cfg.EnergyMin || t.Energy >= s.cfg.EnergyMax {
			continue
		}
		y2d := s.matcher.YMismatch(t, len(tracks))
		x2d := s.matcher.XMismatch(t, len(tracks))
		if y2d <= y2dMin {
			if y2d < y2dMin {
				x2dMin = bigMismatch
				chi2Min = bigChi2
			}
			if x2d <= x2dMin {
				if x2d < x2dMin {
					chi2Min = bigChi2
				}
				if chi2PerDeg < chi2Min {
					good = i
					y2dMin = y2d
					x2dMin = x2d
					chi2Min = chi2PerDeg
				}
			}
		}
	}

	if good < 0 {
		// Nothing admissible: fall back to plain chi2/ndof ranking over
		// the whole set, the same rule as the default strategy but
		// without reordering anything.
		best := math.Inf(1)
		for i, t := range tracks {
			if c := t.Chi2PerNDoF(); good < 0 || c < best {
				good = i
				best = c
			}
		}
	}
	return SelectionResult{Index: good, Method: MethodScin}, nil
}

// prunePass applies one filter predicate under the monotonic-safety
// rule: only if at least one surviving track passes does the pass mark
// failures, and every failing track (surviving or not) accumulates the
// pass's reject weight.
func prunePass(tracks []*Track, keep []bool, reject []int, weight int, pass func(*Track) bool) {
	nGood := 0
	for i, t := range tracks {
		if keep[i] && pass(t) {
			nGood++
		}
	}
	if nGood == 0 {
		return
	}
	for i, t := range tracks {
		if !pass(t) {
			keep[i] = false
			reject[i] += weight
		}
	}
}

// selectPrune implements the pruning strategy: the ordered passes below,
// then best chi2/ndof among survivors.
func (s *Selector) selectPrune(tracks []*Track) (SelectionResult, error) {
	xp := math.Max(pruneFloorXp, s.cfg.PruneXp)
	yp := math.Max(pruneFloorYp, s.cfg.PruneYp)
	ytar := math.Max(pruneFloorYtar, s.cfg.PruneYtar)
	delta := math.Max(pruneFloorDelta, s.cfg.PruneDelta)
	beta := math.Max(pruneFloorBeta, s.cfg.PruneBeta)
	df := math.Max(pruneFloorDf, s.cfg.PruneDf)
	chiBeta := math.Max(pruneFloorChiBeta, s.cfg.PruneChiBeta)
	fpTime := math.Max(pruneFloorFpTime, s.cfg.PruneFpTime)
	npmt := math.Max(pruneFloorNPMT, s.cfg.PruneNPMT)
	mass := s.cfg.PartMass
	startTime := s.hodo.StartTimeCenter()

	keep := make([]bool, len(tracks))
	for i := range keep {
		keep[i] = true
	}
	reject := make([]int, len(tracks))

	prunePass(tracks, keep, reject, rejectXp, func(t *Track) bool {
		return math.Abs(t.XpTar) < xp
	})
	prunePass(tracks, keep, reject, rejectYp, func(t *Track) bool {
		return math.Abs(t.YpTar) < yp
	})
	prunePass(tracks, keep, reject, rejectYtar, func(t *Track) bool {
		return math.Abs(t.YTar) < ytar
	})
	prunePass(tracks, keep, reject, rejectDelta, func(t *Track) bool {
		return math.Abs(t.Delta) < delta
	})
	prunePass(tracks, keep, reject, rejectBeta, func(t *Track) bool {
		return math.Abs(t.Beta-computedBeta(t.P, mass)) < beta
	})
	prunePass(tracks, keep, reject, rejectDf, func(t *Track) bool {
		return float64(t.NDoF) >= df
	})
	prunePass(tracks, keep, reject, rejectNPMT, func(t *Track) bool {
		return float64(t.NPMT) >= npmt
	})
	prunePass(tracks, keep, reject, rejectChiBeta, func(t *Track) bool {
		return t.BetaChi2 > betaChi2Floor && t.BetaChi2 < chiBeta
	})
	prunePass(tracks, keep, reject, rejectFpTime, func(t *Track) bool {
		return math.Abs(t.FPTime-startTime) < fpTime
	})
	prunePass(tracks, keep, reject, rejectPlaneY, func(t *Track) bool {
		return t.GoodPlaneY
	})
	prunePass(tracks, keep, reject, rejectPlaneX, func(t *Track) bool {
		return t.GoodPlaneX
	})

	good := -1
	best := math.Inf(1)
	for i, t := range tracks {
		if !keep[i] {
			continue
		}
		if c := t.Chi2PerNDoF(); good < 0 || c < best {
			good = i
			best = c
		}
	}
	if good < 0 {
		// Each pass only fires when it leaves a survivor, so an empty
		// surviving set cannot happen; report rather than pick blindly.
		return SelectionResult{Index: -1, Method: MethodPrune, RejectCodes: reject},
			fmt.Errorf("spectro: prune left no surviving track of %d", len(tracks))
	}
	return SelectionResult{Index: good, Method: MethodPrune, RejectCodes: reject}, nil
}

// computedBeta is the velocity fraction a track of momentum p and rest
// mass m should have.
func computedBeta(p, mass float64) float64 {
	return p / math.Sqrt(p*p+mass*mass)
}
