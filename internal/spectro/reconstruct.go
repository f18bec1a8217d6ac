package spectro

import (
	"github.com/spectro-data/golden.report/internal/units"
)

// Reconstructor maps focal-plane track parameters to target-frame
// quantities through a shared, read-only transport matrix. All offsets
// and slopes come from the tuning config; the matrix is loaded once at
// setup. Reconstruction is a pure function of the track's focal-plane
// inputs and these constants, so a Reconstructor may be used from
// multiple goroutines once built.
type Reconstructor struct {
	Matrix *Matrix

	// Focal-plane corrections.
	AngSlopeX  float64
	AngSlopeY  float64
	AngOffsetX float64
	AngOffsetY float64
	DetOffsetX float64
	DetOffsetY float64
	ZTrueFocus float64

	// Target-frame offsets. Historical naming quirk preserved from the
	// Fortran-era calibrations: the dispersive-angle (xp) offset is the
	// "phi" offset and the non-dispersive-angle (yp) offset is the
	// "theta" offset.
	ThetaOffset float64
	PhiOffset   float64
	DeltaOffset float64 // percent

	// Central momentum (GeV/c), already including its percent offset.
	PCentral float64
}

// ReconstructTarget evaluates the transport map for one track and
// writes the target-frame quantities back into it. With an empty matrix
// all four channel sums are zero, so delta reduces to the configured
// offset alone. There is no failure path.
func (r *Reconstructor) ReconstructTarget(t *Track) {
	// Metre-scaled, focus-corrected focal-plane vector. The fifth input
	// is the beam y position from the raster; no raster is wired in, so
	// it is fixed at zero.
	const beamY = 0.0
	var in [5]float64
	in[0] = units.CmToM(t.X) + r.ZTrueFocus*t.Theta + r.DetOffsetX
	in[1] = t.Theta + r.AngOffsetX
	in[2] = units.CmToM(t.Y) + r.ZTrueFocus*t.Phi + r.DetOffsetY
	in[3] = t.Phi + r.AngOffsetY
	in[4] = -units.CmToM(beamY)

	// Focal-plane rotation correction.
	var rot [5]float64
	rot[0] = in[0]
	rot[1] = in[1] + in[0]*r.AngSlopeX
	rot[2] = in[2]
	rot[3] = in[3] + in[2]*r.AngSlopeY
	rot[4] = in[4]

	// Polynomial sums, one per output channel. Exponents are small
	// non-negative integers; a zero exponent skips its input.
	var sum [4]float64
	for _, term := range r.Matrix.Terms {
		p := 1.0
		for j := 0; j < 5; j++ {
			for e := 0; e < term.Exp[j]; e++ {
				p *= rot[j]
			}
		}
		for k := 0; k < 4; k++ {
			sum[k] += p * term.Coeff[k]
		}
	}

	t.XpTar = sum[0] + r.PhiOffset
	t.YTar = units.MToCm(sum[1])
	t.YpTar = sum[2] + r.ThetaOffset
	t.Delta = sum[3]*100.0 + r.DeltaOffset
	t.P = r.PCentral * (1.0 + t.Delta/100.0)
}

// ReconstructAll runs ReconstructTarget over an event's track set,
// skipping absent entries (the selector reports those as a DataError).
func (r *Reconstructor) ReconstructAll(tracks []*Track) {
	for _, t := range tracks {
		if t != nil {
			r.ReconstructTarget(t)
		}
	}
}
