// Package units provides shared constants and conversions for the
// detector and target coordinate systems.
//
// Focal-plane and target positions are exchanged in centimetres, angles
// in radians and momenta in GeV/c. The transport matrix operates on a
// metre-scaled input vector, so the conversions here sit on the boundary
// between the detector frame and the matrix evaluation.
package units

import "math"

// Conversion factors.
const (
	CmPerM     = 100.0
	MeVPerGeV  = 1000.0
	RadToDeg   = 180.0 / math.Pi
	DegToRad   = math.Pi / 180.0
	MradPerRad = 1000.0
)

// CmToM converts centimetres to metres.
func CmToM(cm float64) float64 { return cm / CmPerM }

// MToCm converts metres to centimetres.
func MToCm(m float64) float64 { return m * CmPerM }

// GeVToMeV converts GeV to MeV.
func GeVToMeV(gev float64) float64 { return gev * MeVPerGeV }

// MeVToGeV converts MeV to GeV.
func MeVToGeV(mev float64) float64 { return mev / MeVPerGeV }

// RadToMrad converts radians to milliradians.
func RadToMrad(rad float64) float64 { return rad * MradPerRad }

// MradToRad converts milliradians to radians.
func MradToRad(mrad float64) float64 { return mrad / MradPerRad }
