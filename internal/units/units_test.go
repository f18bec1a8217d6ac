package units

import (
	"math"
	"testing"
)

func TestLengthConversions(t *testing.T) {
	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"250 cm to m", CmToM(250), 2.5},
		{"2.5 m to cm", MToCm(2.5), 250},
		{"round trip", MToCm(CmToM(37.2)), 37.2},
		{"zero", CmToM(0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-12 {
				t.Errorf("got %v, want %v", tt.got, tt.expected)
			}
		})
	}
}

func TestEnergyConversions(t *testing.T) {
	if got := GeVToMeV(2.2); math.Abs(got-2200) > 1e-9 {
		t.Errorf("GeVToMeV(2.2) = %v, want 2200", got)
	}
	if got := MeVToGeV(511); math.Abs(got-0.511) > 1e-12 {
		t.Errorf("MeVToGeV(511) = %v, want 0.511", got)
	}
}

func TestAngleConversions(t *testing.T) {
	if got := RadToMrad(0.025); math.Abs(got-25) > 1e-12 {
		t.Errorf("RadToMrad(0.025) = %v, want 25", got)
	}
	if got := MradToRad(25); math.Abs(got-0.025) > 1e-12 {
		t.Errorf("MradToRad(25) = %v, want 0.025", got)
	}
	if got := math.Pi * RadToDeg; math.Abs(got-180) > 1e-9 {
		t.Errorf("pi rad = %v deg, want 180", got)
	}
	if got := 90 * DegToRad; math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("90 deg = %v rad, want pi/2", got)
	}
}
