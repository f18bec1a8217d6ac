package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spectro-data/golden.report/internal/spectro"
)

func TestEmptyTuningConfigDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()

	if cfg.GetSortTracks() != true {
		t.Errorf("GetSortTracks() = %v, want true", cfg.GetSortTracks())
	}
	if cfg.GetStrictMatrix() != false {
		t.Errorf("GetStrictMatrix() = %v, want false", cfg.GetStrictMatrix())
	}
	if got := cfg.GetPartMass(); math.Abs(got-0.000510999) > 1e-12 {
		t.Errorf("GetPartMass() = %v, want electron mass", got)
	}
	if cfg.GetHodoNPlanes() != 4 {
		t.Errorf("GetHodoNPlanes() = %d, want 4", cfg.GetHodoNPlanes())
	}
	if cfg.GetScinPlaneX() != 2 {
		t.Errorf("GetScinPlaneX() = %d, want 2", cfg.GetScinPlaneX())
	}
	if cfg.GetScinPlaneY() != 3 {
		t.Errorf("GetScinPlaneY() = %d, want 3", cfg.GetScinPlaneY())
	}
	if cfg.Strategy() != spectro.StrategyChi2 {
		t.Errorf("Strategy() = %v, want chi2 default", cfg.Strategy())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("empty config should validate, got %v", err)
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadTuningConfig(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
  "pcentral": 2.0,
  "pcentral_offset": 50.0,
  "partmass": 0.1395,
  "sel_using_prune": true,
  "prune_xp": 0.5,
  "sort_tracks": false,
  "scin_plane_x": 0,
  "scin_plane_y": 1
}`)

	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatalf("LoadTuningConfig() error = %v", err)
	}
	if got := cfg.EffectivePCentral(); math.Abs(got-3.0) > 1e-12 {
		t.Errorf("EffectivePCentral() = %v, want 3.0", got)
	}
	if cfg.Strategy() != spectro.StrategyPrune {
		t.Errorf("Strategy() = %v, want prune", cfg.Strategy())
	}
	if cfg.GetSortTracks() != false {
		t.Errorf("GetSortTracks() = %v, want false", cfg.GetSortTracks())
	}
	// Fields the file omits keep their defaults.
	if cfg.GetHodoNPlanes() != 4 {
		t.Errorf("GetHodoNPlanes() = %d, want default 4", cfg.GetHodoNPlanes())
	}

	sel := cfg.BuildSelectorConfig()
	if sel.Strategy != spectro.StrategyPrune {
		t.Errorf("selector strategy = %v, want prune", sel.Strategy)
	}
	if sel.PartMass != 0.1395 {
		t.Errorf("selector PartMass = %v, want 0.1395", sel.PartMass)
	}
	if sel.PruneXp != 0.5 {
		t.Errorf("selector PruneXp = %v, want 0.5", sel.PruneXp)
	}
	// Unset windows default wide open.
	if sel.DeDxMin >= 0 || sel.DeDxMax <= 1e9 {
		t.Errorf("unset dedx window should be wide open, got [%v,%v]", sel.DeDxMin, sel.DeDxMax)
	}
}

func TestLoadTuningConfigRejectsExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `{}`)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected extension error for .yaml config")
	}
}

func TestLoadTuningConfigMissingFile(t *testing.T) {
	if _, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadTuningConfigBadJSON(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"pcentral": `)
	if _, err := LoadTuningConfig(path); err == nil {
		t.Fatal("expected parse error for truncated JSON")
	}
}

func TestValidateRejectsBothStrategies(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
  "sel_using_scin": true,
  "sel_using_prune": true
}`)
	_, err := LoadTuningConfig(path)
	if err == nil {
		t.Fatal("expected mutual-exclusion error")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error = %v, want mutual-exclusion message", err)
	}
}

func TestValidateRanges(t *testing.T) {
	neg := -1.0
	zero := 0.0
	lo, hi := 2.0, 1.0
	badPlane := 9

	cases := []struct {
		name string
		cfg  TuningConfig
	}{
		{"nonpositive pcentral", TuningConfig{PCentral: &zero}},
		{"negative partmass", TuningConfig{PartMass: &neg}},
		{"inverted dedx window", TuningConfig{SelDeDxMin: &lo, SelDeDxMax: &hi}},
		{"inverted beta window", TuningConfig{SelBetaMin: &lo, SelBetaMax: &hi}},
		{"inverted energy window", TuningConfig{SelEtMin: &lo, SelEtMax: &hi}},
		{"matching plane outside hodoscope", TuningConfig{ScinPlaneX: &badPlane}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestEffectiveThetaLab(t *testing.T) {
	theta := 15.0
	offset := math.Pi / 180 // one degree, in radians
	cfg := TuningConfig{ThetaLab: &theta, ThetaCentralOffset: &offset}
	if got := cfg.EffectiveThetaLab(); math.Abs(got-16.0) > 1e-9 {
		t.Errorf("EffectiveThetaLab() = %v, want 16.0", got)
	}
}

func TestBuildReconstructor(t *testing.T) {
	p := 4.0
	off := -25.0
	zf := 1.5
	cfg := TuningConfig{PCentral: &p, PCentralOffset: &off, ZTrueFocus: &zf}
	r := cfg.BuildReconstructor(&spectro.Matrix{})
	if math.Abs(r.PCentral-3.0) > 1e-12 {
		t.Errorf("reconstructor PCentral = %v, want 3.0", r.PCentral)
	}
	if r.ZTrueFocus != 1.5 {
		t.Errorf("reconstructor ZTrueFocus = %v, want 1.5", r.ZTrueFocus)
	}
}
