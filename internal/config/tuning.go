// Package config loads and validates the spectrometer tuning file.
//
// The tuning file is JSON with every field optional; the Get* accessors
// fall back to operational defaults for anything the file leaves out, so
// partial configs are safe. Builder methods materialise the core types
// (Reconstructor, SelectorConfig, ScintMatcher) from a validated config.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spectro-data/golden.report/internal/spectro"
	"github.com/spectro-data/golden.report/internal/units"
)

// TuningConfig represents the root tuning parameters for one run.
// Pointer fields distinguish "not set" from an explicit zero.
type TuningConfig struct {
	// Transport matrix
	MatrixFile   *string `json:"matrix_file,omitempty"`
	StrictMatrix *bool   `json:"strict_matrix,omitempty"`

	// Kinematics
	PCentral           *float64 `json:"pcentral,omitempty"`            // GeV/c
	PCentralOffset     *float64 `json:"pcentral_offset,omitempty"`     // percent
	ThetaLab           *float64 `json:"theta_lab,omitempty"`           // deg
	ThetaCentralOffset *float64 `json:"thetacentral_offset,omitempty"` // rad
	PartMass           *float64 `json:"partmass,omitempty"`            // GeV/c²

	// Target-frame offsets
	ThetaOffset *float64 `json:"theta_offset,omitempty"` // rad, applied to yptar
	PhiOffset   *float64 `json:"phi_offset,omitempty"`   // rad, applied to xptar
	DeltaOffset *float64 `json:"delta_offset,omitempty"` // percent

	// Focal-plane corrections
	AngSlopeX  *float64 `json:"ang_slope_x,omitempty"`
	AngSlopeY  *float64 `json:"ang_slope_y,omitempty"`
	AngOffsetX *float64 `json:"ang_offset_x,omitempty"`
	AngOffsetY *float64 `json:"ang_offset_y,omitempty"`
	DetOffsetX *float64 `json:"det_offset_x,omitempty"`
	DetOffsetY *float64 `json:"det_offset_y,omitempty"`
	ZTrueFocus *float64 `json:"z_true_focus,omitempty"`

	// Golden-track selection
	SortTracks    *bool `json:"sort_tracks,omitempty"`
	SelUsingScin  *bool `json:"sel_using_scin,omitempty"`
	SelUsingPrune *bool `json:"sel_using_prune,omitempty"`

	// Scintillator-strategy admissibility windows
	SelNDegreesMin *float64 `json:"sel_ndegreesmin,omitempty"`
	SelDeDxMin     *float64 `json:"sel_dedx1min,omitempty"`
	SelDeDxMax     *float64 `json:"sel_dedx1max,omitempty"`
	SelBetaMin     *float64 `json:"sel_betamin,omitempty"`
	SelBetaMax     *float64 `json:"sel_betamax,omitempty"`
	SelEtMin       *float64 `json:"sel_etmin,omitempty"`
	SelEtMax       *float64 `json:"sel_etmax,omitempty"`

	// Prune thresholds (each clamped to a hard floor by the selector)
	PruneXp      *float64 `json:"prune_xp,omitempty"`
	PruneYp      *float64 `json:"prune_yp,omitempty"`
	PruneYtar    *float64 `json:"prune_ytar,omitempty"`
	PruneDelta   *float64 `json:"prune_delta,omitempty"`
	PruneBeta    *float64 `json:"prune_beta,omitempty"`
	PruneDf      *float64 `json:"prune_df,omitempty"`
	PruneChiBeta *float64 `json:"prune_chibeta,omitempty"`
	PruneFpTime  *float64 `json:"prune_fptime,omitempty"`
	PruneNPMT    *float64 `json:"prune_npmt,omitempty"`

	// Hodoscope matching-plane indices and geometry
	HodoNPlanes *int     `json:"hodo_num_planes,omitempty"`
	ScinPlaneX  *int     `json:"scin_plane_x,omitempty"`
	ScinPlaneY  *int     `json:"scin_plane_y,omitempty"`
	ScinXZpos   *float64 `json:"scin_x_zpos,omitempty"`
	ScinXdZpos  *float64 `json:"scin_x_dzpos,omitempty"`
	ScinYZpos   *float64 `json:"scin_y_zpos,omitempty"`
	ScinYdZpos  *float64 `json:"scin_y_dzpos,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are coherent.
func (c *TuningConfig) Validate() error {
	// The two strategy flags are mutually exclusive; both set used to
	// silently run one strategy and overwrite its result with the
	// other, which is rejected here instead.
	if c.GetSelUsingScin() && c.GetSelUsingPrune() {
		return fmt.Errorf("sel_using_scin and sel_using_prune are mutually exclusive")
	}
	if c.PCentral != nil && *c.PCentral <= 0 {
		return fmt.Errorf("pcentral must be positive, got %f", *c.PCentral)
	}
	if c.PartMass != nil && *c.PartMass < 0 {
		return fmt.Errorf("partmass must be non-negative, got %f", *c.PartMass)
	}
	if c.SelDeDxMin != nil && c.SelDeDxMax != nil && *c.SelDeDxMin >= *c.SelDeDxMax {
		return fmt.Errorf("sel_dedx1min must be below sel_dedx1max")
	}
	if c.SelBetaMin != nil && c.SelBetaMax != nil && *c.SelBetaMin >= *c.SelBetaMax {
		return fmt.Errorf("sel_betamin must be below sel_betamax")
	}
	if c.SelEtMin != nil && c.SelEtMax != nil && *c.SelEtMin >= *c.SelEtMax {
		return fmt.Errorf("sel_etmin must be below sel_etmax")
	}
	if c.HodoNPlanes != nil && *c.HodoNPlanes < 1 {
		return fmt.Errorf("hodo_num_planes must be >= 1, got %d", *c.HodoNPlanes)
	}
	np := c.GetHodoNPlanes()
	if px := c.GetScinPlaneX(); px < 0 || px >= np {
		return fmt.Errorf("scin_plane_x %d outside hodoscope planes [0,%d)", px, np)
	}
	if py := c.GetScinPlaneY(); py < 0 || py >= np {
		return fmt.Errorf("scin_plane_y %d outside hodoscope planes [0,%d)", py, np)
	}
	return nil
}

func f64(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// GetMatrixFile returns the transport matrix path, or "" when unset.
func (c *TuningConfig) GetMatrixFile() string {
	if c.MatrixFile == nil {
		return ""
	}
	return *c.MatrixFile
}

// GetStrictMatrix reports whether malformed matrix term lines fail the
// load. Default is the legacy-compatible lenient scan.
func (c *TuningConfig) GetStrictMatrix() bool {
	if c.StrictMatrix == nil {
		return false
	}
	return *c.StrictMatrix
}

// GetPCentral returns the configured central momentum (GeV/c) before
// the percent offset is applied, or 0 when unset.
func (c *TuningConfig) GetPCentral() float64 { return f64(c.PCentral, 0) }

// EffectivePCentral returns the central momentum with its percent
// offset applied, as used by reconstruction.
func (c *TuningConfig) EffectivePCentral() float64 {
	return c.GetPCentral() * (1.0 + f64(c.PCentralOffset, 0)/100.0)
}

// EffectiveThetaLab returns the lab angle (degrees) with the central
// angular offset (radians in the file) folded in.
func (c *TuningConfig) EffectiveThetaLab() float64 {
	return f64(c.ThetaLab, 0) + f64(c.ThetaCentralOffset, 0)*units.RadToDeg
}

// GetPartMass returns the particle rest mass (GeV/c²). Defaults to the
// electron mass.
func (c *TuningConfig) GetPartMass() float64 { return f64(c.PartMass, 0.000510999) }

// GetSortTracks reports whether the default strategy sorts by
// chi2/ndof. Sorting is on unless disabled.
func (c *TuningConfig) GetSortTracks() bool {
	if c.SortTracks == nil {
		return true
	}
	return *c.SortTracks
}

// GetSelUsingScin reports whether the scintillator strategy is enabled.
func (c *TuningConfig) GetSelUsingScin() bool {
	return c.SelUsingScin != nil && *c.SelUsingScin
}

// GetSelUsingPrune reports whether the prune strategy is enabled.
func (c *TuningConfig) GetSelUsingPrune() bool {
	return c.SelUsingPrune != nil && *c.SelUsingPrune
}

// Strategy resolves the strategy flags to the single active strategy.
func (c *TuningConfig) Strategy() spectro.Strategy {
	switch {
	case c.GetSelUsingScin():
		return spectro.StrategyScin
	case c.GetSelUsingPrune():
		return spectro.StrategyPrune
	default:
		return spectro.StrategyChi2
	}
}

// GetHodoNPlanes returns the hodoscope plane count.
func (c *TuningConfig) GetHodoNPlanes() int {
	if c.HodoNPlanes == nil {
		return 4
	}
	return *c.HodoNPlanes
}

// GetScinPlaneX returns the index of the X matching plane.
func (c *TuningConfig) GetScinPlaneX() int {
	if c.ScinPlaneX == nil {
		return 2
	}
	return *c.ScinPlaneX
}

// GetScinPlaneY returns the index of the Y matching plane.
func (c *TuningConfig) GetScinPlaneY() int {
	if c.ScinPlaneY == nil {
		return 3
	}
	return *c.ScinPlaneY
}

// BuildReconstructor materialises the target reconstructor over a
// loaded matrix.
func (c *TuningConfig) BuildReconstructor(m *spectro.Matrix) *spectro.Reconstructor {
	return &spectro.Reconstructor{
		Matrix:      m,
		AngSlopeX:   f64(c.AngSlopeX, 0),
		AngSlopeY:   f64(c.AngSlopeY, 0),
		AngOffsetX:  f64(c.AngOffsetX, 0),
		AngOffsetY:  f64(c.AngOffsetY, 0),
		DetOffsetX:  f64(c.DetOffsetX, 0),
		DetOffsetY:  f64(c.DetOffsetY, 0),
		ZTrueFocus:  f64(c.ZTrueFocus, 0),
		ThetaOffset: f64(c.ThetaOffset, 0),
		PhiOffset:   f64(c.PhiOffset, 0),
		DeltaOffset: f64(c.DeltaOffset, 0),
		PCentral:    c.EffectivePCentral(),
	}
}

// BuildMatcher materialises the scintillator matcher over a hodoscope
// view.
func (c *TuningConfig) BuildMatcher(h spectro.HodoscopeView) *spectro.ScintMatcher {
	return &spectro.ScintMatcher{
		Hodo:   h,
		PlaneX: c.GetScinPlaneX(),
		PlaneY: c.GetScinPlaneY(),
		ZPosX:  f64(c.ScinXZpos, 0),
		DZPosX: f64(c.ScinXdZpos, 0),
		ZPosY:  f64(c.ScinYZpos, 0),
		DZPosY: f64(c.ScinYdZpos, 0),
	}
}

// BuildSelectorConfig materialises the selector configuration. The
// admissibility windows default wide open so an unconfigured
// scintillator strategy admits every track.
func (c *TuningConfig) BuildSelectorConfig() spectro.SelectorConfig {
	const wide = 1e10
	return spectro.SelectorConfig{
		Strategy:     c.Strategy(),
		SortTracks:   c.GetSortTracks(),
		PartMass:     c.GetPartMass(),
		NDoFMin:      f64(c.SelNDegreesMin, 0),
		DeDxMin:      f64(c.SelDeDxMin, -wide),
		DeDxMax:      f64(c.SelDeDxMax, wide),
		BetaMin:      f64(c.SelBetaMin, -wide),
		BetaMax:      f64(c.SelBetaMax, wide),
		EnergyMin:    f64(c.SelEtMin, -wide),
		EnergyMax:    f64(c.SelEtMax, wide),
		PruneXp:      f64(c.PruneXp, 0),
		PruneYp:      f64(c.PruneYp, 0),
		PruneYtar:    f64(c.PruneYtar, 0),
		PruneDelta:   f64(c.PruneDelta, 0),
		PruneBeta:    f64(c.PruneBeta, 0),
		PruneDf:      f64(c.PruneDf, 0),
		PruneChiBeta: f64(c.PruneChiBeta, 0),
		PruneFpTime:  f64(c.PruneFpTime, 0),
		PruneNPMT:    f64(c.PruneNPMT, 0),
	}
}
