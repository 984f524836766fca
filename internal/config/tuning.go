package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the parameters of ridge detection and skin growth.
// Every field is optional; the Get* accessors fill in defaults so partial
// files are safe.
type TuningConfig struct {
	// Ridge detection
	SmoothingSigma        *float64 `json:"smoothing_sigma,omitempty"`
	BoundaryWidth         *int     `json:"boundary_width,omitempty"`          // samples treated as near a slow-axis boundary
	BoundaryCosineSquared *float64 `json:"boundary_cosine_squared,omitempty"` // max w² for cells near a boundary

	// Likelihood gates
	LowerLikelihood *float64 `json:"lower_likelihood,omitempty"`
	UpperLikelihood *float64 `json:"upper_likelihood,omitempty"` // seeds

	// Nabor admissibility
	MaxDeltaLikelihood *float64 `json:"max_delta_likelihood,omitempty"`
	MaxDeltaStrike     *float64 `json:"max_delta_strike,omitempty"` // degrees
	MaxDeltaDip        *float64 `json:"max_delta_dip,omitempty"`    // degrees
	MaxDeltaThrow      *float64 `json:"max_delta_throw,omitempty"`  // samples
	MaxPlanarDistance  *float64 `json:"max_planar_distance,omitempty"`

	// Throw bounds. Absent means unbounded on that side.
	MinThrow *float64 `json:"min_throw,omitempty"`
	MaxThrow *float64 `json:"max_throw,omitempty"`

	// Skin growth
	MinSkinSize    *int     `json:"min_skin_size,omitempty"`
	SuppressRadius *float64 `json:"suppress_radius,omitempty"`
	SuppressStrike *float64 `json:"suppress_strike,omitempty"`
	Recovery       *bool    `json:"recovery,omitempty"`

	// Raw volume files
	ByteOrder *string `json:"byte_order,omitempty"` // "big" or "little"
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1 MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
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

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and its parents up to the repository
// root. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,       // internal/config/
		"../../../" + DefaultConfigPath,    // internal/fault/grow/
		"../../../../" + DefaultConfigPath, // internal/fault/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	for name, v := range map[string]*float64{
		"lower_likelihood": c.LowerLikelihood,
		"upper_likelihood": c.UpperLikelihood,
	} {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
	}
	if c.GetLowerLikelihood() > c.GetUpperLikelihood() {
		return fmt.Errorf("lower_likelihood %f exceeds upper_likelihood %f",
			c.GetLowerLikelihood(), c.GetUpperLikelihood())
	}

	for name, v := range map[string]*float64{
		"smoothing_sigma":      c.SmoothingSigma,
		"max_delta_likelihood": c.MaxDeltaLikelihood,
		"max_delta_strike":     c.MaxDeltaStrike,
		"max_delta_dip":        c.MaxDeltaDip,
		"max_delta_throw":      c.MaxDeltaThrow,
		"max_planar_distance":  c.MaxPlanarDistance,
		"suppress_radius":      c.SuppressRadius,
		"suppress_strike":      c.SuppressStrike,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}

	if c.GetMinThrow() > c.GetMaxThrow() {
		return fmt.Errorf("min_throw %f exceeds max_throw %f", c.GetMinThrow(), c.GetMaxThrow())
	}
	if c.MinSkinSize != nil && *c.MinSkinSize < 1 {
		return fmt.Errorf("min_skin_size must be at least 1, got %d", *c.MinSkinSize)
	}
	if c.BoundaryWidth != nil && *c.BoundaryWidth < 0 {
		return fmt.Errorf("boundary_width must be non-negative, got %d", *c.BoundaryWidth)
	}
	if v := c.BoundaryCosineSquared; v != nil && (*v < 0 || *v > 1) {
		return fmt.Errorf("boundary_cosine_squared must be between 0 and 1, got %f", *v)
	}
	if c.ByteOrder != nil {
		switch *c.ByteOrder {
		case "big", "little":
		default:
			return fmt.Errorf("byte_order must be \"big\" or \"little\", got %q", *c.ByteOrder)
		}
	}
	return nil
}

// GetSmoothingSigma returns the smoothing_sigma value or the default.
func (c *TuningConfig) GetSmoothingSigma() float64 {
	if c.SmoothingSigma == nil {
		return 1.0
	}
	return *c.SmoothingSigma
}

// GetBoundaryWidth returns the boundary_width value or the default.
func (c *TuningConfig) GetBoundaryWidth() int {
	if c.BoundaryWidth == nil {
		return 5
	}
	return *c.BoundaryWidth
}

// GetBoundaryCosineSquared returns the boundary_cosine_squared value or the default.
func (c *TuningConfig) GetBoundaryCosineSquared() float64 {
	if c.BoundaryCosineSquared == nil {
		return 0.75 // cos²(30°)
	}
	return *c.BoundaryCosineSquared
}

// GetLowerLikelihood returns the lower_likelihood value or the default.
func (c *TuningConfig) GetLowerLikelihood() float64 {
	if c.LowerLikelihood == nil {
		return 0.2
	}
	return *c.LowerLikelihood
}

// GetUpperLikelihood returns the upper_likelihood value or the default.
func (c *TuningConfig) GetUpperLikelihood() float64 {
	if c.UpperLikelihood == nil {
		return 0.8
	}
	return *c.UpperLikelihood
}

// GetMaxDeltaLikelihood returns the max_delta_likelihood value or the default.
func (c *TuningConfig) GetMaxDeltaLikelihood() float64 {
	if c.MaxDeltaLikelihood == nil {
		return 0.2
	}
	return *c.MaxDeltaLikelihood
}

// GetMaxDeltaStrike returns the max_delta_strike value or the default.
func (c *TuningConfig) GetMaxDeltaStrike() float64 {
	if c.MaxDeltaStrike == nil {
		return 10
	}
	return *c.MaxDeltaStrike
}

// GetMaxDeltaDip returns the max_delta_dip value or the default.
func (c *TuningConfig) GetMaxDeltaDip() float64 {
	if c.MaxDeltaDip == nil {
		return 10
	}
	return *c.MaxDeltaDip
}

// GetMaxDeltaThrow returns the max_delta_throw value or the default.
func (c *TuningConfig) GetMaxDeltaThrow() float64 {
	if c.MaxDeltaThrow == nil {
		return 1.0
	}
	return *c.MaxDeltaThrow
}

// GetMaxPlanarDistance returns the max_planar_distance value or the default.
func (c *TuningConfig) GetMaxPlanarDistance() float64 {
	if c.MaxPlanarDistance == nil {
		return 0.5
	}
	return *c.MaxPlanarDistance
}

// GetMinThrow returns min_throw, or -Inf when unset.
func (c *TuningConfig) GetMinThrow() float64 {
	if c.MinThrow == nil {
		return math.Inf(-1)
	}
	return *c.MinThrow
}

// GetMaxThrow returns max_throw, or +Inf when unset.
func (c *TuningConfig) GetMaxThrow() float64 {
	if c.MaxThrow == nil {
		return math.Inf(1)
	}
	return *c.MaxThrow
}

// GetMinSkinSize returns the min_skin_size value or the default.
func (c *TuningConfig) GetMinSkinSize() int {
	if c.MinSkinSize == nil {
		return 400
	}
	return *c.MinSkinSize
}

// GetSuppressRadius returns the suppress_radius value or the default.
func (c *TuningConfig) GetSuppressRadius() float64 {
	if c.SuppressRadius == nil {
		return 3
	}
	return *c.SuppressRadius
}

// GetSuppressStrike returns the suppress_strike value or the default.
func (c *TuningConfig) GetSuppressStrike() float64 {
	if c.SuppressStrike == nil {
		return 10
	}
	return *c.SuppressStrike
}

// GetRecovery returns the recovery value or the default.
func (c *TuningConfig) GetRecovery() bool {
	if c.Recovery == nil {
		return true
	}
	return *c.Recovery
}

// GetByteOrder returns the byte_order value or the default.
func (c *TuningConfig) GetByteOrder() string {
	if c.ByteOrder == nil {
		return "big"
	}
	return *c.ByteOrder
}
