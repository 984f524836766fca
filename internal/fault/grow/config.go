package grow

import (
	"fmt"
	"math"

	"github.com/banshee-data/faultskin/internal/config"
	"github.com/banshee-data/faultskin/internal/fault"
	"github.com/banshee-data/faultskin/internal/fault/nabor"
	"github.com/banshee-data/faultskin/internal/fault/ridge"
)

// Config controls skin growth.
type Config struct {
	MinSkinSize int // skins with fewer cells are discarded (default: 400)

	LowerLikelihood float64 // nabors and re-detected cells (default: 0.2)
	UpperLikelihood float64 // seeds (default: 0.8)

	MinThrow float64 // default: -Inf
	MaxThrow float64 // default: +Inf

	MaxDeltaLikelihood float64 // default: 0.2
	MaxDeltaStrike     float64 // degrees (default: 10)
	MaxDeltaDip        float64 // degrees (default: 10)
	MaxDeltaThrow      float64 // samples (default: 1)
	MaxPlanarDistance  float64 // samples (default: 0.5)

	// After each skin, unclaimed cells within SuppressRadius samples of a
	// skin cell and with strike within SuppressStrike degrees are retired.
	// A zero radius disables suppression.
	SuppressRadius float64 // default: 3
	SuppressStrike float64 // default: 10

	// Recovery enables local re-detection when growth stalls. Without it
	// every unclaimed cell is visible to the nabor search from the start.
	Recovery bool // default: true

	// Ridge configures smoothing and the ridge test used by re-detection.
	// Its LowerLikelihood is replaced by the growth LowerLikelihood.
	Ridge ridge.Options
}

// DefaultConfig returns the growth defaults.
func DefaultConfig() *Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) *Config {
	return &Config{
		MinSkinSize:        cfg.GetMinSkinSize(),
		LowerLikelihood:    cfg.GetLowerLikelihood(),
		UpperLikelihood:    cfg.GetUpperLikelihood(),
		MinThrow:           cfg.GetMinThrow(),
		MaxThrow:           cfg.GetMaxThrow(),
		MaxDeltaLikelihood: cfg.GetMaxDeltaLikelihood(),
		MaxDeltaStrike:     cfg.GetMaxDeltaStrike(),
		MaxDeltaDip:        cfg.GetMaxDeltaDip(),
		MaxDeltaThrow:      cfg.GetMaxDeltaThrow(),
		MaxPlanarDistance:  cfg.GetMaxPlanarDistance(),
		SuppressRadius:     cfg.GetSuppressRadius(),
		SuppressStrike:     cfg.GetSuppressStrike(),
		Recovery:           cfg.GetRecovery(),
		Ridge:              ridge.OptionsFromTuning(cfg),
	}
}

// Validate checks every field and wraps fault.ErrInvalidConfig on failure.
func (c *Config) Validate() error {
	if c.MinSkinSize < 1 {
		return fmt.Errorf("%w: MinSkinSize must be at least 1, got %d", fault.ErrInvalidConfig, c.MinSkinSize)
	}
	if c.LowerLikelihood < 0 || math.IsNaN(c.LowerLikelihood) {
		return fmt.Errorf("%w: LowerLikelihood must be non-negative, got %f", fault.ErrInvalidConfig, c.LowerLikelihood)
	}
	if !(c.LowerLikelihood <= c.UpperLikelihood) {
		return fmt.Errorf("%w: LowerLikelihood %f exceeds UpperLikelihood %f",
			fault.ErrInvalidConfig, c.LowerLikelihood, c.UpperLikelihood)
	}
	if !(c.MinThrow <= c.MaxThrow) {
		return fmt.Errorf("%w: MinThrow %f exceeds MaxThrow %f", fault.ErrInvalidConfig, c.MinThrow, c.MaxThrow)
	}
	for name, v := range map[string]float64{
		"MaxDeltaLikelihood": c.MaxDeltaLikelihood,
		"MaxDeltaStrike":     c.MaxDeltaStrike,
		"MaxDeltaDip":        c.MaxDeltaDip,
		"MaxDeltaThrow":      c.MaxDeltaThrow,
		"MaxPlanarDistance":  c.MaxPlanarDistance,
		"SuppressRadius":     c.SuppressRadius,
		"SuppressStrike":     c.SuppressStrike,
		"Ridge.Sigma":        c.Ridge.Sigma,
	} {
		if !(v >= 0) {
			return fmt.Errorf("%w: %s must be non-negative, got %f", fault.ErrInvalidConfig, name, v)
		}
	}
	if c.Ridge.BoundaryWidth < 0 {
		return fmt.Errorf("%w: Ridge.BoundaryWidth must be non-negative, got %d", fault.ErrInvalidConfig, c.Ridge.BoundaryWidth)
	}
	if v := c.Ridge.BoundaryCosineSquared; !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: Ridge.BoundaryCosineSquared must be in [0,1], got %f", fault.ErrInvalidConfig, v)
	}
	return nil
}

// Policy returns the nabor policy for this config.
func (c *Config) Policy() nabor.Policy {
	return nabor.NewPolicy(nabor.Params{
		LowerLikelihood:    c.LowerLikelihood,
		MinThrow:           c.MinThrow,
		MaxThrow:           c.MaxThrow,
		MaxDeltaLikelihood: c.MaxDeltaLikelihood,
		MaxDeltaStrike:     c.MaxDeltaStrike,
		MaxDeltaDip:        c.MaxDeltaDip,
		MaxDeltaThrow:      c.MaxDeltaThrow,
		MaxPlanarDistance:  c.MaxPlanarDistance,
	})
}

// redetectOptions returns the ridge options used by local re-detection.
func (c *Config) redetectOptions() ridge.Options {
	o := c.Ridge
	o.LowerLikelihood = c.LowerLikelihood
	return o
}

// WithMinSkinSize sets the minimum number of cells in a retained skin.
func (c *Config) WithMinSkinSize(n int) *Config {
	c.MinSkinSize = n
	return c
}

// WithLikelihoods sets the lower (nabor) and upper (seed) likelihood thresholds.
func (c *Config) WithLikelihoods(lower, upper float64) *Config {
	c.LowerLikelihood = lower
	c.UpperLikelihood = upper
	return c
}

// WithThrowBounds sets the range of admissible throws.
func (c *Config) WithThrowBounds(lo, hi float64) *Config {
	c.MinThrow = lo
	c.MaxThrow = hi
	return c
}

// WithMaxDeltas sets the nabor attribute tolerances.
func (c *Config) WithMaxDeltas(likelihood, strike, dip, throw float64) *Config {
	c.MaxDeltaLikelihood = likelihood
	c.MaxDeltaStrike = strike
	c.MaxDeltaDip = dip
	c.MaxDeltaThrow = throw
	return c
}

// WithMaxPlanarDistance sets the maximum distance of a nabor from a cell's plane.
func (c *Config) WithMaxPlanarDistance(d float64) *Config {
	c.MaxPlanarDistance = d
	return c
}

// WithSuppression sets the post-skin suppression radius and strike tolerance.
func (c *Config) WithSuppression(radius, strike float64) *Config {
	c.SuppressRadius = radius
	c.SuppressStrike = strike
	return c
}

// WithRecovery enables or disables stall recovery.
func (c *Config) WithRecovery(enabled bool) *Config {
	c.Recovery = enabled
	return c
}
