// Package staking converts model probabilities and prices into stakes under
// risk-controlled Kelly or flat sizing.
package staking

import "fmt"

// StakeMode selects the sizing policy
type StakeMode string

const (
	StakeModeKelly StakeMode = "kelly"
	StakeModeFlat  StakeMode = "flat"
)

// KellyConfig holds the sizing policy for one simulation run.
// It is immutable for the duration of a run; sweeps construct one per cell.
type KellyConfig struct {
	Mode            StakeMode `mapstructure:"mode" json:"mode"`
	EdgeBoost       float64   `mapstructure:"edge_boost" json:"edge_boost"`
	Scale           float64   `mapstructure:"scale" json:"scale"`
	FlatStake       float64   `mapstructure:"flat_stake" json:"flat_stake"`
	InitialBankroll float64   `mapstructure:"initial_bankroll" json:"initial_bankroll"`
	// CapFraction limits any single stake to this fraction of the current
	// bankroll. Zero disables the cap.
	CapFraction float64 `mapstructure:"cap_fraction" json:"cap_fraction"`
	// DailyBudgetFraction scales down all stakes placed on one day once their
	// aggregate would exceed this fraction of the bankroll. Applied after the
	// per-bet cap. Zero disables it.
	DailyBudgetFraction float64 `mapstructure:"daily_budget_fraction" json:"daily_budget_fraction"`
}

// DefaultKellyConfig returns half-Kelly sizing with no boost and no caps
func DefaultKellyConfig() KellyConfig {
	return KellyConfig{
		Mode:            StakeModeKelly,
		EdgeBoost:       0,
		Scale:           0.5,
		FlatStake:       1.0,
		InitialBankroll: 1000,
	}
}

// Validate checks sizing parameters. Configuration errors fail fast; they are
// never recovered row-by-row the way dirty data is.
func (c KellyConfig) Validate() error {
	switch c.Mode {
	case StakeModeKelly, StakeModeFlat:
	default:
		return fmt.Errorf("stake mode must be %q or %q, got %q", StakeModeKelly, StakeModeFlat, c.Mode)
	}
	if c.Scale < 0 {
		return fmt.Errorf("kelly scale cannot be negative, got %v", c.Scale)
	}
	if c.InitialBankroll <= 0 {
		return fmt.Errorf("initial bankroll must be positive, got %v", c.InitialBankroll)
	}
	if c.Mode == StakeModeFlat && c.FlatStake < 0 {
		return fmt.Errorf("flat stake cannot be negative, got %v", c.FlatStake)
	}
	if c.CapFraction < 0 || c.CapFraction > 1 {
		return fmt.Errorf("cap fraction must be within [0,1], got %v", c.CapFraction)
	}
	if c.DailyBudgetFraction < 0 || c.DailyBudgetFraction > 1 {
		return fmt.Errorf("daily budget fraction must be within [0,1], got %v", c.DailyBudgetFraction)
	}
	return nil
}

// WithScale returns a copy with a different Kelly scale. Used by sweeps.
func (c KellyConfig) WithScale(scale float64) KellyConfig {
	c.Scale = scale
	return c
}

// WithMode returns a copy with a different stake mode. Used by sweeps.
func (c KellyConfig) WithMode(mode StakeMode) KellyConfig {
	c.Mode = mode
	return c
}
