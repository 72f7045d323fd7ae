package staking

import (
	"github.com/sirupsen/logrus"
)

// Sizing is the result of a single stake calculation
type Sizing struct {
	// Stake is the final monetary amount to wager, after scale and caps
	Stake float64 `json:"stake"`
	// PUsed is the boosted probability the stake was derived from
	PUsed float64 `json:"p_used"`
	// KellyRaw is the unscaled, uncapped full-Kelly fraction, kept for
	// diagnostics even when the final stake is zero
	KellyRaw float64 `json:"kelly_raw"`
}

// StakeSizer converts (probability, price, bankroll) into a monetary stake.
// It is a pure function of its inputs; bankroll mutation belongs to the
// simulator.
type StakeSizer struct {
	config KellyConfig
	edges  EdgeCalculator
	logger *logrus.Logger
}

// NewStakeSizer creates a sizer for one immutable sizing policy
func NewStakeSizer(cfg KellyConfig, logger *logrus.Logger) *StakeSizer {
	if logger == nil {
		logger = logrus.New()
	}
	return &StakeSizer{
		config: cfg,
		edges:  NewEdgeCalculator(cfg.EdgeBoost),
		logger: logger,
	}
}

// Config returns the sizing policy
func (s *StakeSizer) Config() KellyConfig {
	return s.config
}

// Size calculates the stake for one candidate given the current bankroll.
//
// Kelly mode: with b = price-1, f* = (b*p - (1-p)) / b, clamped at zero. A
// negative Kelly fraction means "do not bet", never "lay the other side".
// The policy scale is applied afterwards and the stake is capped at the
// bankroll (and at bankroll*CapFraction when configured).
//
// A non-positive bankroll forces a zero stake rather than an error, so a
// busted simulation keeps recording passthrough rows instead of aborting.
func (s *StakeSizer) Size(probability, price, bankroll float64) Sizing {
	edge, err := s.edges.Calculate(probability, price)
	if err != nil {
		return Sizing{}
	}

	if bankroll <= 0 {
		s.logger.WithFields(logrus.Fields{
			"bankroll": bankroll,
			"price":    price,
		}).Debug("Non-positive bankroll, stake forced to zero")
		return Sizing{PUsed: edge.PUsed}
	}

	if s.config.Mode == StakeModeFlat {
		stake := s.config.FlatStake
		if stake < 0 {
			stake = 0
		}
		if stake > bankroll {
			stake = bankroll
		}
		return Sizing{Stake: stake, PUsed: edge.PUsed}
	}

	kellyRaw := KellyFraction(edge.PUsed, price)
	if kellyRaw <= 0 {
		s.logger.WithFields(logrus.Fields{
			"price":  price,
			"p_used": edge.PUsed,
			"kelly":  kellyRaw,
		}).Debug("Negative Kelly fraction, no bet recommended")
		return Sizing{PUsed: edge.PUsed, KellyRaw: kellyRaw}
	}

	stake := bankroll * kellyRaw * s.config.Scale
	stake = s.applyCaps(stake, bankroll)

	s.logger.WithFields(logrus.Fields{
		"bankroll":    bankroll,
		"price":       price,
		"p_used":      edge.PUsed,
		"kelly_raw":   kellyRaw,
		"kelly_scale": s.config.Scale,
		"stake":       stake,
	}).Debug("Position size calculated")

	return Sizing{Stake: stake, PUsed: edge.PUsed, KellyRaw: kellyRaw}
}

// applyCaps enforces the per-bet limits: never more than the bankroll, and
// never more than bankroll*CapFraction when a fraction cap is configured.
// The per-bet cap runs before any daily aggregate scale-down (see budget.go).
func (s *StakeSizer) applyCaps(stake, bankroll float64) float64 {
	if s.config.CapFraction > 0 {
		if capped := bankroll * s.config.CapFraction; stake > capped {
			s.logger.WithFields(logrus.Fields{
				"calculated_stake": stake,
				"cap_fraction":     s.config.CapFraction,
			}).Debug("Stake capped at bankroll fraction")
			stake = capped
		}
	}
	if stake > bankroll {
		stake = bankroll
	}
	return stake
}

// KellyFraction computes the full-Kelly fraction for a win probability and
// decimal price. Returns 0 when the net odds are non-positive; a negative
// result is clamped to 0 by callers before staking.
func KellyFraction(p, price float64) float64 {
	b := price - 1.0
	if b <= 0 {
		return 0
	}
	f := (b*p - (1.0 - p)) / b
	if f < 0 {
		return 0
	}
	return f
}
