package staking

import "github.com/sirupsen/logrus"

// DailyBudget scales down a day's stakes when their aggregate exceeds a
// fraction of the bankroll. It runs after the per-bet cap: individual stakes
// arrive already capped and are then shrunk proportionally as a group, so the
// relative sizing between picks is preserved.
type DailyBudget struct {
	// Fraction of the bankroll the day's total stakes may not exceed.
	// Zero disables the budget.
	Fraction float64
	logger   *logrus.Logger
}

// NewDailyBudget creates a daily aggregate stake budget
func NewDailyBudget(fraction float64, logger *logrus.Logger) *DailyBudget {
	if logger == nil {
		logger = logrus.New()
	}
	return &DailyBudget{Fraction: fraction, logger: logger}
}

// Apply returns the scaled stakes and the factor applied. A factor of 1 means
// the budget was not binding.
func (d *DailyBudget) Apply(stakes []float64, bankroll float64) ([]float64, float64) {
	if d.Fraction <= 0 || bankroll <= 0 || len(stakes) == 0 {
		return stakes, 1.0
	}

	total := 0.0
	for _, s := range stakes {
		total += s
	}
	budget := bankroll * d.Fraction
	if total <= budget || total == 0 {
		return stakes, 1.0
	}

	factor := budget / total
	scaled := make([]float64, len(stakes))
	for i, s := range stakes {
		scaled[i] = s * factor
	}

	d.logger.WithFields(logrus.Fields{
		"total_staked": total,
		"budget":       budget,
		"factor":       factor,
		"picks":        len(stakes),
	}).Info("Daily stake budget exceeded, stakes scaled down")

	return scaled, factor
}
