package staking

import (
	"math"

	"github.com/yourusername/tennis-edge/internal/models"
)

// Edge represents the sizing-ready view of one candidate's probability
type Edge struct {
	// PUsed is the boosted, clamped probability the sizer works with
	PUsed float64 `json:"p_used"`
	// Raw is the margin of PUsed over the market's break-even probability
	Raw float64 `json:"raw"`
}

// EdgeCalculator derives Kelly-ready probabilities from model estimates.
// EdgeBoost stretches the stated probability by a confidence margin
// (1.08 means "treat this probability as 8% more confident than stated").
type EdgeCalculator struct {
	EdgeBoost float64
}

// NewEdgeCalculator creates an edge calculator with the given boost
func NewEdgeCalculator(edgeBoost float64) EdgeCalculator {
	return EdgeCalculator{EdgeBoost: edgeBoost}
}

// Calculate returns the boosted probability and raw edge for a candidate.
// The probability fallback to market-implied happens upstream in the dataset
// layer; by the time a candidate reaches here a NaN probability is a hard
// data error, not something to paper over.
func (e EdgeCalculator) Calculate(probability, price float64) (Edge, error) {
	if price <= 1.0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Edge{}, models.ErrInvalidOdds
	}
	if math.IsNaN(probability) {
		return Edge{}, models.ErrMissingProbability
	}

	pUsed := Clamp01(probability * (1.0 + e.EdgeBoost))
	return Edge{
		PUsed: pUsed,
		Raw:   pUsed - 1.0/price,
	}, nil
}

// Clamp01 bounds a probability into [0,1]
func Clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
