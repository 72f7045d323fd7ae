package models

import "math"

// Outcome flags for a settled candidate.
const (
	OutcomeLoss = 0
	OutcomeWin  = 1
)

// Candidate represents one proposed wager after normalization, before sizing.
// Candidates are immutable once built; the dataset layer resolves column
// aliases and probability fallbacks so the core never sees a raw CSV row.
type Candidate struct {
	ID          string   `json:"id"`
	RowIndex    int      `json:"row_index"`
	Price       float64  `json:"price" validate:"gt=1"`
	Probability float64  `json:"probability" validate:"gte=0,lte=1"`
	Outcome     *int     `json:"outcome,omitempty"`
	EventDate   string   `json:"event_date,omitempty"`
	Side        PickSide `json:"side,omitempty"`
}

// Settled reports whether the candidate carries a realized result.
func (c Candidate) Settled() bool {
	return c.Outcome != nil
}

// Won reports whether the candidate settled as a win.
func (c Candidate) Won() bool {
	return c.Outcome != nil && *c.Outcome == OutcomeWin
}

// Validate checks the candidate's price and probability invariants.
// A price at or below 1.0 (or non-finite) is unbettable; probability is
// clamped by callers, not here, so out-of-range values are reported.
func (c Candidate) Validate() error {
	if c.Price <= 1.0 || math.IsNaN(c.Price) || math.IsInf(c.Price, 0) {
		return ErrInvalidOdds
	}
	if math.IsNaN(c.Probability) {
		return ErrMissingProbability
	}
	return nil
}

// ImpliedProbability returns the break-even probability priced by the market.
func (c Candidate) ImpliedProbability() float64 {
	if c.Price <= 0 {
		return 0
	}
	return 1.0 / c.Price
}
