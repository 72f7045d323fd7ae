package models

import "time"

// MatchOdds represents a two-outcome market quote for one tennis match,
// as returned by the odds datasource before de-vig normalization.
type MatchOdds struct {
	EventID    string    `json:"event_id"`
	Tournament string    `json:"tournament"`
	PlayerA    string    `json:"player_a"`
	PlayerB    string    `json:"player_b"`
	StartTime  time.Time `json:"start_time"`
	PriceA     float64   `json:"price_a"`
	PriceB     float64   `json:"price_b"`
	Bookmaker  string    `json:"bookmaker"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Overround returns the bookmaker margin embedded in the quoted pair.
// A fair two-way market sums implied probabilities to exactly 1.
func (m MatchOdds) Overround() float64 {
	if m.PriceA <= 0 || m.PriceB <= 0 {
		return 0
	}
	return 1.0/m.PriceA + 1.0/m.PriceB
}

// HasValidPrices reports whether both sides carry bettable odds.
func (m MatchOdds) HasValidPrices() bool {
	return m.PriceA > 1.0 && m.PriceB > 1.0
}
