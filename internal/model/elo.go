// Package model supplies win-probability estimates for match candidates.
// The estimates here are deliberately simple heuristics (Elo and market
// blends); the simulation core treats probability as an external input.
package model

import "math"

const (
	defaultRating = 1500.0
	defaultK      = 32.0
)

// Elo maintains a rating ladder over players and converts rating gaps into
// win probabilities.
type Elo struct {
	ratings map[string]float64
	k       float64
}

// NewElo creates an empty ladder with the given K-factor. k <= 0 selects the
// standard K of 32.
func NewElo(k float64) *Elo {
	if k <= 0 {
		k = defaultK
	}
	return &Elo{ratings: make(map[string]float64), k: k}
}

// Rating returns a player's current rating, defaulting unseen players to 1500
func (e *Elo) Rating(player string) float64 {
	if r, ok := e.ratings[player]; ok {
		return r
	}
	return defaultRating
}

// Expected returns the probability that a beats b
func (e *Elo) Expected(a, b string) float64 {
	return 1.0 / (1.0 + math.Pow(10, (e.Rating(b)-e.Rating(a))/400.0))
}

// Record updates the ladder with one completed match
func (e *Elo) Record(winner, loser string) {
	expected := e.Expected(winner, loser)
	e.ratings[winner] = e.Rating(winner) + e.k*(1.0-expected)
	e.ratings[loser] = e.Rating(loser) - e.k*(1.0-expected)
}

// Size returns the number of rated players
func (e *Elo) Size() int {
	return len(e.ratings)
}
