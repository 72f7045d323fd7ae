package models

import (
	"time"

	"github.com/google/uuid"
)

// PickSide identifies which side of a two-outcome market is backed
type PickSide string

const (
	PickSideA PickSide = "A"
	PickSideB PickSide = "B"
)

// Pick represents a recommended wager produced by the live scan
type Pick struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	EventDate   time.Time  `db:"event_date" json:"event_date"`
	Tournament  string     `db:"tournament" json:"tournament"`
	PlayerA     string     `db:"player_a" json:"player_a"`
	PlayerB     string     `db:"player_b" json:"player_b"`
	Side        PickSide   `db:"side" json:"side"`
	Price       float64    `db:"price" json:"price"`
	ModelProb   float64    `db:"model_prob" json:"model_prob"`
	ImpliedProb float64    `db:"implied_prob" json:"implied_prob"`
	Edge        float64    `db:"edge" json:"edge"`
	Stake       float64    `db:"stake" json:"stake"`
	KellyRaw    float64    `db:"kelly_raw" json:"kelly_raw"`
	Bookmaker   string     `db:"bookmaker" json:"bookmaker"`
	Outcome     *int       `db:"outcome" json:"outcome,omitempty"`
	ProfitLoss  *float64   `db:"profit_loss" json:"profit_loss,omitempty"`
	SettledAt   *time.Time `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Selection names the backed player.
func (p Pick) Selection() string {
	if p.Side == PickSideB {
		return p.PlayerB
	}
	return p.PlayerA
}

// IsSettled checks if the pick has a realized outcome
func (p Pick) IsSettled() bool {
	return p.Outcome != nil && p.SettledAt != nil
}
