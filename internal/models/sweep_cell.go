package models

import (
	"time"

	"github.com/google/uuid"
)

// SweepCell is the persisted form of a single band-sweep grid cell.
type SweepCell struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RunID          uuid.UUID `db:"run_id" json:"run_id"`
	CellID         string    `db:"cell_id" json:"cell_id"`
	BandLabel      string    `db:"band_label" json:"band_label"`
	Mode           string    `db:"mode" json:"mode"`
	Scale          float64   `db:"scale" json:"scale"`
	MinEdge        float64   `db:"min_edge" json:"min_edge"`
	Bets           int       `db:"bets" json:"bets"`
	Wins           int       `db:"wins" json:"wins"`
	HitRate        float64   `db:"hit_rate" json:"hit_rate"`
	AvgOdds        float64   `db:"avg_odds" json:"avg_odds"`
	Turnover       float64   `db:"turnover" json:"turnover"`
	Pnl            float64   `db:"pnl" json:"pnl"`
	ROI            float64   `db:"roi" json:"roi"`
	EndBankroll    float64   `db:"end_bankroll" json:"end_bankroll"`
	MaxDrawdown    float64   `db:"max_drawdown" json:"max_drawdown"`
	MaxDrawdownPct float64   `db:"max_drawdown_pct" json:"max_drawdown_pct"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
