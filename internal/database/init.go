package database

import (
	"context"
	"fmt"

	"github.com/yourusername/tennis-edge/internal/config"
)

// schema holds the DDL for the pipeline's tables. Applied on startup
// so a fresh database is usable without a separate migration step.
const schema = `
CREATE TABLE IF NOT EXISTS picks (
	id UUID PRIMARY KEY,
	event_date TIMESTAMPTZ NOT NULL,
	tournament TEXT NOT NULL,
	player_a TEXT NOT NULL,
	player_b TEXT NOT NULL,
	side TEXT NOT NULL,
	price DOUBLE PRECISION NOT NULL,
	model_prob DOUBLE PRECISION NOT NULL,
	implied_prob DOUBLE PRECISION NOT NULL,
	edge DOUBLE PRECISION NOT NULL,
	stake DOUBLE PRECISION NOT NULL,
	kelly_raw DOUBLE PRECISION NOT NULL,
	bookmaker TEXT NOT NULL DEFAULT '',
	outcome INTEGER,
	profit_loss DOUBLE PRECISION,
	settled_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_picks_event_date ON picks (event_date);
CREATE INDEX IF NOT EXISTS idx_picks_created ON picks (created_at DESC);

CREATE TABLE IF NOT EXISTS sweep_cells (
	id UUID PRIMARY KEY,
	run_id UUID NOT NULL,
	cell_id TEXT NOT NULL,
	band_label TEXT NOT NULL,
	mode TEXT NOT NULL,
	scale DOUBLE PRECISION NOT NULL,
	min_edge DOUBLE PRECISION NOT NULL,
	bets INTEGER NOT NULL,
	wins INTEGER NOT NULL,
	hit_rate DOUBLE PRECISION NOT NULL,
	avg_odds DOUBLE PRECISION NOT NULL,
	turnover DOUBLE PRECISION NOT NULL,
	pnl DOUBLE PRECISION NOT NULL,
	roi DOUBLE PRECISION NOT NULL,
	end_bankroll DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	max_drawdown_pct DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_sweep_cells_run ON sweep_cells (run_id);
CREATE INDEX IF NOT EXISTS idx_sweep_cells_roi ON sweep_cells (roi DESC);
`

// Initialize creates a database connection pool and applies the schema.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
