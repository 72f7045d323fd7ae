package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/tennis-edge/internal/database"
	"github.com/yourusername/tennis-edge/internal/models"
)

const errScanSweepCell = "failed to scan sweep cell: %w"

const sweepCellColumns = `id, run_id, cell_id, band_label, mode, scale, min_edge,
	bets, wins, hit_rate, avg_odds, turnover, pnl, roi,
	end_bankroll, max_drawdown, max_drawdown_pct, created_at`

// PostgresSweepRepository implements SweepRepository for PostgreSQL
type PostgresSweepRepository struct {
	db *database.DB
}

// NewPostgresSweepRepository creates a new sweep repository
func NewPostgresSweepRepository(db *database.DB) SweepRepository {
	return &PostgresSweepRepository{db: db}
}

// SaveRun inserts all cells of a sweep run in one transaction
func (r *PostgresSweepRepository) SaveRun(ctx context.Context, cells []models.SweepCell) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO sweep_cells (
				id, run_id, cell_id, band_label, mode, scale, min_edge,
				bets, wins, hit_rate, avg_odds, turnover, pnl, roi,
				end_bankroll, max_drawdown, max_drawdown_pct, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		`
		for i := range cells {
			c := &cells[i]
			if _, err := tx.Exec(ctx, query,
				c.ID, c.RunID, c.CellID, c.BandLabel, c.Mode, c.Scale, c.MinEdge,
				c.Bets, c.Wins, c.HitRate, c.AvgOdds, c.Turnover, c.Pnl, c.ROI,
				c.EndBankroll, c.MaxDrawdown, c.MaxDrawdownPct, c.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to save sweep cell %s: %w", c.CellID, err)
			}
		}
		return nil
	})
}

// GetByRunID retrieves all cells of a sweep run
func (r *PostgresSweepRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.SweepCell, error) {
	query := `SELECT ` + sweepCellColumns + ` FROM sweep_cells WHERE run_id = $1 ORDER BY cell_id`
	return r.queryCells(ctx, query, runID)
}

// GetBestCells retrieves the highest-ROI cells across all runs
func (r *PostgresSweepRepository) GetBestCells(ctx context.Context, limit int) ([]*models.SweepCell, error) {
	query := `SELECT ` + sweepCellColumns + ` FROM sweep_cells ORDER BY roi DESC, turnover DESC LIMIT $1`
	return r.queryCells(ctx, query, limit)
}

func (r *PostgresSweepRepository) queryCells(ctx context.Context, query string, args ...interface{}) ([]*models.SweepCell, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sweep cells: %w", err)
	}
	defer rows.Close()

	var cells []*models.SweepCell
	for rows.Next() {
		cell := &models.SweepCell{}
		if err := rows.Scan(
			&cell.ID, &cell.RunID, &cell.CellID, &cell.BandLabel, &cell.Mode, &cell.Scale, &cell.MinEdge,
			&cell.Bets, &cell.Wins, &cell.HitRate, &cell.AvgOdds, &cell.Turnover, &cell.Pnl, &cell.ROI,
			&cell.EndBankroll, &cell.MaxDrawdown, &cell.MaxDrawdownPct, &cell.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanSweepCell, err)
		}
		cells = append(cells, cell)
	}
	return cells, rows.Err()
}
