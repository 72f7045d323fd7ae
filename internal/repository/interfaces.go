// Package repository provides PostgreSQL persistence for picks and
// sweep results.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/tennis-edge/internal/models"
)

// PickRepository persists and settles value picks
type PickRepository interface {
	Save(ctx context.Context, pick *models.Pick) error
	SaveAll(ctx context.Context, picks []models.Pick) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error)
	GetUnsettled(ctx context.Context) ([]*models.Pick, error)
	GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Pick, error)
	Settle(ctx context.Context, id uuid.UUID, outcome int, profitLoss float64, settledAt time.Time) error
}

// SweepRepository persists band-sweep run results
type SweepRepository interface {
	SaveRun(ctx context.Context, cells []models.SweepCell) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*models.SweepCell, error)
	GetBestCells(ctx context.Context, limit int) ([]*models.SweepCell, error)
}
