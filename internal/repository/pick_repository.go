package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/tennis-edge/internal/database"
	"github.com/yourusername/tennis-edge/internal/models"
)

const errScanPick = "failed to scan pick: %w"

const pickColumns = `id, event_date, tournament, player_a, player_b, side, price,
	model_prob, implied_prob, edge, stake, kelly_raw, bookmaker,
	outcome, profit_loss, settled_at, created_at`

// PostgresPickRepository implements PickRepository for PostgreSQL
type PostgresPickRepository struct {
	db *database.DB
}

// NewPostgresPickRepository creates a new pick repository
func NewPostgresPickRepository(db *database.DB) PickRepository {
	return &PostgresPickRepository{db: db}
}

// Save inserts a pick
func (r *PostgresPickRepository) Save(ctx context.Context, pick *models.Pick) error {
	query := `
		INSERT INTO picks (
			id, event_date, tournament, player_a, player_b, side, price,
			model_prob, implied_prob, edge, stake, kelly_raw, bookmaker,
			outcome, profit_loss, settled_at, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		pick.ID, pick.EventDate, pick.Tournament, pick.PlayerA, pick.PlayerB, pick.Side, pick.Price,
		pick.ModelProb, pick.ImpliedProb, pick.Edge, pick.Stake, pick.KellyRaw, pick.Bookmaker,
		pick.Outcome, pick.ProfitLoss, pick.SettledAt, pick.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save pick: %w", err)
	}
	return nil
}

// SaveAll inserts a batch of picks in a single transaction
func (r *PostgresPickRepository) SaveAll(ctx context.Context, picks []models.Pick) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO picks (
				id, event_date, tournament, player_a, player_b, side, price,
				model_prob, implied_prob, edge, stake, kelly_raw, bookmaker,
				outcome, profit_loss, settled_at, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		`
		for i := range picks {
			p := &picks[i]
			if _, err := tx.Exec(ctx, query,
				p.ID, p.EventDate, p.Tournament, p.PlayerA, p.PlayerB, p.Side, p.Price,
				p.ModelProb, p.ImpliedProb, p.Edge, p.Stake, p.KellyRaw, p.Bookmaker,
				p.Outcome, p.ProfitLoss, p.SettledAt, p.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to save pick %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a pick by ID
func (r *PostgresPickRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE id = $1`

	pick := &models.Pick{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&pick.ID, &pick.EventDate, &pick.Tournament, &pick.PlayerA, &pick.PlayerB, &pick.Side, &pick.Price,
		&pick.ModelProb, &pick.ImpliedProb, &pick.Edge, &pick.Stake, &pick.KellyRaw, &pick.Bookmaker,
		&pick.Outcome, &pick.ProfitLoss, &pick.SettledAt, &pick.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanPick, err)
	}
	return pick, nil
}

// GetUnsettled retrieves picks awaiting a result
func (r *PostgresPickRepository) GetUnsettled(ctx context.Context) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE outcome IS NULL ORDER BY event_date ASC`
	return r.queryPicks(ctx, query)
}

// GetByDateRange retrieves picks with event dates inside [start, end]
func (r *PostgresPickRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]*models.Pick, error) {
	query := `SELECT ` + pickColumns + ` FROM picks WHERE event_date >= $1 AND event_date <= $2 ORDER BY event_date ASC`
	return r.queryPicks(ctx, query, start, end)
}

// Settle records the outcome of a pick
func (r *PostgresPickRepository) Settle(ctx context.Context, id uuid.UUID, outcome int, profitLoss float64, settledAt time.Time) error {
	query := `UPDATE picks SET outcome = $2, profit_loss = $3, settled_at = $4 WHERE id = $1`

	tag, err := r.db.GetPool().Exec(ctx, query, id, outcome, profitLoss, settledAt)
	if err != nil {
		return fmt.Errorf("failed to settle pick: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *PostgresPickRepository) queryPicks(ctx context.Context, query string, args ...interface{}) ([]*models.Pick, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query picks: %w", err)
	}
	defer rows.Close()

	var picks []*models.Pick
	for rows.Next() {
		pick := &models.Pick{}
		if err := rows.Scan(
			&pick.ID, &pick.EventDate, &pick.Tournament, &pick.PlayerA, &pick.PlayerB, &pick.Side, &pick.Price,
			&pick.ModelProb, &pick.ImpliedProb, &pick.Edge, &pick.Stake, &pick.KellyRaw, &pick.Bookmaker,
			&pick.Outcome, &pick.ProfitLoss, &pick.SettledAt, &pick.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanPick, err)
		}
		picks = append(picks, pick)
	}
	return picks, rows.Err()
}
