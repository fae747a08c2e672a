package repository

import (
	"context"
	"fmt"

	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

const drawColumns = `id, period_id, mode, prize1, prize2, prize3, last3, last2, drawn_at`

// DrawResultRepository implements immutable draw record access
type DrawResultRepository struct {
	q Queryable
}

// NewDrawResultRepositoryWithTx creates a draw repository bound to a transaction
func NewDrawResultRepositoryWithTx(tx Queryable) *DrawResultRepository {
	return &DrawResultRepository{q: tx}
}

// Create persists a draw result. Rows are insert-only; nothing ever
// updates them.
func (r *DrawResultRepository) Create(ctx context.Context, d *entities.DrawResult) error {
	query := `
		INSERT INTO draw_results (period_id, mode, prize1, prize2, prize3, last3, last2, drawn_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		d.PeriodID, d.Mode, d.Prize1, d.Prize2, d.Prize3, d.Last3, d.Last2, d.DrawnAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("failed to create draw result: %w", err)
	}
	return nil
}

func scanDraw(row pgx.Row) (*entities.DrawResult, error) {
	var d entities.DrawResult
	err := row.Scan(&d.ID, &d.PeriodID, &d.Mode, &d.Prize1, &d.Prize2, &d.Prize3, &d.Last3, &d.Last2, &d.DrawnAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetLatest returns the most recent draw overall, or nil
func (r *DrawResultRepository) GetLatest(ctx context.Context) (*entities.DrawResult, error) {
	query := `SELECT ` + drawColumns + ` FROM draw_results ORDER BY drawn_at DESC, id DESC LIMIT 1`
	d, err := scanDraw(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest draw: %w", err)
	}
	return d, nil
}

// GetLatestForPeriod returns the most recent draw of a period, or nil
func (r *DrawResultRepository) GetLatestForPeriod(ctx context.Context, periodID int64) (*entities.DrawResult, error) {
	query := `SELECT ` + drawColumns + ` FROM draw_results WHERE period_id = $1 ORDER BY drawn_at DESC, id DESC LIMIT 1`
	d, err := scanDraw(r.q.QueryRow(ctx, query, periodID))
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for period %d: %w", periodID, err)
	}
	return d, nil
}
