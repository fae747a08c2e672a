package repository

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// SalesPeriodRepository implements sales period data access
type SalesPeriodRepository struct {
	q Queryable
}

// NewSalesPeriodRepositoryWithTx creates a period repository bound to a transaction
func NewSalesPeriodRepositoryWithTx(tx Queryable) *SalesPeriodRepository {
	return &SalesPeriodRepository{q: tx}
}

// GetOpen returns the open period, or nil if none exists
func (r *SalesPeriodRepository) GetOpen(ctx context.Context) (*entities.SalesPeriod, error) {
	query := `
		SELECT id, opened_at, closed_at
		FROM sales_periods
		WHERE closed_at IS NULL
		ORDER BY id DESC
		LIMIT 1
	`

	var p entities.SalesPeriod
	err := r.q.QueryRow(ctx, query).Scan(&p.ID, &p.OpenedAt, &p.ClosedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open period: %w", err)
	}
	return &p, nil
}

// GetOrCreateOpen returns the open period, opening one if needed
func (r *SalesPeriodRepository) GetOrCreateOpen(ctx context.Context) (*entities.SalesPeriod, error) {
	p, err := r.GetOpen(ctx)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	return r.Open(ctx)
}

// Open creates a fresh open period. The partial unique index on open
// periods guarantees at most one at a time.
func (r *SalesPeriodRepository) Open(ctx context.Context) (*entities.SalesPeriod, error) {
	query := `
		INSERT INTO sales_periods (opened_at)
		VALUES (NOW())
		RETURNING id, opened_at, closed_at
	`

	var p entities.SalesPeriod
	if err := r.q.QueryRow(ctx, query).Scan(&p.ID, &p.OpenedAt, &p.ClosedAt); err != nil {
		return nil, fmt.Errorf("failed to open sales period: %w", err)
	}
	return &p, nil
}

// Close marks a period closed
func (r *SalesPeriodRepository) Close(ctx context.Context, id int64, closedAt time.Time) error {
	query := `UPDATE sales_periods SET closed_at = $1 WHERE id = $2 AND closed_at IS NULL`
	result, err := r.q.Exec(ctx, query, closedAt, id)
	if err != nil {
		return fmt.Errorf("failed to close period %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("period %d not open", id)
	}
	return nil
}
