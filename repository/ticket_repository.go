package repository

import (
	"context"
	"fmt"

	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// TicketRepository implements ticket pool data access
type TicketRepository struct {
	q Queryable
}

// NewTicketRepositoryWithTx creates a ticket repository bound to a transaction
func NewTicketRepositoryWithTx(tx Queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// GetByCodeForUpdate finds a ticket by code within a period and takes an
// exclusive row lock. This lock is always acquired before the buyer's
// balance row, never after.
func (r *TicketRepository) GetByCodeForUpdate(ctx context.Context, periodID int64, code string) (*entities.Ticket, error) {
	query := `
		SELECT id, period_id, code, price, status, created_at
		FROM tickets
		WHERE period_id = $1 AND code = $2
		FOR UPDATE
	`

	var t entities.Ticket
	err := r.q.QueryRow(ctx, query, periodID, code).Scan(
		&t.ID, &t.PeriodID, &t.Code, &t.Price, &t.Status, &t.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket %s: %w", code, err)
	}
	return &t, nil
}

// CreateBatch inserts all tickets in one statement so a partial failure
// leaves zero new tickets
func (r *TicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	query := `INSERT INTO tickets (period_id, code, price, status) VALUES `
	values := make([]interface{}, 0, len(tickets)*4)
	for i, t := range tickets {
		if i > 0 {
			query += ", "
		}
		offset := i * 4
		query += fmt.Sprintf("($%d, $%d, $%d, $%d)", offset+1, offset+2, offset+3, offset+4)
		values = append(values, t.PeriodID, t.Code, t.Price, t.Status)
	}
	query += " RETURNING id, created_at"

	rows, err := r.q.Query(ctx, query, values...)
	if err != nil {
		return fmt.Errorf("failed to batch create tickets: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		if err := rows.Scan(&tickets[i].ID, &tickets[i].CreatedAt); err != nil {
			return fmt.Errorf("failed to scan ticket result: %w", err)
		}
		i++
	}
	return rows.Err()
}

// MarkSold flips an available ticket to sold
func (r *TicketRepository) MarkSold(ctx context.Context, id int64) error {
	query := `UPDATE tickets SET status = 'sold' WHERE id = $1 AND status = 'available'`
	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark ticket %d sold: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d not available", id)
	}
	return nil
}

// CodesForPeriod returns every code already issued in a period
func (r *TicketRepository) CodesForPeriod(ctx context.Context, periodID int64) ([]string, error) {
	query := `SELECT code FROM tickets WHERE period_id = $1`

	rows, err := r.q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get codes for period %d: %w", periodID, err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate codes: %w", err)
	}
	return codes, nil
}

// ListAvailable returns purchasable tickets in a period
func (r *TicketRepository) ListAvailable(ctx context.Context, periodID int64) ([]*entities.Ticket, error) {
	query := `
		SELECT id, period_id, code, price, status, created_at
		FROM tickets
		WHERE period_id = $1 AND status = 'available'
		ORDER BY code ASC
	`

	rows, err := r.q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list available tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*entities.Ticket
	for rows.Next() {
		var t entities.Ticket
		if err := rows.Scan(&t.ID, &t.PeriodID, &t.Code, &t.Price, &t.Status, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}
	return tickets, nil
}

// DeleteForPeriod removes all tickets of a period; ownership and award
// rows go with them via cascade
func (r *TicketRepository) DeleteForPeriod(ctx context.Context, periodID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM tickets WHERE period_id = $1`, periodID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tickets for period %d: %w", periodID, err)
	}
	return result.RowsAffected(), nil
}
