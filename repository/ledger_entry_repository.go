package repository

import (
	"context"
	"fmt"

	"lotto/domain/entities"

	"github.com/shopspring/decimal"
)

// LedgerEntryRepository implements the append-only wallet movement log
type LedgerEntryRepository struct {
	q Queryable
}

// NewLedgerEntryRepositoryWithTx creates a ledger repository bound to a transaction
func NewLedgerEntryRepositoryWithTx(tx Queryable) *LedgerEntryRepository {
	return &LedgerEntryRepository{q: tx}
}

// Record inserts a ledger entry
func (r *LedgerEntryRepository) Record(ctx context.Context, e *entities.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (user_id, entry_type, amount, balance_before, balance_after, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	metadata := e.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	err := r.q.QueryRow(ctx, query,
		e.UserID, e.EntryType, e.Amount, e.BalanceBefore, e.BalanceAfter, metadata,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

// ListByUser returns a user's most recent entries
func (r *LedgerEntryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, user_id, entry_type, amount, balance_before, balance_after, metadata, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*entities.LedgerEntry
	for rows.Next() {
		var e entities.LedgerEntry
		err := rows.Scan(&e.ID, &e.UserID, &e.EntryType, &e.Amount,
			&e.BalanceBefore, &e.BalanceAfter, &e.Metadata, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}
	return entries, nil
}

// SumForUser returns the signed sum of all entry amounts for a user
func (r *LedgerEntryRepository) SumForUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = $1`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, userID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum ledger entries for user %d: %w", userID, err)
	}
	return sum, nil
}
