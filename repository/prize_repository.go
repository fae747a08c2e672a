package repository

import (
	"context"
	"fmt"

	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// PrizeTierRepository implements read access to the prize tier reference table
type PrizeTierRepository struct {
	q Queryable
}

// NewPrizeTierRepositoryWithTx creates a tier repository bound to a transaction
func NewPrizeTierRepositoryWithTx(tx Queryable) *PrizeTierRepository {
	return &PrizeTierRepository{q: tx}
}

// GetByCode returns the tier for a code, or nil if absent
func (r *PrizeTierRepository) GetByCode(ctx context.Context, code entities.TierCode) (*entities.PrizeTier, error) {
	query := `SELECT id, code, name, reward FROM prize_tiers WHERE code = $1`

	var t entities.PrizeTier
	err := r.q.QueryRow(ctx, query, code).Scan(&t.ID, &t.Code, &t.Name, &t.Reward)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize tier %s: %w", code, err)
	}
	return &t, nil
}

// GetAll returns all tiers in claim-priority order
func (r *PrizeTierRepository) GetAll(ctx context.Context) ([]*entities.PrizeTier, error) {
	query := `
		SELECT id, code, name, reward
		FROM prize_tiers
		ORDER BY array_position(ARRAY['prize1','prize2','prize3','last3','last2'], code)
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize tiers: %w", err)
	}
	defer rows.Close()

	var tiers []*entities.PrizeTier
	for rows.Next() {
		var t entities.PrizeTier
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Reward); err != nil {
			return nil, fmt.Errorf("failed to scan prize tier: %w", err)
		}
		tiers = append(tiers, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prize tiers: %w", err)
	}
	return tiers, nil
}

// PrizeAwardRepository implements prize award data access
type PrizeAwardRepository struct {
	q Queryable
}

// NewPrizeAwardRepositoryWithTx creates an award repository bound to a transaction
func NewPrizeAwardRepositoryWithTx(tx Queryable) *PrizeAwardRepository {
	return &PrizeAwardRepository{q: tx}
}

// Create inserts an award. The unique constraint on owned_ticket_id makes
// the insert idempotent; Create reports whether this call won the insert.
func (r *PrizeAwardRepository) Create(ctx context.Context, a *entities.PrizeAward) (bool, error) {
	query := `
		INSERT INTO prize_awards (owned_ticket_id, prize_tier_id, draw_result_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (owned_ticket_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, a.OwnedTicketID, a.PrizeTierID, a.DrawResultID).Scan(&a.ID, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create prize award: %w", err)
	}
	return true, nil
}

// GetByOwnedTicket returns the award for an ownership record, or nil
func (r *PrizeAwardRepository) GetByOwnedTicket(ctx context.Context, ownedTicketID int64) (*entities.PrizeAward, error) {
	query := `
		SELECT id, owned_ticket_id, prize_tier_id, draw_result_id, created_at
		FROM prize_awards
		WHERE owned_ticket_id = $1
	`

	var a entities.PrizeAward
	err := r.q.QueryRow(ctx, query, ownedTicketID).Scan(
		&a.ID, &a.OwnedTicketID, &a.PrizeTierID, &a.DrawResultID, &a.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prize award for ownership %d: %w", ownedTicketID, err)
	}
	return &a, nil
}
