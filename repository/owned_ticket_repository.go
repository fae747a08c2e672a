package repository

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
)

// OwnedTicketRepository implements ownership record data access
type OwnedTicketRepository struct {
	q Queryable
}

// NewOwnedTicketRepositoryWithTx creates an ownership repository bound to a transaction
func NewOwnedTicketRepositoryWithTx(tx Queryable) *OwnedTicketRepository {
	return &OwnedTicketRepository{q: tx}
}

// Create inserts an ownership record. The unique constraint on ticket_id
// makes a double sale impossible even under a lost race.
func (r *OwnedTicketRepository) Create(ctx context.Context, ot *entities.OwnedTicket) error {
	query := `
		INSERT INTO owned_tickets (ticket_id, user_id, status, purchased_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query, ot.TicketID, ot.UserID, ot.Status, ot.PurchasedAt).Scan(&ot.ID)
	if err != nil {
		return fmt.Errorf("failed to create ownership record for ticket %d: %w", ot.TicketID, err)
	}
	return nil
}

const ownedDetailColumns = `
	ot.id, ot.ticket_id, ot.user_id, ot.status, ot.purchased_at, ot.claimed_at,
	t.code, t.price, t.period_id`

func scanOwnedDetail(row pgx.Row) (*entities.OwnedTicketDetail, error) {
	var d entities.OwnedTicketDetail
	err := row.Scan(
		&d.ID, &d.TicketID, &d.UserID, &d.Status, &d.PurchasedAt, &d.ClaimedAt,
		&d.TicketCode, &d.TicketPrice, &d.PeriodID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByUserAndCodeForUpdate finds a user's ownership record for a code
// within a period and takes an exclusive row lock on it. Acquired before
// the holder's balance row, matching the purchase engine's lock order.
func (r *OwnedTicketRepository) GetByUserAndCodeForUpdate(ctx context.Context, userID, periodID int64, code string) (*entities.OwnedTicketDetail, error) {
	query := `
		SELECT ` + ownedDetailColumns + `
		FROM owned_tickets ot
		JOIN tickets t ON t.id = ot.ticket_id
		WHERE ot.user_id = $1 AND t.period_id = $2 AND t.code = $3
		ORDER BY ot.purchased_at DESC
		LIMIT 1
		FOR UPDATE OF ot
	`

	d, err := scanOwnedDetail(r.q.QueryRow(ctx, query, userID, periodID, code))
	if err != nil {
		return nil, fmt.Errorf("failed to lock ownership record for code %s: %w", code, err)
	}
	return d, nil
}

// SoldCodes returns the distinct codes of all sold tickets in a period
func (r *OwnedTicketRepository) SoldCodes(ctx context.Context, periodID int64) ([]string, error) {
	query := `
		SELECT DISTINCT t.code
		FROM owned_tickets ot
		JOIN tickets t ON t.id = ot.ticket_id
		WHERE t.period_id = $1
	`

	rows, err := r.q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sold codes for period %d: %w", periodID, err)
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
		return nil, fmt.Errorf("failed to iterate sold codes: %w", err)
	}
	return codes, nil
}

// MarkClaimed flips an ownership record to claimed
func (r *OwnedTicketRepository) MarkClaimed(ctx context.Context, id int64, claimedAt time.Time) error {
	query := `
		UPDATE owned_tickets
		SET status = 'claimed', claimed_at = $1
		WHERE id = $2 AND status = 'holding'
	`
	result, err := r.q.Exec(ctx, query, claimedAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark ownership %d claimed: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ownership %d not in holding state", id)
	}
	return nil
}

func (r *OwnedTicketRepository) queryDetails(ctx context.Context, query string, args ...any) ([]*entities.OwnedTicketDetail, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []*entities.OwnedTicketDetail
	for rows.Next() {
		var d entities.OwnedTicketDetail
		err := rows.Scan(
			&d.ID, &d.TicketID, &d.UserID, &d.Status, &d.PurchasedAt, &d.ClaimedAt,
			&d.TicketCode, &d.TicketPrice, &d.PeriodID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ownership detail: %w", err)
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

// FindByExactCode returns ownership records whose ticket code equals code
func (r *OwnedTicketRepository) FindByExactCode(ctx context.Context, periodID int64, code string) ([]*entities.OwnedTicketDetail, error) {
	query := `
		SELECT ` + ownedDetailColumns + `
		FROM owned_tickets ot
		JOIN tickets t ON t.id = ot.ticket_id
		WHERE t.period_id = $1 AND t.code = $2
	`
	details, err := r.queryDetails(ctx, query, periodID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to find holders of code %s: %w", code, err)
	}
	return details, nil
}

// FindBySuffix returns ownership records whose ticket code ends with suffix
func (r *OwnedTicketRepository) FindBySuffix(ctx context.Context, periodID int64, suffix string) ([]*entities.OwnedTicketDetail, error) {
	query := `
		SELECT ` + ownedDetailColumns + `
		FROM owned_tickets ot
		JOIN tickets t ON t.id = ot.ticket_id
		WHERE t.period_id = $1 AND t.code LIKE '%' || $2
	`
	details, err := r.queryDetails(ctx, query, periodID, suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to find holders of suffix %s: %w", suffix, err)
	}
	return details, nil
}

// ListByUser returns a user's tickets with prize annotations, newest first
func (r *OwnedTicketRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.UserTicketInfo, error) {
	query := `
		SELECT
			ot.id, ot.ticket_id, t.code, t.price, ot.status, ot.purchased_at,
			pt.name, pt.reward
		FROM owned_tickets ot
		JOIN tickets t ON t.id = ot.ticket_id
		LEFT JOIN prize_awards pa ON pa.owned_ticket_id = ot.id
		LEFT JOIN prize_tiers pt ON pt.id = pa.prize_tier_id
		WHERE ot.user_id = $1
		ORDER BY ot.purchased_at DESC, t.code ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets for user %d: %w", userID, err)
	}
	defer rows.Close()

	var infos []*entities.UserTicketInfo
	for rows.Next() {
		var info entities.UserTicketInfo
		err := rows.Scan(
			&info.OwnedTicketID, &info.TicketID, &info.TicketCode, &info.Price,
			&info.Status, &info.PurchasedAt, &info.PrizeName, &info.Reward)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket info: %w", err)
		}
		infos = append(infos, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ticket infos: %w", err)
	}
	return infos, nil
}

// CountForPeriod returns the number of ownership records in a period
func (r *OwnedTicketRepository) CountForPeriod(ctx context.Context, periodID int64) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM owned_tickets ot
		JOIN tickets t ON t.id = ot.ticket_id
		WHERE t.period_id = $1
	`

	var count int64
	if err := r.q.QueryRow(ctx, query, periodID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ownership records: %w", err)
	}
	return count, nil
}
