package repository

import (
	"context"
	"fmt"

	"lotto/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, username, password, role, balance, created_at, updated_at`

// UserRepository implements account and ledger-balance access
type UserRepository struct {
	q Queryable
}

// NewUserRepositoryWithTx creates a user repository bound to a transaction
func NewUserRepositoryWithTx(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// GetByIDForUpdate retrieves a user by ID with an exclusive row lock.
// Every money-moving operation goes through this lock.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	u, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return u, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(r.q.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return u, nil
}

// Create inserts a new user with the given starting balance
func (r *UserRepository) Create(ctx context.Context, username, password string, initialBalance decimal.Decimal) (*entities.User, error) {
	query := `
		INSERT INTO users (username, password, role, balance)
		VALUES ($1, $2, 'user', $3)
		RETURNING ` + userColumns

	u, err := scanUser(r.q.QueryRow(ctx, query, username, password, initialBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return u, nil
}

// UpdateBalance sets a user's balance. The caller holds the row lock.
func (r *UserRepository) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	query := `UPDATE users SET balance = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.q.Exec(ctx, query, newBalance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// GetAll returns all users ordered by creation time
func (r *UserRepository) GetAll(ctx context.Context) ([]*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		var u entities.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.Balance, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
