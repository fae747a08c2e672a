package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role controls access to administrative operations
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account with a wallet ledger balance
type User struct {
	ID        int64           `db:"id"`
	Username  string          `db:"username"`
	Password  string          `db:"password"`
	Role      Role            `db:"role"`
	Balance   decimal.Decimal `db:"balance"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// IsPrivileged returns true if the user may perform admin-only operations
func (u *User) IsPrivileged() bool {
	return u.Role == RoleAdmin
}

// CanAfford returns true if the balance covers the given price exactly.
// Comparison is on the decimal values themselves, never on formatted
// strings or floats.
func (u *User) CanAfford(price decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(price)
}
