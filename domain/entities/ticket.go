package entities

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus represents the sale state of a ticket
type TicketStatus string

const (
	TicketStatusAvailable TicketStatus = "available"
	TicketStatusSold      TicketStatus = "sold"
)

const (
	// CodeMin and CodeMax bound the 6-digit ticket code space.
	// 900,000 distinct values: 100000 through 999999.
	CodeMin = 100000
	CodeMax = 999999
)

var codePattern = regexp.MustCompile(`^\d{6}$`)

// IsValidCode reports whether s is a well-formed 6-digit ticket code.
func IsValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// Ticket represents a purchasable lottery ticket in a sales period
type Ticket struct {
	ID        int64           `db:"id"`
	PeriodID  int64           `db:"period_id"`
	Code      string          `db:"code"`
	Price     decimal.Decimal `db:"price"`
	Status    TicketStatus    `db:"status"`
	CreatedAt time.Time       `db:"created_at"`
}

// IsAvailable returns true if the ticket can still be purchased
func (t *Ticket) IsAvailable() bool {
	return t.Status == TicketStatusAvailable
}
