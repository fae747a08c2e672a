package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus represents the settlement state of an owned ticket
type SettlementStatus string

const (
	SettlementStatusHolding SettlementStatus = "holding"
	SettlementStatusClaimed SettlementStatus = "claimed"
)

// OwnedTicket links a sold ticket to the account that bought it.
// One ticket maps to at most one ownership record; a sold ticket
// cannot be resold.
type OwnedTicket struct {
	ID          int64            `db:"id"`
	TicketID    int64            `db:"ticket_id"`
	UserID      int64            `db:"user_id"`
	Status      SettlementStatus `db:"status"`
	PurchasedAt time.Time        `db:"purchased_at"`
	ClaimedAt   *time.Time       `db:"claimed_at"`
}

// IsClaimed returns true if the ticket's reward has already been settled
func (o *OwnedTicket) IsClaimed() bool {
	return o.Status == SettlementStatusClaimed
}

// OwnedTicketDetail is an ownership record joined with its ticket row
type OwnedTicketDetail struct {
	OwnedTicket
	TicketCode  string          `db:"code"`
	TicketPrice decimal.Decimal `db:"price"`
	PeriodID    int64           `db:"period_id"`
}

// UserTicketInfo is a listing row for a user's tickets with any prize
// recognition attached
type UserTicketInfo struct {
	OwnedTicketID int64            `db:"owned_ticket_id"`
	TicketID      int64            `db:"ticket_id"`
	TicketCode    string           `db:"code"`
	Price         decimal.Decimal  `db:"price"`
	Status        SettlementStatus `db:"status"`
	PurchasedAt   time.Time        `db:"purchased_at"`
	PrizeName     *string          `db:"prize_name"`
	Reward        *decimal.Decimal `db:"reward"`
}
