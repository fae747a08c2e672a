package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntryType represents the kind of balance change
type LedgerEntryType string

// All ledger entry types supported by the system
const (
	LedgerEntryTopUp          LedgerEntryType = "topup"
	LedgerEntryTicketPurchase LedgerEntryType = "ticket_purchase"
	LedgerEntryPrizeClaim     LedgerEntryType = "prize_claim"
	LedgerEntryRegistration   LedgerEntryType = "registration"
)

// LedgerEntry is one settled movement on a user's wallet balance.
// The registration grant is recorded as an entry too, so the signed sum
// of all entry amounts for a user always equals the current balance.
type LedgerEntry struct {
	ID            int64                  `db:"id"`
	UserID        int64                  `db:"user_id"`
	EntryType     LedgerEntryType        `db:"entry_type"`
	Amount        decimal.Decimal        `db:"amount"` // signed: debits negative, credits positive
	BalanceBefore decimal.Decimal        `db:"balance_before"`
	BalanceAfter  decimal.Decimal        `db:"balance_after"`
	Metadata      map[string]interface{} `db:"metadata"`
	CreatedAt     time.Time              `db:"created_at"`
}
