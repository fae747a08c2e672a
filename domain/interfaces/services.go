package interfaces

import (
	"context"

	"lotto/domain/entities"

	"github.com/shopspring/decimal"
)

// GenerateResult reports the outcome of a bulk ticket generation
type GenerateResult struct {
	PeriodID int64
	Created  int
	Price    decimal.Decimal
}

// ResetResult reports the outcome of a system reset
type ResetResult struct {
	ClosedPeriodID int64
	NewPeriodID    int64
	TicketsCleared int64
}

// InventoryService owns the pool of purchasable tickets
type InventoryService interface {
	// GenerateTickets creates count tickets with unique 6-digit codes in
	// the open sales period. All-or-nothing.
	GenerateTickets(ctx context.Context, count int, price decimal.Decimal) (*GenerateResult, error)
	// Reset closes the open period, clears its tickets and dependent
	// records, and opens a fresh period. Irreversible.
	Reset(ctx context.Context) (*ResetResult, error)
	// AvailableTickets lists purchasable tickets in the open period.
	AvailableTickets(ctx context.Context) ([]*entities.Ticket, error)
}

// PurchaseResult reports a completed ticket purchase
type PurchaseResult struct {
	Ticket     *entities.Ticket
	OwnedID    int64
	NewBalance decimal.Decimal
}

// PurchaseService atomically converts an available ticket into an owned,
// sold ticket while debiting the buyer's balance
type PurchaseService interface {
	Purchase(ctx context.Context, userID int64, code string) (*PurchaseResult, error)
}

// TierWinners lists the holders recognized under one tier of a draw
type TierWinners struct {
	Tier    entities.TierCode
	Value   string // the winning value for this tier
	Reward  decimal.Decimal
	Holders []*entities.OwnedTicketDetail
}

// DrawOutcome is the winning value set plus per-tier winner lists
type DrawOutcome struct {
	Result  *entities.DrawResult
	Winners []TierWinners
}

// DrawService produces the winning-number set for the current period
type DrawService interface {
	Draw(ctx context.Context, mode entities.DrawMode) (*DrawOutcome, error)
}

// ClaimResult reports an exactly-once prize settlement
type ClaimResult struct {
	Tier       entities.TierCode
	TierName   string
	Reward     decimal.Decimal
	NewBalance decimal.Decimal
	TicketCode string
}

// SettlementService matches a held ticket against the prevailing draw
// record and performs the at-most-once reward credit
type SettlementService interface {
	// Claim settles a ticket against the latest draw, or the draw of
	// periodID when non-nil.
	Claim(ctx context.Context, userID int64, code string, periodID *int64) (*ClaimResult, error)
	// LatestDraw returns the authoritative draw record, optionally scoped
	// to a period.
	LatestDraw(ctx context.Context, periodID *int64) (*entities.DrawResult, error)
}

// TopUpResult reports a wallet credit
type TopUpResult struct {
	NewBalance decimal.Decimal
}

// WalletService is the account-facing surface over the ledger accessor
type WalletService interface {
	TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*TopUpResult, error)
	Register(ctx context.Context, username, password string) (*entities.User, error)
	Login(ctx context.Context, username, password string) (*entities.User, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	UserTickets(ctx context.Context, userID int64) ([]*entities.UserTicketInfo, error)
	// History returns the user's most recent ledger entries, newest first.
	History(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error)
}
