package interfaces

import (
	"context"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/shopspring/decimal"
)

// UserRepository provides access to accounts and their ledger balances
type UserRepository interface {
	// GetByID retrieves a user by ID. Returns nil if not found.
	GetByID(ctx context.Context, id int64) (*entities.User, error)
	// GetByIDForUpdate retrieves a user by ID with an exclusive row lock.
	// Returns nil if not found.
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.User, error)
	// GetByUsername retrieves a user by username. Returns nil if not found.
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	// Create inserts a new user with the given starting balance.
	Create(ctx context.Context, username, password string, initialBalance decimal.Decimal) (*entities.User, error)
	// UpdateBalance sets a user's balance.
	UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error
	// GetAll returns all users ordered by creation time.
	GetAll(ctx context.Context) ([]*entities.User, error)
}

// SalesPeriodRepository manages the explicit single-active-period state
type SalesPeriodRepository interface {
	// GetOpen returns the open period, or nil if none exists.
	GetOpen(ctx context.Context) (*entities.SalesPeriod, error)
	// GetOrCreateOpen returns the open period, opening one if needed.
	GetOrCreateOpen(ctx context.Context) (*entities.SalesPeriod, error)
	// Close marks a period closed.
	Close(ctx context.Context, id int64, closedAt time.Time) error
	// Open creates a fresh open period.
	Open(ctx context.Context) (*entities.SalesPeriod, error)
}

// TicketRepository provides access to the purchasable ticket pool
type TicketRepository interface {
	// GetByCodeForUpdate finds a ticket by code within a period and takes
	// an exclusive row lock. Returns nil if not found.
	GetByCodeForUpdate(ctx context.Context, periodID int64, code string) (*entities.Ticket, error)
	// CreateBatch inserts all tickets in one statement, all-or-nothing.
	CreateBatch(ctx context.Context, tickets []*entities.Ticket) error
	// MarkSold flips an available ticket to sold.
	MarkSold(ctx context.Context, id int64) error
	// CodesForPeriod returns every code already issued in a period.
	CodesForPeriod(ctx context.Context, periodID int64) ([]string, error)
	// ListAvailable returns purchasable tickets in a period.
	ListAvailable(ctx context.Context, periodID int64) ([]*entities.Ticket, error)
	// DeleteForPeriod removes all tickets of a period, cascading to
	// ownership and award records. Returns the number of tickets removed.
	DeleteForPeriod(ctx context.Context, periodID int64) (int64, error)
}

// OwnedTicketRepository provides access to ownership records
type OwnedTicketRepository interface {
	// Create inserts an ownership record with status holding.
	Create(ctx context.Context, ot *entities.OwnedTicket) error
	// GetByUserAndCodeForUpdate finds a user's ownership record for a code
	// within a period, locking the row. Returns nil if not found.
	GetByUserAndCodeForUpdate(ctx context.Context, userID, periodID int64, code string) (*entities.OwnedTicketDetail, error)
	// SoldCodes returns the distinct codes of all sold tickets in a period.
	SoldCodes(ctx context.Context, periodID int64) ([]string, error)
	// MarkClaimed flips an ownership record to claimed.
	MarkClaimed(ctx context.Context, id int64, claimedAt time.Time) error
	// FindByExactCode returns ownership records whose ticket code equals code.
	FindByExactCode(ctx context.Context, periodID int64, code string) ([]*entities.OwnedTicketDetail, error)
	// FindBySuffix returns ownership records whose ticket code ends with suffix.
	FindBySuffix(ctx context.Context, periodID int64, suffix string) ([]*entities.OwnedTicketDetail, error)
	// ListByUser returns a user's tickets with prize annotations.
	ListByUser(ctx context.Context, userID int64) ([]*entities.UserTicketInfo, error)
	// CountForPeriod returns the number of ownership records in a period.
	CountForPeriod(ctx context.Context, periodID int64) (int64, error)
}

// DrawResultRepository provides access to immutable draw records
type DrawResultRepository interface {
	// Create persists a draw result.
	Create(ctx context.Context, d *entities.DrawResult) error
	// GetLatest returns the most recent draw overall, or nil if none.
	GetLatest(ctx context.Context) (*entities.DrawResult, error)
	// GetLatestForPeriod returns the most recent draw of a period, or nil.
	GetLatestForPeriod(ctx context.Context, periodID int64) (*entities.DrawResult, error)
}

// PrizeTierRepository provides read access to the prize tier reference table
type PrizeTierRepository interface {
	// GetByCode returns the tier for a code, or nil if absent.
	GetByCode(ctx context.Context, code entities.TierCode) (*entities.PrizeTier, error)
	// GetAll returns all tiers in priority order.
	GetAll(ctx context.Context) ([]*entities.PrizeTier, error)
}

// PrizeAwardRepository provides access to prize award records
type PrizeAwardRepository interface {
	// Create inserts an award. Inserting a second award for the same
	// ownership record is a no-op; Create reports whether a row was
	// actually inserted.
	Create(ctx context.Context, a *entities.PrizeAward) (bool, error)
	// GetByOwnedTicket returns the award for an ownership record, or nil.
	GetByOwnedTicket(ctx context.Context, ownedTicketID int64) (*entities.PrizeAward, error)
}

// LedgerEntryRepository records settled balance movements
type LedgerEntryRepository interface {
	// Record inserts a ledger entry.
	Record(ctx context.Context, e *entities.LedgerEntry) error
	// ListByUser returns a user's most recent entries.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error)
	// SumForUser returns the signed sum of all entry amounts for a user.
	SumForUser(ctx context.Context, userID int64) (decimal.Decimal, error)
}

// EventPublisher buffers domain events for publication after commit
type EventPublisher interface {
	Publish(e events.Event)
}

// UnitOfWork is a transaction boundary over all repositories. Every
// multi-step mutation runs inside exactly one unit of work: any failure
// at any step rolls back all prior steps of that operation.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	SalesPeriodRepository() SalesPeriodRepository
	TicketRepository() TicketRepository
	OwnedTicketRepository() OwnedTicketRepository
	DrawResultRepository() DrawResultRepository
	PrizeTierRepository() PrizeTierRepository
	PrizeAwardRepository() PrizeAwardRepository
	LedgerEntryRepository() LedgerEntryRepository

	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
