package repository

import (
	"context"
	"fmt"

	"lotto/database"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the interfaces.UnitOfWork transaction boundary
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	userRepo   *UserRepository
	periodRepo *SalesPeriodRepository
	ticketRepo *TicketRepository
	ownedRepo  *OwnedTicketRepository
	drawRepo   *DrawResultRepository
	tierRepo   *PrizeTierRepository
	awardRepo  *PrizeAwardRepository
	ledgerRepo *LedgerEntryRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction and binds every repository to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = NewUserRepositoryWithTx(tx)
	u.periodRepo = NewSalesPeriodRepositoryWithTx(tx)
	u.ticketRepo = NewTicketRepositoryWithTx(tx)
	u.ownedRepo = NewOwnedTicketRepositoryWithTx(tx)
	u.drawRepo = NewDrawResultRepositoryWithTx(tx)
	u.tierRepo = NewPrizeTierRepositoryWithTx(tx)
	u.awardRepo = NewPrizeAwardRepositoryWithTx(tx)
	u.ledgerRepo = NewLedgerEntryRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events on success
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}
	return nil
}

// Rollback rolls back the transaction and discards pending events.
// Safe to defer after a commit: a finished transaction is a no-op.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) mustBeStarted() {
	if u.tx == nil {
		panic("unit of work not started - call Begin() first")
	}
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	u.mustBeStarted()
	return u.userRepo
}

// SalesPeriodRepository returns the period repository for this unit of work
func (u *unitOfWork) SalesPeriodRepository() interfaces.SalesPeriodRepository {
	u.mustBeStarted()
	return u.periodRepo
}

// TicketRepository returns the ticket repository for this unit of work
func (u *unitOfWork) TicketRepository() interfaces.TicketRepository {
	u.mustBeStarted()
	return u.ticketRepo
}

// OwnedTicketRepository returns the ownership repository for this unit of work
func (u *unitOfWork) OwnedTicketRepository() interfaces.OwnedTicketRepository {
	u.mustBeStarted()
	return u.ownedRepo
}

// DrawResultRepository returns the draw repository for this unit of work
func (u *unitOfWork) DrawResultRepository() interfaces.DrawResultRepository {
	u.mustBeStarted()
	return u.drawRepo
}

// PrizeTierRepository returns the tier repository for this unit of work
func (u *unitOfWork) PrizeTierRepository() interfaces.PrizeTierRepository {
	u.mustBeStarted()
	return u.tierRepo
}

// PrizeAwardRepository returns the award repository for this unit of work
func (u *unitOfWork) PrizeAwardRepository() interfaces.PrizeAwardRepository {
	u.mustBeStarted()
	return u.awardRepo
}

// LedgerEntryRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerEntryRepository() interfaces.LedgerEntryRepository {
	u.mustBeStarted()
	return u.ledgerRepo
}

// EventBus returns the transactional event publisher for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
