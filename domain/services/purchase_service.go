package services

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// purchaseService implements the atomic available→sold transition.
// Row locks are always taken in the same order, ticket row before user
// row, so concurrent purchases and claims cannot deadlock.
type purchaseService struct {
	periodRepo interfaces.SalesPeriodRepository
	ticketRepo interfaces.TicketRepository
	ownedRepo  interfaces.OwnedTicketRepository
	userRepo   interfaces.UserRepository
	ledgerRepo interfaces.LedgerEntryRepository
	publisher  interfaces.EventPublisher
}

// NewPurchaseService creates a purchase service bound to one unit of
// work's repositories
func NewPurchaseService(
	periodRepo interfaces.SalesPeriodRepository,
	ticketRepo interfaces.TicketRepository,
	ownedRepo interfaces.OwnedTicketRepository,
	userRepo interfaces.UserRepository,
	ledgerRepo interfaces.LedgerEntryRepository,
	publisher interfaces.EventPublisher,
) interfaces.PurchaseService {
	return &purchaseService{
		periodRepo: periodRepo,
		ticketRepo: ticketRepo,
		ownedRepo:  ownedRepo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// Purchase converts an available ticket into an owned, sold ticket while
// debiting the buyer. Under concurrent attempts on the same code exactly
// one succeeds; the rest observe TICKET_ALREADY_SOLD.
func (s *purchaseService) Purchase(ctx context.Context, userID int64, code string) (*interfaces.PurchaseResult, error) {
	// Validation happens before any lock is taken.
	if userID <= 0 {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("missing account id"))
	}
	if !entities.IsValidCode(code) {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed ticket code %q", code))
	}

	period, err := s.periodRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open period: %w", err)
	}
	if period == nil {
		return nil, apperrors.ErrTicketNotFound
	}

	ticket, err := s.ticketRepo.GetByCodeForUpdate(ctx, period.ID, code)
	if err != nil {
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}
	if ticket == nil {
		return nil, apperrors.ErrTicketNotFound
	}
	if !ticket.IsAvailable() {
		return nil, apperrors.ErrTicketAlreadySold
	}

	buyer, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock buyer: %w", err)
	}
	if buyer == nil {
		return nil, apperrors.ErrUserNotFound
	}
	if !buyer.CanAfford(ticket.Price) {
		return nil, apperrors.ErrInsufficientFunds
	}

	// Debit, flip status, create the ownership record. All three commit
	// as one unit with the caller's transaction or not at all.
	newBalance := buyer.Balance.Sub(ticket.Price)
	if err := s.userRepo.UpdateBalance(ctx, buyer.ID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to debit buyer: %w", err)
	}

	if err := s.ticketRepo.MarkSold(ctx, ticket.ID); err != nil {
		return nil, fmt.Errorf("failed to mark ticket sold: %w", err)
	}

	owned := &entities.OwnedTicket{
		TicketID:    ticket.ID,
		UserID:      buyer.ID,
		Status:      entities.SettlementStatusHolding,
		PurchasedAt: time.Now().UTC(),
	}
	if err := s.ownedRepo.Create(ctx, owned); err != nil {
		return nil, fmt.Errorf("failed to create ownership record: %w", err)
	}

	if err := s.ledgerRepo.Record(ctx, &entities.LedgerEntry{
		UserID:        buyer.ID,
		EntryType:     entities.LedgerEntryTicketPurchase,
		Amount:        ticket.Price.Neg(),
		BalanceBefore: buyer.Balance,
		BalanceAfter:  newBalance,
		Metadata: map[string]interface{}{
			"ticket_id":   ticket.ID,
			"ticket_code": ticket.Code,
			"period_id":   period.ID,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     buyer.ID,
		"ticketCode": ticket.Code,
		"price":      ticket.Price,
	}).Info("Ticket purchased")

	s.publisher.Publish(events.TicketSoldEvent{
		UserID:     buyer.ID,
		TicketID:   ticket.ID,
		TicketCode: ticket.Code,
		Price:      ticket.Price,
	})
	s.publisher.Publish(events.BalanceChangeEvent{
		UserID:       buyer.ID,
		OldBalance:   buyer.Balance,
		NewBalance:   newBalance,
		ChangeAmount: ticket.Price.Neg(),
		EntryType:    entities.LedgerEntryTicketPurchase,
	})

	ticket.Status = entities.TicketStatusSold
	return &interfaces.PurchaseResult{
		Ticket:     ticket,
		OwnedID:    owned.ID,
		NewBalance: newBalance,
	}, nil
}
