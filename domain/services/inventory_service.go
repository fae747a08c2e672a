package services

import (
	"context"
	"fmt"
	"time"

	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// attemptsPerTicket bounds the unique-code search. With a 900,000-value
// space collisions are rare in practice, but the loop must terminate even
// if the pool is nearly exhausted.
const attemptsPerTicket = 25

// inventoryService implements business logic for the ticket pool
type inventoryService struct {
	periodRepo interfaces.SalesPeriodRepository
	ticketRepo interfaces.TicketRepository
	ownedRepo  interfaces.OwnedTicketRepository
	publisher  interfaces.EventPublisher

	// code space bounds, overridable in tests
	codeMin  int64
	codeSpan int64
}

// NewInventoryService creates a new inventory service bound to one unit
// of work's repositories
func NewInventoryService(
	periodRepo interfaces.SalesPeriodRepository,
	ticketRepo interfaces.TicketRepository,
	ownedRepo interfaces.OwnedTicketRepository,
	publisher interfaces.EventPublisher,
) interfaces.InventoryService {
	return &inventoryService{
		periodRepo: periodRepo,
		ticketRepo: ticketRepo,
		ownedRepo:  ownedRepo,
		publisher:  publisher,
		codeMin:    entities.CodeMin,
		codeSpan:   entities.CodeMax - entities.CodeMin + 1,
	}
}

// GenerateTickets creates count tickets with freshly generated unique
// codes in the open sales period. The insert is a single batch statement:
// partial failure leaves zero new tickets.
func (s *inventoryService) GenerateTickets(ctx context.Context, count int, price decimal.Decimal) (*interfaces.GenerateResult, error) {
	if count <= 0 {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("count must be positive, got %d", count))
	}
	if !price.IsPositive() {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("price must be positive, got %s", price))
	}

	period, err := s.periodRepo.GetOrCreateOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve open sales period: %w", err)
	}

	existing, err := s.ticketRepo.CodesForPeriod(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing codes: %w", err)
	}
	used := make(map[string]bool, len(existing)+count)
	for _, c := range existing {
		used[c] = true
	}

	codes, err := s.generateUniqueCodes(used, count)
	if err != nil {
		return nil, err
	}

	tickets := make([]*entities.Ticket, 0, count)
	for _, code := range codes {
		tickets = append(tickets, &entities.Ticket{
			PeriodID: period.ID,
			Code:     code,
			Price:    price,
			Status:   entities.TicketStatusAvailable,
		})
	}

	if err := s.ticketRepo.CreateBatch(ctx, tickets); err != nil {
		return nil, fmt.Errorf("failed to create tickets: %w", err)
	}

	log.WithFields(log.Fields{
		"periodID": period.ID,
		"count":    count,
		"price":    price,
	}).Info("Generated tickets")

	s.publisher.Publish(events.TicketsCreatedEvent{
		PeriodID: period.ID,
		Count:    count,
		Price:    price,
	})

	return &interfaces.GenerateResult{
		PeriodID: period.ID,
		Created:  count,
		Price:    price,
	}, nil
}

// generateUniqueCodes draws count fresh codes not present in used. The
// attempt budget bounds the search; exhausting it fails the whole
// generation rather than looping forever.
func (s *inventoryService) generateUniqueCodes(used map[string]bool, count int) ([]string, error) {
	if int64(len(used))+int64(count) > s.codeSpan {
		return nil, apperrors.ErrGenerationFailed.Wrap(
			fmt.Errorf("code space exhausted: %d in use, %d requested", len(used), count))
	}

	codes := make([]string, 0, count)
	attempts := 0
	maxAttempts := count * attemptsPerTicket

	for len(codes) < count {
		if attempts >= maxAttempts {
			return nil, apperrors.ErrGenerationFailed.Wrap(
				fmt.Errorf("gave up after %d attempts with %d of %d codes found", attempts, len(codes), count))
		}
		attempts++

		code, err := s.randomPoolCode()
		if err != nil {
			return nil, apperrors.ErrGenerationFailed.Wrap(err)
		}
		if used[code] {
			continue
		}
		used[code] = true
		codes = append(codes, code)
	}

	return codes, nil
}

func (s *inventoryService) randomPoolCode() (string, error) {
	if s.codeMin == entities.CodeMin && s.codeSpan == entities.CodeMax-entities.CodeMin+1 {
		return randomCode()
	}
	// shrunken space, tests only
	n, err := randomIndex(s.codeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", s.codeMin+n), nil
}

// Reset clears the active sales pool: the open period is closed, its
// tickets (with dependent ownership and award records) are deleted, and
// a fresh period is opened. Draw history survives.
func (s *inventoryService) Reset(ctx context.Context) (*interfaces.ResetResult, error) {
	period, err := s.periodRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open period: %w", err)
	}

	var closedID, cleared int64
	if period != nil {
		cleared, err = s.ticketRepo.DeleteForPeriod(ctx, period.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to clear tickets: %w", err)
		}
		if err := s.periodRepo.Close(ctx, period.ID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("failed to close period: %w", err)
		}
		closedID = period.ID
	}

	next, err := s.periodRepo.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open new period: %w", err)
	}

	log.WithFields(log.Fields{
		"closedPeriodID": closedID,
		"newPeriodID":    next.ID,
		"ticketsCleared": cleared,
	}).Warn("System reset")

	s.publisher.Publish(events.SystemResetEvent{
		ClosedPeriodID: closedID,
		NewPeriodID:    next.ID,
		TicketsCleared: cleared,
	})

	return &interfaces.ResetResult{
		ClosedPeriodID: closedID,
		NewPeriodID:    next.ID,
		TicketsCleared: cleared,
	}, nil
}

// AvailableTickets lists purchasable tickets in the open period
func (s *inventoryService) AvailableTickets(ctx context.Context) ([]*entities.Ticket, error) {
	period, err := s.periodRepo.GetOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get open period: %w", err)
	}
	if period == nil {
		return nil, nil
	}
	return s.ticketRepo.ListAvailable(ctx, period.ID)
}
