package events

import (
	"context"
	"sync"

	"lotto/domain/entities"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange  EventType = "balance_change"
	EventTypeTicketsCreated EventType = "tickets_created"
	EventTypeTicketSold     EventType = "ticket_sold"
	EventTypeDrawCompleted  EventType = "draw_completed"
	EventTypePrizeClaimed   EventType = "prize_claimed"
	EventTypeSystemReset    EventType = "system_reset"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a settled wallet balance change
type BalanceChangeEvent struct {
	UserID       int64
	OldBalance   decimal.Decimal
	NewBalance   decimal.Decimal
	ChangeAmount decimal.Decimal
	EntryType    entities.LedgerEntryType
}

func (e BalanceChangeEvent) Type() EventType { return EventTypeBalanceChange }

// TicketsCreatedEvent represents a bulk ticket generation
type TicketsCreatedEvent struct {
	PeriodID int64
	Count    int
	Price    decimal.Decimal
}

func (e TicketsCreatedEvent) Type() EventType { return EventTypeTicketsCreated }

// TicketSoldEvent represents a completed purchase
type TicketSoldEvent struct {
	UserID     int64
	TicketID   int64
	TicketCode string
	Price      decimal.Decimal
}

func (e TicketSoldEvent) Type() EventType { return EventTypeTicketSold }

// DrawCompletedEvent represents a published draw result
type DrawCompletedEvent struct {
	DrawResultID int64
	PeriodID     int64
	Mode         entities.DrawMode
	WinnerCount  int
}

func (e DrawCompletedEvent) Type() EventType { return EventTypeDrawCompleted }

// PrizeClaimedEvent represents an exactly-once reward settlement
type PrizeClaimedEvent struct {
	UserID        int64
	OwnedTicketID int64
	TicketCode    string
	Tier          entities.TierCode
	Reward        decimal.Decimal
}

func (e PrizeClaimedEvent) Type() EventType { return EventTypePrizeClaimed }

// SystemResetEvent represents a period reset
type SystemResetEvent struct {
	ClosedPeriodID int64
	NewPeriodID    int64
	TicketsCleared int64
}

func (e SystemResetEvent) Type() EventType { return EventTypeSystemReset }

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber never blocks request handling.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after a successful commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional buffer over real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful DB commit.
// Uses a background context so event delivery is independent of the
// transaction's context lifetime.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard clears pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
