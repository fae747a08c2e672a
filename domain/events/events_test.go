package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBus_EmitReachesSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	var mu sync.Mutex
	var got []Event
	done := make(chan struct{}, 1)

	bus.Subscribe(EventTypeTicketSold, func(ctx context.Context, e Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Emit(context.Background(), TicketSoldEvent{UserID: 7, TicketCode: "111111"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 1)
	assert.Equal(t, EventTypeTicketSold, got[0].Type())
}

func TestTransactionalBus_FlushAfterCommit(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	var mu sync.Mutex
	count := 0
	done := make(chan struct{}, 2)

	bus.Subscribe(EventTypeTicketSold, func(ctx context.Context, e Event) {
		mu.Lock()
		count++
		mu.Unlock()
		done <- struct{}{}
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(TicketSoldEvent{UserID: 1})
	txBus.Publish(TicketSoldEvent{UserID: 2})

	// Nothing is delivered until flush.
	mu.Lock()
	assert.Equal(t, 0, count)
	mu.Unlock()

	txBus.Flush(context.Background())
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("pending event was not delivered")
		}
	}

	mu.Lock()
	assert.Equal(t, 2, count)
	mu.Unlock()
}

func TestTransactionalBus_DiscardDropsPending(t *testing.T) {
	t.Parallel()

	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.Subscribe(EventTypeTicketSold, func(ctx context.Context, e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	txBus := NewTransactionalBus(bus)
	txBus.Publish(TicketSoldEvent{UserID: 1})
	txBus.Discard()
	txBus.Flush(context.Background())

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, count)
	mu.Unlock()
}
