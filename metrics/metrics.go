package metrics

import (
	"context"
	"strconv"
	"time"

	"lotto/domain/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lotto_tickets_generated_total",
			Help: "Total tickets generated into inventory",
		},
	)

	ticketsSold = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lotto_tickets_sold_total",
			Help: "Total tickets sold",
		},
	)

	drawsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotto_draws_total",
			Help: "Total completed draws by mode",
		},
		[]string{"mode"},
	)

	prizesClaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotto_prizes_claimed_total",
			Help: "Total prize claims settled by tier",
		},
		[]string{"tier"},
	)

	systemResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lotto_system_resets_total",
			Help: "Total sales period resets",
		},
	)

	httpReqTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	httpReqDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "HTTP request duration in ms",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"path", "method"},
	)
)

// Subscribe wires business counters to the domain event bus.
func Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeTicketsCreated, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.TicketsCreatedEvent); ok {
			ticketsGenerated.Add(float64(ev.Count))
		}
	})
	bus.Subscribe(events.EventTypeTicketSold, func(ctx context.Context, e events.Event) {
		ticketsSold.Inc()
	})
	bus.Subscribe(events.EventTypeDrawCompleted, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.DrawCompletedEvent); ok {
			drawsTotal.WithLabelValues(string(ev.Mode)).Inc()
		}
	})
	bus.Subscribe(events.EventTypePrizeClaimed, func(ctx context.Context, e events.Event) {
		if ev, ok := e.(events.PrizeClaimedEvent); ok {
			prizesClaimed.WithLabelValues(string(ev.Tier)).Inc()
		}
	})
	bus.Subscribe(events.EventTypeSystemReset, func(ctx context.Context, e events.Event) {
		systemResets.Inc()
	})
}

// RecordHTTPRequest records request count and latency for a route pattern.
func RecordHTTPRequest(path, method string, status int, started time.Time) {
	durMs := float64(time.Since(started).Milliseconds())
	httpReqDuration.WithLabelValues(path, method).Observe(durMs)
	httpReqTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}
