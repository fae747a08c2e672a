package api

import (
	"net/http"
	"time"

	"lotto/config"
	"lotto/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(requestMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Account-ID"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Route("/lotto", func(r chi.Router) {
			r.Post("/purchase", h.Purchase)
			r.Get("/available", h.ListAvailable)
		})

		r.Route("/prizes", func(r chi.Router) {
			r.Post("/claim", h.Claim)
		})

		r.Route("/results", func(r chi.Router) {
			r.Get("/latest", h.LatestDraw)
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Post("/topup", h.TopUp)
			r.Get("/history", h.WalletHistory)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}/tickets", h.UserTickets)
		})

		// Admin routes
		r.Route("/admin", func(r chi.Router) {
			r.Post("/tickets", h.GenerateTickets)
			r.Post("/draw", h.Draw)
			r.Post("/reset", h.ResetSystem)
			r.Get("/users", h.ListUsers)
		})
	})

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestID echoes the caller's X-Request-Id or assigns a fresh one so
// every response can be correlated with server logs.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// requestMetrics records count and latency per route pattern so the
// label space stays bounded.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.RecordHTTPRequest(pattern, r.Method, ww.Status(), started)
	})
}
