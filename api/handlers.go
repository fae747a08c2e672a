package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/interfaces"
	"lotto/domain/services"

	"github.com/go-chi/chi/v5"
)

// Handler holds all dependencies for HTTP handlers. Every mutating
// handler runs its operation inside exactly one unit of work.
type Handler struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewHandler creates a new handler backed by the given unit of work
// factory
func NewHandler(uowFactory interfaces.UnitOfWorkFactory) *Handler {
	return &Handler{uowFactory: uowFactory}
}

// inUnitOfWork runs fn inside a fresh unit of work, committing on
// success and rolling back on any error.
func (h *Handler) inUnitOfWork(ctx context.Context, fn func(uow interfaces.UnitOfWork) error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// accountID extracts the calling account from the X-Account-ID header
func accountID(r *http.Request) (int64, error) {
	raw := r.Header.Get("X-Account-ID")
	if raw == "" {
		return 0, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("missing X-Account-ID header"))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed X-Account-ID header %q", raw))
	}
	return id, nil
}

// requireAdmin verifies the calling account exists and holds the admin
// role
func requireAdmin(ctx context.Context, uow interfaces.UnitOfWork, r *http.Request) error {
	id, err := accountID(r)
	if err != nil {
		return err
	}
	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load caller: %w", err)
	}
	if user == nil {
		return apperrors.ErrUserNotFound
	}
	if !user.IsPrivileged() {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed request body: %w", err))
	}
	return nil
}

// GenerateTickets creates a batch of tickets in the open sales period.
// POST /api/admin/tickets
func (h *Handler) GenerateTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req generateTicketsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var result *interfaces.GenerateResult
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		if err := requireAdmin(ctx, uow, r); err != nil {
			return err
		}
		svc := services.NewInventoryService(
			uow.SalesPeriodRepository(),
			uow.TicketRepository(),
			uow.OwnedTicketRepository(),
			uow.EventBus(),
		)
		var err error
		result, err = svc.GenerateTickets(ctx, req.Count, req.Price)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, generateTicketsResponse{
		PeriodID: result.PeriodID,
		Created:  result.Created,
		Price:    result.Price,
	})
}

// Draw produces and publishes the winning-value set for the open period.
// POST /api/admin/draw
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req drawRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var outcome *interfaces.DrawOutcome
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		if err := requireAdmin(ctx, uow, r); err != nil {
			return err
		}
		svc := services.NewDrawService(
			uow.SalesPeriodRepository(),
			uow.OwnedTicketRepository(),
			uow.DrawResultRepository(),
			uow.PrizeTierRepository(),
			uow.EventBus(),
		)
		var err error
		outcome, err = svc.Draw(ctx, entities.DrawMode(req.Mode))
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDrawResponse(outcome))
}

// ResetSystem clears the open period's tickets and opens a fresh period.
// POST /api/admin/reset
func (h *Handler) ResetSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var result *interfaces.ResetResult
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		if err := requireAdmin(ctx, uow, r); err != nil {
			return err
		}
		svc := services.NewInventoryService(
			uow.SalesPeriodRepository(),
			uow.TicketRepository(),
			uow.OwnedTicketRepository(),
			uow.EventBus(),
		)
		var err error
		result, err = svc.Reset(ctx)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resetResponse{
		ClosedPeriodID: result.ClosedPeriodID,
		NewPeriodID:    result.NewPeriodID,
		TicketsCleared: result.TicketsCleared,
	})
}

// ListUsers returns all registered accounts.
// GET /api/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var users []*entities.User
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		if err := requireAdmin(ctx, uow, r); err != nil {
			return err
		}
		var err error
		users, err = uow.UserRepository().GetAll(ctx)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]userDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, toUserDTO(u))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Purchase buys an available ticket by code for the calling account.
// POST /api/lotto/purchase
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req purchaseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var result *interfaces.PurchaseResult
	err = h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		svc := services.NewPurchaseService(
			uow.SalesPeriodRepository(),
			uow.TicketRepository(),
			uow.OwnedTicketRepository(),
			uow.UserRepository(),
			uow.LedgerEntryRepository(),
			uow.EventBus(),
		)
		var err error
		result, err = svc.Purchase(ctx, userID, req.Code)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, purchaseResponse{
		Ticket:     toTicketDTO(result.Ticket),
		OwnedID:    result.OwnedID,
		NewBalance: result.NewBalance,
	})
}

// ListAvailable returns the purchasable tickets of the open period.
// GET /api/lotto/available
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var tickets []*entities.Ticket
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		svc := services.NewInventoryService(
			uow.SalesPeriodRepository(),
			uow.TicketRepository(),
			uow.OwnedTicketRepository(),
			uow.EventBus(),
		)
		var err error
		tickets, err = svc.AvailableTickets(ctx)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]ticketDTO, 0, len(tickets))
	for _, t := range tickets {
		dtos = append(dtos, toTicketDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Claim settles a held ticket against the prevailing draw record.
// POST /api/prizes/claim
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req claimRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var result *interfaces.ClaimResult
	err = h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		svc := h.settlementService(uow)
		var err error
		result, err = svc.Claim(ctx, userID, req.Code, req.PeriodID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResponse{
		Tier:       string(result.Tier),
		TierName:   result.TierName,
		Reward:     result.Reward,
		NewBalance: result.NewBalance,
		TicketCode: result.TicketCode,
	})
}

// LatestDraw returns the authoritative draw record, optionally scoped to
// a period via ?period_id=.
// GET /api/results/latest
func (h *Handler) LatestDraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var periodID *int64
	if raw := r.URL.Query().Get("period_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, r, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed period_id %q", raw)))
			return
		}
		periodID = &id
	}

	var draw *entities.DrawResult
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		svc := h.settlementService(uow)
		var err error
		draw, err = svc.LatestDraw(ctx, periodID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toDrawResultDTO(draw))
}

// TopUp credits the calling account's wallet.
// POST /api/wallet/topup
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req topUpRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var result *interfaces.TopUpResult
	err = h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		var err error
		result, err = h.walletService(uow).TopUp(ctx, userID, req.Amount)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, topUpResponse{NewBalance: result.NewBalance})
}

// WalletHistory lists the calling account's recent ledger entries.
// GET /api/wallet/history
func (h *Handler) WalletHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := accountID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, r, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed limit %q", raw)))
			return
		}
	}

	var entries []*entities.LedgerEntry
	err = h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		var err error
		entries, err = h.walletService(uow).History(ctx, userID, limit)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]ledgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, toLedgerEntryDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UserTickets lists an account's tickets with any prize recognition.
// GET /api/users/{id}/tickets
func (h *Handler) UserTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := chi.URLParam(r, "id")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, r, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("malformed user id %q", raw)))
		return
	}

	var tickets []*entities.UserTicketInfo
	err = h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		var err error
		tickets, err = h.walletService(uow).UserTickets(ctx, userID)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]userTicketDTO, 0, len(tickets))
	for _, t := range tickets {
		dtos = append(dtos, toUserTicketDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Register creates a new account with the starting balance.
// POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var user *entities.User
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		var err error
		user, err = h.walletService(uow).Register(ctx, req.Username, req.Password)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// Login verifies credentials and returns the account.
// POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var user *entities.User
	err := h.inUnitOfWork(ctx, func(uow interfaces.UnitOfWork) error {
		var err error
		user, err = h.walletService(uow).Login(ctx, req.Username, req.Password)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// Health reports liveness.
// GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) settlementService(uow interfaces.UnitOfWork) interfaces.SettlementService {
	return services.NewSettlementService(
		uow.OwnedTicketRepository(),
		uow.DrawResultRepository(),
		uow.PrizeTierRepository(),
		uow.PrizeAwardRepository(),
		uow.UserRepository(),
		uow.LedgerEntryRepository(),
		uow.EventBus(),
	)
}

func (h *Handler) walletService(uow interfaces.UnitOfWork) interfaces.WalletService {
	return services.NewWalletService(
		uow.UserRepository(),
		uow.OwnedTicketRepository(),
		uow.LedgerEntryRepository(),
		uow.EventBus(),
	)
}
