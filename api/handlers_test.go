package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lotto/config"
	"lotto/domain/entities"
	"lotto/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestServer(uow *testhelpers.StubUnitOfWork) http.Handler {
	handler := NewHandler(&testhelpers.StubUnitOfWorkFactory{Uow: uow})
	return NewRouter(handler, config.NewTestConfig())
}

func doJSON(t *testing.T, h http.Handler, method, path string, accountID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if accountID != "" {
		req.Header.Set("X-Account-ID", accountID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPurchaseHandler_InsufficientFunds(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	period := &entities.SalesPeriod{ID: 1}
	ticket := &entities.Ticket{
		ID: 10, PeriodID: 1, Code: "111111",
		Price:  decimal.NewFromInt(80),
		Status: entities.TicketStatusAvailable,
	}
	buyer := &entities.User{ID: 7, Username: "bob", Balance: decimal.NewFromInt(50)}

	uow.Periods.On("GetOpen", mock.Anything).Return(period, nil)
	uow.Tickets.On("GetByCodeForUpdate", mock.Anything, int64(1), "111111").Return(ticket, nil)
	uow.Users.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(buyer, nil)

	rec := doJSON(t, newTestServer(uow), http.MethodPost, "/api/lotto/purchase", "7",
		purchaseRequest{Code: "111111"})

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INSUFFICIENT_FUNDS", resp.Code)
	assert.True(t, uow.RolledBack)
}

func TestPurchaseHandler_Success(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	period := &entities.SalesPeriod{ID: 1}
	ticket := &entities.Ticket{
		ID: 10, PeriodID: 1, Code: "111111",
		Price:  decimal.NewFromInt(80),
		Status: entities.TicketStatusAvailable,
	}
	buyer := &entities.User{ID: 7, Username: "bob", Balance: decimal.NewFromInt(500)}

	uow.Periods.On("GetOpen", mock.Anything).Return(period, nil)
	uow.Tickets.On("GetByCodeForUpdate", mock.Anything, int64(1), "111111").Return(ticket, nil)
	uow.Users.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(buyer, nil)
	uow.Users.On("UpdateBalance", mock.Anything, int64(7), mock.Anything).Return(nil)
	uow.Tickets.On("MarkSold", mock.Anything, int64(10)).Return(nil)
	uow.Owned.On("Create", mock.Anything, mock.Anything).Return(nil)
	uow.Ledger.On("Record", mock.Anything, mock.Anything).Return(nil)

	rec := doJSON(t, newTestServer(uow), http.MethodPost, "/api/lotto/purchase", "7",
		purchaseRequest{Code: "111111"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp purchaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "111111", resp.Ticket.Code)
	assert.True(t, resp.NewBalance.Equal(decimal.NewFromInt(420)))
	assert.True(t, uow.Committed)
}

func TestPurchaseHandler_MissingAccountHeader(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(testhelpers.NewStubUnitOfWork()),
		http.MethodPost, "/api/lotto/purchase", "", purchaseRequest{Code: "111111"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_ForbiddenForRegularUser(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	plain := &entities.User{ID: 7, Username: "bob", Role: entities.RoleUser}
	uow.Users.On("GetByID", mock.Anything, int64(7)).Return(plain, nil)

	rec := doJSON(t, newTestServer(uow), http.MethodPost, "/api/admin/reset", "7", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "PERMISSION_DENIED", resp.Code)
}

func TestClaimHandler_NoDrawYet(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	uow.Draws.On("GetLatest", mock.Anything).Return((*entities.DrawResult)(nil), nil)

	rec := doJSON(t, newTestServer(uow), http.MethodPost, "/api/prizes/claim", "7",
		claimRequest{Code: "111111"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NO_DRAW_YET", resp.Code)
}

func TestLatestDrawHandler(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	draw := &entities.DrawResult{
		ID: 5, PeriodID: 1, Mode: entities.DrawModeFromAll,
		Prize1: "111111", Prize2: "654987", Prize3: "907089",
		Last3: "111", Last2: "64",
	}
	uow.Draws.On("GetLatest", mock.Anything).Return(draw, nil)

	rec := doJSON(t, newTestServer(uow), http.MethodGet, "/api/results/latest", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp drawResultDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "111111", resp.Prize1)
	assert.Equal(t, "from_all", resp.Mode)
}

func TestLatestDrawHandler_BadPeriodParam(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(testhelpers.NewStubUnitOfWork()),
		http.MethodGet, "/api/results/latest?period_id=zero", "", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	created := &entities.User{ID: 1, Username: "alice", Role: entities.RoleUser, Balance: decimal.NewFromInt(500)}

	uow.Users.On("GetByUsername", mock.Anything, "alice").Return((*entities.User)(nil), nil)
	uow.Users.On("Create", mock.Anything, "alice", "secret", mock.Anything).Return(created, nil)
	uow.Ledger.On("Record", mock.Anything, mock.Anything).Return(nil)

	rec := doJSON(t, newTestServer(uow), http.MethodPost, "/api/auth/register", "",
		credentialsRequest{Username: "alice", Password: "secret"})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp userDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(500)))
}

func TestRegisterHandler_UsernameTaken(t *testing.T) {
	t.Parallel()

	uow := testhelpers.NewStubUnitOfWork()
	existing := &entities.User{ID: 1, Username: "alice"}
	uow.Users.On("GetByUsername", mock.Anything, "alice").Return(existing, nil)

	rec := doJSON(t, newTestServer(uow), http.MethodPost, "/api/auth/register", "",
		credentialsRequest{Username: "alice", Password: "secret"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMalformedBody(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	newTestServer(testhelpers.NewStubUnitOfWork()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	rec := doJSON(t, newTestServer(testhelpers.NewStubUnitOfWork()),
		http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
