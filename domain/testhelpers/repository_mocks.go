package testhelpers

import (
	"context"
	"time"

	"lotto/domain/entities"
	"lotto/domain/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username, password string, initialBalance decimal.Decimal) (*entities.User, error) {
	args := m.Called(ctx, username, password, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, id int64, newBalance decimal.Decimal) error {
	args := m.Called(ctx, id, newBalance)
	return args.Error(0)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// MockSalesPeriodRepository is a mock implementation of SalesPeriodRepository
type MockSalesPeriodRepository struct {
	mock.Mock
}

func (m *MockSalesPeriodRepository) GetOpen(ctx context.Context) (*entities.SalesPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SalesPeriod), args.Error(1)
}

func (m *MockSalesPeriodRepository) GetOrCreateOpen(ctx context.Context) (*entities.SalesPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SalesPeriod), args.Error(1)
}

func (m *MockSalesPeriodRepository) Close(ctx context.Context, id int64, closedAt time.Time) error {
	args := m.Called(ctx, id, closedAt)
	return args.Error(0)
}

func (m *MockSalesPeriodRepository) Open(ctx context.Context) (*entities.SalesPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SalesPeriod), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) GetByCodeForUpdate(ctx context.Context, periodID int64, code string) (*entities.Ticket, error) {
	args := m.Called(ctx, periodID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) CreateBatch(ctx context.Context, tickets []*entities.Ticket) error {
	args := m.Called(ctx, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) MarkSold(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTicketRepository) CodesForPeriod(ctx context.Context, periodID int64) ([]string, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTicketRepository) ListAvailable(ctx context.Context, periodID int64) ([]*entities.Ticket, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Ticket), args.Error(1)
}

func (m *MockTicketRepository) DeleteForPeriod(ctx context.Context, periodID int64) (int64, error) {
	args := m.Called(ctx, periodID)
	return args.Get(0).(int64), args.Error(1)
}

// MockOwnedTicketRepository is a mock implementation of OwnedTicketRepository
type MockOwnedTicketRepository struct {
	mock.Mock
}

func (m *MockOwnedTicketRepository) Create(ctx context.Context, ot *entities.OwnedTicket) error {
	args := m.Called(ctx, ot)
	return args.Error(0)
}

func (m *MockOwnedTicketRepository) GetByUserAndCodeForUpdate(ctx context.Context, userID, periodID int64, code string) (*entities.OwnedTicketDetail, error) {
	args := m.Called(ctx, userID, periodID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OwnedTicketDetail), args.Error(1)
}

func (m *MockOwnedTicketRepository) SoldCodes(ctx context.Context, periodID int64) ([]string, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockOwnedTicketRepository) MarkClaimed(ctx context.Context, id int64, claimedAt time.Time) error {
	args := m.Called(ctx, id, claimedAt)
	return args.Error(0)
}

func (m *MockOwnedTicketRepository) FindByExactCode(ctx context.Context, periodID int64, code string) ([]*entities.OwnedTicketDetail, error) {
	args := m.Called(ctx, periodID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OwnedTicketDetail), args.Error(1)
}

func (m *MockOwnedTicketRepository) FindBySuffix(ctx context.Context, periodID int64, suffix string) ([]*entities.OwnedTicketDetail, error) {
	args := m.Called(ctx, periodID, suffix)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.OwnedTicketDetail), args.Error(1)
}

func (m *MockOwnedTicketRepository) ListByUser(ctx context.Context, userID int64) ([]*entities.UserTicketInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserTicketInfo), args.Error(1)
}

func (m *MockOwnedTicketRepository) CountForPeriod(ctx context.Context, periodID int64) (int64, error) {
	args := m.Called(ctx, periodID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDrawResultRepository is a mock implementation of DrawResultRepository
type MockDrawResultRepository struct {
	mock.Mock
}

func (m *MockDrawResultRepository) Create(ctx context.Context, d *entities.DrawResult) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDrawResultRepository) GetLatest(ctx context.Context) (*entities.DrawResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawResult), args.Error(1)
}

func (m *MockDrawResultRepository) GetLatestForPeriod(ctx context.Context, periodID int64) (*entities.DrawResult, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DrawResult), args.Error(1)
}

// MockPrizeTierRepository is a mock implementation of PrizeTierRepository
type MockPrizeTierRepository struct {
	mock.Mock
}

func (m *MockPrizeTierRepository) GetByCode(ctx context.Context, code entities.TierCode) (*entities.PrizeTier, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizeTier), args.Error(1)
}

func (m *MockPrizeTierRepository) GetAll(ctx context.Context) ([]*entities.PrizeTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PrizeTier), args.Error(1)
}

// MockPrizeAwardRepository is a mock implementation of PrizeAwardRepository
type MockPrizeAwardRepository struct {
	mock.Mock
}

func (m *MockPrizeAwardRepository) Create(ctx context.Context, a *entities.PrizeAward) (bool, error) {
	args := m.Called(ctx, a)
	return args.Bool(0), args.Error(1)
}

func (m *MockPrizeAwardRepository) GetByOwnedTicket(ctx context.Context, ownedTicketID int64) (*entities.PrizeAward, error) {
	args := m.Called(ctx, ownedTicketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PrizeAward), args.Error(1)
}

// MockLedgerEntryRepository is a mock implementation of LedgerEntryRepository
type MockLedgerEntryRepository struct {
	mock.Mock
}

func (m *MockLedgerEntryRepository) Record(ctx context.Context, e *entities.LedgerEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLedgerEntryRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerEntryRepository) SumForUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(e events.Event) {
	m.Called(e)
}

// NoopPublisher swallows events; use when a test does not assert on them
type NoopPublisher struct{}

func (NoopPublisher) Publish(e events.Event) {}
