package testhelpers

import (
	"context"

	"lotto/domain/interfaces"

	"github.com/stretchr/testify/mock"
)

// StubUnitOfWork satisfies interfaces.UnitOfWork over mock repositories.
// Begin, Commit and Rollback are no-ops; the mocks carry the behavior.
type StubUnitOfWork struct {
	Users   *MockUserRepository
	Periods *MockSalesPeriodRepository
	Tickets *MockTicketRepository
	Owned   *MockOwnedTicketRepository
	Draws   *MockDrawResultRepository
	Tiers   *MockPrizeTierRepository
	Awards  *MockPrizeAwardRepository
	Ledger  *MockLedgerEntryRepository

	Committed  bool
	RolledBack bool
}

// NewStubUnitOfWork creates a stub with every repository mock initialized
func NewStubUnitOfWork() *StubUnitOfWork {
	return &StubUnitOfWork{
		Users:   new(MockUserRepository),
		Periods: new(MockSalesPeriodRepository),
		Tickets: new(MockTicketRepository),
		Owned:   new(MockOwnedTicketRepository),
		Draws:   new(MockDrawResultRepository),
		Tiers:   new(MockPrizeTierRepository),
		Awards:  new(MockPrizeAwardRepository),
		Ledger:  new(MockLedgerEntryRepository),
	}
}

func (s *StubUnitOfWork) Begin(ctx context.Context) error { return nil }

func (s *StubUnitOfWork) Commit() error {
	s.Committed = true
	return nil
}

func (s *StubUnitOfWork) Rollback() error {
	if !s.Committed {
		s.RolledBack = true
	}
	return nil
}

func (s *StubUnitOfWork) UserRepository() interfaces.UserRepository               { return s.Users }
func (s *StubUnitOfWork) SalesPeriodRepository() interfaces.SalesPeriodRepository { return s.Periods }
func (s *StubUnitOfWork) TicketRepository() interfaces.TicketRepository           { return s.Tickets }
func (s *StubUnitOfWork) OwnedTicketRepository() interfaces.OwnedTicketRepository { return s.Owned }
func (s *StubUnitOfWork) DrawResultRepository() interfaces.DrawResultRepository   { return s.Draws }
func (s *StubUnitOfWork) PrizeTierRepository() interfaces.PrizeTierRepository     { return s.Tiers }
func (s *StubUnitOfWork) PrizeAwardRepository() interfaces.PrizeAwardRepository   { return s.Awards }
func (s *StubUnitOfWork) LedgerEntryRepository() interfaces.LedgerEntryRepository { return s.Ledger }

func (s *StubUnitOfWork) EventBus() interfaces.EventPublisher { return NoopPublisher{} }

// StubUnitOfWorkFactory hands out the same stub for every Create call
type StubUnitOfWorkFactory struct {
	Uow *StubUnitOfWork
}

func (f *StubUnitOfWorkFactory) Create() interfaces.UnitOfWork { return f.Uow }

// AssertExpectations asserts on every repository mock
func (s *StubUnitOfWork) AssertExpectations(t mock.TestingT) {
	s.Users.AssertExpectations(t)
	s.Periods.AssertExpectations(t)
	s.Tickets.AssertExpectations(t)
	s.Owned.AssertExpectations(t)
	s.Draws.AssertExpectations(t)
	s.Tiers.AssertExpectations(t)
	s.Awards.AssertExpectations(t)
	s.Ledger.AssertExpectations(t)
}
