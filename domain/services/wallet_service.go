package services

import (
	"context"
	"fmt"
	"strings"

	"lotto/config"
	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// walletService implements the account-facing ledger surface
type walletService struct {
	userRepo   interfaces.UserRepository
	ownedRepo  interfaces.OwnedTicketRepository
	ledgerRepo interfaces.LedgerEntryRepository
	publisher  interfaces.EventPublisher
}

// NewWalletService creates a wallet service bound to one unit of work's
// repositories
func NewWalletService(
	userRepo interfaces.UserRepository,
	ownedRepo interfaces.OwnedTicketRepository,
	ledgerRepo interfaces.LedgerEntryRepository,
	publisher interfaces.EventPublisher,
) interfaces.WalletService {
	return &walletService{
		userRepo:   userRepo,
		ownedRepo:  ownedRepo,
		ledgerRepo: ledgerRepo,
		publisher:  publisher,
	}
}

// TopUp credits amount to the user's wallet under a row lock
func (s *walletService) TopUp(ctx context.Context, userID int64, amount decimal.Decimal) (*interfaces.TopUpResult, error) {
	if userID <= 0 {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("missing account id"))
	}
	if !amount.IsPositive() {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("top-up amount must be positive, got %s", amount))
	}

	user, err := s.userRepo.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if user == nil {
		return nil, apperrors.ErrUserNotFound
	}

	newBalance := user.Balance.Add(amount)
	if err := s.userRepo.UpdateBalance(ctx, user.ID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to credit wallet: %w", err)
	}

	if err := s.ledgerRepo.Record(ctx, &entities.LedgerEntry{
		UserID:        user.ID,
		EntryType:     entities.LedgerEntryTopUp,
		Amount:        amount,
		BalanceBefore: user.Balance,
		BalanceAfter:  newBalance,
	}); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
		"amount": amount,
	}).Info("Wallet topped up")

	s.publisher.Publish(events.BalanceChangeEvent{
		UserID:       user.ID,
		OldBalance:   user.Balance,
		NewBalance:   newBalance,
		ChangeAmount: amount,
		EntryType:    entities.LedgerEntryTopUp,
	})

	return &interfaces.TopUpResult{NewBalance: newBalance}, nil
}

// Register creates a new account with the starting balance
func (s *walletService) Register(ctx context.Context, username, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("username and password are required"))
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrUsernameTaken
	}

	grant := config.Get().StartingBalance
	user, err := s.userRepo.Create(ctx, username, password, grant)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.ledgerRepo.Record(ctx, &entities.LedgerEntry{
		UserID:        user.ID,
		EntryType:     entities.LedgerEntryRegistration,
		Amount:        grant,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  grant,
	}); err != nil {
		return nil, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	log.WithField("username", username).Info("User registered")
	return user, nil
}

// Login performs a plain credential check against the user record
func (s *walletService) Login(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || user.Password != password {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

// Balance reads the current wallet balance
func (s *walletService) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return decimal.Zero, apperrors.ErrUserNotFound
	}
	return user.Balance, nil
}

// UserTickets lists a user's tickets with any prize recognition attached
func (s *walletService) UserTickets(ctx context.Context, userID int64) ([]*entities.UserTicketInfo, error) {
	if userID <= 0 {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("missing account id"))
	}
	return s.ownedRepo.ListByUser(ctx, userID)
}

// historyDefaultLimit caps an unbounded history request
const historyDefaultLimit = 50

// History returns the user's most recent ledger entries, newest first
func (s *walletService) History(ctx context.Context, userID int64, limit int) ([]*entities.LedgerEntry, error) {
	if userID <= 0 {
		return nil, apperrors.ErrInvalidInput.Wrap(fmt.Errorf("missing account id"))
	}
	if limit <= 0 {
		limit = historyDefaultLimit
	}
	return s.ledgerRepo.ListByUser(ctx, userID, limit)
}
