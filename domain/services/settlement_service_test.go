package services

import (
	"context"
	"testing"
	"time"

	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testDraw() *entities.DrawResult {
	return &entities.DrawResult{
		ID:       5,
		PeriodID: 1,
		Mode:     entities.DrawModeFromAll,
		Prize1:   "111111",
		Prize2:   "654987",
		Prize3:   "907089",
		Last3:    "111",
		Last2:    "64",
		DrawnAt:  time.Now(),
	}
}

func holdingTicket(ownedID, userID int64, code string) *entities.OwnedTicketDetail {
	return &entities.OwnedTicketDetail{
		OwnedTicket: entities.OwnedTicket{
			ID:          ownedID,
			TicketID:    ownedID + 100,
			UserID:      userID,
			Status:      entities.SettlementStatusHolding,
			PurchasedAt: time.Now(),
		},
		TicketCode:  code,
		TicketPrice: decimal.NewFromInt(80),
		PeriodID:    1,
	}
}

func setupSettlementMocks() (
	*testhelpers.MockOwnedTicketRepository,
	*testhelpers.MockDrawResultRepository,
	*testhelpers.MockPrizeTierRepository,
	*testhelpers.MockPrizeAwardRepository,
	*testhelpers.MockUserRepository,
	*testhelpers.MockLedgerEntryRepository,
) {
	return new(testhelpers.MockOwnedTicketRepository),
		new(testhelpers.MockDrawResultRepository),
		new(testhelpers.MockPrizeTierRepository),
		new(testhelpers.MockPrizeAwardRepository),
		new(testhelpers.MockUserRepository),
		new(testhelpers.MockLedgerEntryRepository)
}

func TestSettlementService_Claim_FirstPrize(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	draw := testDraw()
	reward := decimal.NewFromInt(6000000)

	drawRepo.On("GetLatest", mock.Anything).Return(draw, nil)
	ownedRepo.On("GetByUserAndCodeForUpdate", mock.Anything, int64(7), int64(1), "111111").
		Return(holdingTicket(42, 7, "111111"), nil)
	tierRepo.On("GetByCode", mock.Anything, entities.TierPrize1).
		Return(&entities.PrizeTier{ID: 1, Code: entities.TierPrize1, Name: "First Prize", Reward: reward}, nil)
	userRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(userWithBalance(7, 420), nil)
	awardRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.PrizeAward) bool {
		return a.OwnedTicketID == 42 && a.PrizeTierID == 1 && a.DrawResultID == 5
	})).Return(true, nil)
	userRepo.On("UpdateBalance", mock.Anything, int64(7), decimalEq(decimal.NewFromInt(6000420))).Return(nil)
	ownedRepo.On("MarkClaimed", mock.Anything, int64(42), mock.AnythingOfType("time.Time")).Return(nil)
	ledgerRepo.On("Record", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.EntryType == entities.LedgerEntryPrizeClaim && e.Amount.Equal(reward)
	})).Return(nil)

	result, err := service.Claim(context.Background(), 7, "111111", nil)
	require.NoError(t, err)
	assert.Equal(t, entities.TierPrize1, result.Tier)
	assert.True(t, result.Reward.Equal(reward))
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(6000420)))

	ownedRepo.AssertExpectations(t)
	awardRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
	ledgerRepo.AssertExpectations(t)
}

func TestSettlementService_Claim_AlreadyClaimed(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	claimed := holdingTicket(42, 7, "111111")
	claimed.Status = entities.SettlementStatusClaimed

	drawRepo.On("GetLatest", mock.Anything).Return(testDraw(), nil)
	ownedRepo.On("GetByUserAndCodeForUpdate", mock.Anything, int64(7), int64(1), "111111").
		Return(claimed, nil)

	_, err := service.Claim(context.Background(), 7, "111111", nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)

	// No second credit.
	userRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
	awardRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSettlementService_Claim_LostRaceOnAwardInsert(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	drawRepo.On("GetLatest", mock.Anything).Return(testDraw(), nil)
	ownedRepo.On("GetByUserAndCodeForUpdate", mock.Anything, int64(7), int64(1), "111111").
		Return(holdingTicket(42, 7, "111111"), nil)
	tierRepo.On("GetByCode", mock.Anything, entities.TierPrize1).
		Return(&entities.PrizeTier{ID: 1, Code: entities.TierPrize1, Reward: decimal.NewFromInt(6000000)}, nil)
	userRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(userWithBalance(7, 420), nil)
	awardRepo.On("Create", mock.Anything, mock.Anything).Return(false, nil)

	_, err := service.Claim(context.Background(), 7, "111111", nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)
	userRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementService_Claim_NotAWinner(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	drawRepo.On("GetLatest", mock.Anything).Return(testDraw(), nil)
	ownedRepo.On("GetByUserAndCodeForUpdate", mock.Anything, int64(7), int64(1), "987653").
		Return(holdingTicket(43, 7, "987653"), nil)

	_, err := service.Claim(context.Background(), 7, "987653", nil)
	assert.ErrorIs(t, err, apperrors.ErrNotAWinner)
	tierRepo.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
}

func TestSettlementService_Claim_TicketNotOwned(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	drawRepo.On("GetLatest", mock.Anything).Return(testDraw(), nil)
	ownedRepo.On("GetByUserAndCodeForUpdate", mock.Anything, int64(7), int64(1), "111111").
		Return((*entities.OwnedTicketDetail)(nil), nil)

	_, err := service.Claim(context.Background(), 7, "111111", nil)
	assert.ErrorIs(t, err, apperrors.ErrTicketNotOwned)
}

func TestSettlementService_Claim_SuffixTiers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   string
		tier   entities.TierCode
		tierID int64
		reward int64
	}{
		{"last three digits", "905111", entities.TierLast3, 4, 4000},
		{"last two digits", "905364", entities.TierLast2, 5, 2000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
			service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

			reward := decimal.NewFromInt(tt.reward)

			drawRepo.On("GetLatest", mock.Anything).Return(testDraw(), nil)
			ownedRepo.On("GetByUserAndCodeForUpdate", mock.Anything, int64(7), int64(1), tt.code).
				Return(holdingTicket(50, 7, tt.code), nil)
			tierRepo.On("GetByCode", mock.Anything, tt.tier).
				Return(&entities.PrizeTier{ID: tt.tierID, Code: tt.tier, Reward: reward}, nil)
			userRepo.On("GetByIDForUpdate", mock.Anything, int64(7)).Return(userWithBalance(7, 100), nil)
			awardRepo.On("Create", mock.Anything, mock.Anything).Return(true, nil)
			userRepo.On("UpdateBalance", mock.Anything, int64(7), decimalEq(decimal.NewFromInt(100+tt.reward))).Return(nil)
			ownedRepo.On("MarkClaimed", mock.Anything, int64(50), mock.AnythingOfType("time.Time")).Return(nil)
			ledgerRepo.On("Record", mock.Anything, mock.Anything).Return(nil)

			result, err := service.Claim(context.Background(), 7, tt.code, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.tier, result.Tier)
			assert.True(t, result.Reward.Equal(reward))
		})
	}
}

func TestSettlementService_LatestDraw(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	draw := testDraw()
	drawRepo.On("GetLatest", mock.Anything).Return(draw, nil)

	got, err := service.LatestDraw(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, draw, got)
}

func TestSettlementService_LatestDraw_ScopedToPeriod(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	draw := testDraw()
	drawRepo.On("GetLatestForPeriod", mock.Anything, int64(1)).Return(draw, nil)

	periodID := int64(1)
	got, err := service.LatestDraw(context.Background(), &periodID)
	require.NoError(t, err)
	assert.Equal(t, draw, got)
	drawRepo.AssertNotCalled(t, "GetLatest", mock.Anything)
}

func TestSettlementService_LatestDraw_NoDrawYet(t *testing.T) {
	t.Parallel()

	ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo := setupSettlementMocks()
	service := NewSettlementService(ownedRepo, drawRepo, tierRepo, awardRepo, userRepo, ledgerRepo, testhelpers.NoopPublisher{})

	drawRepo.On("GetLatest", mock.Anything).Return((*entities.DrawResult)(nil), nil)

	_, err := service.LatestDraw(context.Background(), nil)
	assert.ErrorIs(t, err, apperrors.ErrNoDrawYet)
}
