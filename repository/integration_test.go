package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"lotto/domain/apperrors"
	"lotto/domain/entities"
	"lotto/domain/events"
	"lotto/domain/interfaces"
	"lotto/domain/services"
	"lotto/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFactory(t *testing.T) interfaces.UnitOfWorkFactory {
	testDB := testutil.SetupTestDatabase(t)
	return NewUnitOfWorkFactory(testDB.DB, events.NewBus())
}

// inUow runs fn in a fresh unit of work, committing on success.
func inUow(ctx context.Context, factory interfaces.UnitOfWorkFactory, fn func(uow interfaces.UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()
	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}

// registerUser creates an account through the wallet service so the
// registration grant lands in the ledger too.
func registerUser(t *testing.T, factory interfaces.UnitOfWorkFactory, username string) *entities.User {
	t.Helper()
	var user *entities.User
	err := inUow(context.Background(), factory, func(uow interfaces.UnitOfWork) error {
		svc := services.NewWalletService(
			uow.UserRepository(), uow.OwnedTicketRepository(), uow.LedgerEntryRepository(), uow.EventBus())
		var err error
		user, err = svc.Register(context.Background(), username, "secret")
		return err
	})
	require.NoError(t, err)
	return user
}

// seedTickets inserts tickets with fixed codes into the open period and
// returns the period ID.
func seedTickets(t *testing.T, factory interfaces.UnitOfWorkFactory, codes []string, price int64) int64 {
	t.Helper()
	var periodID int64
	err := inUow(context.Background(), factory, func(uow interfaces.UnitOfWork) error {
		period, err := uow.SalesPeriodRepository().GetOrCreateOpen(context.Background())
		if err != nil {
			return err
		}
		periodID = period.ID

		tickets := make([]*entities.Ticket, 0, len(codes))
		for _, code := range codes {
			tickets = append(tickets, &entities.Ticket{
				PeriodID: period.ID,
				Code:     code,
				Price:    decimal.NewFromInt(price),
				Status:   entities.TicketStatusAvailable,
			})
		}
		return uow.TicketRepository().CreateBatch(context.Background(), tickets)
	})
	require.NoError(t, err)
	return periodID
}

func purchase(factory interfaces.UnitOfWorkFactory, userID int64, code string) (*interfaces.PurchaseResult, error) {
	var result *interfaces.PurchaseResult
	err := inUow(context.Background(), factory, func(uow interfaces.UnitOfWork) error {
		svc := services.NewPurchaseService(
			uow.SalesPeriodRepository(), uow.TicketRepository(), uow.OwnedTicketRepository(),
			uow.UserRepository(), uow.LedgerEntryRepository(), uow.EventBus())
		var err error
		result, err = svc.Purchase(context.Background(), userID, code)
		return err
	})
	return result, err
}

func claim(factory interfaces.UnitOfWorkFactory, userID int64, code string) (*interfaces.ClaimResult, error) {
	var result *interfaces.ClaimResult
	err := inUow(context.Background(), factory, func(uow interfaces.UnitOfWork) error {
		svc := services.NewSettlementService(
			uow.OwnedTicketRepository(), uow.DrawResultRepository(), uow.PrizeTierRepository(),
			uow.PrizeAwardRepository(), uow.UserRepository(), uow.LedgerEntryRepository(), uow.EventBus())
		var err error
		result, err = svc.Claim(context.Background(), userID, code, nil)
		return err
	})
	return result, err
}

func publishDraw(t *testing.T, factory interfaces.UnitOfWorkFactory, periodID int64, prize1 string) *entities.DrawResult {
	t.Helper()
	draw := &entities.DrawResult{
		PeriodID: periodID,
		Mode:     entities.DrawModeFromAll,
		Prize1:   prize1,
		Prize2:   "654987",
		Prize3:   "907089",
		Last3:    prize1[3:],
		Last2:    "64",
		DrawnAt:  time.Now().UTC(),
	}
	err := inUow(context.Background(), factory, func(uow interfaces.UnitOfWork) error {
		return uow.DrawResultRepository().Create(context.Background(), draw)
	})
	require.NoError(t, err)
	return draw
}

func TestPurchaseDrawClaimLifecycle(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	user := registerUser(t, factory, "alice")
	assert.True(t, user.Balance.Equal(decimal.NewFromInt(500)))

	periodID := seedTickets(t, factory, []string{"111111", "222222", "333333"}, 80)

	// Purchase debits exactly the ticket price.
	result, err := purchase(factory, user.ID, "111111")
	require.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(420)))

	// Buying the same ticket again is a conflict.
	_, err = purchase(factory, user.ID, "111111")
	assert.ErrorIs(t, err, apperrors.ErrTicketAlreadySold)

	publishDraw(t, factory, periodID, "111111")

	// First claim pays the first prize once.
	claimResult, err := claim(factory, user.ID, "111111")
	require.NoError(t, err)
	assert.Equal(t, entities.TierPrize1, claimResult.Tier)
	assert.True(t, claimResult.NewBalance.Equal(decimal.NewFromInt(6000420)))

	// Second claim is rejected and the balance stays put.
	_, err = claim(factory, user.ID, "111111")
	assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)

	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		stored, err := uow.UserRepository().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(6000420)))

		// Every balance movement is ledgered; the signed sum equals the
		// balance.
		sum, err := uow.LedgerEntryRepository().SumForUser(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(stored.Balance), "ledger sum %s != balance %s", sum, stored.Balance)
		return nil
	})
	require.NoError(t, err)
}

func TestPurchase_InsufficientFunds(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	user := registerUser(t, factory, "bob")
	seedTickets(t, factory, []string{"444444"}, 80)

	// Drain the wallet down to 50.
	err := inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		return uow.UserRepository().UpdateBalance(ctx, user.ID, decimal.NewFromInt(50))
	})
	require.NoError(t, err)

	_, err = purchase(factory, user.ID, "444444")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

	// The ticket is still available and the balance untouched.
	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		stored, err := uow.UserRepository().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(50)))

		period, err := uow.SalesPeriodRepository().GetOpen(ctx)
		require.NoError(t, err)
		tickets, err := uow.TicketRepository().ListAvailable(ctx, period.ID)
		require.NoError(t, err)
		assert.Len(t, tickets, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestConcurrentPurchase_OneWinner(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)

	const contenders = 8

	users := make([]*entities.User, contenders)
	for i := range users {
		users[i] = registerUser(t, factory, "buyer"+string(rune('a'+i)))
	}
	seedTickets(t, factory, []string{"555555"}, 80)

	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = purchase(factory, users[i].ID, "555555")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrTicketAlreadySold)
		}
	}
	assert.Equal(t, 1, successes, "exactly one purchase must win")
}

func TestConcurrentClaim_SingleCredit(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	user := registerUser(t, factory, "carol")
	periodID := seedTickets(t, factory, []string{"666666"}, 80)

	_, err := purchase(factory, user.ID, "666666")
	require.NoError(t, err)

	publishDraw(t, factory, periodID, "666666")

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = claim(factory, user.ID, "666666")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrAlreadyClaimed)
		}
	}
	assert.Equal(t, 1, successes, "the reward must be credited exactly once")

	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		stored, err := uow.UserRepository().GetByID(ctx, user.ID)
		require.NoError(t, err)
		// 500 - 80 + 6,000,000 exactly once.
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(6000420)))
		return nil
	})
	require.NoError(t, err)
}

func TestReset_ClearsPoolKeepsHistory(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	user := registerUser(t, factory, "dave")
	periodID := seedTickets(t, factory, []string{"777777", "888888"}, 80)

	_, err := purchase(factory, user.ID, "777777")
	require.NoError(t, err)

	draw := publishDraw(t, factory, periodID, "777777")

	var reset *interfaces.ResetResult
	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		svc := services.NewInventoryService(
			uow.SalesPeriodRepository(), uow.TicketRepository(), uow.OwnedTicketRepository(), uow.EventBus())
		var err error
		reset, err = svc.Reset(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, periodID, reset.ClosedPeriodID)
	assert.NotEqual(t, periodID, reset.NewPeriodID)
	assert.Equal(t, int64(2), reset.TicketsCleared)

	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		// The fresh period has no tickets.
		tickets, err := uow.TicketRepository().ListAvailable(ctx, reset.NewPeriodID)
		require.NoError(t, err)
		assert.Empty(t, tickets)

		// Ownership went with the tickets.
		count, err := uow.OwnedTicketRepository().CountForPeriod(ctx, periodID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// Draw history survives the reset.
		latest, err := uow.DrawResultRepository().GetLatest(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, draw.ID, latest.ID)

		// The wallet is untouched by reset.
		stored, err := uow.UserRepository().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(420)))
		return nil
	})
	require.NoError(t, err)

	// A claim against the cleared period no longer resolves a ticket.
	_, err = claim(factory, user.ID, "777777")
	assert.ErrorIs(t, err, apperrors.ErrTicketNotOwned)
}

func TestGenerateTickets_EndToEnd(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	var generated *interfaces.GenerateResult
	err := inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		svc := services.NewInventoryService(
			uow.SalesPeriodRepository(), uow.TicketRepository(), uow.OwnedTicketRepository(), uow.EventBus())
		var err error
		generated, err = svc.GenerateTickets(ctx, 20, decimal.NewFromInt(80))
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 20, generated.Created)

	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		tickets, err := uow.TicketRepository().ListAvailable(ctx, generated.PeriodID)
		require.NoError(t, err)
		require.Len(t, tickets, 20)

		seen := make(map[string]bool)
		for _, tk := range tickets {
			assert.True(t, entities.IsValidCode(tk.Code))
			assert.False(t, seen[tk.Code], "duplicate code %s", tk.Code)
			seen[tk.Code] = true
		}
		return nil
	})
	require.NoError(t, err)
}

func TestSalesPeriod_SingleOpenEnforced(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	err := inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		// The initial migration already opened a period; a second open
		// insert violates the partial unique index.
		_, err := uow.SalesPeriodRepository().Open(ctx)
		return err
	})
	assert.Error(t, err)
}

func TestPrizeAward_InsertIsIdempotent(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	user := registerUser(t, factory, "erin")
	periodID := seedTickets(t, factory, []string{"999999"}, 80)
	result, err := purchase(factory, user.ID, "999999")
	require.NoError(t, err)
	draw := publishDraw(t, factory, periodID, "999999")

	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		award := &entities.PrizeAward{OwnedTicketID: result.OwnedID, PrizeTierID: 1, DrawResultID: draw.ID}
		inserted, err := uow.PrizeAwardRepository().Create(ctx, award)
		require.NoError(t, err)
		assert.True(t, inserted)

		again := &entities.PrizeAward{OwnedTicketID: result.OwnedID, PrizeTierID: 1, DrawResultID: draw.ID}
		inserted, err = uow.PrizeAwardRepository().Create(ctx, again)
		require.NoError(t, err)
		assert.False(t, inserted)
		return nil
	})
	require.NoError(t, err)
}

func TestUserTicketsListing(t *testing.T) {
	t.Parallel()
	factory := setupFactory(t)
	ctx := context.Background()

	user := registerUser(t, factory, "frank")
	periodID := seedTickets(t, factory, []string{"121212", "343434"}, 80)

	_, err := purchase(factory, user.ID, "121212")
	require.NoError(t, err)
	_, err = purchase(factory, user.ID, "343434")
	require.NoError(t, err)

	publishDraw(t, factory, periodID, "121212")

	_, err = claim(factory, user.ID, "121212")
	require.NoError(t, err)

	err = inUow(ctx, factory, func(uow interfaces.UnitOfWork) error {
		rows, err := uow.OwnedTicketRepository().ListByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)

		byCode := make(map[string]*entities.UserTicketInfo)
		for _, row := range rows {
			byCode[row.TicketCode] = row
		}

		winner := byCode["121212"]
		require.NotNil(t, winner)
		assert.Equal(t, entities.SettlementStatusClaimed, winner.Status)
		require.NotNil(t, winner.PrizeName)
		assert.Equal(t, "First Prize", *winner.PrizeName)
		require.NotNil(t, winner.Reward)
		assert.True(t, winner.Reward.Equal(decimal.NewFromInt(6000000)))

		loser := byCode["343434"]
		require.NotNil(t, loser)
		assert.Equal(t, entities.SettlementStatusHolding, loser.Status)
		assert.Nil(t, loser.PrizeName)
		return nil
	})
	require.NoError(t, err)
}
