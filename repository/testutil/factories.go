package testutil

import (
	"time"

	"lotto/domain/entities"

	"github.com/shopspring/decimal"
)

// CreateTestUser creates a test user with default values
func CreateTestUser(id int64, username string) *entities.User {
	now := time.Now()
	return &entities.User{
		ID:        id,
		Username:  username,
		Password:  "secret",
		Role:      entities.RoleUser,
		Balance:   decimal.NewFromInt(500),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(id int64, username string, balance decimal.Decimal) *entities.User {
	user := CreateTestUser(id, username)
	user.Balance = balance
	return user
}

// CreateTestAdmin creates a test user with the admin role
func CreateTestAdmin(id int64, username string) *entities.User {
	user := CreateTestUser(id, username)
	user.Role = entities.RoleAdmin
	return user
}

// CreateTestPeriod creates an open sales period
func CreateTestPeriod(id int64) *entities.SalesPeriod {
	return &entities.SalesPeriod{
		ID:       id,
		OpenedAt: time.Now(),
	}
}

// CreateTestTicket creates an available ticket with the given code
func CreateTestTicket(id, periodID int64, code string) *entities.Ticket {
	return &entities.Ticket{
		ID:        id,
		PeriodID:  periodID,
		Code:      code,
		Price:     decimal.NewFromInt(80),
		Status:    entities.TicketStatusAvailable,
		CreatedAt: time.Now(),
	}
}

// CreateTestOwnedDetail creates an ownership record joined with its
// ticket fields
func CreateTestOwnedDetail(id, ticketID, userID, periodID int64, code string) *entities.OwnedTicketDetail {
	return &entities.OwnedTicketDetail{
		OwnedTicket: entities.OwnedTicket{
			ID:          id,
			TicketID:    ticketID,
			UserID:      userID,
			Status:      entities.SettlementStatusHolding,
			PurchasedAt: time.Now(),
		},
		TicketCode:  code,
		TicketPrice: decimal.NewFromInt(80),
		PeriodID:    periodID,
	}
}

// CreateTestDraw creates a draw result with the given winning values
func CreateTestDraw(id, periodID int64, mode entities.DrawMode, prize1, prize2, prize3, last3, last2 string) *entities.DrawResult {
	return &entities.DrawResult{
		ID:       id,
		PeriodID: periodID,
		Mode:     mode,
		Prize1:   prize1,
		Prize2:   prize2,
		Prize3:   prize3,
		Last3:    last3,
		Last2:    last2,
		DrawnAt:  time.Now(),
	}
}

// DefaultPrizeTiers mirrors the seeded tier reference rows
func DefaultPrizeTiers() []*entities.PrizeTier {
	return []*entities.PrizeTier{
		{ID: 1, Code: entities.TierPrize1, Name: "First Prize", Reward: decimal.NewFromInt(6000000)},
		{ID: 2, Code: entities.TierPrize2, Name: "Second Prize", Reward: decimal.NewFromInt(200000)},
		{ID: 3, Code: entities.TierPrize3, Name: "Third Prize", Reward: decimal.NewFromInt(80000)},
		{ID: 4, Code: entities.TierLast3, Name: "Last 3 Digits", Reward: decimal.NewFromInt(4000)},
		{ID: 5, Code: entities.TierLast2, Name: "Last 2 Digits", Reward: decimal.NewFromInt(2000)},
	}
}
