package api

import (
	"time"

	"lotto/domain/entities"
	"lotto/domain/interfaces"

	"github.com/shopspring/decimal"
)

// Request bodies

type generateTicketsRequest struct {
	Count int             `json:"count"`
	Price decimal.Decimal `json:"price"`
}

type drawRequest struct {
	Mode string `json:"mode"`
}

type purchaseRequest struct {
	Code string `json:"code"`
}

type claimRequest struct {
	Code     string `json:"code"`
	PeriodID *int64 `json:"period_id,omitempty"`
}

type topUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response bodies

type generateTicketsResponse struct {
	PeriodID int64           `json:"period_id"`
	Created  int             `json:"created"`
	Price    decimal.Decimal `json:"price"`
}

type resetResponse struct {
	ClosedPeriodID int64 `json:"closed_period_id"`
	NewPeriodID    int64 `json:"new_period_id"`
	TicketsCleared int64 `json:"tickets_cleared"`
}

type ticketDTO struct {
	ID       int64           `json:"id"`
	PeriodID int64           `json:"period_id"`
	Code     string          `json:"code"`
	Price    decimal.Decimal `json:"price"`
	Status   string          `json:"status"`
}

func toTicketDTO(t *entities.Ticket) ticketDTO {
	return ticketDTO{
		ID:       t.ID,
		PeriodID: t.PeriodID,
		Code:     t.Code,
		Price:    t.Price,
		Status:   string(t.Status),
	}
}

type purchaseResponse struct {
	Ticket     ticketDTO       `json:"ticket"`
	OwnedID    int64           `json:"owned_ticket_id"`
	NewBalance decimal.Decimal `json:"new_balance"`
}

type drawResultDTO struct {
	ID       int64     `json:"id"`
	PeriodID int64     `json:"period_id"`
	Mode     string    `json:"mode"`
	Prize1   string    `json:"prize1"`
	Prize2   string    `json:"prize2"`
	Prize3   string    `json:"prize3"`
	Last3    string    `json:"last3"`
	Last2    string    `json:"last2"`
	DrawnAt  time.Time `json:"drawn_at"`
}

func toDrawResultDTO(d *entities.DrawResult) drawResultDTO {
	return drawResultDTO{
		ID:       d.ID,
		PeriodID: d.PeriodID,
		Mode:     string(d.Mode),
		Prize1:   d.Prize1,
		Prize2:   d.Prize2,
		Prize3:   d.Prize3,
		Last3:    d.Last3,
		Last2:    d.Last2,
		DrawnAt:  d.DrawnAt,
	}
}

type tierWinnersDTO struct {
	Tier    string          `json:"tier"`
	Value   string          `json:"value"`
	Reward  decimal.Decimal `json:"reward"`
	Winners []winnerDTO     `json:"winners"`
}

type winnerDTO struct {
	UserID     int64  `json:"user_id"`
	TicketCode string `json:"ticket_code"`
}

type drawResponse struct {
	Result  drawResultDTO    `json:"result"`
	Winners []tierWinnersDTO `json:"winners"`
}

func toDrawResponse(out *interfaces.DrawOutcome) drawResponse {
	resp := drawResponse{
		Result:  toDrawResultDTO(out.Result),
		Winners: make([]tierWinnersDTO, 0, len(out.Winners)),
	}
	for _, tw := range out.Winners {
		dto := tierWinnersDTO{
			Tier:    string(tw.Tier),
			Value:   tw.Value,
			Reward:  tw.Reward,
			Winners: make([]winnerDTO, 0, len(tw.Holders)),
		}
		for _, h := range tw.Holders {
			dto.Winners = append(dto.Winners, winnerDTO{
				UserID:     h.UserID,
				TicketCode: h.TicketCode,
			})
		}
		resp.Winners = append(resp.Winners, dto)
	}
	return resp
}

type claimResponse struct {
	Tier       string          `json:"tier"`
	TierName   string          `json:"tier_name"`
	Reward     decimal.Decimal `json:"reward"`
	NewBalance decimal.Decimal `json:"new_balance"`
	TicketCode string          `json:"ticket_code"`
}

type topUpResponse struct {
	NewBalance decimal.Decimal `json:"new_balance"`
}

type ledgerEntryDTO struct {
	ID            int64           `json:"id"`
	EntryType     string          `json:"entry_type"`
	Amount        decimal.Decimal `json:"amount"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toLedgerEntryDTO(e *entities.LedgerEntry) ledgerEntryDTO {
	return ledgerEntryDTO{
		ID:            e.ID,
		EntryType:     string(e.EntryType),
		Amount:        e.Amount,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		CreatedAt:     e.CreatedAt,
	}
}

type userDTO struct {
	ID        int64           `json:"id"`
	Username  string          `json:"username"`
	Role      string          `json:"role"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

func toUserDTO(u *entities.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Username:  u.Username,
		Role:      string(u.Role),
		Balance:   u.Balance,
		CreatedAt: u.CreatedAt,
	}
}

type userTicketDTO struct {
	OwnedTicketID int64            `json:"owned_ticket_id"`
	TicketID      int64            `json:"ticket_id"`
	Code          string           `json:"code"`
	Price         decimal.Decimal  `json:"price"`
	Status        string           `json:"status"`
	PurchasedAt   time.Time        `json:"purchased_at"`
	PrizeName     *string          `json:"prize_name,omitempty"`
	Reward        *decimal.Decimal `json:"reward,omitempty"`
}

func toUserTicketDTO(t *entities.UserTicketInfo) userTicketDTO {
	return userTicketDTO{
		OwnedTicketID: t.OwnedTicketID,
		TicketID:      t.TicketID,
		Code:          t.TicketCode,
		Price:         t.Price,
		Status:        string(t.Status),
		PurchasedAt:   t.PurchasedAt,
		PrizeName:     t.PrizeName,
		Reward:        t.Reward,
	}
}
