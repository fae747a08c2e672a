package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierCode identifies a prize tier
type TierCode string

const (
	TierPrize1 TierCode = "prize1"
	TierPrize2 TierCode = "prize2"
	TierPrize3 TierCode = "prize3"
	TierLast3  TierCode = "last3"
	TierLast2  TierCode = "last2"
)

// TierPriority lists all tiers in claim-resolution order
var TierPriority = []TierCode{TierPrize1, TierPrize2, TierPrize3, TierLast3, TierLast2}

// PrizeTier is a static reference entity mapping a tier to its reward
// amount. Read-only from the core's perspective; seeded by migration.
type PrizeTier struct {
	ID     int64           `db:"id"`
	Code   TierCode        `db:"code"`
	Name   string          `db:"name"`
	Reward decimal.Decimal `db:"reward"`
}

// PrizeAward records that an ownership record matched a prize tier for a
// specific draw. At most one award exists per ownership record.
type PrizeAward struct {
	ID            int64     `db:"id"`
	OwnedTicketID int64     `db:"owned_ticket_id"`
	PrizeTierID   int64     `db:"prize_tier_id"`
	DrawResultID  int64     `db:"draw_result_id"`
	CreatedAt     time.Time `db:"created_at"`
}
