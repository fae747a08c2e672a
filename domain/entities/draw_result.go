package entities

import (
	"strings"
	"time"
)

// DrawMode selects how winning values are produced
type DrawMode string

const (
	// DrawModeFromSold samples the five winning values from sold ticket
	// codes, guaranteeing at least the exact-match prizes have a holder.
	DrawModeFromSold DrawMode = "from_sold"
	// DrawModeFromAll generates winning values independently of the
	// sold set; no holder is guaranteed to match.
	DrawModeFromAll DrawMode = "from_all"
)

// IsValid reports whether m is a known draw mode
func (m DrawMode) IsValid() bool {
	return m == DrawModeFromSold || m == DrawModeFromAll
}

// DrawResult is the immutable published set of winning values for one
// settlement period. The most recent record by draw time is authoritative
// for claims unless a period is addressed explicitly.
type DrawResult struct {
	ID       int64     `db:"id"`
	PeriodID int64     `db:"period_id"`
	Mode     DrawMode  `db:"mode"`
	Prize1   string    `db:"prize1"` // exact-match, rank 1
	Prize2   string    `db:"prize2"` // exact-match, rank 2
	Prize3   string    `db:"prize3"` // exact-match, rank 3
	Last3    string    `db:"last3"`  // 3-digit suffix match
	Last2    string    `db:"last2"`  // 2-digit suffix match
	DrawnAt  time.Time `db:"drawn_at"`
}

// MatchTier resolves the single prize tier a ticket code is entitled to.
// Tiers are tested in fixed priority order: exact rank 1, 2, 3, then the
// 3-digit suffix, then the 2-digit suffix. The first match wins; a code
// is never awarded two tiers even if it satisfies several patterns.
func (d *DrawResult) MatchTier(code string) (TierCode, bool) {
	switch code {
	case d.Prize1:
		return TierPrize1, true
	case d.Prize2:
		return TierPrize2, true
	case d.Prize3:
		return TierPrize3, true
	}
	if strings.HasSuffix(code, d.Last3) {
		return TierLast3, true
	}
	if strings.HasSuffix(code, d.Last2) {
		return TierLast2, true
	}
	return "", false
}
