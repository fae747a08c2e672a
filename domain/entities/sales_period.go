package entities

import "time"

// SalesPeriod is the explicit state for one round of ticket sales.
// At most one period is open at a time; ticket codes are unique within
// a period and periods never overlap.
type SalesPeriod struct {
	ID       int64      `db:"id"`
	OpenedAt time.Time  `db:"opened_at"`
	ClosedAt *time.Time `db:"closed_at"`
}

// IsOpen returns true if the period is still accepting sales
func (p *SalesPeriod) IsOpen() bool {
	return p.ClosedAt == nil
}
