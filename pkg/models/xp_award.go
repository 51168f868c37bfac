package models

import "time"

// XPAward is one row of the append-only award journal. The journal backs
// daily and weekly summaries and, when an idempotency key is present, lets
// the ledger detect replayed awards for one-time bonuses.
type XPAward struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	BaseAmount     int64     `json:"base_amount" db:"base_amount"`
	AdjustedAmount int64     `json:"adjusted_amount" db:"adjusted_amount"`
	Multiplier     float64   `json:"multiplier" db:"multiplier"`
	Reason         string    `json:"reason" db:"reason"`
	Source         string    `json:"source" db:"source"` // free-form origin tag, e.g. a partner id
	IdempotencyKey *string   `json:"idempotency_key,omitempty" db:"idempotency_key"`
	AwardedAt      time.Time `json:"awarded_at" db:"awarded_at"`
}
