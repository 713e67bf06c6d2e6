// Package discount
package discount

import (
	"time"

	"github.com/google/uuid"
)

// Discount is a time-limited promotional code. Amount is the fraction of
// the price the customer still pays (a multiplier, not a percent off):
// 0.5 means the customer pays half.
type Discount struct {
	ID       uuid.UUID
	Code     string
	DateFrom time.Time `db:"date_from"`
	DateTo   time.Time `db:"date_to"`
	Amount   float64   `db:"discount_amount"`
}

// ValidOn reports whether the discount can still be redeemed on the given
// day. Only the upper bound is checked: a code redeemed before its
// date_from has always been accepted and billing depends on that now.
func (d Discount) ValidOn(t time.Time) bool {
	return !dateOf(t).After(dateOf(d.DateTo))
}

// ClampAmount forces Amount into [0, 1]. Run before every write.
func (d *Discount) ClampAmount() {
	if d.Amount < 0 {
		d.Amount = 0
	} else if d.Amount > 1 {
		d.Amount = 1
	}
}

// Usage records that an account consumed a discount on a hire, and how much
// it saved them.
type Usage struct {
	ID          uuid.UUID
	AccountID   uuid.UUID  `db:"account_id"`
	DiscountID  uuid.UUID  `db:"discount_id"`
	HireID      *uuid.UUID `db:"hire_id"`
	DateUsed    time.Time  `db:"date_used"`
	AmountSaved float64    `db:"amount_saved"`
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
