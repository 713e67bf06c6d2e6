// Package pricing turns a hire's duration, the customer's membership tier,
// and an optional discount into a charge. It is pure: no clock, no I/O.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/discount"
)

// ErrNoRate indicates a membership tier with no configured rate. That is a
// deployment mistake, not user input, so callers should fail loudly rather
// than fall back to a default price.
var ErrNoRate = errors.New("no rate configured for membership type")

// Policy is the configured rate table and penalty schedule.
type Policy struct {
	// Rates is the basic cost per hire, keyed by membership tier.
	Rates map[account.MembershipType]float64
	// MaxStandardTime is the allowance covered by the basic cost.
	MaxStandardTime time.Duration
	// Interval is the block size for penalty charging beyond the allowance.
	// Any started block is charged in full.
	Interval time.Duration
	// ChargePerInterval is the penalty per (started) interval.
	ChargePerInterval float64
}

// Default mirrors the rates the service launched with.
func Default() Policy {
	return Policy{
		Rates: map[account.MembershipType]float64{
			account.Standard:  1.50,
			account.Student:   1.00,
			account.Pensioner: 0.75,
			account.Staff:     1.00,
		},
		MaxStandardTime:   30 * time.Minute,
		Interval:          30 * time.Minute,
		ChargePerInterval: 1.00,
	}
}

// Cost computes the total charge for a hire and the amount saved through
// the discount, if one was supplied and is still redeemable on the given
// day. An unredeemable discount leaves the total unchanged and saves
// nothing; it is not an error.
func (p Policy) Cost(duration time.Duration, tier account.MembershipType, d *discount.Discount, today time.Time) (total, saved float64, err error) {
	basic, ok := p.Rates[tier]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoRate, tier)
	}

	total = basic
	if duration > p.MaxStandardTime {
		exceeded := duration - p.MaxStandardTime
		intervals := int64(exceeded / p.Interval)
		if exceeded%p.Interval != 0 {
			intervals++
		}
		total += float64(intervals) * p.ChargePerInterval
	}

	if d != nil && d.ValidOn(today) {
		saved = total - total*d.Amount
		total *= d.Amount
	}
	return total, saved, nil
}
