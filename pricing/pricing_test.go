package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/discount"
)

func testPolicy() Policy {
	return Policy{
		Rates: map[account.MembershipType]float64{
			account.Standard:  1.50,
			account.Student:   1.00,
			account.Pensioner: 0.75,
			account.Staff:     1.00,
		},
		MaxStandardTime:   30 * time.Minute,
		Interval:          30 * time.Minute,
		ChargePerInterval: 2.00,
	}
}

func TestCost_WithinAllowance(t *testing.T) {
	p := testPolicy()

	for _, d := range []time.Duration{time.Minute, 29 * time.Minute, 30 * time.Minute} {
		total, saved, err := p.Cost(d, account.Standard, nil, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 1.50, total, "duration %s should cost the basic rate only", d)
		assert.Zero(t, saved)
	}
}

func TestCost_UsesTierRate(t *testing.T) {
	p := testPolicy()

	total, _, err := p.Cost(10*time.Minute, account.Pensioner, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.75, total)
}

func TestCost_OneMinuteOverChargesFullInterval(t *testing.T) {
	p := testPolicy()

	total, _, err := p.Cost(31*time.Minute, account.Standard, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.50+2.00, total, "any started interval is charged in full")
}

func TestCost_PartialSecondInterval(t *testing.T) {
	p := testPolicy()

	// 61 minutes: 31 minutes over the allowance, ceil(31/30) = 2 intervals.
	total, _, err := p.Cost(61*time.Minute, account.Standard, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.50+2*2.00, total)
}

func TestCost_ExactIntervalBoundary(t *testing.T) {
	p := testPolicy()

	// 60 minutes: exactly one full interval over, no second interval.
	total, _, err := p.Cost(60*time.Minute, account.Standard, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.50+2.00, total)
}

func TestCost_SubMinutePrecision(t *testing.T) {
	p := testPolicy()

	// 30m0.5s is over the allowance even though truncating to whole
	// minutes would say otherwise.
	total, _, err := p.Cost(30*time.Minute+500*time.Millisecond, account.Standard, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1.50+2.00, total)
}

func TestCost_ValidDiscountHalvesTotal(t *testing.T) {
	p := testPolicy()
	now := time.Now()
	d := &discount.Discount{
		DateFrom: now.AddDate(0, 0, -7),
		DateTo:   now.AddDate(0, 0, 7),
		Amount:   0.5,
	}

	total, saved, err := p.Cost(10*time.Minute, account.Standard, d, now)
	require.NoError(t, err)
	assert.Equal(t, 0.75, total)
	assert.Equal(t, 0.75, saved)
}

func TestCost_ExpiredDiscountIgnored(t *testing.T) {
	p := testPolicy()
	now := time.Now()
	d := &discount.Discount{
		DateFrom: now.AddDate(0, 0, -14),
		DateTo:   now.AddDate(0, 0, -7),
		Amount:   0.5,
	}

	total, saved, err := p.Cost(10*time.Minute, account.Standard, d, now)
	require.NoError(t, err)
	assert.Equal(t, 1.50, total)
	assert.Zero(t, saved)
}

func TestCost_DiscountValidOnLastDay(t *testing.T) {
	p := testPolicy()
	now := time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC)
	d := &discount.Discount{
		DateFrom: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		Amount:   0.5,
	}

	total, saved, err := p.Cost(10*time.Minute, account.Standard, d, now)
	require.NoError(t, err)
	assert.Equal(t, 0.75, total)
	assert.Equal(t, 0.75, saved)
}

// Only the end of the validity window gates redemption; a code used before
// its start date has always been accepted. See discount.ValidOn.
func TestCost_DiscountBeforeStartDateStillApplies(t *testing.T) {
	p := testPolicy()
	now := time.Now()
	d := &discount.Discount{
		DateFrom: now.AddDate(0, 0, 7),
		DateTo:   now.AddDate(0, 0, 14),
		Amount:   0.5,
	}

	total, saved, err := p.Cost(10*time.Minute, account.Standard, d, now)
	require.NoError(t, err)
	assert.Equal(t, 0.75, total)
	assert.Equal(t, 0.75, saved)
}

func TestCost_MissingTierRate(t *testing.T) {
	p := testPolicy()
	delete(p.Rates, account.Staff)

	_, _, err := p.Cost(10*time.Minute, account.Staff, nil, time.Now())
	require.ErrorIs(t, err, ErrNoRate)
}
