package hire

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/bike"
	"github.com/civitech/hireengine-backend/discount"
	"github.com/civitech/hireengine-backend/inventory"
	"github.com/civitech/hireengine-backend/pricing"
	"github.com/civitech/hireengine-backend/repair"
	"github.com/civitech/hireengine-backend/station"
)

var (
	ErrBikeNotAvailable   = errors.New("bike not available for hire")
	ErrHireInProgress     = errors.New("account already has a hire in progress")
	ErrOutstandingCharges = errors.New("account has outstanding charges")
	ErrAlreadyReturned    = errors.New("hire already returned")
	ErrSameStation        = errors.New("cannot move a bike to the station it is already at")
	ErrNoBikesAtStation   = errors.New("station has no bikes available to move")
	ErrAlreadyInRepair    = errors.New("bike is already being repaired")
	ErrNotInRepair        = errors.New("bike is not being repaired")
)

// Manager drives the five lifecycle operations. Each one runs as a single
// transaction with row locks on the bike, account, and station(s) involved,
// so either every sub-effect (entity mutation plus inventory event) commits
// or none do.
type Manager struct {
	db        *sqlx.DB
	bikes     *bike.Repository
	stations  *station.Repository
	hires     *Repository
	accounts  *account.Repository
	discounts *discount.Repository
	inv       *inventory.Ledger
	repairs   *repair.Repository
	policy    pricing.Policy
	estimator repair.CostEstimator

	// now is the clock; swapped out in tests.
	now func() time.Time
}

func NewManager(
	db *sqlx.DB,
	bikes *bike.Repository,
	stations *station.Repository,
	hires *Repository,
	accounts *account.Repository,
	discounts *discount.Repository,
	inv *inventory.Ledger,
	repairs *repair.Repository,
	policy pricing.Policy,
	estimator repair.CostEstimator,
) *Manager {
	return &Manager{
		db:        db,
		bikes:     bikes,
		stations:  stations,
		hires:     hires,
		accounts:  accounts,
		discounts: discounts,
		inv:       inv,
		repairs:   repairs,
		policy:    policy,
		estimator: estimator,
		now:       time.Now,
	}
}

// UseClock replaces the manager's clock. Tests only.
func (m *Manager) UseClock(now func() time.Time) {
	m.now = now
}

// Start hires a bike out to an account. The bike must be available and the
// account must have no hire in progress and nothing owed.
func (m *Manager) Start(ctx context.Context, bikeID, accountID uuid.UUID) (Hire, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return Hire{}, err
	}
	defer tx.Rollback()

	b, err := m.bikes.GetForUpdate(ctx, tx, bikeID)
	if err != nil {
		return Hire{}, err
	}
	if b.Status != bike.Available || b.StationID == nil {
		return Hire{}, ErrBikeNotAvailable
	}

	acct, err := m.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return Hire{}, err
	}
	if acct.CurrentHireID != nil {
		return Hire{}, ErrHireInProgress
	}
	if acct.Charges != 0 {
		return Hire{}, ErrOutstandingCharges
	}

	now := m.now()
	startStation := *b.StationID

	b.Status = bike.OnHire
	b.StationID = nil
	b.LastHired.Time, b.LastHired.Valid = now, true
	if err := m.bikes.Save(ctx, tx, b); err != nil {
		return Hire{}, err
	}

	h := Hire{
		ID:           uuid.New(),
		AccountID:    acct.ID,
		BikeID:       &b.ID,
		DateHired:    now,
		StartStation: &startStation,
	}
	if err := m.hires.Create(ctx, tx, &h); err != nil {
		return Hire{}, err
	}

	acct.CurrentHireID = &h.ID
	if err := m.accounts.Save(ctx, tx, acct); err != nil {
		return Hire{}, err
	}

	if err := m.inv.RecordDelta(ctx, tx, startStation, now, -1); err != nil {
		return Hire{}, err
	}

	if err := tx.Commit(); err != nil {
		return Hire{}, err
	}
	hiresStartedTotal.Inc()
	return h, nil
}

// Return closes a hire at the given station, prices it, and charges the
// account. An unknown, expired, or already-used discount code is treated as
// no discount rather than an error.
func (m *Manager) Return(ctx context.Context, hireID, endStationID uuid.UUID, discountCode string) (Hire, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return Hire{}, err
	}
	defer tx.Rollback()

	h, err := m.hires.GetForUpdate(ctx, tx, hireID)
	if err != nil {
		return Hire{}, err
	}
	if h.Returned() {
		return Hire{}, ErrAlreadyReturned
	}

	acct, err := m.accounts.GetForUpdate(ctx, tx, h.AccountID)
	if err != nil {
		return Hire{}, err
	}

	applied, err := m.resolveDiscount(ctx, tx, acct.ID, discountCode)
	if err != nil {
		return Hire{}, err
	}

	now := m.now()
	total, saved, err := m.policy.Cost(h.Duration(now), acct.MembershipType, applied, now)
	if err != nil {
		return Hire{}, err
	}

	if h.BikeID != nil {
		b, err := m.bikes.GetForUpdate(ctx, tx, *h.BikeID)
		if err != nil {
			return Hire{}, err
		}
		b.Status = bike.Available
		b.StationID = &endStationID
		if err := m.bikes.Save(ctx, tx, b); err != nil {
			return Hire{}, err
		}
	}

	h.EndStation = &endStationID
	h.DateReturned.Time, h.DateReturned.Valid = now, true
	h.Charges.Float64, h.Charges.Valid = total, true
	if applied != nil && applied.ValidOn(now) {
		h.DiscountID = &applied.ID
		err := m.discounts.Redeem(ctx, tx, discount.Usage{
			AccountID:   acct.ID,
			DiscountID:  applied.ID,
			HireID:      &h.ID,
			DateUsed:    now,
			AmountSaved: saved,
		})
		if err != nil {
			return Hire{}, err
		}
	}
	if err := m.hires.Save(ctx, tx, h); err != nil {
		return Hire{}, err
	}

	acct.ApplyCharge(total)
	acct.CurrentHireID = nil
	if err := m.accounts.Save(ctx, tx, acct); err != nil {
		return Hire{}, err
	}

	if err := m.inv.RecordDelta(ctx, tx, endStationID, now, 1); err != nil {
		return Hire{}, err
	}

	if err := tx.Commit(); err != nil {
		return Hire{}, err
	}
	hiresReturnedTotal.Inc()
	hireRevenueTotal.Add(total)
	return h, nil
}

// resolveDiscount turns a code into a discount the account can still use.
// Unknown codes and codes the account already burned resolve to nil.
func (m *Manager) resolveDiscount(ctx context.Context, tx *sqlx.Tx, accountID uuid.UUID, code string) (*discount.Discount, error) {
	if code == "" {
		return nil, nil
	}
	d, err := m.discounts.GetByCode(ctx, code)
	if errors.Is(err, discount.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	used, err := m.discounts.HasRedeemed(ctx, tx, accountID, d.ID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, nil
	}
	return &d, nil
}

// Move relocates one available bike between stations and records the pair
// of inventory events. Both station rows are locked up front, in id order,
// so two crossing moves cannot deadlock.
func (m *Manager) Move(ctx context.Context, fromStationID, toStationID uuid.UUID) (bike.Bike, error) {
	if fromStationID == toStationID {
		return bike.Bike{}, ErrSameStation
	}

	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return bike.Bike{}, err
	}
	defer tx.Rollback()

	first, second := fromStationID, toStationID
	if second.String() < first.String() {
		first, second = second, first
	}
	if err := m.stations.Lock(ctx, tx, first.String()); err != nil {
		return bike.Bike{}, err
	}
	if err := m.stations.Lock(ctx, tx, second.String()); err != nil {
		return bike.Bike{}, err
	}

	b, err := m.bikes.FindAvailableAtStation(ctx, tx, fromStationID)
	if errors.Is(err, bike.ErrNotFound) {
		return bike.Bike{}, ErrNoBikesAtStation
	}
	if err != nil {
		return bike.Bike{}, err
	}

	b.StationID = &toStationID
	if err := m.bikes.Save(ctx, tx, b); err != nil {
		return bike.Bike{}, err
	}

	now := m.now()
	if err := m.inv.RecordDelta(ctx, tx, fromStationID, now, -1); err != nil {
		return bike.Bike{}, err
	}
	if err := m.inv.RecordDelta(ctx, tx, toStationID, now, 1); err != nil {
		return bike.Bike{}, err
	}

	if err := tx.Commit(); err != nil {
		return bike.Bike{}, err
	}
	bikesMovedTotal.Inc()
	return b, nil
}

// ReportForRepair takes a bike out of circulation. Its dock stays as-is so
// operators know where to collect it.
func (m *Manager) ReportForRepair(ctx context.Context, bikeID uuid.UUID) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, err := m.bikes.GetForUpdate(ctx, tx, bikeID)
	if err != nil {
		return err
	}
	if b.Status == bike.BeingRepaired {
		return ErrAlreadyInRepair
	}

	b.Status = bike.BeingRepaired
	if err := m.bikes.Save(ctx, tx, b); err != nil {
		return err
	}

	if _, err := m.repairs.Open(ctx, tx, b.ID, m.now()); err != nil {
		return err
	}

	return tx.Commit()
}

// CompleteRepair prices the repair through the injected estimator and puts
// the bike back in circulation.
func (m *Manager) CompleteRepair(ctx context.Context, bikeID uuid.UUID) (float64, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	b, err := m.bikes.GetForUpdate(ctx, tx, bikeID)
	if err != nil {
		return 0, err
	}
	if b.Status != bike.BeingRepaired {
		return 0, ErrNotInRepair
	}

	cost := m.estimator.Estimate()

	b.Status = bike.Available
	if err := m.bikes.Save(ctx, tx, b); err != nil {
		return 0, err
	}

	if err := m.repairs.Close(ctx, tx, b.ID, m.now(), cost); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	bikesRepairedTotal.Inc()
	return cost, nil
}

// PreviewCost prices an in-progress hire as if it were returned now, for
// display before the customer commits. Read-only.
func (m *Manager) PreviewCost(ctx context.Context, hireID uuid.UUID, discountCode string) (total, saved float64, err error) {
	h, err := m.hires.GetByID(ctx, hireID)
	if err != nil {
		return 0, 0, err
	}
	acct, err := m.accounts.GetByID(ctx, h.AccountID)
	if err != nil {
		return 0, 0, err
	}

	var applied *discount.Discount
	if discountCode != "" {
		d, err := m.discounts.GetByCode(ctx, discountCode)
		if err == nil {
			applied = &d
		} else if !errors.Is(err, discount.ErrNotFound) {
			return 0, 0, err
		}
	}

	now := m.now()
	return m.policy.Cost(h.Duration(now), acct.MembershipType, applied, now)
}
