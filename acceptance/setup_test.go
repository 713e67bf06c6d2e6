package acceptance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/civitech/hireengine-backend/account"
	"github.com/civitech/hireengine-backend/bike"
	"github.com/civitech/hireengine-backend/discount"
	"github.com/civitech/hireengine-backend/hire"
	"github.com/civitech/hireengine-backend/inventory"
	"github.com/civitech/hireengine-backend/pricing"
	"github.com/civitech/hireengine-backend/repair"
	"github.com/civitech/hireengine-backend/station"
)

type TestHarness struct {
	DB  *sqlx.DB
	Mgr *hire.Manager

	Bikes     *bike.Repository
	Stations  *station.Repository
	Accounts  *account.Repository
	Hires     *hire.Repository
	Discounts *discount.Repository
	Repairs   *repair.Repository
	Inv       *inventory.Ledger

	// Now is the manager's frozen clock; advance it with Tick.
	Now time.Time
}

func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set; skipping acceptance tests")
	}

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	applySchema(t, db)
	cleanupTestData(t, db)

	th := &TestHarness{
		DB:        db,
		Bikes:     bike.NewRepository(db),
		Stations:  station.NewRepository(db),
		Accounts:  account.NewRepository(db),
		Hires:     hire.NewRepository(db),
		Discounts: discount.NewRepository(db),
		Repairs:   repair.NewRepository(db),
		Inv:       inventory.NewLedger(db),
		Now:       time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC),
	}

	th.Mgr = hire.NewManager(db,
		th.Bikes, th.Stations, th.Hires, th.Accounts, th.Discounts, th.Inv, th.Repairs,
		pricing.Default(), repair.Fixed(12))
	th.Mgr.UseClock(func() time.Time { return th.Now })

	return th
}

func (th *TestHarness) Close() {
	th.DB.Close()
}

// Tick advances the harness clock.
func (th *TestHarness) Tick(d time.Duration) {
	th.Now = th.Now.Add(d)
}

func applySchema(t *testing.T, db *sqlx.DB) {
	t.Helper()
	schema, err := os.ReadFile(filepath.Join("..", "schema.sql"))
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
}

func cleanupTestData(t *testing.T, db *sqlx.DB) {
	t.Helper()

	// Delete in order of dependencies
	for _, table := range []string{
		"discount_usages", "repairs", "inventory_events",
	} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("warning: failed to clean %s: %v", table, err)
		}
	}
	if _, err := db.Exec("UPDATE accounts SET current_hire_id = NULL"); err != nil {
		t.Logf("warning: failed to detach hires: %v", err)
	}
	for _, table := range []string{
		"hires", "discounts", "accounts", "bikes", "stations",
	} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Logf("warning: failed to clean %s: %v", table, err)
		}
	}
}

// CreateStation also seeds the station's baseline inventory event, dated
// just before the harness clock so CountAsOf(Now) sees it.
func (th *TestHarness) CreateStation(t *testing.T, name string, bikes int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := th.DB.Exec(`
		INSERT INTO stations (id, name, location, initial_bike_count)
		VALUES ($1, $2, point(53.38, -1.47), $3)
	`, id, name, bikes)
	if err != nil {
		t.Fatalf("failed to create test station: %v", err)
	}
	if err := th.Inv.Seed(context.Background(), th.DB, id, bikes, th.Now.Add(-time.Hour)); err != nil {
		t.Fatalf("failed to seed station inventory: %v", err)
	}
	return id
}

// CreateUnseededStation makes a station with no baseline event.
func (th *TestHarness) CreateUnseededStation(t *testing.T, name string, initialCount int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := th.DB.Exec(`
		INSERT INTO stations (id, name, location, initial_bike_count)
		VALUES ($1, $2, point(53.38, -1.47), $3)
	`, id, name, initialCount)
	if err != nil {
		t.Fatalf("failed to create test station: %v", err)
	}
	return id
}

func (th *TestHarness) CreateBike(t *testing.T, label string, stationID uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := th.DB.Exec(`
		INSERT INTO bikes (id, label, status, station_id)
		VALUES ($1, $2, 'available', $3)
	`, id, label, stationID)
	if err != nil {
		t.Fatalf("failed to create test bike: %v", err)
	}
	return id
}

func (th *TestHarness) CreateAccount(t *testing.T, auth0ID string, tier account.MembershipType) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := th.DB.Exec(`
		INSERT INTO accounts (id, auth0_id, membership_type)
		VALUES ($1, $2, $3)
	`, id, auth0ID, tier.String())
	if err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return id
}

func (th *TestHarness) CreateDiscount(t *testing.T, code string, amount float64, from, to time.Time) uuid.UUID {
	t.Helper()
	d := discount.Discount{Code: code, DateFrom: from, DateTo: to, Amount: amount}
	if err := th.Discounts.Create(context.Background(), &d); err != nil {
		t.Fatalf("failed to create test discount: %v", err)
	}
	return d.ID
}

func (th *TestHarness) GetAccount(t *testing.T, id uuid.UUID) *account.Account {
	t.Helper()
	acct, err := th.Accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get account: %v", err)
	}
	return acct
}

func (th *TestHarness) GetBike(t *testing.T, id uuid.UUID) bike.Bike {
	t.Helper()
	var b bike.Bike
	if err := th.DB.Get(&b, `SELECT * FROM bikes WHERE id = $1`, id); err != nil {
		t.Fatalf("failed to get bike: %v", err)
	}
	return b
}

func (th *TestHarness) CountEvents(t *testing.T, stationID uuid.UUID) int {
	t.Helper()
	var n int
	if err := th.DB.Get(&n, `SELECT count(*) FROM inventory_events WHERE station_id = $1`, stationID); err != nil {
		t.Fatalf("failed to count inventory events: %v", err)
	}
	return n
}
