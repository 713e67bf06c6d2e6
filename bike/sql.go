package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("bike not found")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBikes(ctx context.Context) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, getBikes)
	return bikes, err
}

const getBikes = `
SELECT b.*, s.name as station_name
FROM bikes b
LEFT JOIN stations s ON b.station_id = s.id
ORDER BY b.label
`

func (r *Repository) GetBike(ctx context.Context, label string) (Bike, error) {
	var bike Bike
	err := r.db.GetContext(ctx, &bike, getBike, label)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, ErrNotFound
	}
	return bike, err
}

const getBike = `
SELECT b.*, s.name as station_name
FROM bikes b
LEFT JOIN stations s ON b.station_id = s.id
WHERE b.label = $1
`

// GetForUpdate fetches a bike by ID and locks its row for the remainder of
// the transaction. Lifecycle operations go through this so concurrent
// transitions on the same bike serialize.
func (r *Repository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (Bike, error) {
	var bike Bike
	err := sqlx.GetContext(ctx, q, &bike, getForUpdate, id)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, ErrNotFound
	}
	return bike, err
}

const getForUpdate = `SELECT * FROM bikes WHERE id = $1 FOR UPDATE`

// FindAvailableAtStation picks one available bike docked at the station,
// locking it. Returns ErrNotFound if the station has none to give.
func (r *Repository) FindAvailableAtStation(ctx context.Context, q sqlx.ExtContext, stationID uuid.UUID) (Bike, error) {
	var bike Bike
	err := sqlx.GetContext(ctx, q, &bike, findAvailableAtStation, stationID, Available)
	if errors.Is(err, sql.ErrNoRows) {
		return bike, ErrNotFound
	}
	return bike, err
}

const findAvailableAtStation = `
SELECT * FROM bikes
WHERE station_id = $1 AND status = $2
ORDER BY last_hired NULLS FIRST
LIMIT 1
FOR UPDATE
`

// Save writes back the mutable state of a bike (status, dock, last hire).
func (r *Repository) Save(ctx context.Context, q sqlx.ExtContext, b Bike) error {
	_, err := q.ExecContext(ctx, saveBike, b.ID, b.Status, b.StationID, b.LastHired)
	return err
}

const saveBike = `UPDATE bikes SET status = $2, station_id = $3, last_hired = $4 WHERE id = $1`
