package station

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("station not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetStations(ctx context.Context) ([]Station, error) {
	var stations []Station
	err := r.db.SelectContext(ctx, &stations, getStations)
	return stations, err
}

const getStations = `SELECT * FROM stations ORDER BY name`

func (r *Repository) GetStation(ctx context.Context, id string) (Station, error) {
	var station Station
	err := r.db.GetContext(ctx, &station, getStation, id)
	if errors.Is(err, sql.ErrNoRows) {
		return station, ErrNotFound
	}
	return station, err
}

const getStation = `SELECT * FROM stations WHERE id = $1`

func (r *Repository) GetStationByName(ctx context.Context, name string) (Station, error) {
	var station Station
	err := r.db.GetContext(ctx, &station, getStationByName, name)
	if errors.Is(err, sql.ErrNoRows) {
		return station, ErrNotFound
	}
	return station, err
}

const getStationByName = `SELECT * FROM stations WHERE name = $1`

// Lock takes the station's row lock for the remainder of the transaction.
// Lifecycle operations that touch a station's inventory lock the station
// first; callers locking two stations must lock them in a consistent order.
func (r *Repository) Lock(ctx context.Context, q sqlx.ExtContext, id string) error {
	var one int
	err := sqlx.GetContext(ctx, q, &one, lockStation, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const lockStation = `SELECT 1 FROM stations WHERE id = $1 FOR UPDATE`
