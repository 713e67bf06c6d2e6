package inventory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNoBaseline is returned when a delta is recorded against a station that
// was never seeded with an initial event. The ledger is not self-healing:
// the station has to be seeded before use.
var ErrNoBaseline = errors.New("station has no baseline inventory event")

type Ledger struct {
	db *sqlx.DB
}

func NewLedger(db *sqlx.DB) *Ledger {
	return &Ledger{db: db}
}

// Seed writes the station's first event. Run once when the station is
// commissioned.
func (l *Ledger) Seed(ctx context.Context, q sqlx.ExtContext, stationID uuid.UUID, count int, ts time.Time) error {
	_, err := q.ExecContext(ctx, insertEvent, stationID, count, ts)
	return err
}

// RecordDelta appends a new event with the latest count plus delta. The
// station row is locked first: the new count is computed from the latest
// event, so two concurrent deltas must not both read the same "latest".
func (l *Ledger) RecordDelta(ctx context.Context, q sqlx.ExtContext, stationID uuid.UUID, ts time.Time, delta int) error {
	if _, err := q.ExecContext(ctx, lockStation, stationID); err != nil {
		return err
	}

	var last int
	err := sqlx.GetContext(ctx, q, &last, latestCount, stationID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoBaseline
	}
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, insertEvent, stationID, last+delta, ts)
	return err
}

const lockStation = `SELECT 1 FROM stations WHERE id = $1 FOR UPDATE`

const latestCount = `
SELECT count FROM inventory_events
WHERE station_id = $1
ORDER BY recorded_at DESC, id DESC
LIMIT 1
`

const insertEvent = `
INSERT INTO inventory_events (station_id, count, recorded_at)
VALUES ($1, $2, $3)
`

// CountAsOf returns the station's count at the latest event at or before
// ts, falling back to the station's initial bike count if the series does
// not reach back that far.
func (l *Ledger) CountAsOf(ctx context.Context, stationID uuid.UUID, ts time.Time) (int, error) {
	var count int
	err := l.db.GetContext(ctx, &count, countAsOf, stationID, ts)
	if errors.Is(err, sql.ErrNoRows) {
		err = l.db.GetContext(ctx, &count, initialCount, stationID)
	}
	return count, err
}

const countAsOf = `
SELECT count FROM inventory_events
WHERE station_id = $1 AND recorded_at <= $2
ORDER BY recorded_at DESC, id DESC
LIMIT 1
`

const initialCount = `SELECT initial_bike_count FROM stations WHERE id = $1`

// Series returns the station's events within [from, to], oldest first. It
// backs the usage reports.
func (l *Ledger) Series(ctx context.Context, stationID uuid.UUID, from, to time.Time) ([]Event, error) {
	var events []Event
	err := l.db.SelectContext(ctx, &events, seriesQuery, stationID, from, to)
	return events, err
}

const seriesQuery = `
SELECT * FROM inventory_events
WHERE station_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
ORDER BY recorded_at ASC, id ASC
`
