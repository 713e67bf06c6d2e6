package repair

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNoOpenRepair = errors.New("bike has no open repair")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Open records that a bike was reported broken.
func (r *Repository) Open(ctx context.Context, q sqlx.ExtContext, bikeID uuid.UUID, at time.Time) (uuid.UUID, error) {
	id := uuid.New()
	_, err := q.ExecContext(ctx, openQuery, id, bikeID, at)
	return id, err
}

const openQuery = `
INSERT INTO repairs (id, bike_id, date_malfunctioned)
VALUES ($1, $2, $3)
`

// Close stamps the bike's open repair with a completion time and cost.
func (r *Repository) Close(ctx context.Context, q sqlx.ExtContext, bikeID uuid.UUID, at time.Time, cost float64) error {
	res, err := q.ExecContext(ctx, closeQuery, bikeID, at, cost)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoOpenRepair
	}
	return nil
}

const closeQuery = `
UPDATE repairs SET date_repaired = $2, repair_cost = $3
WHERE bike_id = $1 AND date_repaired IS NULL
`

// History returns a bike's repairs, newest first.
func (r *Repository) History(ctx context.Context, bikeID uuid.UUID) ([]Repair, error) {
	var repairs []Repair
	err := r.db.SelectContext(ctx, &repairs, historyQuery, bikeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return repairs, err
}

const historyQuery = `
SELECT * FROM repairs WHERE bike_id = $1 ORDER BY date_malfunctioned DESC
`
