package hire

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("hire not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Hire, error) {
	var h Hire
	err := r.db.GetContext(ctx, &h, getByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Hire{}, ErrNotFound
	}
	return h, err
}

const getByIDQuery = `SELECT * FROM hires WHERE id = $1`

func (r *Repository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (Hire, error) {
	var h Hire
	err := sqlx.GetContext(ctx, q, &h, getForUpdateQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Hire{}, ErrNotFound
	}
	return h, err
}

const getForUpdateQuery = `SELECT * FROM hires WHERE id = $1 FOR UPDATE`

func (r *Repository) Create(ctx context.Context, q sqlx.ExtContext, h *Hire) error {
	_, err := q.ExecContext(ctx, createQuery, h.ID, h.AccountID, h.BikeID, h.DateHired, h.StartStation)
	return err
}

const createQuery = `
INSERT INTO hires (id, account_id, bike_id, date_hired, start_station)
VALUES ($1, $2, $3, $4, $5)
`

// Save writes back the fields a return mutates. Hires are written exactly
// twice: once at creation, once here.
func (r *Repository) Save(ctx context.Context, q sqlx.ExtContext, h Hire) error {
	_, err := q.ExecContext(ctx, saveQuery, h.ID, h.DateReturned, h.EndStation, h.Charges, h.DiscountID)
	return err
}

const saveQuery = `
UPDATE hires SET date_returned = $2, end_station = $3, charges = $4, discount_id = $5
WHERE id = $1
`

// GetHistory fetches an account's closed hires, newest first.
func (r *Repository) GetHistory(ctx context.Context, accountID uuid.UUID) ([]Hire, error) {
	var hires []Hire
	err := r.db.SelectContext(ctx, &hires, getHistoryQuery, accountID)
	return hires, err
}

const getHistoryQuery = `
SELECT * FROM hires
WHERE account_id = $1 AND date_returned IS NOT NULL
ORDER BY date_hired DESC
`
