package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("account not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByAuth0ID(ctx context.Context, auth0ID string) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, getByAuth0IDQuery, auth0ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

const getByAuth0IDQuery = `SELECT * FROM accounts WHERE auth0_id = $1`

func (r *Repository) Create(ctx context.Context, auth0ID string) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, createAccountQuery, uuid.New(), auth0ID)
	return &a, err
}

const createAccountQuery = `INSERT INTO accounts (id, auth0_id) VALUES ($1, $2) RETURNING *`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, getByIDQuery, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

const getByIDQuery = `SELECT * FROM accounts WHERE id = $1`

// GetForUpdate fetches an account by ID and locks its row, serializing
// concurrent balance and hire-state updates on the same customer.
func (r *Repository) GetForUpdate(ctx context.Context, q sqlx.ExtContext, id uuid.UUID) (*Account, error) {
	var a Account
	err := sqlx.GetContext(ctx, q, &a, getForUpdateQuery, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

const getForUpdateQuery = `SELECT * FROM accounts WHERE id = $1 FOR UPDATE`

// Save writes back the mutable ledger state of an account.
func (r *Repository) Save(ctx context.Context, q sqlx.ExtContext, a *Account) error {
	_, err := q.ExecContext(ctx, saveQuery, a.ID, a.Balance, a.Charges, a.CurrentHireID)
	return err
}

const saveQuery = `UPDATE accounts SET balance = $2, charges = $3, current_hire_id = $4 WHERE id = $1`

func (r *Repository) AddStripeID(ctx context.Context, auth0ID, stripeID string) error {
	_, err := r.db.ExecContext(ctx, addStripeIDQuery, stripeID, auth0ID)
	return err
}

const addStripeIDQuery = `UPDATE accounts SET stripe_id = $1 WHERE auth0_id = $2`

func (r *Repository) UpdateProfile(ctx context.Context, auth0ID, email, name string) error {
	_, err := r.db.ExecContext(ctx, updateProfileQuery, email, name, auth0ID)
	return err
}

const updateProfileQuery = `UPDATE accounts SET email = NULLIF($1, ''), name = NULLIF($2, '') WHERE auth0_id = $3`
