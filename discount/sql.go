package discount

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound = errors.New("discount not found")
	// ErrAlreadyRedeemed is returned when an account tries to use the same
	// code twice. Codes are one-shot per account.
	ErrAlreadyRedeemed = errors.New("discount already redeemed by account")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByCode(ctx context.Context, code string) (Discount, error) {
	var d Discount
	err := r.db.GetContext(ctx, &d, getByCodeQuery, code)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrNotFound
	}
	return d, err
}

const getByCodeQuery = `SELECT * FROM discounts WHERE code = $1`

func (r *Repository) Create(ctx context.Context, d *Discount) error {
	d.ClampAmount()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, createQuery, d.ID, d.Code, d.DateFrom, d.DateTo, d.Amount)
	return err
}

const createQuery = `
INSERT INTO discounts (id, code, date_from, date_to, discount_amount)
VALUES ($1, $2, $3, $4, $5)
`

// HasRedeemed reports whether the account has already used this discount.
func (r *Repository) HasRedeemed(ctx context.Context, q sqlx.ExtContext, accountID, discountID uuid.UUID) (bool, error) {
	var redeemed bool
	err := sqlx.GetContext(ctx, q, &redeemed, hasRedeemedQuery, accountID, discountID)
	return redeemed, err
}

const hasRedeemedQuery = `
SELECT EXISTS (SELECT 1 FROM discount_usages WHERE account_id = $1 AND discount_id = $2)
`

// Redeem records the usage. The unique index on (account_id, discount_id)
// backstops the HasRedeemed check under concurrency; a second redemption
// racing past the check lands here as ErrAlreadyRedeemed.
func (r *Repository) Redeem(ctx context.Context, q sqlx.ExtContext, u Usage) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.DateUsed.IsZero() {
		u.DateUsed = time.Now()
	}
	_, err := q.ExecContext(ctx, redeemQuery, u.ID, u.AccountID, u.DiscountID, u.HireID, u.DateUsed, u.AmountSaved)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return ErrAlreadyRedeemed
	}
	return err
}

const redeemQuery = `
INSERT INTO discount_usages (id, account_id, discount_id, hire_id, date_used, amount_saved)
VALUES ($1, $2, $3, $4, $5, $6)
`
