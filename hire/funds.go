package hire

import (
	"context"

	"github.com/google/uuid"

	"github.com/civitech/hireengine-backend/account"
)

// AddFunds credits an account, paying down any outstanding charges first.
func (m *Manager) AddFunds(ctx context.Context, accountID uuid.UUID, amount float64) (*account.Account, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	acct, err := m.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	acct.ApplyFunds(amount)
	if err := m.accounts.Save(ctx, tx, acct); err != nil {
		return nil, err
	}

	return acct, tx.Commit()
}

// SettleCharges pays all outstanding charges from the balance. Fails with
// account.ErrInsufficientFunds, leaving the account untouched, if the
// balance does not cover them.
func (m *Manager) SettleCharges(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	acct, err := m.accounts.GetForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if err := acct.PayOutstandingCharges(); err != nil {
		return nil, err
	}
	if err := m.accounts.Save(ctx, tx, acct); err != nil {
		return nil, err
	}

	return acct, tx.Commit()
}
