// Package account holds a customer's funds, outstanding charges, and
// membership tier. All balance and charge mutation funnels through the
// methods on Account so the books stay consistent: after every update both
// figures are non-negative and at most one of them is positive.
package account

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type MembershipType int

const (
	Standard MembershipType = iota
	Student
	Pensioner
	Staff
)

// ErrInsufficientFunds is returned by PayOutstandingCharges when the balance
// does not cover the charges. The account is left untouched.
var ErrInsufficientFunds = errors.New("balance does not cover outstanding charges")

type Account struct {
	ID       uuid.UUID
	Auth0ID  string         `db:"auth0_id"`
	StripeID sql.NullString `db:"stripe_id"`
	Email    sql.NullString `db:"email"`
	Name     sql.NullString `db:"name"`

	MembershipType MembershipType `db:"membership_type"`

	// Balance is funds available; Charges is the amount owed. Never both
	// positive at the same time.
	Balance float64
	Charges float64

	// CurrentHireID is set while the customer has a bike out.
	CurrentHireID *uuid.UUID `db:"current_hire_id"`

	CreatedAt time.Time `db:"created_at"`
}

// ApplyCharge adds a charge, offsetting it against any existing balance
// first. Whatever the balance cannot absorb becomes owed. Non-positive
// amounts are ignored.
func (a *Account) ApplyCharge(amount float64) {
	if amount <= 0 {
		return
	}
	if a.Balance > 0 {
		if a.Balance >= amount {
			a.Balance -= amount
			return
		}
		amount -= a.Balance
		a.Balance = 0
	}
	a.Charges += amount
}

// ApplyFunds adds funds, paying down any existing charges first. Whatever
// remains after the charges becomes balance. Non-positive amounts are
// ignored.
func (a *Account) ApplyFunds(amount float64) {
	if amount <= 0 {
		return
	}
	if a.Charges > 0 {
		if a.Charges >= amount {
			a.Charges -= amount
			return
		}
		amount -= a.Charges
		a.Charges = 0
	}
	a.Balance += amount
}

// PayOutstandingCharges settles all charges from the balance in one go.
func (a *Account) PayOutstandingCharges() error {
	if a.Balance < a.Charges {
		return ErrInsufficientFunds
	}
	a.Balance -= a.Charges
	a.Charges = 0
	return nil
}

func (t MembershipType) String() string {
	return [...]string{"standard", "student", "pensioner", "staff"}[t]
}

func (t MembershipType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t MembershipType) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *MembershipType) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "standard":
			*t = Standard
			return nil
		case "student":
			*t = Student
			return nil
		case "pensioner":
			*t = Pensioner
			return nil
		case "staff":
			*t = Staff
			return nil
		}
	}
	panic("invalid scan type")
}
