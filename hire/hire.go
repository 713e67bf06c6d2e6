// Package hire owns the rental lifecycle: the Hire record itself and the
// Manager that drives bikes through hire, return, move, and repair.
package hire

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Hire is a single rental from pickup to return. An in-progress hire has
// neither a return date nor an end station; both are set together when the
// bike comes back.
type Hire struct {
	ID        uuid.UUID
	AccountID uuid.UUID `db:"account_id"`
	// BikeID goes NULL if the bike is ever scrapped; the hire record
	// outlives it.
	BikeID       *uuid.UUID      `db:"bike_id"`
	DateHired    time.Time       `db:"date_hired"`
	DateReturned sql.NullTime    `db:"date_returned"`
	StartStation *uuid.UUID      `db:"start_station"`
	EndStation   *uuid.UUID      `db:"end_station"`
	Charges      sql.NullFloat64 `db:"charges"`
	DiscountID   *uuid.UUID      `db:"discount_id"`
}

func (h Hire) Returned() bool {
	return h.DateReturned.Valid
}

// Duration is the hire's elapsed time: up to the return for a closed hire,
// up to now for one still out.
func (h Hire) Duration(now time.Time) time.Duration {
	if h.DateReturned.Valid {
		return h.DateReturned.Time.Sub(h.DateHired)
	}
	return now.Sub(h.DateHired)
}
