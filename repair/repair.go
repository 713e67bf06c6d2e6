// Package repair tracks bikes taken out of circulation and what fixing
// them cost.
package repair

import (
	"database/sql"
	"math/rand"

	"github.com/google/uuid"
)

// Repair is one maintenance episode for a bike. DateRepaired and Cost stay
// NULL until the repair completes.
type Repair struct {
	ID                uuid.UUID
	BikeID            uuid.UUID    `db:"bike_id"`
	DateMalfunctioned sql.NullTime `db:"date_malfunctioned"`
	DateRepaired      sql.NullTime `db:"date_repaired"`
	Cost              sql.NullFloat64 `db:"repair_cost"`
}

// CostEstimator prices a completed repair. The workshop does not report
// real invoices yet, so production uses a synthetic estimator; tests plug
// in Fixed.
type CostEstimator interface {
	Estimate() float64
}

// RandomEstimator draws a cost between 2 and 40, with values over 30
// halved half the time so cheap repairs dominate.
type RandomEstimator struct {
	rng *rand.Rand
}

func NewRandomEstimator(seed int64) *RandomEstimator {
	return &RandomEstimator{rng: rand.New(rand.NewSource(seed))}
}

func (e *RandomEstimator) Estimate() float64 {
	cost := e.rng.Intn(39) + 2
	if cost > 30 && e.rng.Float64() < 0.5 {
		cost = cost / 2
	}
	return float64(cost)
}

// Fixed always estimates the same cost. Test double.
type Fixed float64

func (f Fixed) Estimate() float64 { return float64(f) }
