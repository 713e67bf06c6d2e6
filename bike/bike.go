// Package bike
package bike

import (
	"database/sql"
	"database/sql/driver"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type Status int

const (
	// Available means the bike is docked at a station and can be hired.
	Available Status = iota
	// OnHire means the bike is out with a customer and has no station.
	OnHire
	// BeingRepaired means the bike is out of circulation at its station.
	BeingRepaired
)

// Bike represents a bike which can be hired, moved between stations, and
// taken out of circulation for repair.
type Bike struct {
	// ID is an internal identifier for a bike
	ID uuid.UUID
	// Label is a physical label which is on the bike. It should be scannable (e.g. "CITY-123")
	// in QR Code or Code-128 format.
	Label string

	Status Status

	// StationID is where the bike is currently docked. It is NULL while the
	// bike is out on hire.
	StationID   *uuid.UUID `db:"station_id"`
	StationName *string    `db:"station_name"`

	LastHired sql.NullTime `db:"last_hired"`
}

func (s Status) String() string {
	return [...]string{"available", "on_hire", "in_repair"}[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *Status) Scan(i any) error {
	switch v := i.(type) {
	case string:
		switch v {
		case "available":
			*s = Available
			return nil
		case "on_hire":
			*s = OnHire
			return nil
		case "in_repair":
			*s = BeingRepaired
			return nil
		}
	}
	panic("invalid scan type")
}
