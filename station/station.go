// Package station
package station

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Station is a physical dock location holding bikes.
type Station struct {
	ID   uuid.UUID
	Name string
	// Location holds the station's latitude (X) and longitude (Y).
	Location pgtype.Point
	// InitialBikeCount is the bike count snapshot taken when the station
	// was created. Inventory queries fall back to it for timestamps that
	// predate the station's first inventory event.
	InitialBikeCount int `db:"initial_bike_count"`
}
