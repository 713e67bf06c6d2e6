// Package inventory keeps an append-only time series of per-station bike
// counts. Each event stores the absolute count at the station immediately
// after the event, never a delta, so any point-in-time count is a single
// lookup rather than a replay.
package inventory

import (
	"time"

	"github.com/google/uuid"
)

// Event is one immutable point in a station's count series.
type Event struct {
	ID         int64
	StationID  uuid.UUID `db:"station_id"`
	Count      int
	RecordedAt time.Time `db:"recorded_at"`
}
