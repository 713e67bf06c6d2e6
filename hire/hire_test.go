package hire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_ClosedHire(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	h := Hire{DateHired: start}
	h.DateReturned.Time, h.DateReturned.Valid = start.Add(42*time.Minute), true

	// now is irrelevant once the hire is closed
	assert.Equal(t, 42*time.Minute, h.Duration(start.Add(5*time.Hour)))
	assert.True(t, h.Returned())
}

func TestDuration_OpenHire(t *testing.T) {
	start := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	h := Hire{DateHired: start}

	assert.Equal(t, 25*time.Minute, h.Duration(start.Add(25*time.Minute)))
	assert.False(t, h.Returned())
}
