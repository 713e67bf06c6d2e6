package discount

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampAmount(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative clamps to zero", -0.3, 0},
		{"zero stays", 0, 0},
		{"fraction stays", 0.35, 0.35},
		{"one stays", 1, 1},
		{"over one clamps", 1.7, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Discount{Amount: tt.in}
			d.ClampAmount()
			assert.Equal(t, tt.want, d.Amount)
		})
	}
}

func TestValidOn(t *testing.T) {
	d := Discount{
		DateFrom: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		DateTo:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, d.ValidOn(time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)))
	assert.True(t, d.ValidOn(time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)), "valid through the whole last day")
	assert.False(t, d.ValidOn(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))

	// Deliberately valid before its start date: only date_to gates
	// redemption.
	assert.True(t, d.ValidOn(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}
