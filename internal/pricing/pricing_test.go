package pricing

import (
	"testing"
	"time"

	"rental-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRentalDays(t *testing.T) {
	d := func(day int) time.Time {
		return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 5, RentalDays(d(10), d(15)))
	assert.Equal(t, 0, RentalDays(d(10), d(10)))
	assert.Equal(t, 1, RentalDays(d(31), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))

	// Time-of-day must not shift the calendar-day count.
	late := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	early := time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 5, RentalDays(late, early))
}

func TestTotalFlat(t *testing.T) {
	items := []*models.OrderItem{
		{Price: 500, Quantity: 1},
		{Price: 1200, Quantity: 1},
	}
	extras := []*models.OrderExtraCharge{
		{Description: "Delivery", Amount: 150},
	}

	// Duration never affects the flat policy.
	assert.Equal(t, 1850.0, Total(Flat, items, extras, 0))
	assert.Equal(t, 1850.0, Total(Flat, items, extras, 7))
}

func TestTotalDailyRate(t *testing.T) {
	items := []*models.OrderItem{
		{Price: 100, Quantity: 1},
		{Price: 250, Quantity: 2},
	}
	extras := []*models.OrderExtraCharge{
		{Description: "Cleaning", Amount: 75},
	}

	// (100*3*1) + (250*3*2) + 75
	assert.Equal(t, 1875.0, Total(DailyRate, items, extras, 3))

	// Zero-day rental: line items contribute nothing, extras still apply.
	assert.Equal(t, 75.0, Total(DailyRate, items, extras, 0))
}

func TestTotalDefaultsQuantityToOne(t *testing.T) {
	items := []*models.OrderItem{{Price: 300}}
	assert.Equal(t, 300.0, Total(Flat, items, nil, 0))
	assert.Equal(t, 600.0, Total(DailyRate, items, nil, 2))
}

func TestTotalEmptyOrder(t *testing.T) {
	assert.Equal(t, 0.0, Total(Flat, nil, nil, 0))
}

func TestSnapshotPriceExcludesDeposit(t *testing.T) {
	p := &models.Product{RentalPrice: 500, DepositAmount: 2000}
	assert.Equal(t, 500.0, SnapshotPrice(Flat, p))
	assert.Equal(t, 500.0, SnapshotPrice(DailyRate, p))
}

func TestParsePolicy(t *testing.T) {
	got, ok := ParsePolicy("flat")
	assert.True(t, ok)
	assert.Equal(t, Flat, got)

	got, ok = ParsePolicy("daily_rate")
	assert.True(t, ok)
	assert.Equal(t, DailyRate, got)

	got, ok = ParsePolicy("")
	assert.True(t, ok)
	assert.Equal(t, Flat, got)

	_, ok = ParsePolicy("hourly")
	assert.False(t, ok)
}
