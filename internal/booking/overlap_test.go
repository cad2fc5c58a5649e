package booking

import (
	"testing"
	"time"

	"rental-backend/internal/models"
	"rental-backend/internal/pricing"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint before", 1, 5, 6, 10, false},
		{"disjoint after", 6, 10, 1, 5, false},
		{"touching endpoints conflict", 1, 10, 10, 20, true},
		{"touching endpoints conflict reversed", 10, 20, 1, 10, true},
		{"contained", 1, 20, 5, 10, true},
		{"containing", 5, 10, 1, 20, true},
		{"partial overlap", 1, 15, 14, 20, true},
		{"identical", 3, 7, 3, 7, true},
		{"zero-day inside range", 5, 5, 1, 10, true},
		{"zero-day on boundary", 10, 10, 1, 10, true},
		{"zero-day vs zero-day same day", 5, 5, 5, 5, true},
		{"zero-day vs zero-day different days", 5, 5, 6, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActiveStatuses(t *testing.T) {
	assert.Equal(t,
		[]string{models.StatusPending, models.StatusApproved},
		ActiveStatuses(pricing.Flat))

	assert.Equal(t,
		[]string{models.StatusPending, models.StatusApproved, models.StatusDelivered},
		ActiveStatuses(pricing.DailyRate))
}

func TestTerminalStatusesNeverActive(t *testing.T) {
	for _, policy := range []pricing.Policy{pricing.Flat, pricing.DailyRate} {
		for _, status := range ActiveStatuses(policy) {
			assert.NotEqual(t, models.StatusCanceled, status)
			assert.NotEqual(t, models.StatusReturned, status)
			assert.NotEqual(t, models.StatusCompleted, status)
		}
	}
}
