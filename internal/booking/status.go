package booking

import (
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
)

// ActiveStatuses returns the order statuses that still hold a real-world
// reservation on a product. Under the flat-price profile a delivered order
// has left the shop with its own stock, so only pending and approved block;
// the daily-rate profile tracks sized inventory and keeps delivered orders
// blocking until the items come back.
func ActiveStatuses(policy pricing.Policy) []string {
	if policy == pricing.DailyRate {
		return []string{models.StatusPending, models.StatusApproved, models.StatusDelivered}
	}
	return []string{models.StatusPending, models.StatusApproved}
}
