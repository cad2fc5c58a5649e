package pricing

import (
	"time"

	"rental-backend/internal/models"
)

// Policy selects how line items are priced for a deployment.
type Policy string

const (
	// Flat charges each product's rental price once per order,
	// regardless of how long the rental runs.
	Flat Policy = "flat"
	// DailyRate charges each product's rate multiplied by the rental
	// duration in days.
	DailyRate Policy = "daily_rate"
)

func ParsePolicy(s string) (Policy, bool) {
	switch Policy(s) {
	case Flat, DailyRate:
		return Policy(s), true
	case "":
		return Flat, true
	}
	return "", false
}

// RentalDays returns the calendar-day span between delivery and return.
// A same-day rental is 0 days, which makes daily-rate line items free;
// that matches how the shop bills (extra charges still apply).
func RentalDays(delivery, ret time.Time) int {
	d := time.Date(delivery.Year(), delivery.Month(), delivery.Day(), 0, 0, 0, 0, time.UTC)
	r := time.Date(ret.Year(), ret.Month(), ret.Day(), 0, 0, 0, 0, time.UTC)
	return int(r.Sub(d).Hours() / 24)
}

// SnapshotPrice returns the price recorded on a line item at add-time.
// Deposits are tracked separately and never folded into the snapshot.
func SnapshotPrice(policy Policy, p *models.Product) float64 {
	return p.RentalPrice
}

// LineAmount is the amount a single line item contributes to the order total.
func LineAmount(policy Policy, item *models.OrderItem, days int) float64 {
	qty := item.Quantity
	if qty < 1 {
		qty = 1
	}
	switch policy {
	case DailyRate:
		return item.Price * float64(days) * float64(qty)
	default:
		return item.Price * float64(qty)
	}
}

// Total computes an order's total amount: line items under the active policy
// plus ad hoc extra charges. Accessories carry no price and contribute nothing.
func Total(policy Policy, items []*models.OrderItem, extras []*models.OrderExtraCharge, days int) float64 {
	var total float64
	for _, item := range items {
		total += LineAmount(policy, item, days)
	}
	for _, extra := range extras {
		total += extra.Amount
	}
	return total
}
