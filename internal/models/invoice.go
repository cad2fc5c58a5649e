package models

import "time"

// Invoice is created lazily, at most one per order. Numbers come from a
// database sequence so they are strictly increasing and never reused, even
// when the order is later canceled.
type Invoice struct {
	ID            int       `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	OrderID       int       `json:"order_id"`
	GeneratedAt   time.Time `json:"generated_at"`
}
