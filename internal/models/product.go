package models

import "time"

// Product is a physical rental item. RentalPrice is either the flat
// per-rental price or the per-day rate depending on the deployment's
// pricing policy. Deactivating a product hides it from new-order selection
// but leaves existing orders untouched.
type Product struct {
	ID            int       `json:"id"`
	ProductCode   string    `json:"product_code"`
	Name          string    `json:"name"`
	RentalPrice   float64   `json:"rental_price"`
	DepositAmount float64   `json:"deposit_amount"`
	ImagePath     string    `json:"image_path"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CreateProductRequest represents the request body for adding a product
type CreateProductRequest struct {
	ProductCode   string  `json:"product_code"`
	Name          string  `json:"name"`
	RentalPrice   float64 `json:"rental_price"`
	DepositAmount float64 `json:"deposit_amount"`
	ImagePath     string  `json:"image_path"`
}

// UpdateProductRequest represents the request body for editing a product
type UpdateProductRequest struct {
	ProductCode   string  `json:"product_code"`
	Name          string  `json:"name"`
	RentalPrice   float64 `json:"rental_price"`
	DepositAmount float64 `json:"deposit_amount"`
	ImagePath     string  `json:"image_path"`
}

// BulkAddResult reports the outcome of a bulk product upload by code.
// Skipped covers duplicate codes and rows with missing fields.
type BulkAddResult struct {
	Added   []string `json:"added"`
	Skipped []string `json:"skipped"`
}
