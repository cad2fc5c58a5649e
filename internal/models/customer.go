package models

import "time"

// Customer is looked up by primary phone number. An order that references an
// existing phone updates that customer's mutable fields instead of creating
// a duplicate.
type Customer struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	SecondaryPhone string    `json:"secondary_phone"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CustomerInfo carries the customer fields supplied with an order.
type CustomerInfo struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	SecondaryPhone string `json:"secondary_phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}

// CreateCustomerRequest represents the request body for creating a customer
type CreateCustomerRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	SecondaryPhone string `json:"secondary_phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}

// UpdateCustomerRequest represents the request body for updating a customer
type UpdateCustomerRequest struct {
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	SecondaryPhone string `json:"secondary_phone"`
	Email          string `json:"email"`
	Address        string `json:"address"`
}
