package models

import "time"

// Order lifecycle. Transitions go through UpdateStatus only:
// pending -> approved/canceled, approved -> delivered/canceled,
// delivered -> returned, returned -> completed. Canceled and completed
// are terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusDelivered = "delivered"
	StatusReturned  = "returned"
	StatusCompleted = "completed"
	StatusCanceled  = "canceled"
)

// NextStatuses maps each order status to the set it may move to.
var NextStatuses = map[string][]string{
	StatusPending:   {StatusApproved, StatusCanceled},
	StatusApproved:  {StatusDelivered, StatusCanceled},
	StatusDelivered: {StatusReturned},
	StatusReturned:  {StatusCompleted},
	StatusCompleted: {},
	StatusCanceled:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range NextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID            int       `json:"id"`
	TransactionID string    `json:"transaction_id"`
	CustomerID    int       `json:"customer_id"`
	StaffID       int       `json:"staff_id"`
	DeliveryDate  time.Time `json:"delivery_date"`
	ReturnDate    time.Time `json:"return_date"`
	Status        string    `json:"status"`
	TotalAmount   float64   `json:"total_amount"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderItem is one product entry within an order. Price is snapshotted when
// the item is added; later product price edits never touch it.
type OrderItem struct {
	ID        int     `json:"id"`
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderAccessory is a free-text add-on with no price.
type OrderAccessory struct {
	ID      int    `json:"id"`
	OrderID int    `json:"order_id"`
	Name    string `json:"name"`
	Remarks string `json:"remarks"`
}

// OrderExtraCharge is an ad hoc fee added to the order total.
type OrderExtraCharge struct {
	ID          int     `json:"id"`
	OrderID     int     `json:"order_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Remarks     string  `json:"remarks"`
}

// LineItemRequest selects a product for an order.
type LineItemRequest struct {
	ProductID int    `json:"product_id"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
}

// AccessoryRequest adds a free-text accessory to an order.
type AccessoryRequest struct {
	Name    string `json:"name"`
	Remarks string `json:"remarks"`
}

// ExtraChargeRequest adds an ad hoc fee to an order.
type ExtraChargeRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Remarks     string  `json:"remarks"`
}

// CreateOrderRequest represents the request body for creating an order.
type CreateOrderRequest struct {
	Customer     CustomerInfo         `json:"customer"`
	DeliveryDate string               `json:"delivery_date"` // YYYY-MM-DD
	ReturnDate   string               `json:"return_date"`   // YYYY-MM-DD
	Notes        string               `json:"notes"`
	Items        []LineItemRequest    `json:"items"`
	Accessories  []AccessoryRequest   `json:"accessories"`
	ExtraCharges []ExtraChargeRequest `json:"extra_charges"`
}

// UpdateOrderRequest fully replaces an order's details and child rows.
type UpdateOrderRequest struct {
	Customer     CustomerInfo         `json:"customer"`
	DeliveryDate string               `json:"delivery_date"`
	ReturnDate   string               `json:"return_date"`
	Notes        string               `json:"notes"`
	Items        []LineItemRequest    `json:"items"`
	Accessories  []AccessoryRequest   `json:"accessories"`
	ExtraCharges []ExtraChargeRequest `json:"extra_charges"`
}

// AddProductsRequest appends products to an existing pending order.
type AddProductsRequest struct {
	Items []LineItemRequest `json:"items"`
}

// UpdateStatusRequest moves an order to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderFilter narrows order listings for the staff/admin order screens.
type OrderFilter struct {
	ProductCode string
	Customer    string     // matches customer name or phone
	Date        *time.Time // matches delivery or return date
	StaffName   string
}

// OrderItemDetail is a line item joined with its product for the read view.
type OrderItemDetail struct {
	ProductID     int     `json:"product_id"`
	ProductCode   string  `json:"product_code"`
	ProductName   string  `json:"product_name"`
	Size          string  `json:"size,omitempty"`
	Quantity      int     `json:"quantity"`
	Price         float64 `json:"price"`
	DepositAmount float64 `json:"deposit_amount"`
	ImagePath     string  `json:"image_path"`
}

// OrderDetails is the stable read view consumed by the presentation layer.
type OrderDetails struct {
	ID            int                 `json:"id"`
	TransactionID string              `json:"transaction_id"`
	Customer      Customer            `json:"customer"`
	StaffID       int                 `json:"staff_id"`
	StaffName     string              `json:"staff_name"`
	StaffRole     string              `json:"staff_role"`
	DeliveryDate  time.Time           `json:"delivery_date"`
	ReturnDate    time.Time           `json:"return_date"`
	Status        string              `json:"status"`
	TotalAmount   float64             `json:"total_amount"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
	Items         []*OrderItemDetail  `json:"items"`
	Accessories   []*OrderAccessory   `json:"accessories"`
	ExtraCharges  []*OrderExtraCharge `json:"extra_charges"`
}

// OrderSummary is one row in the order listing screens.
type OrderSummary struct {
	ID            int       `json:"id"`
	TransactionID string    `json:"transaction_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	StaffName     string    `json:"staff_name"`
	DeliveryDate  time.Time `json:"delivery_date"`
	ReturnDate    time.Time `json:"return_date"`
	Status        string    `json:"status"`
	TotalAmount   float64   `json:"total_amount"`
	CreatedAt     time.Time `json:"created_at"`
}

// Booking describes an active reservation returned by the availability check.
type Booking struct {
	OrderID      int       `json:"order_id"`
	DeliveryDate time.Time `json:"delivery_date"`
	ReturnDate   time.Time `json:"return_date"`
	Status       string    `json:"status"`
	CustomerName string    `json:"customer_name"`
}
