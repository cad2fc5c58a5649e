package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/booking"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
	"rental-backend/internal/timeutil"
)

// OrderStore is the persistence surface the order workflow needs. The pgx
// repository satisfies it; tests substitute a mock.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error
	Replace(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error
	AppendItems(ctx context.Context, orderID int, items []*models.OrderItem, amounts map[int]float64) ([]int, error)
	UpdateStatus(ctx context.Context, id int, status string) error
	Get(ctx context.Context, id int) (*models.Order, error)
	GetDetails(ctx context.Context, id int) (*models.OrderDetails, error)
	List(ctx context.Context, filter *models.OrderFilter) ([]*models.OrderSummary, error)
	ListByStaff(ctx context.Context, staffID int) ([]*models.OrderSummary, error)
	ListBookings(ctx context.Context, productID int) ([]*models.Booking, error)
}

// ProductFinder resolves the products referenced by order line items.
type ProductFinder interface {
	Get(ctx context.Context, id int) (*models.Product, error)
	GetByCode(ctx context.Context, code string) (*models.Product, error)
}

// StaffFinder resolves the user who booked an order, for the edit
// authorization checks.
type StaffFinder interface {
	Get(ctx context.Context, id int) (*models.User, error)
}

// AvailabilityResult is the availability API response for one product.
type AvailabilityResult struct {
	Product     *models.Product   `json:"product"`
	Bookings    []*models.Booking `json:"bookings"`
	IsAvailable bool              `json:"is_available"`
	BlockedBy   *models.Booking   `json:"blocked_by,omitempty"`
}

type OrderService struct {
	Orders   OrderStore
	Products ProductFinder
	Staff    StaffFinder
	Policy   pricing.Policy
}

func NewOrderService(orders OrderStore, products ProductFinder, staff StaffFinder, policy pricing.Policy) *OrderService {
	return &OrderService{
		Orders:   orders,
		Products: products,
		Staff:    staff,
		Policy:   policy,
	}
}

func newTransactionID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func parseDates(deliveryStr, returnStr string) (time.Time, time.Time, error) {
	delivery, err := timeutil.ParseDate(deliveryStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation("invalid delivery date %q, expected YYYY-MM-DD", deliveryStr)
	}
	ret, err := timeutil.ParseDate(returnStr)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.Validation("invalid return date %q, expected YYYY-MM-DD", returnStr)
	}
	if ret.Before(delivery) {
		return time.Time{}, time.Time{}, apperrors.Validation("return date cannot be before delivery date")
	}
	return delivery, ret, nil
}

// buildItems resolves requested products and snapshots their prices into
// line items. Inactive and duplicate products are rejected.
func (s *OrderService) buildItems(ctx context.Context, reqs []models.LineItemRequest) ([]*models.OrderItem, map[int]*models.Product, error) {
	if len(reqs) == 0 {
		return nil, nil, apperrors.Validation("order must contain at least one product")
	}

	seen := make(map[int]bool, len(reqs))
	products := make(map[int]*models.Product, len(reqs))
	items := make([]*models.OrderItem, 0, len(reqs))
	for _, req := range reqs {
		if seen[req.ProductID] {
			return nil, nil, apperrors.Validation("product %d is listed more than once", req.ProductID)
		}
		seen[req.ProductID] = true

		product, err := s.Products.Get(ctx, req.ProductID)
		if err != nil {
			return nil, nil, err
		}
		if !product.IsActive {
			return nil, nil, apperrors.Validation("product %s is not available for rent", product.ProductCode)
		}

		qty := req.Quantity
		if qty < 1 {
			qty = 1
		}
		products[product.ID] = product
		items = append(items, &models.OrderItem{
			ProductID: product.ID,
			Size:      req.Size,
			Quantity:  qty,
			Price:     pricing.SnapshotPrice(s.Policy, product),
		})
	}
	return items, products, nil
}

func buildAccessories(reqs []models.AccessoryRequest) []*models.OrderAccessory {
	accessories := make([]*models.OrderAccessory, 0, len(reqs))
	for _, req := range reqs {
		if req.Name == "" {
			continue
		}
		accessories = append(accessories, &models.OrderAccessory{Name: req.Name, Remarks: req.Remarks})
	}
	return accessories
}

func buildExtraCharges(reqs []models.ExtraChargeRequest) []*models.OrderExtraCharge {
	extras := make([]*models.OrderExtraCharge, 0, len(reqs))
	for _, req := range reqs {
		if req.Description == "" && req.Amount == 0 {
			continue
		}
		extras = append(extras, &models.OrderExtraCharge{
			Description: req.Description,
			Amount:      req.Amount,
			Remarks:     req.Remarks,
		})
	}
	return extras
}

// CreateOrder books a new pending order for the acting staff member. The
// total is computed from snapshot prices and extra charges; deposits are
// never part of it.
func (s *OrderService) CreateOrder(ctx context.Context, staffID int, req *models.CreateOrderRequest) (*models.Order, error) {
	if req.Customer.Name == "" || req.Customer.Phone == "" {
		return nil, apperrors.Validation("customer name and phone are required")
	}
	delivery, ret, err := parseDates(req.DeliveryDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}

	items, _, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	extras := buildExtraCharges(req.ExtraCharges)
	days := pricing.RentalDays(delivery, ret)

	order := &models.Order{
		TransactionID: newTransactionID(),
		StaffID:       staffID,
		DeliveryDate:  delivery,
		ReturnDate:    ret,
		Status:        models.StatusPending,
		TotalAmount:   pricing.Total(s.Policy, items, extras, days),
		Notes:         req.Notes,
	}

	customer := req.Customer
	err = s.Orders.Create(ctx, order, &customer, items, buildAccessories(req.Accessories), extras)
	if err != nil {
		if apperrors.IsConflict(err) {
			metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	log.Printf("[Orders] created order #%d (%s) for %s, total %.2f",
		order.ID, order.TransactionID, customer.Phone, order.TotalAmount)
	return order, nil
}

// authorizeMutation applies the staff edit rules: staff touch only their own
// pending orders and never an order booked by an admin. Admins may edit any
// order.
func (s *OrderService) authorizeMutation(ctx context.Context, actorID int, actorRole string, order *models.Order) error {
	if actorRole == models.RoleAdmin {
		return nil
	}
	if order.StaffID != actorID {
		return apperrors.Authorization("you can only edit orders you created")
	}
	creator, err := s.Staff.Get(ctx, order.StaffID)
	if err != nil {
		return err
	}
	if creator.Role == models.RoleAdmin {
		return apperrors.Authorization("orders booked by an admin cannot be edited by staff")
	}
	if order.Status != models.StatusPending {
		return apperrors.Authorization("only pending orders can be edited")
	}
	return nil
}

// EditOrder replaces an order's dates, customer details and children, and
// recomputes the total with fresh price snapshots.
func (s *OrderService) EditOrder(ctx context.Context, actorID int, actorRole string, orderID int, req *models.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(ctx, actorID, actorRole, order); err != nil {
		return nil, err
	}

	if req.Customer.Name == "" || req.Customer.Phone == "" {
		return nil, apperrors.Validation("customer name and phone are required")
	}
	delivery, ret, err := parseDates(req.DeliveryDate, req.ReturnDate)
	if err != nil {
		return nil, err
	}
	items, _, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	extras := buildExtraCharges(req.ExtraCharges)
	days := pricing.RentalDays(delivery, ret)

	order.DeliveryDate = delivery
	order.ReturnDate = ret
	order.Notes = req.Notes
	order.TotalAmount = pricing.Total(s.Policy, items, extras, days)

	customer := req.Customer
	err = s.Orders.Replace(ctx, order, &customer, items, buildAccessories(req.Accessories), extras)
	if err != nil {
		if apperrors.IsConflict(err) {
			metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}
	log.Printf("[Orders] order #%d edited, new total %.2f", order.ID, order.TotalAmount)
	return order, nil
}

// AddProducts appends products to an order under the same authorization as
// an edit. Only pending orders accept new products, regardless of role.
// Products already on the order are skipped; the total grows by the snapshot
// amounts of the products actually added.
func (s *OrderService) AddProducts(ctx context.Context, actorID int, actorRole string, orderID int, req *models.AddProductsRequest) ([]string, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeMutation(ctx, actorID, actorRole, order); err != nil {
		return nil, err
	}
	if order.Status != models.StatusPending {
		return nil, apperrors.Validation("products can only be added to pending orders")
	}

	items, products, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	days := pricing.RentalDays(order.DeliveryDate, order.ReturnDate)
	amounts := make(map[int]float64, len(items))
	for _, it := range items {
		amounts[it.ProductID] = pricing.LineAmount(s.Policy, it, days)
	}

	addedIDs, err := s.Orders.AppendItems(ctx, orderID, items, amounts)
	if err != nil {
		if apperrors.IsConflict(err) {
			metrics.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	added := make([]string, 0, len(addedIDs))
	for _, id := range addedIDs {
		added = append(added, products[id].ProductCode)
	}
	log.Printf("[Orders] order #%d: added products %v", orderID, added)
	return added, nil
}

// UpdateStatus moves an order along the lifecycle. Transitions outside the
// graph are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int, status string) (*models.Order, error) {
	if _, known := models.NextStatuses[status]; !known {
		return nil, apperrors.Validation("unknown status %q", status)
	}
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, status) {
		return nil, apperrors.Validation("cannot move order from %s to %s", order.Status, status)
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}
	log.Printf("[Orders] order #%d: %s -> %s", orderID, order.Status, status)
	order.Status = status
	return order, nil
}

// GetOrderDetails returns the full read view. Staff see only their own
// orders.
func (s *OrderService) GetOrderDetails(ctx context.Context, actorID int, actorRole string, orderID int) (*models.OrderDetails, error) {
	details, err := s.Orders.GetDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && details.StaffID != actorID {
		return nil, apperrors.Authorization("you can only view orders you created")
	}
	return details, nil
}

// ListOrders returns all orders matching the filter. Admin screens only.
func (s *OrderService) ListOrders(ctx context.Context, filter *models.OrderFilter) ([]*models.OrderSummary, error) {
	return s.Orders.List(ctx, filter)
}

// ListOwnOrders returns the acting staff member's orders.
func (s *OrderService) ListOwnOrders(ctx context.Context, staffID int) ([]*models.OrderSummary, error) {
	return s.Orders.ListByStaff(ctx, staffID)
}

// CheckAvailability reports a product's active bookings and whether the
// given range is free. With zero dates only the booking list is consulted.
func (s *OrderService) CheckAvailability(ctx context.Context, code string, delivery, ret time.Time) (*AvailabilityResult, error) {
	product, err := s.Products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	bookings, err := s.Orders.ListBookings(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		Product:     product,
		Bookings:    bookings,
		IsAvailable: len(bookings) == 0,
	}
	if !delivery.IsZero() && !ret.IsZero() {
		if ret.Before(delivery) {
			return nil, apperrors.Validation("return date cannot be before delivery date")
		}
		result.IsAvailable = true
		for _, b := range bookings {
			if booking.Overlaps(delivery, ret, b.DeliveryDate, b.ReturnDate) {
				result.IsAvailable = false
				result.BlockedBy = b
				break
			}
		}
	}
	return result, nil
}
