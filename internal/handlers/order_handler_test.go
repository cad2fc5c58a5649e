package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
	"rental-backend/internal/services"
)

// fakeOrderStore drives the handler tests without a database. Only Create is
// exercised here; the rest satisfy the interface.
type fakeOrderStore struct {
	createErr error
	created   *models.Order
}

func (f *fakeOrderStore) Create(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	if f.createErr != nil {
		return f.createErr
	}
	order.ID = 7
	order.CreatedAt = time.Now()
	f.created = order
	return nil
}

func (f *fakeOrderStore) Replace(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	return nil
}

func (f *fakeOrderStore) AppendItems(ctx context.Context, orderID int, items []*models.OrderItem, amounts map[int]float64) ([]int, error) {
	return nil, nil
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id int, status string) error { return nil }

func (f *fakeOrderStore) Get(ctx context.Context, id int) (*models.Order, error) {
	return nil, apperrors.NotFound("order", id)
}

func (f *fakeOrderStore) GetDetails(ctx context.Context, id int) (*models.OrderDetails, error) {
	return nil, apperrors.NotFound("order", id)
}

func (f *fakeOrderStore) List(ctx context.Context, filter *models.OrderFilter) ([]*models.OrderSummary, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListByStaff(ctx context.Context, staffID int) ([]*models.OrderSummary, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListBookings(ctx context.Context, productID int) ([]*models.Booking, error) {
	return nil, nil
}

type fakeProductFinder struct {
	products map[int]*models.Product
}

func (f *fakeProductFinder) Get(ctx context.Context, id int) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("product", id)
}

func (f *fakeProductFinder) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	for _, p := range f.products {
		if p.ProductCode == code {
			return p, nil
		}
	}
	return nil, apperrors.NotFound("product", 0)
}

type fakeStaffFinder struct{}

func (f *fakeStaffFinder) Get(ctx context.Context, id int) (*models.User, error) {
	return &models.User{ID: id, Role: models.RoleStaff}, nil
}

func newOrderHandlerUnderTest(store *fakeOrderStore) *OrderHandler {
	products := &fakeProductFinder{products: map[int]*models.Product{
		1: {ID: 1, ProductCode: "SH-001", Name: "Sherwani", RentalPrice: 1500, IsActive: true},
	}}
	svc := services.NewOrderService(store, products, &fakeStaffFinder{}, pricing.Flat)
	return NewOrderHandler(svc)
}

func authenticatedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, 5)
	ctx = context.WithValue(ctx, middleware.RoleKey, models.RoleStaff)
	return req.WithContext(ctx)
}

func createOrderBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(models.CreateOrderRequest{
		Customer: models.CustomerInfo{
			Name:  "Ramesh Patel",
			Phone: "9876543210",
		},
		DeliveryDate: "2026-09-10",
		ReturnDate:   "2026-09-12",
		Items:        []models.LineItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	return body
}

func TestCreateOrderHandler(t *testing.T) {
	store := &fakeOrderStore{}
	handler := newOrderHandlerUnderTest(store)

	rec := httptest.NewRecorder()
	handler.CreateOrder(rec, authenticatedRequest("POST", "/api/orders", createOrderBody(t)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, 7, order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 1500.0, order.TotalAmount)
	assert.Len(t, order.TransactionID, 8)
}

func TestCreateOrderHandlerConflict(t *testing.T) {
	store := &fakeOrderStore{
		createErr: &apperrors.ConflictError{ProductID: 1, ProductCode: "SH-001", OrderID: 42},
	}
	handler := newOrderHandlerUnderTest(store)

	rec := httptest.NewRecorder()
	handler.CreateOrder(rec, authenticatedRequest("POST", "/api/orders", createOrderBody(t)))

	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "SH-001", body["product_code"])
	assert.Equal(t, float64(42), body["order_id"])
}

func TestCreateOrderHandlerBadJSON(t *testing.T) {
	handler := newOrderHandlerUnderTest(&fakeOrderStore{})

	rec := httptest.NewRecorder()
	handler.CreateOrder(rec, authenticatedRequest("POST", "/api/orders", []byte("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrderHandlerValidationError(t *testing.T) {
	handler := newOrderHandlerUnderTest(&fakeOrderStore{})

	body, err := json.Marshal(models.CreateOrderRequest{
		Customer:     models.CustomerInfo{Name: "Ramesh Patel", Phone: "9876543210"},
		DeliveryDate: "2026-09-12",
		ReturnDate:   "2026-09-10",
		Items:        []models.LineItemRequest{{ProductID: 1}},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.CreateOrder(rec, authenticatedRequest("POST", "/api/orders", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
