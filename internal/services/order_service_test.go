package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rental-backend/internal/apperrors"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
)

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	args := m.Called(ctx, order, customer, items, accessories, extras)
	return args.Error(0)
}

func (m *mockOrderStore) Replace(ctx context.Context, order *models.Order, customer *models.CustomerInfo, items []*models.OrderItem, accessories []*models.OrderAccessory, extras []*models.OrderExtraCharge) error {
	args := m.Called(ctx, order, customer, items, accessories, extras)
	return args.Error(0)
}

func (m *mockOrderStore) AppendItems(ctx context.Context, orderID int, items []*models.OrderItem, amounts map[int]float64) ([]int, error) {
	args := m.Called(ctx, orderID, items, amounts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, id int, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOrderStore) Get(ctx context.Context, id int) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderStore) GetDetails(ctx context.Context, id int) (*models.OrderDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderDetails), args.Error(1)
}

func (m *mockOrderStore) List(ctx context.Context, filter *models.OrderFilter) ([]*models.OrderSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderSummary), args.Error(1)
}

func (m *mockOrderStore) ListByStaff(ctx context.Context, staffID int) ([]*models.OrderSummary, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderSummary), args.Error(1)
}

func (m *mockOrderStore) ListBookings(ctx context.Context, productID int) ([]*models.Booking, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

type mockProductFinder struct {
	mock.Mock
}

func (m *mockProductFinder) Get(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *mockProductFinder) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

type mockStaffFinder struct {
	mock.Mock
}

func (m *mockStaffFinder) Get(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newTestOrderService(policy pricing.Policy) (*OrderService, *mockOrderStore, *mockProductFinder, *mockStaffFinder) {
	orders := new(mockOrderStore)
	products := new(mockProductFinder)
	staff := new(mockStaffFinder)
	return NewOrderService(orders, products, staff, policy), orders, products, staff
}

func activeProduct(id int, code string, price float64) *models.Product {
	return &models.Product{
		ID:            id,
		ProductCode:   code,
		Name:          "Sherwani " + code,
		RentalPrice:   price,
		DepositAmount: 2000,
		IsActive:      true,
	}
}

func validCreateRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		Customer: models.CustomerInfo{
			Name:  "Ramesh Patel",
			Phone: "9876543210",
		},
		DeliveryDate: "2026-09-10",
		ReturnDate:   "2026-09-12",
		Items: []models.LineItemRequest{
			{ProductID: 1, Size: "L", Quantity: 1},
		},
	}
}

func TestCreateOrderRejectsMissingCustomer(t *testing.T) {
	svc, orders, _, _ := newTestOrderService(pricing.Flat)

	req := validCreateRequest()
	req.Customer.Phone = ""

	_, err := svc.CreateOrder(context.Background(), 5, req)
	assert.True(t, apperrors.IsValidation(err))
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderRejectsBadDates(t *testing.T) {
	svc, _, _, _ := newTestOrderService(pricing.Flat)

	req := validCreateRequest()
	req.DeliveryDate = "10-09-2026"
	_, err := svc.CreateOrder(context.Background(), 5, req)
	assert.True(t, apperrors.IsValidation(err))

	req = validCreateRequest()
	req.DeliveryDate = "2026-09-12"
	req.ReturnDate = "2026-09-10"
	_, err = svc.CreateOrder(context.Background(), 5, req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc, _, _, _ := newTestOrderService(pricing.Flat)

	req := validCreateRequest()
	req.Items = nil
	_, err := svc.CreateOrder(context.Background(), 5, req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	svc, _, products, _ := newTestOrderService(pricing.Flat)

	p := activeProduct(1, "SH-001", 1500)
	p.IsActive = false
	products.On("Get", mock.Anything, 1).Return(p, nil)

	_, err := svc.CreateOrder(context.Background(), 5, validCreateRequest())
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateOrderRejectsDuplicateProduct(t *testing.T) {
	svc, _, products, _ := newTestOrderService(pricing.Flat)
	products.On("Get", mock.Anything, 1).Return(activeProduct(1, "SH-001", 1500), nil)

	req := validCreateRequest()
	req.Items = append(req.Items, models.LineItemRequest{ProductID: 1})

	_, err := svc.CreateOrder(context.Background(), 5, req)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateOrderFlatTotalExcludesDeposit(t *testing.T) {
	svc, orders, products, _ := newTestOrderService(pricing.Flat)

	products.On("Get", mock.Anything, 1).Return(activeProduct(1, "SH-001", 1500), nil)
	products.On("Get", mock.Anything, 2).Return(activeProduct(2, "LH-002", 800), nil)
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := validCreateRequest()
	req.Items = []models.LineItemRequest{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 1},
	}
	req.ExtraCharges = []models.ExtraChargeRequest{
		{Description: "Urgent alteration", Amount: 200},
	}

	order, err := svc.CreateOrder(context.Background(), 5, req)
	require.NoError(t, err)

	// 1500 + 800 + 200, deposits never included
	assert.Equal(t, 2500.0, order.TotalAmount)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, 5, order.StaffID)
	assert.Len(t, order.TransactionID, 8)
	orders.AssertExpectations(t)
}

func TestCreateOrderDailyRateMultipliesByDays(t *testing.T) {
	svc, orders, products, _ := newTestOrderService(pricing.DailyRate)

	products.On("Get", mock.Anything, 1).Return(activeProduct(1, "SC-001", 500), nil)
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// 2026-09-10 to 2026-09-12 is 2 rental days
	order, err := svc.CreateOrder(context.Background(), 5, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, 1000.0, order.TotalAmount)
}

func TestCreateOrderPropagatesConflict(t *testing.T) {
	svc, orders, products, _ := newTestOrderService(pricing.Flat)

	products.On("Get", mock.Anything, 1).Return(activeProduct(1, "SH-001", 1500), nil)
	conflict := &apperrors.ConflictError{ProductID: 1, ProductCode: "SH-001", OrderID: 42}
	orders.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(conflict)

	_, err := svc.CreateOrder(context.Background(), 5, validCreateRequest())
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "SH-001")
	assert.Contains(t, err.Error(), "42")
}

func pendingOrder(staffID int) *models.Order {
	return &models.Order{
		ID:           7,
		StaffID:      staffID,
		DeliveryDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate:   time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Status:       models.StatusPending,
	}
}

func validEditRequest() *models.UpdateOrderRequest {
	return &models.UpdateOrderRequest{
		Customer: models.CustomerInfo{
			Name:  "Ramesh Patel",
			Phone: "9876543210",
		},
		DeliveryDate: "2026-09-11",
		ReturnDate:   "2026-09-13",
		Items: []models.LineItemRequest{
			{ProductID: 1, Quantity: 1},
		},
	}
}

func TestEditOrderStaffCannotTouchOthersOrder(t *testing.T) {
	svc, orders, _, _ := newTestOrderService(pricing.Flat)
	orders.On("Get", mock.Anything, 7).Return(pendingOrder(99), nil)

	_, err := svc.EditOrder(context.Background(), 5, models.RoleStaff, 7, validEditRequest())
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestEditOrderStaffCannotTouchAdminOrder(t *testing.T) {
	svc, orders, _, staff := newTestOrderService(pricing.Flat)
	orders.On("Get", mock.Anything, 7).Return(pendingOrder(5), nil)
	staff.On("Get", mock.Anything, 5).Return(&models.User{ID: 5, Role: models.RoleAdmin}, nil)

	_, err := svc.EditOrder(context.Background(), 5, models.RoleStaff, 7, validEditRequest())
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestEditOrderStaffCannotTouchNonPendingOrder(t *testing.T) {
	svc, orders, _, staff := newTestOrderService(pricing.Flat)
	order := pendingOrder(5)
	order.Status = models.StatusApproved
	orders.On("Get", mock.Anything, 7).Return(order, nil)
	staff.On("Get", mock.Anything, 5).Return(&models.User{ID: 5, Role: models.RoleStaff}, nil)

	_, err := svc.EditOrder(context.Background(), 5, models.RoleStaff, 7, validEditRequest())
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestEditOrderStaffEditsOwnPendingOrder(t *testing.T) {
	svc, orders, products, staff := newTestOrderService(pricing.Flat)
	orders.On("Get", mock.Anything, 7).Return(pendingOrder(5), nil)
	staff.On("Get", mock.Anything, 5).Return(&models.User{ID: 5, Role: models.RoleStaff}, nil)
	products.On("Get", mock.Anything, 1).Return(activeProduct(1, "SH-001", 1500), nil)
	orders.On("Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	order, err := svc.EditOrder(context.Background(), 5, models.RoleStaff, 7, validEditRequest())
	require.NoError(t, err)
	assert.Equal(t, 1500.0, order.TotalAmount)
	orders.AssertExpectations(t)
}

func TestEditOrderAdminEditsAnyOrder(t *testing.T) {
	svc, orders, products, _ := newTestOrderService(pricing.Flat)
	order := pendingOrder(99)
	order.Status = models.StatusApproved
	orders.On("Get", mock.Anything, 7).Return(order, nil)
	products.On("Get", mock.Anything, 1).Return(activeProduct(1, "SH-001", 1500), nil)
	orders.On("Replace", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := svc.EditOrder(context.Background(), 1, models.RoleAdmin, 7, validEditRequest())
	assert.NoError(t, err)
}

func TestAddProductsSkipsExistingAndReportsAdded(t *testing.T) {
	svc, orders, products, staff := newTestOrderService(pricing.Flat)
	orders.On("Get", mock.Anything, 7).Return(pendingOrder(5), nil)
	staff.On("Get", mock.Anything, 5).Return(&models.User{ID: 5, Role: models.RoleStaff}, nil)
	products.On("Get", mock.Anything, 2).Return(activeProduct(2, "LH-002", 800), nil)
	products.On("Get", mock.Anything, 3).Return(activeProduct(3, "KD-003", 600), nil)

	// Product 3 was already on the order, only product 2 is inserted.
	orders.On("AppendItems", mock.Anything, 7, mock.Anything, map[int]float64{2: 800, 3: 600}).
		Return([]int{2}, nil)

	added, err := svc.AddProducts(context.Background(), 5, models.RoleStaff, 7, &models.AddProductsRequest{
		Items: []models.LineItemRequest{{ProductID: 2}, {ProductID: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"LH-002"}, added)
}

func TestAddProductsRejectsNonPendingOrderForAnyRole(t *testing.T) {
	for _, status := range []string{models.StatusApproved, models.StatusDelivered, models.StatusCompleted} {
		t.Run(status, func(t *testing.T) {
			svc, orders, _, _ := newTestOrderService(pricing.Flat)
			order := pendingOrder(5)
			order.Status = status
			orders.On("Get", mock.Anything, 7).Return(order, nil)

			_, err := svc.AddProducts(context.Background(), 1, models.RoleAdmin, 7, &models.AddProductsRequest{
				Items: []models.LineItemRequest{{ProductID: 2}},
			})
			assert.True(t, apperrors.IsValidation(err))
			orders.AssertNotCalled(t, "AppendItems", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateStatusFollowsTransitionGraph(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusCanceled, true},
		{models.StatusPending, models.StatusDelivered, false},
		{models.StatusApproved, models.StatusDelivered, true},
		{models.StatusApproved, models.StatusCanceled, true},
		{models.StatusApproved, models.StatusCompleted, false},
		{models.StatusDelivered, models.StatusReturned, true},
		{models.StatusDelivered, models.StatusCanceled, false},
		{models.StatusReturned, models.StatusCompleted, true},
		{models.StatusCompleted, models.StatusPending, false},
		{models.StatusCanceled, models.StatusApproved, false},
	}

	for _, tc := range cases {
		t.Run(tc.from+"_to_"+tc.to, func(t *testing.T) {
			svc, orders, _, _ := newTestOrderService(pricing.Flat)
			order := pendingOrder(5)
			order.Status = tc.from
			orders.On("Get", mock.Anything, 7).Return(order, nil)
			if tc.ok {
				orders.On("UpdateStatus", mock.Anything, 7, tc.to).Return(nil)
			}

			updated, err := svc.UpdateStatus(context.Background(), 7, tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, updated.Status)
			} else {
				assert.True(t, apperrors.IsValidation(err))
				orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestOrderService(pricing.Flat)
	_, err := svc.UpdateStatus(context.Background(), 7, "shipped")
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetOrderDetailsStaffSeesOnlyOwn(t *testing.T) {
	svc, orders, _, _ := newTestOrderService(pricing.Flat)
	orders.On("GetDetails", mock.Anything, 7).Return(&models.OrderDetails{ID: 7, StaffID: 99}, nil)

	_, err := svc.GetOrderDetails(context.Background(), 5, models.RoleStaff, 7)
	assert.True(t, apperrors.IsAuthorization(err))

	details, err := svc.GetOrderDetails(context.Background(), 1, models.RoleAdmin, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, details.ID)
}

func TestCheckAvailabilityUnknownProduct(t *testing.T) {
	svc, _, products, _ := newTestOrderService(pricing.Flat)
	products.On("GetByCode", mock.Anything, "NOPE").Return(nil, apperrors.NotFoundKey("product", "NOPE"))

	_, err := svc.CheckAvailability(context.Background(), "NOPE", time.Time{}, time.Time{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCheckAvailabilityPropagatesStoreError(t *testing.T) {
	svc, _, products, _ := newTestOrderService(pricing.Flat)
	products.On("GetByCode", mock.Anything, "SH-001").Return(nil, assert.AnError)

	_, err := svc.CheckAvailability(context.Background(), "SH-001", time.Time{}, time.Time{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, apperrors.IsValidation(err))
	assert.False(t, apperrors.IsNotFound(err))
}

func TestCheckAvailabilityWithDates(t *testing.T) {
	svc, orders, products, _ := newTestOrderService(pricing.Flat)
	product := activeProduct(1, "SH-001", 1500)
	products.On("GetByCode", mock.Anything, "SH-001").Return(product, nil)

	blocking := &models.Booking{
		OrderID:      42,
		Status:       models.StatusApproved,
		DeliveryDate: time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		ReturnDate:   time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	orders.On("ListBookings", mock.Anything, 1).Return([]*models.Booking{blocking}, nil)

	delivery := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	ret := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	result, err := svc.CheckAvailability(context.Background(), "SH-001", delivery, ret)
	require.NoError(t, err)
	assert.False(t, result.IsAvailable)
	assert.Equal(t, 42, result.BlockedBy.OrderID)
	assert.Len(t, result.Bookings, 1)

	freeDelivery := time.Date(2026, 9, 16, 0, 0, 0, 0, time.UTC)
	freeReturn := time.Date(2026, 9, 18, 0, 0, 0, 0, time.UTC)
	result, err = svc.CheckAvailability(context.Background(), "SH-001", freeDelivery, freeReturn)
	require.NoError(t, err)
	assert.True(t, result.IsAvailable)
	assert.Nil(t, result.BlockedBy)
}
