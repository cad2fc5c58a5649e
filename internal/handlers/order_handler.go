package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
	"rental-backend/pkg/utils"
)

type OrderHandler struct {
	Service *services.OrderService
}

func NewOrderHandler(s *services.OrderService) *OrderHandler {
	return &OrderHandler{Service: s}
}

func actor(r *http.Request) (int, string) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetRoleFromContext(r.Context())
	return userID, role
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	staffID, _ := actor(r)
	order, err := h.Service.CreateOrder(r.Context(), staffID, &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusCreated, order)
}

// ListOrders serves the admin order screen with its search filters.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &models.OrderFilter{
		ProductCode: q.Get("product_code"),
		Customer:    q.Get("customer"),
		StaffName:   q.Get("staff"),
	}
	if dateStr := q.Get("date"); dateStr != "" {
		date, err := timeutil.ParseDate(dateStr)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.Date = &date
	}

	orders, err := h.Service.ListOrders(r.Context(), filter)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

// ListMyOrders returns the acting staff member's own orders.
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	staffID, _ := actor(r)

	orders, err := h.Service.ListOwnOrders(r.Context(), staffID)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	actorID, role := actor(r)
	details, err := h.Service.GetOrderDetails(r.Context(), actorID, role, id)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, details)
}

func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, role := actor(r)
	order, err := h.Service.EditOrder(r.Context(), actorID, role, id, &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// AddProducts appends products to an order and reports the codes that were
// actually added.
func (h *OrderHandler) AddProducts(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.AddProductsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	actorID, role := actor(r)
	added, err := h.Service.AddProducts(r.Context(), actorID, role, id, &req)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, map[string]interface{}{"added": added})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.Service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

// CheckAvailability reports a product's bookings and whether an optional
// date range is free.
func (h *OrderHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("product_code")
	if code == "" {
		http.Error(w, "product_code parameter is required", http.StatusBadRequest)
		return
	}

	var delivery, ret time.Time
	if d := q.Get("delivery_date"); d != "" {
		parsed, err := timeutil.ParseDate(d)
		if err != nil {
			http.Error(w, "invalid delivery_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		delivery = parsed
	}
	if rd := q.Get("return_date"); rd != "" {
		parsed, err := timeutil.ParseDate(rd)
		if err != nil {
			http.Error(w, "invalid return_date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		ret = parsed
	}

	result, err := h.Service.CheckAvailability(r.Context(), code, delivery, ret)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, result)
}
