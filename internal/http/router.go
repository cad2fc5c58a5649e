package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rental-backend/internal/handlers"
	"rental-backend/internal/middleware"
	"rental-backend/internal/models"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	productHandler *handlers.ProductHandler,
	orderHandler *handlers.OrderHandler,
	invoiceHandler *handlers.InvoiceHandler,
	dashboardHandler *handlers.DashboardHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	admin := authMiddleware.RequireRole(models.RoleAdmin)

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Staff accounts (admin only)
	staffAPI := r.PathPrefix("/api/staff").Subrouter()
	staffAPI.Use(admin)
	staffAPI.HandleFunc("", userHandler.ListStaff).Methods("GET")
	staffAPI.HandleFunc("", userHandler.CreateStaff).Methods("POST")
	staffAPI.HandleFunc("/{id}", userHandler.UpdateUser).Methods("PUT")
	staffAPI.HandleFunc("/{id}/active", userHandler.SetActive).Methods("PATCH")

	// Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", admin(http.HandlerFunc(customerHandler.DeleteCustomer)).ServeHTTP).Methods("DELETE")
	customersAPI.HandleFunc("/{id}/orders", customerHandler.CustomerOrders).Methods("GET")

	// Products (catalog readable by all staff, mutations admin only)
	productsAPI := r.PathPrefix("/api/products").Subrouter()
	productsAPI.Use(authMiddleware.Authenticate)
	productsAPI.HandleFunc("", productHandler.ListProducts).Methods("GET")
	productsAPI.HandleFunc("", admin(http.HandlerFunc(productHandler.CreateProduct)).ServeHTTP).Methods("POST")
	productsAPI.HandleFunc("/bulk", admin(http.HandlerFunc(productHandler.BulkAdd)).ServeHTTP).Methods("POST")
	productsAPI.HandleFunc("/images/{key:.+}", productHandler.Image).Methods("GET")
	productsAPI.HandleFunc("/{id}", productHandler.GetProduct).Methods("GET")
	productsAPI.HandleFunc("/{id}", admin(http.HandlerFunc(productHandler.UpdateProduct)).ServeHTTP).Methods("PUT")
	productsAPI.HandleFunc("/{id}/active", admin(http.HandlerFunc(productHandler.SetActive)).ServeHTTP).Methods("PATCH")
	productsAPI.HandleFunc("/{id}/image", admin(http.HandlerFunc(productHandler.UploadImage)).ServeHTTP).Methods("POST")

	// Orders
	ordersAPI := r.PathPrefix("/api/orders").Subrouter()
	ordersAPI.Use(authMiddleware.Authenticate)
	ordersAPI.HandleFunc("", admin(http.HandlerFunc(orderHandler.ListOrders)).ServeHTTP).Methods("GET")
	ordersAPI.HandleFunc("", orderHandler.CreateOrder).Methods("POST")
	ordersAPI.HandleFunc("/my", orderHandler.ListMyOrders).Methods("GET")
	ordersAPI.HandleFunc("/{id}", orderHandler.GetOrder).Methods("GET")
	ordersAPI.HandleFunc("/{id}", orderHandler.UpdateOrder).Methods("PUT")
	ordersAPI.HandleFunc("/{id}/products", orderHandler.AddProducts).Methods("POST")
	ordersAPI.HandleFunc("/{id}/status", admin(http.HandlerFunc(orderHandler.UpdateStatus)).ServeHTTP).Methods("PUT")
	ordersAPI.HandleFunc("/{id}/invoice", invoiceHandler.EnsureInvoice).Methods("POST")
	ordersAPI.HandleFunc("/{id}/invoice/download", invoiceHandler.DownloadInvoice).Methods("GET")
	ordersAPI.HandleFunc("/{id}/packing-slip", admin(http.HandlerFunc(invoiceHandler.DownloadPackingSlip)).ServeHTTP).Methods("GET")

	// Availability check for the new-order screen
	availabilityAPI := r.PathPrefix("/api/check-availability").Subrouter()
	availabilityAPI.Use(authMiddleware.Authenticate)
	availabilityAPI.HandleFunc("", orderHandler.CheckAvailability).Methods("GET")

	// Dashboards
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate)
	dashboardAPI.HandleFunc("/admin", admin(http.HandlerFunc(dashboardHandler.AdminDashboard)).ServeHTTP).Methods("GET")
	dashboardAPI.HandleFunc("/staff", dashboardHandler.StaffDashboard).Methods("GET")

	// Health endpoint (no auth required - for probes)
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
