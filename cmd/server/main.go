package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/db"
	"rental-backend/internal/handlers"
	"rental-backend/internal/health"
	h "rental-backend/internal/http"
	"rental-backend/internal/middleware"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "Server port (overrides config)")
	provisionAdmin := flag.Bool("provision-admin", false,
		"Create the first admin account from ADMIN_NAME/ADMIN_EMAIL/ADMIN_PHONE/ADMIN_PASSWORD and exit")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to PostgreSQL
	pool := db.Connect(cfg)
	defer pool.Close()

	// Run database migrations on startup
	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, "migrations")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	productRepo := repositories.NewProductRepository(pool)
	orderRepo := repositories.NewOrderRepository(pool, cfg.PricingPolicy())
	invoiceRepo := repositories.NewInvoiceRepository(pool)
	reportRepo := repositories.NewReportRepository(pool)

	userService := services.NewUserService(userRepo, jwtManager)

	// Provision the first admin and exit. There is no automatic default
	// admin account.
	if *provisionAdmin {
		err := userService.ProvisionAdmin(ctx,
			os.Getenv("ADMIN_NAME"),
			os.Getenv("ADMIN_EMAIL"),
			os.Getenv("ADMIN_PHONE"),
			os.Getenv("ADMIN_PASSWORD"))
		if err != nil {
			log.Fatalf("Failed to provision admin: %v", err)
		}
		return
	}

	// Initialize Redis cache (optional - graceful fallback if unavailable)
	if err := cache.Init(cfg); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (login will use bcrypt only)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	// Initialize image storage (optional - product images disabled without a bucket)
	imageStore, err := storage.NewImageStore(cfg)
	if err != nil {
		log.Printf("[Storage] Image storage unavailable: %v", err)
	}

	// Initialize services
	customerService := services.NewCustomerService(customerRepo, orderRepo)
	productService := services.NewProductService(productRepo, imageStore)
	orderService := services.NewOrderService(orderRepo, productRepo, userRepo, cfg.PricingPolicy())
	invoiceService := services.NewInvoiceService(invoiceRepo, orderRepo, cfg)
	reportService := services.NewReportService(reportRepo, orderRepo, productRepo, userRepo)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)
	healthChecker := health.NewHealthChecker(pool)

	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	customerHandler := handlers.NewCustomerHandler(customerService)
	productHandler := handlers.NewProductHandler(productService)
	orderHandler := handlers.NewOrderHandler(orderService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	dashboardHandler := handlers.NewDashboardHandler(reportService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		userHandler,
		customerHandler,
		productHandler,
		orderHandler,
		invoiceHandler,
		dashboardHandler,
		healthHandler,
		authMiddleware,
	)

	// Wrap with panic recovery and metrics middleware
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s (pricing policy: %s)", addr, cfg.PricingPolicy())
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
