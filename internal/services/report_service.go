package services

import (
	"context"

	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
	"rental-backend/internal/timeutil"
)

// AdminDashboard is the admin landing-page summary.
type AdminDashboard struct {
	TotalOrders    int                    `json:"total_orders"`
	PendingOrders  int                    `json:"pending_orders"`
	ApprovedOrders int                    `json:"approved_orders"`
	ActiveProducts int                    `json:"active_products"`
	ActiveStaff    int                    `json:"active_staff"`
	MonthlyRevenue float64                `json:"monthly_revenue"`
	RecentOrders   []*models.OrderSummary `json:"recent_orders"`
}

// StaffDashboard is one staff member's view of the current month.
type StaffDashboard struct {
	MonthlyOrders  int                    `json:"monthly_orders"`
	MonthlyRevenue float64                `json:"monthly_revenue"`
	RecentOrders   []*models.OrderSummary `json:"recent_orders"`
}

// ReportService assembles the dashboard aggregates. Months are reckoned in
// shop time, not UTC.
type ReportService struct {
	Reports  *repositories.ReportRepository
	Orders   *repositories.OrderRepository
	Products *repositories.ProductRepository
	Users    *repositories.UserRepository
}

func NewReportService(reports *repositories.ReportRepository, orders *repositories.OrderRepository, products *repositories.ProductRepository, users *repositories.UserRepository) *ReportService {
	return &ReportService{
		Reports:  reports,
		Orders:   orders,
		Products: products,
		Users:    users,
	}
}

const recentOrderCount = 10

func (s *ReportService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	d := &AdminDashboard{}
	var err error

	if d.TotalOrders, err = s.Reports.CountOrders(ctx); err != nil {
		return nil, err
	}
	if d.PendingOrders, err = s.Reports.CountOrdersByStatus(ctx, models.StatusPending); err != nil {
		return nil, err
	}
	if d.ApprovedOrders, err = s.Reports.CountOrdersByStatus(ctx, models.StatusApproved); err != nil {
		return nil, err
	}
	if d.ActiveProducts, err = s.Products.CountActive(ctx); err != nil {
		return nil, err
	}
	if d.ActiveStaff, err = s.Users.CountActiveStaff(ctx); err != nil {
		return nil, err
	}

	monthStart := timeutil.StartOfMonth(timeutil.Now())
	if d.MonthlyRevenue, err = s.Reports.MonthlyRevenue(ctx, monthStart); err != nil {
		return nil, err
	}

	recent, err := s.Orders.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(recent) > recentOrderCount {
		recent = recent[:recentOrderCount]
	}
	d.RecentOrders = recent
	return d, nil
}

func (s *ReportService) StaffDashboard(ctx context.Context, staffID int) (*StaffDashboard, error) {
	monthStart := timeutil.StartOfMonth(timeutil.Now())
	count, revenue, err := s.Reports.StaffMonthly(ctx, staffID, monthStart)
	if err != nil {
		return nil, err
	}

	recent, err := s.Orders.ListByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if len(recent) > recentOrderCount {
		recent = recent[:recentOrderCount]
	}
	return &StaffDashboard{
		MonthlyOrders:  count,
		MonthlyRevenue: revenue,
		RecentOrders:   recent,
	}, nil
}
