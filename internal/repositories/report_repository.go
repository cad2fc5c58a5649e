package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository serves the dashboard aggregates. Reads only.
type ReportRepository struct {
	DB *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{DB: db}
}

func (r *ReportRepository) CountOrders(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *ReportRepository) CountOrdersByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE status=$1`, status).Scan(&n)
	return n, err
}

// MonthlyRevenue sums the totals of approved and completed orders created
// since the given instant. The caller passes the start of the current month
// in shop time.
func (r *ReportRepository) MonthlyRevenue(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0)
         FROM orders
         WHERE status IN ('approved', 'completed') AND created_at >= $1`, since,
	).Scan(&total)
	return total, err
}

// StaffMonthly returns one staff member's order count and booked revenue
// since the given instant. Canceled orders do not count.
func (r *ReportRepository) StaffMonthly(ctx context.Context, staffID int, since time.Time) (int, float64, error) {
	var count int
	var revenue float64
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
         FROM orders
         WHERE staff_id = $1 AND created_at >= $2 AND status <> 'canceled'`,
		staffID, since,
	).Scan(&count, &revenue)
	return count, revenue, err
}
