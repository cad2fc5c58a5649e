package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rental-backend/internal/cache"
)

type HealthChecker struct {
	db *pgxpool.Pool
}

type HealthStatus struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
	Cache    CacheHealth    `json:"cache"`
}

type DatabaseHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Connections  int32  `json:"connections"`
}

type CacheHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms,omitempty"`
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

// CheckBasic probes Postgres and, when configured, Redis. Only the database
// decides the overall status: every cache consumer degrades to a miss, so a
// Redis outage is reported but does not take the service out of rotation.
func (h *HealthChecker) CheckBasic() HealthStatus {
	dbHealth := h.checkDatabase()
	cacheHealth := h.checkCache()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return HealthStatus{
		Status:   status,
		Database: dbHealth,
		Cache:    cacheHealth,
	}
}

func (h *HealthChecker) checkDatabase() DatabaseHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	health := DatabaseHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
		Connections:  h.db.Stat().TotalConns(),
	}
	if err != nil {
		health.Status = "unhealthy"
	}
	return health
}

func (h *HealthChecker) checkCache() CacheHealth {
	if !cache.Enabled() {
		return CacheHealth{Status: "disabled"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := cache.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	health := CacheHealth{
		Status:       "healthy",
		ResponseTime: responseTime,
	}
	if err != nil {
		health.Status = "unhealthy"
	}
	return health
}
