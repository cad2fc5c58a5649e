package handlers

import (
	"net/http"

	"rental-backend/internal/middleware"
	"rental-backend/internal/services"
	"rental-backend/pkg/utils"
)

type DashboardHandler struct {
	Service *services.ReportService
}

func NewDashboardHandler(s *services.ReportService) *DashboardHandler {
	return &DashboardHandler{Service: s}
}

func (h *DashboardHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Service.AdminDashboard(r.Context())
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, dashboard)
}

func (h *DashboardHandler) StaffDashboard(w http.ResponseWriter, r *http.Request) {
	staffID, _ := middleware.GetUserIDFromContext(r.Context())

	dashboard, err := h.Service.StaffDashboard(r.Context(), staffID)
	if err != nil {
		utils.Error(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, dashboard)
}
