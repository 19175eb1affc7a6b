package transport

import (
	"net/http"

	"pos-catalog/internal/middleware"
	"pos-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler serves the point-of-sale home page
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// RegisterRoutes registers the dashboard route
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Show)
}

// Show renders catalog statistics and the most recent products
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.ComputeStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute dashboard stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	recent, err := h.dashboardService.RecentProducts(r.Context())
	if err != nil {
		h.logger.Error("Failed to load recent products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	renderPage(w, r, http.StatusOK, ViewDashboard, Props{
		"stats":          stats,
		"recentProducts": newProductViews(recent),
	})
}
