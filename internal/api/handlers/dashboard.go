package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/core"
	"assettrack/internal/types"
	"assettrack/internal/warranty"
)

// StatsSource computes the inventory aggregates.
type StatsSource interface {
	AssetStats(ctx context.Context) (*types.AssetStats, error)
}

// AuditFeed lists the most recent audit entries across all assets.
type AuditFeed interface {
	ListRecent(ctx context.Context, limit int) ([]types.AuditEntry, error)
}

// DashboardHandler serves the read-only dashboard endpoints: inventory
// stats, the warranty tier summary, and the recent activity feed.
type DashboardHandler struct {
	stats      StatsSource
	candidates warranty.AssetSource
	audit      AuditFeed
	clock      types.Clock
	logger     *slog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(
	stats StatsSource,
	candidates warranty.AssetSource,
	audit AuditFeed,
	clock types.Clock,
	logger *slog.Logger,
) *DashboardHandler {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		stats:      stats,
		candidates: candidates,
		audit:      audit,
		clock:      clock,
		logger:     logger,
	}
}

// RegisterRoutes mounts the dashboard endpoints onto the mux.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/stats", h.HandleStats)
		r.Get("/warranty", h.HandleWarrantySummary)
		r.Get("/audit", h.HandleRecentAudit)
	})
}

// HandleStats handles GET /v1/dashboard/stats.
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.AssetStats(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: stats})
}

// HandleWarrantySummary handles GET /v1/dashboard/warranty. The summary
// reflects the current tier of every in-scope asset regardless of alert
// cooldown state.
func (h *DashboardHandler) HandleWarrantySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := warranty.BuildSummary(r.Context(), h.candidates, h.clock)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: summary})
}

// HandleRecentAudit handles GET /v1/dashboard/audit.
func (h *DashboardHandler) HandleRecentAudit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	entries, err := h.audit.ListRecent(r.Context(), limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if entries == nil {
		entries = []types.AuditEntry{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: entries})
}
