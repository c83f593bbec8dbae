package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/core"
	"assettrack/internal/warranty"
)

// CheckRunner runs one warranty check pass. The scheduled daily run and
// this endpoint share the same implementation.
type CheckRunner interface {
	Run(ctx context.Context) (warranty.Report, error)
}

// WarrantyHandler exposes the on-demand warranty check.
type WarrantyHandler struct {
	checker CheckRunner
	logger  *slog.Logger
}

// NewWarrantyHandler creates a new WarrantyHandler.
func NewWarrantyHandler(checker CheckRunner, logger *slog.Logger) *WarrantyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WarrantyHandler{checker: checker, logger: logger}
}

// RegisterRoutes mounts the warranty endpoints. Running a check is
// admin-only: it sends real email.
func (h *WarrantyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/warranty", func(r chi.Router) {
		r.With(requireAdmin()).Post("/check", h.HandleRunCheck)
	})
}

// HandleRunCheck handles POST /v1/warranty/check. The run is synchronous;
// the response is the full run report.
func (h *WarrantyHandler) HandleRunCheck(w http.ResponseWriter, r *http.Request) {
	report, err := h.checker.Run(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: report})
}
