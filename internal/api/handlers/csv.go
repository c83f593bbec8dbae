package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/core"
	"assettrack/internal/csvio"
	"assettrack/internal/types"
)

// maxImportBodySize caps an uploaded CSV at 10 MiB.
const maxImportBodySize = 10 << 20

// AssetExporter streams the inventory as CSV.
type AssetExporter interface {
	Export(ctx context.Context, w io.Writer, gzipOutput bool) error
}

// AssetImporter ingests a CSV upload.
type AssetImporter interface {
	Import(ctx context.Context, r io.Reader) (*csvio.ImportReport, error)
}

// CSVHandler serves bulk export and import of asset records.
type CSVHandler struct {
	exporter AssetExporter
	importer AssetImporter
	logger   *slog.Logger
}

// NewCSVHandler creates a new CSVHandler.
func NewCSVHandler(exporter AssetExporter, importer AssetImporter, logger *slog.Logger) *CSVHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVHandler{exporter: exporter, importer: importer, logger: logger}
}

// RegisterRoutes mounts the bulk endpoints. Import creates assets, so it
// requires a mutating role; export is open to every authenticated user.
func (h *CSVHandler) RegisterRoutes(r chi.Router) {
	r.Get("/exports/assets.csv", h.HandleExport)
	r.With(requireMutator()).Post("/imports/assets", h.HandleImport)
}

// HandleExport handles GET /v1/exports/assets.csv. The response is gzipped
// when the client advertises gzip in Accept-Encoding.
func (h *CSVHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	useGzip := strings.Contains(r.Header.Get("Accept-Encoding"), "gzip")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="assets.csv"`)
	if useGzip {
		w.Header().Set("Content-Encoding", "gzip")
	}

	if err := h.exporter.Export(r.Context(), w, useGzip); err != nil {
		// Headers are already out; all we can do is log and cut the stream.
		h.logger.Error("asset export failed", slog.Any("error", err))
	}
}

// HandleImport handles POST /v1/imports/assets. The body is raw CSV; the
// response is the per-row import report. A report with row errors is still
// a 200: the rows that could be created were created.
func (h *CSVHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBodySize)
	defer body.Close()

	report, err := h.importer.Import(r.Context(), body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidField,
				"import file exceeds the 10MB limit",
				err,
			))
			return
		}
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: report})
}
