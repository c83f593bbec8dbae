// Package csvio implements bulk CSV export and import of asset records.
package csvio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"assettrack/internal/types"
)

// dateLayout is the date-only format used in CSV cells.
const dateLayout = "2006-01-02"

// exportPageSize is how many assets one List call fetches while streaming.
const exportPageSize = 500

// exportHeader is the column order of exported files. Import accepts the
// same layout, ignoring the trailing read-only columns.
var exportHeader = []string{
	"asset_tag", "asset_type", "name", "manufacturer", "model",
	"serial_number", "purchase_date", "purchase_price", "warranty_end",
	"vendor", "po_number", "status", "assigned_to", "assigned_date",
	"decommission_date", "decommission_reason", "location", "notes",
	"created_at",
}

// AssetSource pages through asset records for export.
type AssetSource interface {
	List(ctx context.Context, f types.AssetFilter) ([]types.Asset, error)
}

// Exporter streams the full asset inventory as CSV.
type Exporter struct {
	assets AssetSource
}

// NewExporter creates an Exporter.
func NewExporter(assets AssetSource) *Exporter {
	return &Exporter{assets: assets}
}

// Export writes every asset to w as CSV, paging through the source so the
// whole inventory is never held in memory. When gzipOutput is set the CSV
// stream is gzip-compressed.
func (e *Exporter) Export(ctx context.Context, w io.Writer, gzipOutput bool) error {
	out := w
	if gzipOutput {
		gz := gzip.NewWriter(w)
		defer gz.Close()
		out = gz
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	offset := 0
	for {
		page, err := e.assets.List(ctx, types.AssetFilter{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for i := range page {
			if err := cw.Write(assetRow(&page[i])); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
		if len(page) < exportPageSize {
			break
		}
		offset += exportPageSize
	}

	cw.Flush()
	return cw.Error()
}

func assetRow(a *types.Asset) []string {
	return []string{
		a.AssetTag,
		string(a.AssetType),
		a.Name,
		a.Manufacturer,
		a.Model,
		a.SerialNumber,
		formatDate(a.PurchaseDate),
		formatPrice(a.PurchasePrice),
		formatDate(a.WarrantyEnd),
		a.Vendor,
		a.PONumber,
		string(a.Status),
		formatID(a.AssignedTo),
		formatDate(a.AssignedDate),
		formatDate(a.DecommissionDate),
		a.DecommissionReason,
		a.Location,
		a.Notes,
		a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func formatID(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}
