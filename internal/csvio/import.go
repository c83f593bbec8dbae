package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"assettrack/internal/types"
)

// importColumns are the columns Import understands, keyed by header name.
// Columns beyond these (e.g. the read-only ones Export appends) are ignored,
// so a file round-tripped through Export imports cleanly.
var importColumns = map[string]bool{
	"asset_tag": true, "asset_type": true, "name": true,
	"manufacturer": true, "model": true, "serial_number": true,
	"purchase_date": true, "purchase_price": true, "warranty_end": true,
	"vendor": true, "po_number": true, "location": true, "notes": true,
}

// AssetCreator persists one imported asset. The implementation is expected
// to surface duplicate tag/serial conflicts as AppErrors with the
// corresponding conflict codes.
type AssetCreator interface {
	Create(ctx context.Context, a *types.Asset) (*types.Asset, error)
}

// TagSource generates the next free asset tag for a type when a row omits
// one.
type TagSource interface {
	NextAssetTag(ctx context.Context, t types.AssetType) (string, error)
}

// RowError describes why one data row was rejected. Row numbers are
// 1-based file line numbers (the header is row 1).
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportReport summarizes one import run. Skipped counts rows that named an
// asset tag or serial number already in the system; Errors holds rows that
// failed validation or persistence.
type ImportReport struct {
	Processed int        `json:"processed"`
	Created   int        `json:"created"`
	Skipped   int        `json:"skipped"`
	Errors    []RowError `json:"errors"`
}

// Importer reads asset rows from CSV and creates them one at a time. A bad
// row never aborts the run; it is reported and the import continues.
type Importer struct {
	creator AssetCreator
	tags    TagSource
}

// NewImporter creates an Importer.
func NewImporter(creator AssetCreator, tags TagSource) *Importer {
	return &Importer{creator: creator, tags: tags}
}

// Import reads CSV from r and creates one asset per data row. The first
// row must be a header naming at least asset_type and name.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeValidationInvalidField, "failed to read CSV header", err)
	}
	colIndex, err := indexHeader(header)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{Errors: []RowError{}}
	row := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				// Reader failure (not a bad row): abort, the stream is gone.
				return nil, types.NewAppError(types.ErrCodeValidationInvalidField, "failed to read CSV body", err)
			}
			report.Errors = append(report.Errors, RowError{Row: row, Message: "malformed CSV row"})
			continue
		}

		report.Processed++
		asset, rowErr := parseAssetRow(record, colIndex)
		if rowErr != "" {
			report.Errors = append(report.Errors, RowError{Row: row, Message: rowErr})
			continue
		}

		if asset.AssetTag == "" {
			tag, err := im.tags.NextAssetTag(ctx, asset.AssetType)
			if err != nil {
				report.Errors = append(report.Errors, RowError{Row: row, Message: "failed to generate asset tag"})
				continue
			}
			asset.AssetTag = tag
		}

		if _, err := im.creator.Create(ctx, asset); err != nil {
			if isDuplicate(err) {
				report.Skipped++
				continue
			}
			report.Errors = append(report.Errors, RowError{Row: row, Message: err.Error()})
			continue
		}
		report.Created++
	}

	return report, nil
}

// indexHeader maps known column names to their positions. Unknown columns
// are ignored; missing required columns fail the whole import.
func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if importColumns[name] {
			idx[name] = i
		}
	}
	for _, required := range []string{"asset_type", "name"} {
		if _, ok := idx[required]; !ok {
			return nil, types.NewAppError(
				types.ErrCodeValidationInvalidField,
				fmt.Sprintf("CSV header is missing required column %q", required),
				nil,
			)
		}
	}
	return idx, nil
}

// parseAssetRow converts one record into an asset. Returns a non-empty
// message describing the first problem found.
func parseAssetRow(record []string, idx map[string]int) (*types.Asset, string) {
	cell := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	assetType := types.AssetType(strings.ToLower(cell("asset_type")))
	if !validAssetType(assetType) {
		return nil, fmt.Sprintf("unknown asset_type %q", cell("asset_type"))
	}
	name := cell("name")
	if name == "" {
		return nil, "name is required"
	}

	a := &types.Asset{
		AssetTag:     cell("asset_tag"),
		AssetType:    assetType,
		Name:         name,
		Manufacturer: cell("manufacturer"),
		Model:        cell("model"),
		SerialNumber: cell("serial_number"),
		Vendor:       cell("vendor"),
		PONumber:     cell("po_number"),
		Location:     cell("location"),
		Notes:        cell("notes"),
	}

	if v := cell("purchase_date"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Sprintf("purchase_date %q is not a valid date (want YYYY-MM-DD)", v)
		}
		a.PurchaseDate = &t
	}
	if v := cell("warranty_end"); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, fmt.Sprintf("warranty_end %q is not a valid date (want YYYY-MM-DD)", v)
		}
		a.WarrantyEnd = &t
	}
	if v := cell("purchase_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return nil, fmt.Sprintf("purchase_price %q is not a valid non-negative number", v)
		}
		a.PurchasePrice = &p
	}

	return a, ""
}

func validAssetType(t types.AssetType) bool {
	switch t {
	case types.AssetLaptop, types.AssetMonitor, types.AssetDock, types.AssetHeadset,
		types.AssetCamera, types.AssetKeyboard, types.AssetMouse, types.AssetOther:
		return true
	}
	return false
}

func isDuplicate(err error) bool {
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == types.ErrCodeConflictAssetTagExists ||
		appErr.Code == types.ErrCodeConflictSerialExists
}
