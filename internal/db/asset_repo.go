package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"assettrack/internal/types"
)

// assetColumns is the canonical select list for asset rows; scanAsset must
// stay in sync with it.
const assetColumns = `id, asset_tag, asset_type, name, manufacturer, model, serial_number,
	 purchase_date, purchase_price, warranty_end, vendor, po_number,
	 status, assigned_to, assigned_date, decommission_date, decommission_reason,
	 notes, location, created_at, updated_at`

// AssetRepository provides data access for the assets table.
type AssetRepository struct {
	db DBTX
}

// NewAssetRepository creates an AssetRepository backed by the given
// database connection (pool or transaction).
func NewAssetRepository(db DBTX) *AssetRepository {
	return &AssetRepository{db: db}
}

// GetByID fetches a single asset. Returns ErrCodeNotFoundAsset if the id is
// unknown.
func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*types.Asset, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1`, id)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundAsset, "asset not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load asset", err)
	}
	return a, nil
}

// List returns assets matching the filter, newest first.
func (r *AssetRepository) List(ctx context.Context, f types.AssetFilter) ([]types.Asset, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Type != nil {
		conds = append(conds, "asset_type = "+arg(string(*f.Type)))
	}
	if f.Status != nil {
		conds = append(conds, "status = "+arg(string(*f.Status)))
	}
	if f.Assigned != nil {
		if *f.Assigned {
			conds = append(conds, "assigned_to IS NOT NULL")
		} else {
			conds = append(conds, "assigned_to IS NULL")
		}
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		conds = append(conds, fmt.Sprintf(
			"(asset_tag ILIKE %[1]s OR name ILIKE %[1]s OR serial_number ILIKE %[1]s OR manufacturer ILIKE %[1]s OR model ILIKE %[1]s)", p))
	}

	query := `SELECT ` + assetColumns + ` FROM assets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query += " LIMIT " + arg(limit) + " OFFSET " + arg(f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list assets", err)
	}
	defer rows.Close()

	var assets []types.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan asset row", err)
		}
		assets = append(assets, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate asset rows", err)
	}
	return assets, nil
}

// Create inserts a new asset and populates ID/CreatedAt/UpdatedAt.
// Duplicate asset tags or serial numbers surface as conflict errors.
func (r *AssetRepository) Create(ctx context.Context, a *types.Asset) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO assets
		 (asset_tag, asset_type, name, manufacturer, model, serial_number,
		  purchase_date, purchase_price, warranty_end, vendor, po_number,
		  status, notes, location)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id, created_at, updated_at`,
		a.AssetTag,
		string(a.AssetType),
		a.Name,
		nilIfEmpty(a.Manufacturer),
		nilIfEmpty(a.Model),
		nilIfEmpty(a.SerialNumber),
		a.PurchaseDate,
		a.PurchasePrice,
		a.WarrantyEnd,
		nilIfEmpty(a.Vendor),
		nilIfEmpty(a.PONumber),
		string(a.Status),
		nilIfEmpty(a.Notes),
		nilIfEmpty(a.Location),
	)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return mapAssetWriteError(err)
	}
	return nil
}

// Update persists every mutable column of the asset.
func (r *AssetRepository) Update(ctx context.Context, a *types.Asset) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE assets SET
		 asset_tag = $2, asset_type = $3, name = $4, manufacturer = $5, model = $6,
		 serial_number = $7, purchase_date = $8, purchase_price = $9, warranty_end = $10,
		 vendor = $11, po_number = $12, status = $13, assigned_to = $14, assigned_date = $15,
		 decommission_date = $16, decommission_reason = $17, notes = $18, location = $19,
		 updated_at = NOW()
		 WHERE id = $1`,
		a.ID,
		a.AssetTag,
		string(a.AssetType),
		a.Name,
		nilIfEmpty(a.Manufacturer),
		nilIfEmpty(a.Model),
		nilIfEmpty(a.SerialNumber),
		a.PurchaseDate,
		a.PurchasePrice,
		a.WarrantyEnd,
		nilIfEmpty(a.Vendor),
		nilIfEmpty(a.PONumber),
		string(a.Status),
		a.AssignedTo,
		a.AssignedDate,
		a.DecommissionDate,
		nilIfEmpty(a.DecommissionReason),
		nilIfEmpty(a.Notes),
		nilIfEmpty(a.Location),
	)
	if err != nil {
		return mapAssetWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundAsset, "asset not found", nil)
	}
	return nil
}

// Delete removes the asset row entirely. Repair records cascade at the
// schema level; warranty notification history is intentionally left alone.
func (r *AssetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete asset", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundAsset, "asset not found", nil)
	}
	return nil
}

// ListWarrantyCandidates returns every non-decommissioned asset with a known
// warranty end date, with the assignee's name joined in for alert emails.
func (r *AssetRepository) ListWarrantyCandidates(ctx context.Context) ([]types.WarrantyCandidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT a.id, a.asset_tag, a.name, a.serial_number, a.warranty_end, e.full_name
		 FROM assets a
		 LEFT JOIN employees e ON e.id = a.assigned_to
		 WHERE a.status <> 'decommissioned' AND a.warranty_end IS NOT NULL
		 ORDER BY a.warranty_end ASC`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list warranty candidates", err)
	}
	defer rows.Close()

	var out []types.WarrantyCandidate
	for rows.Next() {
		var (
			c            types.WarrantyCandidate
			serial, name *string
		)
		if err := rows.Scan(&c.AssetID, &c.AssetTag, &c.Name, &serial, &c.WarrantyEnd, &name); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan warranty candidate", err)
		}
		c.SerialNumber = derefOrEmpty(serial)
		c.AssignedToName = derefOrEmpty(name)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate warranty candidates", err)
	}
	return out, nil
}

// NextAssetTag generates the next free tag for an asset type, e.g. "LAP-003"
// when LAP-002 is the highest existing tag for that prefix.
func (r *AssetRepository) NextAssetTag(ctx context.Context, t types.AssetType) (string, error) {
	prefix := t.TagPrefix()
	row := r.db.QueryRow(ctx,
		`SELECT asset_tag FROM assets WHERE asset_tag LIKE $1 ORDER BY id DESC LIMIT 1`,
		prefix+"-%")

	var last string
	err := row.Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Sprintf("%s-%03d", prefix, 1), nil
	}
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalDB, "failed to generate asset tag", err)
	}

	n := 1
	if idx := strings.LastIndex(last, "-"); idx >= 0 {
		if parsed, perr := strconv.Atoi(last[idx+1:]); perr == nil {
			n = parsed + 1
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, n), nil
}

// scanAsset scans one row of assetColumns into an Asset.
func scanAsset(row pgx.Row) (*types.Asset, error) {
	var (
		a                                  types.Asset
		manufacturer, model, serial        *string
		vendor, poNumber, notes, location  *string
		decommissionReason                 *string
		assetType, status                  string
	)
	err := row.Scan(
		&a.ID, &a.AssetTag, &assetType, &a.Name, &manufacturer, &model, &serial,
		&a.PurchaseDate, &a.PurchasePrice, &a.WarrantyEnd, &vendor, &poNumber,
		&status, &a.AssignedTo, &a.AssignedDate, &a.DecommissionDate, &decommissionReason,
		&notes, &location, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.AssetType = types.AssetType(assetType)
	a.Status = types.AssetStatus(status)
	a.Manufacturer = derefOrEmpty(manufacturer)
	a.Model = derefOrEmpty(model)
	a.SerialNumber = derefOrEmpty(serial)
	a.Vendor = derefOrEmpty(vendor)
	a.PONumber = derefOrEmpty(poNumber)
	a.DecommissionReason = derefOrEmpty(decommissionReason)
	a.Notes = derefOrEmpty(notes)
	a.Location = derefOrEmpty(location)
	return &a, nil
}

// mapAssetWriteError translates unique-constraint violations into conflict
// errors the API layer can surface as 409s.
func mapAssetWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "serial"):
			return types.NewAppError(types.ErrCodeConflictSerialExists, "serial number already exists", err)
		case strings.Contains(pgErr.ConstraintName, "tag"):
			return types.NewAppError(types.ErrCodeConflictAssetTagExists, "asset tag already exists", err)
		}
	}
	return types.NewAppError(types.ErrCodeInternalDB, "failed to write asset", err)
}
