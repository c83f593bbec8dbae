package db

import (
	"context"

	"assettrack/internal/types"
)

const repairColumns = `id, asset_id, repair_date, issue_description, resolution, cost, is_warranty_repair, vendor, ticket_number, created_at`

// RepairRepository provides data access for asset repair history.
type RepairRepository struct {
	db DBTX
}

// NewRepairRepository creates a RepairRepository backed by the given connection.
func NewRepairRepository(db DBTX) *RepairRepository {
	return &RepairRepository{db: db}
}

// Create inserts a repair record and fills in the generated fields.
func (r *RepairRepository) Create(ctx context.Context, rep *types.Repair) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO repairs (asset_id, repair_date, issue_description, resolution, cost, is_warranty_repair, vendor, ticket_number)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		rep.AssetID, rep.RepairDate, rep.IssueDescription, nilIfEmpty(rep.Resolution),
		rep.Cost, rep.IsWarrantyRepair, nilIfEmpty(rep.Vendor), nilIfEmpty(rep.TicketNumber))
	if err := row.Scan(&rep.ID, &rep.CreatedAt); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create repair record", err)
	}
	return nil
}

// ListByAsset returns all repairs for an asset, most recent first.
func (r *RepairRepository) ListByAsset(ctx context.Context, assetID int64) ([]types.Repair, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+repairColumns+` FROM repairs WHERE asset_id = $1 ORDER BY repair_date DESC, id DESC`,
		assetID)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list repairs", err)
	}
	defer rows.Close()

	var repairs []types.Repair
	for rows.Next() {
		var (
			rep                           types.Repair
			resolution, vendor, ticketNum *string
		)
		err := rows.Scan(&rep.ID, &rep.AssetID, &rep.RepairDate, &rep.IssueDescription,
			&resolution, &rep.Cost, &rep.IsWarrantyRepair, &vendor, &ticketNum, &rep.CreatedAt)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan repair row", err)
		}
		rep.Resolution = derefOrEmpty(resolution)
		rep.Vendor = derefOrEmpty(vendor)
		rep.TicketNumber = derefOrEmpty(ticketNum)
		repairs = append(repairs, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate repair rows", err)
	}
	return repairs, nil
}

// TotalCostByAsset sums repair spend for one asset.
func (r *RepairRepository) TotalCostByAsset(ctx context.Context, assetID int64) (float64, error) {
	var total float64
	row := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(cost), 0) FROM repairs WHERE asset_id = $1`, assetID)
	if err := row.Scan(&total); err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to sum repair costs", err)
	}
	return total, nil
}
