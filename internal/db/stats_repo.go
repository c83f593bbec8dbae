package db

import (
	"context"

	"assettrack/internal/types"
)

// StatsRepository computes dashboard aggregates.
type StatsRepository struct {
	db DBTX
}

// NewStatsRepository creates a StatsRepository.
func NewStatsRepository(db DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

// AssetStats returns the full inventory snapshot in four aggregate queries.
func (r *StatsRepository) AssetStats(ctx context.Context) (*types.AssetStats, error) {
	stats := &types.AssetStats{
		ByStatus: make(map[types.AssetStatus]int),
		ByType:   make(map[types.AssetType]int),
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM assets GROUP BY status`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to count assets by status", err)
	}
	for rows.Next() {
		var (
			status types.AssetStatus
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan status count", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate status counts", err)
	}

	rows, err = r.db.Query(ctx, `SELECT asset_type, COUNT(*) FROM assets GROUP BY asset_type`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to count assets by type", err)
	}
	for rows.Next() {
		var (
			t     types.AssetType
			count int
		)
		if err := rows.Scan(&t, &count); err != nil {
			rows.Close()
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan type count", err)
		}
		stats.ByType[t] = count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate type counts", err)
	}

	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE assigned_to IS NOT NULL), COALESCE(SUM(purchase_price), 0)
		 FROM assets`).Scan(&stats.Assigned, &stats.TotalPurchaseValue)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to compute spend totals", err)
	}

	err = r.db.QueryRow(ctx, `SELECT COALESCE(SUM(cost), 0) FROM repairs`).Scan(&stats.TotalRepairCost)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to compute repair cost total", err)
	}

	return stats, nil
}
