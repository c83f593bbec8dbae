package db

import (
	"context"
	"time"

	"assettrack/internal/types"
)

// WarrantyNotificationRepository provides access to the append-only
// warranty_notifications history table. Rows exist solely to enforce the
// alert cooldown; the engine never updates or deletes them.
type WarrantyNotificationRepository struct {
	db DBTX
}

// NewWarrantyNotificationRepository creates a repository backed by the given
// connection.
func NewWarrantyNotificationRepository(db DBTX) *WarrantyNotificationRepository {
	return &WarrantyNotificationRepository{db: db}
}

// SentWithin reports whether a notification of the given type was recorded
// for the asset at or after the cutoff.
func (r *WarrantyNotificationRepository) SentWithin(ctx context.Context, assetID int64, nt types.NotificationType, cutoff time.Time) (bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM warranty_notifications
		   WHERE asset_id = $1 AND notification_type = $2 AND sent_at >= $3
		 )`,
		assetID, string(nt), cutoff)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, types.NewAppError(types.ErrCodeInternalDB, "failed to check notification history", err)
	}
	return exists, nil
}

// Record appends one history row. The table carries a unique index on
// (asset_id, notification_type, period_bucket) where period_bucket is the
// sent_at date truncated to the cooldown period; ON CONFLICT DO NOTHING
// makes overlapping check runs race-safe -- at most one row lands per
// asset/type/window.
func (r *WarrantyNotificationRepository) Record(ctx context.Context, assetID int64, nt types.NotificationType, sentAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO warranty_notifications (asset_id, notification_type, sent_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (asset_id, notification_type, period_bucket) DO NOTHING`,
		assetID, string(nt), sentAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to record warranty notification", err)
	}
	return nil
}
