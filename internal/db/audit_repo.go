package db

import (
	"context"
	"encoding/json"

	"assettrack/internal/types"
)

// AuditRepository provides append-and-read access to the audit log.
// Entries are never updated or deleted.
type AuditRepository struct {
	db DBTX
}

// NewAuditRepository creates an AuditRepository backed by the given connection.
func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one audit entry. The changes diff is stored as JSONB.
func (r *AuditRepository) Record(ctx context.Context, entry *types.AuditEntry) error {
	var changes []byte
	if len(entry.Changes) > 0 {
		b, err := json.Marshal(entry.Changes)
		if err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to encode audit changes", err)
		}
		changes = b
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO audit_log (user_id, asset_id, action, entity_type, entity_id, changes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		entry.UserID, entry.AssetID, entry.Action, entry.EntityType, entry.EntityID, changes)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to record audit entry", err)
	}
	return nil
}

// ListRecent returns the newest audit entries, up to limit.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]types.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, asset_id, action, entity_type, entity_id, changes, created_at
		 FROM audit_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list audit entries", err)
	}
	defer rows.Close()

	var entries []types.AuditEntry
	for rows.Next() {
		var (
			entry   types.AuditEntry
			changes []byte
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.AssetID, &entry.Action,
			&entry.EntityType, &entry.EntityID, &changes, &entry.CreatedAt)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan audit row", err)
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &entry.Changes); err != nil {
				return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to decode audit changes", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate audit rows", err)
	}
	return entries, nil
}

// ListByAsset returns audit entries linked to one asset, newest first.
func (r *AuditRepository) ListByAsset(ctx context.Context, assetID int64, limit int) ([]types.AuditEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, asset_id, action, entity_type, entity_id, changes, created_at
		 FROM audit_log WHERE asset_id = $1 ORDER BY id DESC LIMIT $2`, assetID, limit)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list audit entries", err)
	}
	defer rows.Close()

	var entries []types.AuditEntry
	for rows.Next() {
		var (
			entry   types.AuditEntry
			changes []byte
		)
		err := rows.Scan(&entry.ID, &entry.UserID, &entry.AssetID, &entry.Action,
			&entry.EntityType, &entry.EntityID, &changes, &entry.CreatedAt)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan audit row", err)
		}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &entry.Changes); err != nil {
				return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to decode audit changes", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate audit rows", err)
	}
	return entries, nil
}
