package types

import "time"

// Audit action constants. Every field-changing transition produces exactly
// one entry with one of these actions.
const (
	AuditCreate       = "CREATE"
	AuditUpdate       = "UPDATE"
	AuditDelete       = "DELETE"
	AuditAssign       = "ASSIGN"
	AuditUnassign     = "UNASSIGN"
	AuditDecommission = "DECOMMISSION"
	AuditRepair       = "REPAIR"
	AuditMarkFixed    = "MARK_FIXED"
)

// FieldChange records the before/after values of a single field.
// Values are stringified for stable JSON storage.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Diff maps field names to their before/after values for one mutation.
type Diff map[string]FieldChange

// AuditEntry is an immutable record of what changed, by whom, and when.
type AuditEntry struct {
	ID         int64     `json:"id" db:"id"`
	UserID     *int64    `json:"user_id,omitempty" db:"user_id"`
	AssetID    *int64    `json:"asset_id,omitempty" db:"asset_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   int64     `json:"entity_id" db:"entity_id"`
	Changes    Diff      `json:"changes,omitempty" db:"changes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
