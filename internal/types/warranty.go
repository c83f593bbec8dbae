package types

import "time"

// WarrantyTier classifies how close an asset's warranty is to expiring.
type WarrantyTier string

const (
	// TierNone: more than 90 days of warranty remain; excluded from alerting.
	TierNone WarrantyTier = "none"
	// TierWarning: 31-90 days remaining.
	TierWarning WarrantyTier = "warning"
	// TierCritical: 0-30 days remaining.
	TierCritical WarrantyTier = "critical"
	// TierExpired: warranty end date is in the past.
	TierExpired WarrantyTier = "expired"
)

// NotificationType is the dedup key component recorded in the notification
// history. Each tier maps to exactly one type, so crossing into a new tier
// always produces a fresh alert.
type NotificationType string

const (
	Notify90Day   NotificationType = "90_day"
	Notify30Day   NotificationType = "30_day"
	NotifyExpired NotificationType = "expired"
)

// NotificationType returns the history key for an alertable tier, and ok=false
// for TierNone.
func (t WarrantyTier) NotificationType() (NotificationType, bool) {
	switch t {
	case TierWarning:
		return Notify90Day, true
	case TierCritical:
		return Notify30Day, true
	case TierExpired:
		return NotifyExpired, true
	default:
		return "", false
	}
}

// WarrantyNotification is one row of the append-only notification history,
// used solely to enforce the per-type cooldown. Rows are never updated or
// deleted by the engine.
type WarrantyNotification struct {
	ID               int64            `json:"id" db:"id"`
	AssetID          int64            `json:"asset_id" db:"asset_id"`
	NotificationType NotificationType `json:"notification_type" db:"notification_type"`
	SentAt           time.Time        `json:"sent_at" db:"sent_at"`
}

// WarrantyCandidate is the projection of an asset used by the warranty check
// run: every non-decommissioned asset with a known warranty end date, with
// the assignee's name pre-joined so alert emails need no further lookups.
type WarrantyCandidate struct {
	AssetID        int64     `json:"asset_id" db:"id"`
	AssetTag       string    `json:"asset_tag" db:"asset_tag"`
	Name           string    `json:"name" db:"name"`
	SerialNumber   string    `json:"serial_number,omitempty" db:"serial_number"`
	WarrantyEnd    time.Time `json:"warranty_end" db:"warranty_end"`
	AssignedToName string    `json:"assigned_to,omitempty" db:"assigned_to_name"`
}

// WarrantySummaryItem is one line of an alert email or dashboard summary.
type WarrantySummaryItem struct {
	AssetTag      string    `json:"asset_tag"`
	Name          string    `json:"name"`
	SerialNumber  string    `json:"serial_number,omitempty"`
	WarrantyEnd   time.Time `json:"warranty_end"`
	DaysRemaining int       `json:"days_remaining"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
}
