// Package lifecycle implements the asset status state machine: it validates
// requested transitions against an asset snapshot and produces the field
// mutations and audit diff each transition implies. The machine itself does
// no I/O; Service wraps it with the storage boundary.
package lifecycle

import (
	"fmt"
	"strconv"
	"time"

	"assettrack/internal/types"
)

// MinDecommissionReasonLen is the minimum accepted length for a
// decommission reason.
const MinDecommissionReasonLen = 10

// Action identifies a requested lifecycle transition.
type Action string

const (
	ActionAssign       Action = "assign"
	ActionUnassign     Action = "unassign"
	ActionDecommission Action = "decommission"
	ActionRepair       Action = "repair"
	ActionMarkFixed    Action = "mark_fixed"
	ActionDelete       Action = "delete"
)

// Request describes one requested transition plus its parameters.
type Request struct {
	Action Action

	// EmployeeID is required for ActionAssign.
	EmployeeID int64

	// Reason is required for ActionDecommission (min 10 chars).
	Reason string
}

// Outcome is the result of a legal transition: the mutated snapshot, the
// field-level diff for the audit entry, and the audit action name.
// For ActionDelete the snapshot is returned unchanged; the caller removes
// the record.
type Outcome struct {
	Asset       types.Asset
	Diff        types.Diff
	AuditAction string

	// NotifyAssignment is set when the transition must trigger an
	// assignment notice to the employee.
	NotifyAssignment bool
}

// Apply validates req against the snapshot and computes the transition.
// It never mutates its input; on error the snapshot is untouched and no
// audit fact is produced.
func Apply(a types.Asset, req Request, today time.Time) (Outcome, error) {
	before := a
	day := truncateToDay(today)

	switch req.Action {
	case ActionAssign:
		if a.Status == types.StatusDecommissioned {
			return Outcome{}, invalidTransition(a, "cannot assign a decommissioned asset")
		}
		if req.EmployeeID <= 0 {
			return Outcome{}, types.NewAppError(types.ErrCodeValidationMissingField,
				"employee_id is required for assignment", nil)
		}
		a.Status = types.StatusActive
		a.AssignedTo = &req.EmployeeID
		a.AssignedDate = &day
		return Outcome{
			Asset:            a,
			Diff:             diffAssets(before, a),
			AuditAction:      types.AuditAssign,
			NotifyAssignment: true,
		}, nil

	case ActionUnassign:
		if a.Status == types.StatusDecommissioned {
			return Outcome{}, invalidTransition(a, "cannot unassign a decommissioned asset")
		}
		a.Status = types.StatusAvailable
		a.AssignedTo = nil
		a.AssignedDate = nil
		return Outcome{Asset: a, Diff: diffAssets(before, a), AuditAction: types.AuditUnassign}, nil

	case ActionDecommission:
		if len(req.Reason) < MinDecommissionReasonLen {
			return Outcome{}, types.NewAppErrorWithDetails(types.ErrCodeValidationDecommissionReason,
				fmt.Sprintf("decommission reason must be at least %d characters", MinDecommissionReasonLen),
				nil, map[string]any{"min_length": MinDecommissionReasonLen})
		}
		if a.Status == types.StatusDecommissioned {
			return Outcome{}, invalidTransition(a, "asset is already decommissioned")
		}
		a.Status = types.StatusDecommissioned
		a.DecommissionDate = &day
		a.DecommissionReason = req.Reason
		a.AssignedTo = nil
		a.AssignedDate = nil
		return Outcome{Asset: a, Diff: diffAssets(before, a), AuditAction: types.AuditDecommission}, nil

	case ActionRepair:
		if a.Status == types.StatusDecommissioned {
			return Outcome{}, invalidTransition(a, "cannot repair a decommissioned asset")
		}
		// Assignment is intentionally untouched: the asset returns to the
		// same employee once fixed.
		a.Status = types.StatusRepair
		return Outcome{Asset: a, Diff: diffAssets(before, a), AuditAction: types.AuditRepair}, nil

	case ActionMarkFixed:
		if a.Status != types.StatusRepair {
			return Outcome{}, invalidTransition(a, "asset is not in repair status")
		}
		if a.AssignedTo != nil {
			a.Status = types.StatusActive
		} else {
			a.Status = types.StatusAvailable
		}
		return Outcome{Asset: a, Diff: diffAssets(before, a), AuditAction: types.AuditMarkFixed}, nil

	case ActionDelete:
		// Hard delete is legal from any status. The snapshot is unchanged;
		// the audit fact records the tag of the removed asset.
		return Outcome{
			Asset:       a,
			Diff:        types.Diff{"asset_tag": {Old: a.AssetTag, New: ""}},
			AuditAction: types.AuditDelete,
		}, nil

	default:
		return Outcome{}, types.NewAppError(types.ErrCodeValidationInvalidField,
			fmt.Sprintf("unknown action %q", req.Action), nil)
	}
}

func invalidTransition(a types.Asset, msg string) error {
	return types.NewAppErrorWithDetails(types.ErrCodeConflictInvalidTransition, msg, nil,
		map[string]any{"status": string(a.Status)})
}

// diffAssets compares two snapshots field by field and returns the set of
// changed fields. All lifecycle-touchable fields are covered so a transition
// can never mutate a field without it appearing in the audit entry.
func diffAssets(before, after types.Asset) types.Diff {
	d := types.Diff{}
	addIfChanged(d, "status", string(before.Status), string(after.Status))
	addIfChanged(d, "assigned_to", formatInt64Ptr(before.AssignedTo), formatInt64Ptr(after.AssignedTo))
	addIfChanged(d, "assigned_date", formatDatePtr(before.AssignedDate), formatDatePtr(after.AssignedDate))
	addIfChanged(d, "decommission_date", formatDatePtr(before.DecommissionDate), formatDatePtr(after.DecommissionDate))
	addIfChanged(d, "decommission_reason", before.DecommissionReason, after.DecommissionReason)
	addIfChanged(d, "name", before.Name, after.Name)
	addIfChanged(d, "asset_tag", before.AssetTag, after.AssetTag)
	addIfChanged(d, "asset_type", string(before.AssetType), string(after.AssetType))
	addIfChanged(d, "manufacturer", before.Manufacturer, after.Manufacturer)
	addIfChanged(d, "model", before.Model, after.Model)
	addIfChanged(d, "serial_number", before.SerialNumber, after.SerialNumber)
	addIfChanged(d, "purchase_date", formatDatePtr(before.PurchaseDate), formatDatePtr(after.PurchaseDate))
	addIfChanged(d, "purchase_price", formatFloatPtr(before.PurchasePrice), formatFloatPtr(after.PurchasePrice))
	addIfChanged(d, "warranty_end", formatDatePtr(before.WarrantyEnd), formatDatePtr(after.WarrantyEnd))
	addIfChanged(d, "vendor", before.Vendor, after.Vendor)
	addIfChanged(d, "po_number", before.PONumber, after.PONumber)
	addIfChanged(d, "notes", before.Notes, after.Notes)
	addIfChanged(d, "location", before.Location, after.Location)
	return d
}

func addIfChanged(d types.Diff, field, oldV, newV string) {
	if oldV != newV {
		d[field] = types.FieldChange{Old: oldV, New: newV}
	}
}

func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDatePtr(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
