package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"assettrack/internal/types"
)

// AssetStore is the subset of asset persistence the lifecycle service needs.
type AssetStore interface {
	GetByID(ctx context.Context, id int64) (*types.Asset, error)
	Update(ctx context.Context, a *types.Asset) error
	Create(ctx context.Context, a *types.Asset) error
	Delete(ctx context.Context, id int64) error
}

// RepairStore persists repair history records.
type RepairStore interface {
	Create(ctx context.Context, r *types.Repair) error
}

// AuditSink records immutable audit facts.
type AuditSink interface {
	Record(ctx context.Context, e *types.AuditEntry) error
}

// EmployeeStore resolves employee references for assignment.
type EmployeeStore interface {
	GetByID(ctx context.Context, id int64) (*types.Employee, error)
}

// AssignmentNotifier delivers the "equipment assigned" notice to an employee.
type AssignmentNotifier interface {
	SendAssignmentNotice(ctx context.Context, employeeEmail string, asset types.Asset, assignedDate time.Time) error
}

// Stores bundles the transaction-bound stores handed to a RunInTx callback.
type Stores struct {
	Assets  AssetStore
	Repairs RepairStore
	Audit   AuditSink
}

// TxRunner executes fn with stores bound to a single transaction. The read
// snapshot, mutation, and audit write of one transition are atomic relative
// to other transitions on the same asset.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, s Stores) error) error
}

// Service applies lifecycle transitions against the storage boundary.
// Transition errors are synchronous and block the caller; the assignment
// notice is the only side effect delivered outside the transaction and its
// failure never rolls back a committed transition.
type Service struct {
	tx        TxRunner
	employees EmployeeStore
	notifier  AssignmentNotifier
	clock     types.Clock
	logger    *slog.Logger
}

// NewService creates a lifecycle Service.
func NewService(tx TxRunner, employees EmployeeStore, notifier AssignmentNotifier, clock types.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{tx: tx, employees: employees, notifier: notifier, clock: clock, logger: logger}
}

// Transition loads the asset, applies the requested transition, persists the
// mutation, and records the audit fact -- all in one transaction. For
// ActionAssign the employee must exist and the assignment notice is sent
// after commit (best effort).
func (s *Service) Transition(ctx context.Context, assetID int64, req Request) (*types.Asset, error) {
	var employee *types.Employee
	if req.Action == ActionAssign {
		var err error
		employee, err = s.employees.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
	}

	var result *types.Asset
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		asset, err := st.Assets.GetByID(ctx, assetID)
		if err != nil {
			return err
		}

		out, err := Apply(*asset, req, s.clock.Now())
		if err != nil {
			return err
		}

		if req.Action == ActionDelete {
			if err := st.Assets.Delete(ctx, assetID); err != nil {
				return err
			}
		} else if len(out.Diff) > 0 {
			if err := st.Assets.Update(ctx, &out.Asset); err != nil {
				return err
			}
		}

		if err := st.Audit.Record(ctx, s.auditEntry(ctx, out.AuditAction, assetID, out.Diff, req.Action != ActionDelete)); err != nil {
			return err
		}

		result = &out.Asset
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.Action == ActionAssign && employee != nil {
		s.sendAssignmentNotice(ctx, employee, result)
	}
	return result, nil
}

// RecordRepair appends a repair record and moves the asset to repair status
// in a single transaction. Assignment is untouched.
func (s *Service) RecordRepair(ctx context.Context, assetID int64, repair *types.Repair) (*types.Asset, error) {
	var result *types.Asset
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		asset, err := st.Assets.GetByID(ctx, assetID)
		if err != nil {
			return err
		}

		out, err := Apply(*asset, Request{Action: ActionRepair}, s.clock.Now())
		if err != nil {
			return err
		}

		repair.AssetID = assetID
		if repair.RepairDate.IsZero() {
			repair.RepairDate = s.clock.Now()
		}
		if err := st.Repairs.Create(ctx, repair); err != nil {
			return err
		}

		if len(out.Diff) > 0 {
			if err := st.Assets.Update(ctx, &out.Asset); err != nil {
				return err
			}
		}

		if err := st.Audit.Record(ctx, s.auditEntry(ctx, out.AuditAction, assetID, out.Diff, true)); err != nil {
			return err
		}

		result = &out.Asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateParams holds the free-form editable fields for an asset. Nil fields
// are left untouched. Status is deliberately absent: status changes go
// through Transition.
type UpdateParams struct {
	Name          *string
	Manufacturer  *string
	Model         *string
	SerialNumber  *string
	PurchaseDate  *time.Time
	PurchasePrice *float64
	WarrantyEnd   *time.Time
	Vendor        *string
	PONumber      *string
	Notes         *string
	Location      *string
}

// Update applies free-form field edits, diffing every changed field. It
// invokes no lifecycle effects. An update that changes nothing writes no
// audit entry.
func (s *Service) Update(ctx context.Context, assetID int64, p UpdateParams) (*types.Asset, error) {
	var result *types.Asset
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		asset, err := st.Assets.GetByID(ctx, assetID)
		if err != nil {
			return err
		}

		before := *asset
		applyUpdate(asset, p)
		diff := diffAssets(before, *asset)
		if len(diff) == 0 {
			result = asset
			return nil
		}

		if err := st.Assets.Update(ctx, asset); err != nil {
			return err
		}
		if err := st.Audit.Record(ctx, s.auditEntry(ctx, types.AuditUpdate, assetID, diff, true)); err != nil {
			return err
		}

		result = asset
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Create persists a new asset (status forced to available) and records the
// CREATE audit fact.
func (s *Service) Create(ctx context.Context, asset *types.Asset) (*types.Asset, error) {
	asset.Status = types.StatusAvailable
	err := s.tx.RunInTx(ctx, func(ctx context.Context, st Stores) error {
		if err := st.Assets.Create(ctx, asset); err != nil {
			return err
		}
		diff := diffAssets(types.Asset{}, *asset)
		return st.Audit.Record(ctx, s.auditEntry(ctx, types.AuditCreate, asset.ID, diff, true))
	})
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func applyUpdate(a *types.Asset, p UpdateParams) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Manufacturer != nil {
		a.Manufacturer = *p.Manufacturer
	}
	if p.Model != nil {
		a.Model = *p.Model
	}
	if p.SerialNumber != nil {
		a.SerialNumber = *p.SerialNumber
	}
	if p.PurchaseDate != nil {
		a.PurchaseDate = p.PurchaseDate
	}
	if p.PurchasePrice != nil {
		a.PurchasePrice = p.PurchasePrice
	}
	if p.WarrantyEnd != nil {
		a.WarrantyEnd = p.WarrantyEnd
	}
	if p.Vendor != nil {
		a.Vendor = *p.Vendor
	}
	if p.PONumber != nil {
		a.PONumber = *p.PONumber
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
}

// auditEntry builds the audit fact for one mutation, attributing it to the
// authenticated user when one is present in the context.
func (s *Service) auditEntry(ctx context.Context, action string, assetID int64, diff types.Diff, linkAsset bool) *types.AuditEntry {
	e := &types.AuditEntry{
		Action:     action,
		EntityType: "asset",
		EntityID:   assetID,
		Changes:    diff,
		CreatedAt:  s.clock.Now(),
	}
	if linkAsset {
		id := assetID
		e.AssetID = &id
	}
	if u := types.GetUser(ctx); u != nil {
		uid := u.ID
		e.UserID = &uid
	}
	return e
}

func (s *Service) sendAssignmentNotice(ctx context.Context, employee *types.Employee, asset *types.Asset) {
	if s.notifier == nil || asset == nil {
		return
	}
	assignedDate := s.clock.Now()
	if asset.AssignedDate != nil {
		assignedDate = *asset.AssignedDate
	}
	if err := s.notifier.SendAssignmentNotice(ctx, employee.Email, *asset, assignedDate); err != nil {
		// The assignment itself is committed; a lost notice is not worth
		// failing the request over.
		s.logger.Warn("assignment notice delivery failed",
			"asset_id", asset.ID,
			"employee_id", employee.ID,
			"error", err,
		)
	}
}
