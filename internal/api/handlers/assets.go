// Package handlers contains the HTTP handler implementations for the
// AssetTrack API.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/core"
	"assettrack/internal/lifecycle"
	"assettrack/internal/types"
)

// LifecycleService is the service contract the asset handler drives. It is
// defined locally to avoid tight coupling to the lifecycle package's
// concrete type.
type LifecycleService interface {
	Create(ctx context.Context, asset *types.Asset) (*types.Asset, error)
	Update(ctx context.Context, assetID int64, p lifecycle.UpdateParams) (*types.Asset, error)
	Transition(ctx context.Context, assetID int64, req lifecycle.Request) (*types.Asset, error)
	RecordRepair(ctx context.Context, assetID int64, repair *types.Repair) (*types.Asset, error)
}

// AssetReader covers the read-only asset queries the handler serves
// directly, without going through the lifecycle service.
type AssetReader interface {
	GetByID(ctx context.Context, id int64) (*types.Asset, error)
	List(ctx context.Context, f types.AssetFilter) ([]types.Asset, error)
	NextAssetTag(ctx context.Context, t types.AssetType) (string, error)
}

// RepairReader lists repair history.
type RepairReader interface {
	ListByAsset(ctx context.Context, assetID int64) ([]types.Repair, error)
	TotalCostByAsset(ctx context.Context, assetID int64) (float64, error)
}

// AssetAuditReader lists the audit trail of one asset.
type AssetAuditReader interface {
	ListByAsset(ctx context.Context, assetID int64, limit int) ([]types.AuditEntry, error)
}

// AssetHandler maps HTTP requests to asset operations.
type AssetHandler struct {
	service   LifecycleService
	assets    AssetReader
	repairs   RepairReader
	audit     AssetAuditReader
	validator *core.Validator
	logger    *slog.Logger
}

// NewAssetHandler creates a new AssetHandler with the provided dependencies.
func NewAssetHandler(
	svc LifecycleService,
	assets AssetReader,
	repairs RepairReader,
	audit AssetAuditReader,
	val *core.Validator,
	logger *slog.Logger,
) *AssetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetHandler{
		service:   svc,
		assets:    assets,
		repairs:   repairs,
		audit:     audit,
		validator: val,
		logger:    logger,
	}
}

// RegisterRoutes mounts the asset endpoints onto the mux. Reads are open to
// every authenticated role; mutations require technician or admin.
func (h *AssetHandler) RegisterRoutes(r chi.Router) {
	r.Route("/assets", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.With(requireMutator()).Post("/", h.HandleCreate)

		r.Route("/{assetID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.With(requireMutator()).Put("/", h.HandleUpdate)
			r.With(requireMutator()).Delete("/", h.HandleDelete)
			r.With(requireMutator()).Post("/assign", h.HandleAssign)
			r.With(requireMutator()).Post("/decommission", h.HandleDecommission)
			r.With(requireMutator()).Post("/mark-fixed", h.HandleMarkFixed)
			r.Get("/repairs", h.HandleListRepairs)
			r.With(requireMutator()).Post("/repairs", h.HandleCreateRepair)
			r.Get("/audit", h.HandleListAudit)
		})
	})
}

// requireMutator restricts an endpoint to roles that may perform write
// operations (admin and technician). Local helper so handlers do not need a
// reference to core.Server.
func requireMutator() func(http.Handler) http.Handler {
	return requireRole(func(role types.UserRole) bool { return role.CanMutate() })
}

// requireAdmin restricts an endpoint to admins.
func requireAdmin() func(http.Handler) http.Handler {
	return requireRole(func(role types.UserRole) bool { return role == types.RoleAdmin })
}

func requireRole(allowed func(types.UserRole) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := types.GetUser(r.Context())
			if user == nil {
				core.Error(w, r, types.NewAppError(
					types.ErrCodeAuthTokenMissing,
					"Authentication required",
					nil,
				))
				return
			}
			if !allowed(user.Role) {
				core.Error(w, r, types.NewAppError(
					types.ErrCodePermissionRole,
					"Insufficient role for this operation",
					nil,
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// assetIDParam parses the {assetID} URL parameter.
func assetIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "assetID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidField,
			"asset id must be a positive integer",
			nil,
		)
	}
	return id, nil
}

// parseDateField parses an optional YYYY-MM-DD request field.
func parseDateField(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeValidationInvalidField,
			name+" must be a date in YYYY-MM-DD format",
			nil,
		)
	}
	return &t, nil
}

// createAssetRequest is the payload for POST /v1/assets. AssetTag is
// optional: when omitted the next free tag for the type is generated.
type createAssetRequest struct {
	AssetTag      string   `json:"asset_tag"`
	AssetType     string   `json:"asset_type" validate:"required,oneof=laptop monitor dock headset camera keyboard mouse other"`
	Name          string   `json:"name" validate:"required,min=2"`
	Manufacturer  string   `json:"manufacturer"`
	Model         string   `json:"model"`
	SerialNumber  string   `json:"serial_number"`
	PurchaseDate  string   `json:"purchase_date"`
	PurchasePrice *float64 `json:"purchase_price" validate:"omitempty,gte=0"`
	WarrantyEnd   string   `json:"warranty_end"`
	Vendor        string   `json:"vendor"`
	PONumber      string   `json:"po_number"`
	Location      string   `json:"location"`
	Notes         string   `json:"notes"`
}

// HandleCreate handles POST /v1/assets.
func (h *AssetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	purchaseDate, err := parseDateField("purchase_date", req.PurchaseDate)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	warrantyEnd, err := parseDateField("warranty_end", req.WarrantyEnd)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	asset := &types.Asset{
		AssetTag:      req.AssetTag,
		AssetType:     types.AssetType(req.AssetType),
		Name:          req.Name,
		Manufacturer:  req.Manufacturer,
		Model:         req.Model,
		SerialNumber:  req.SerialNumber,
		PurchaseDate:  purchaseDate,
		PurchasePrice: req.PurchasePrice,
		WarrantyEnd:   warrantyEnd,
		Vendor:        req.Vendor,
		PONumber:      req.PONumber,
		Location:      req.Location,
		Notes:         req.Notes,
	}

	if asset.AssetTag == "" {
		tag, err := h.assets.NextAssetTag(r.Context(), asset.AssetType)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		asset.AssetTag = tag
	}

	created, err := h.service.Create(r.Context(), asset)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: created})
}

// HandleList handles GET /v1/assets. Supported query parameters: status,
// type, assigned (true/false), q (substring search), limit, offset.
func (h *AssetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := types.AssetFilter{Search: q.Get("q")}

	if v := q.Get("status"); v != "" {
		status := types.AssetStatus(v)
		switch status {
		case types.StatusAvailable, types.StatusActive, types.StatusRepair, types.StatusDecommissioned:
			filter.Status = &status
		default:
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidStatus,
				"status must be one of: available, active, repair, decommissioned",
				nil,
			))
			return
		}
	}
	if v := q.Get("type"); v != "" {
		t := types.AssetType(v)
		filter.Type = &t
	}
	if v := q.Get("assigned"); v != "" {
		assigned, err := strconv.ParseBool(v)
		if err != nil {
			core.Error(w, r, types.NewAppError(
				types.ErrCodeValidationInvalidField,
				"assigned must be true or false",
				nil,
			))
			return
		}
		filter.Assigned = &assigned
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	assets, err := h.assets.List(r.Context(), filter)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: assets})
}

// HandleGet handles GET /v1/assets/{assetID}.
func (h *AssetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	asset, err := h.assets.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: asset})
}

// updateAssetRequest is the payload for PUT /v1/assets/{assetID}. Absent
// fields are left untouched; status is not editable here.
type updateAssetRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=2"`
	Manufacturer  *string  `json:"manufacturer"`
	Model         *string  `json:"model"`
	SerialNumber  *string  `json:"serial_number"`
	PurchaseDate  *string  `json:"purchase_date"`
	PurchasePrice *float64 `json:"purchase_price" validate:"omitempty,gte=0"`
	WarrantyEnd   *string  `json:"warranty_end"`
	Vendor        *string  `json:"vendor"`
	PONumber      *string  `json:"po_number"`
	Location      *string  `json:"location"`
	Notes         *string  `json:"notes"`
}

// HandleUpdate handles PUT /v1/assets/{assetID}.
func (h *AssetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req updateAssetRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	params := lifecycle.UpdateParams{
		Name:          req.Name,
		Manufacturer:  req.Manufacturer,
		Model:         req.Model,
		SerialNumber:  req.SerialNumber,
		PurchasePrice: req.PurchasePrice,
		Vendor:        req.Vendor,
		PONumber:      req.PONumber,
		Location:      req.Location,
		Notes:         req.Notes,
	}
	if req.PurchaseDate != nil {
		t, err := parseDateField("purchase_date", *req.PurchaseDate)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		params.PurchaseDate = t
	}
	if req.WarrantyEnd != nil {
		t, err := parseDateField("warranty_end", *req.WarrantyEnd)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		params.WarrantyEnd = t
	}

	asset, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: asset})
}

// HandleDelete handles DELETE /v1/assets/{assetID}.
func (h *AssetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if _, err := h.service.Transition(r.Context(), id, lifecycle.Request{Action: lifecycle.ActionDelete}); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// assignRequest is the payload for POST /v1/assets/{assetID}/assign.
// A null employee_id unassigns the asset.
type assignRequest struct {
	EmployeeID *int64 `json:"employee_id" validate:"omitempty,gt=0"`
}

// HandleAssign handles POST /v1/assets/{assetID}/assign.
func (h *AssetHandler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req assignRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	tr := lifecycle.Request{Action: lifecycle.ActionUnassign}
	if req.EmployeeID != nil {
		tr = lifecycle.Request{Action: lifecycle.ActionAssign, EmployeeID: *req.EmployeeID}
	}

	asset, err := h.service.Transition(r.Context(), id, tr)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: asset})
}

// decommissionRequest is the payload for POST /v1/assets/{assetID}/decommission.
type decommissionRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// HandleDecommission handles POST /v1/assets/{assetID}/decommission. The
// minimum reason length is enforced by the transition rules, not here, so
// the API and the import path reject short reasons identically.
func (h *AssetHandler) HandleDecommission(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req decommissionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	asset, err := h.service.Transition(r.Context(), id, lifecycle.Request{
		Action: lifecycle.ActionDecommission,
		Reason: req.Reason,
	})
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: asset})
}

// HandleMarkFixed handles POST /v1/assets/{assetID}/mark-fixed.
func (h *AssetHandler) HandleMarkFixed(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	asset, err := h.service.Transition(r.Context(), id, lifecycle.Request{Action: lifecycle.ActionMarkFixed})
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: asset})
}

// createRepairRequest is the payload for POST /v1/assets/{assetID}/repairs.
type createRepairRequest struct {
	RepairDate       string  `json:"repair_date"`
	IssueDescription string  `json:"issue_description" validate:"required,min=3"`
	Resolution       string  `json:"resolution"`
	Cost             float64 `json:"cost" validate:"gte=0"`
	IsWarrantyRepair bool    `json:"is_warranty_repair"`
	Vendor           string  `json:"vendor"`
	TicketNumber     string  `json:"ticket_number"`
}

// HandleCreateRepair handles POST /v1/assets/{assetID}/repairs. The asset
// moves to repair status in the same transaction as the history insert.
func (h *AssetHandler) HandleCreateRepair(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req createRepairRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	repair := &types.Repair{
		IssueDescription: req.IssueDescription,
		Resolution:       req.Resolution,
		Cost:             req.Cost,
		IsWarrantyRepair: req.IsWarrantyRepair,
		Vendor:           req.Vendor,
		TicketNumber:     req.TicketNumber,
	}
	if req.RepairDate != "" {
		t, err := parseDateField("repair_date", req.RepairDate)
		if err != nil {
			core.Error(w, r, err)
			return
		}
		repair.RepairDate = *t
	}

	asset, err := h.service.RecordRepair(r.Context(), id, repair)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: map[string]any{
		"asset":  asset,
		"repair": repair,
	}})
}

// repairHistoryResponse is the payload of GET /v1/assets/{assetID}/repairs.
type repairHistoryResponse struct {
	Repairs   []types.Repair `json:"repairs"`
	TotalCost float64        `json:"total_cost"`
}

// HandleListRepairs handles GET /v1/assets/{assetID}/repairs.
func (h *AssetHandler) HandleListRepairs(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	// 404 for unknown assets rather than an empty history.
	if _, err := h.assets.GetByID(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}

	repairs, err := h.repairs.ListByAsset(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	total, err := h.repairs.TotalCostByAsset(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if repairs == nil {
		repairs = []types.Repair{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: repairHistoryResponse{
		Repairs:   repairs,
		TotalCost: total,
	}})
}

// HandleListAudit handles GET /v1/assets/{assetID}/audit.
func (h *AssetHandler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	id, err := assetIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	entries, err := h.audit.ListByAsset(r.Context(), id, limit)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if entries == nil {
		entries = []types.AuditEntry{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: entries})
}
