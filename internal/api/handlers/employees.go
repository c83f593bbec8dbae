package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"assettrack/internal/core"
	"assettrack/internal/types"
)

// EmployeeStore covers the employee directory operations the handler serves.
type EmployeeStore interface {
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]types.Employee, error)
	GetByID(ctx context.Context, id int64) (*types.Employee, error)
	GetByEmail(ctx context.Context, email string) (*types.Employee, error)
	Create(ctx context.Context, e *types.Employee) error
	Update(ctx context.Context, e *types.Employee) error
	Deactivate(ctx context.Context, id int64) error
	ListAssets(ctx context.Context, employeeID int64) ([]types.Asset, error)
}

// EmployeeHandler maps HTTP requests to the employee directory.
type EmployeeHandler struct {
	employees EmployeeStore
	validator *core.Validator
	logger    *slog.Logger
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(employees EmployeeStore, val *core.Validator, logger *slog.Logger) *EmployeeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmployeeHandler{employees: employees, validator: val, logger: logger}
}

// RegisterRoutes mounts the employee endpoints onto the mux.
func (h *EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.With(requireMutator()).Post("/", h.HandleCreate)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.With(requireMutator()).Put("/", h.HandleUpdate)
			r.With(requireMutator()).Delete("/", h.HandleDeactivate)
			r.Get("/assets", h.HandleListAssets)
		})
	})
}

func employeeIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "employeeID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationInvalidField,
			"employee id must be a positive integer",
			nil,
		)
	}
	return id, nil
}

// HandleList handles GET /v1/employees. active=true limits the listing to
// active employees.
func (h *EmployeeHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	activeOnly, _ := strconv.ParseBool(q.Get("active"))

	limit, offset := 0, 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	employees, err := h.employees.List(r.Context(), activeOnly, limit, offset)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if employees == nil {
		employees = []types.Employee{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: employees})
}

type createEmployeeRequest struct {
	EmployeeID string `json:"employee_id"`
	Email      string `json:"email" validate:"required,email"`
	FullName   string `json:"full_name" validate:"required,min=2"`
	Department string `json:"department"`
	Location   string `json:"location"`
	Manager    string `json:"manager"`
}

// HandleCreate handles POST /v1/employees. New employees start active.
func (h *EmployeeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if _, err := h.employees.GetByEmail(r.Context(), req.Email); err == nil {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeConflictEmailExists,
			"an employee with this email already exists",
			nil,
		))
		return
	}

	employee := &types.Employee{
		EmployeeID: req.EmployeeID,
		Email:      req.Email,
		FullName:   req.FullName,
		Department: req.Department,
		Location:   req.Location,
		Manager:    req.Manager,
		IsActive:   true,
	}
	if err := h.employees.Create(r.Context(), employee); err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: employee})
}

type updateEmployeeRequest struct {
	EmployeeID *string `json:"employee_id"`
	Email      *string `json:"email" validate:"omitempty,email"`
	FullName   *string `json:"full_name" validate:"omitempty,min=2"`
	Department *string `json:"department"`
	Location   *string `json:"location"`
	Manager    *string `json:"manager"`
	IsActive   *bool   `json:"is_active"`
}

// HandleUpdate handles PUT /v1/employees/{employeeID}. Absent fields are left
// untouched.
func (h *EmployeeHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	var req updateEmployeeRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	employee, err := h.employees.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if req.EmployeeID != nil {
		employee.EmployeeID = *req.EmployeeID
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.Department != nil {
		employee.Department = *req.Department
	}
	if req.Location != nil {
		employee.Location = *req.Location
	}
	if req.Manager != nil {
		employee.Manager = *req.Manager
	}
	if req.IsActive != nil {
		employee.IsActive = *req.IsActive
	}
	if err := h.employees.Update(r.Context(), employee); err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: employee})
}

// HandleDeactivate handles DELETE /v1/employees/{employeeID}. Employees are
// never hard-deleted; their assignment history must survive.
func (h *EmployeeHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.employees.Deactivate(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /v1/employees/{employeeID}.
func (h *EmployeeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	employee, err := h.employees.GetByID(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: employee})
}

// HandleListAssets handles GET /v1/employees/{employeeID}/assets: the
// equipment currently checked out to one employee.
func (h *EmployeeHandler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	id, err := employeeIDParam(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if _, err := h.employees.GetByID(r.Context(), id); err != nil {
		core.Error(w, r, err)
		return
	}
	assets, err := h.employees.ListAssets(r.Context(), id)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	if assets == nil {
		assets = []types.Asset{}
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: assets})
}
