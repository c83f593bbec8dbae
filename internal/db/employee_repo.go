package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"assettrack/internal/types"
)

const employeeColumns = `id, employee_id, email, full_name, department, location, manager, is_active, created_at`

// EmployeeRepository provides data access for the employees table.
type EmployeeRepository struct {
	db DBTX
}

// NewEmployeeRepository creates an EmployeeRepository backed by the given
// connection.
func NewEmployeeRepository(db DBTX) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// GetByID fetches a single employee.
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*types.Employee, error) {
	row := r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundEmployee, "employee not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load employee", err)
	}
	return e, nil
}

// List returns employees, optionally filtered to active ones, newest first.
func (r *EmployeeRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]types.Employee, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `SELECT ` + employeeColumns + ` FROM employees`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY id DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list employees", err)
	}
	defer rows.Close()

	var out []types.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan employee row", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate employee rows", err)
	}
	return out, nil
}

// Create inserts a new employee and populates ID/CreatedAt.
func (r *EmployeeRepository) Create(ctx context.Context, e *types.Employee) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO employees (employee_id, email, full_name, department, location, manager, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		nilIfEmpty(e.EmployeeID),
		e.Email,
		e.FullName,
		nilIfEmpty(e.Department),
		nilIfEmpty(e.Location),
		nilIfEmpty(e.Manager),
		e.IsActive,
	)
	if err := row.Scan(&e.ID, &e.CreatedAt); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create employee", err)
	}
	return nil
}

// GetByEmail fetches a single employee by email address.
func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*types.Employee, error) {
	row := r.db.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE email = $1`, email)
	e, err := scanEmployee(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundEmployee, "employee not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load employee", err)
	}
	return e, nil
}

// Update rewrites the employee's directory fields.
func (r *EmployeeRepository) Update(ctx context.Context, e *types.Employee) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE employees
		 SET employee_id = $1, email = $2, full_name = $3, department = $4,
		     location = $5, manager = $6, is_active = $7
		 WHERE id = $8`,
		nilIfEmpty(e.EmployeeID),
		e.Email,
		e.FullName,
		nilIfEmpty(e.Department),
		nilIfEmpty(e.Location),
		nilIfEmpty(e.Manager),
		e.IsActive,
		e.ID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update employee", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundEmployee, "employee not found", nil)
	}
	return nil
}

// Deactivate marks the employee inactive. Assigned assets stay assigned;
// returning equipment is an explicit lifecycle action.
func (r *EmployeeRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE employees SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to deactivate employee", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundEmployee, "employee not found", nil)
	}
	return nil
}

// ListAssets returns all assets currently assigned to the employee.
func (r *EmployeeRepository) ListAssets(ctx context.Context, employeeID int64) ([]types.Asset, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE assigned_to = $1 ORDER BY id DESC`, employeeID)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list employee assets", err)
	}
	defer rows.Close()

	var out []types.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan asset row", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate asset rows", err)
	}
	return out, nil
}

func scanEmployee(row pgx.Row) (*types.Employee, error) {
	var (
		e                                    types.Employee
		employeeID, department, loc, manager *string
	)
	err := row.Scan(&e.ID, &employeeID, &e.Email, &e.FullName, &department, &loc, &manager, &e.IsActive, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.EmployeeID = derefOrEmpty(employeeID)
	e.Department = derefOrEmpty(department)
	e.Location = derefOrEmpty(loc)
	e.Manager = derefOrEmpty(manager)
	return &e, nil
}
