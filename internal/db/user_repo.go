package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"assettrack/internal/types"
)

const userColumns = `id, email, username, hashed_password, full_name, role, is_active, created_at`

// UserRepository provides data access for IT staff accounts.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a UserRepository backed by the given connection.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername fetches a user for login.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*types.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return r.scanUser(row)
}

// GetByID fetches a user by primary key.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*types.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return r.scanUser(row)
}

// ListAlertRecipients returns the email addresses of all active admin and
// technician accounts -- the audience for warranty alerts.
func (r *UserRepository) ListAlertRecipients(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT email FROM users WHERE role IN ('admin', 'technician') AND is_active ORDER BY email`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list alert recipients", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan recipient row", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to iterate recipient rows", err)
	}
	return emails, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *types.User) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (email, username, hashed_password, full_name, role, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		u.Email, u.Username, u.HashedPassword, u.FullName, string(u.Role), u.IsActive)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create user", err)
	}
	return nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*types.User, error) {
	var (
		u    types.User
		role string
	)
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.FullName, &role, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load user", err)
	}
	u.Role = types.UserRole(role)
	return &u, nil
}
