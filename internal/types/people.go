package types

import "time"

// UserRole defines authorization levels for IT staff accounts.
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleViewer     UserRole = "viewer"
)

// CanMutate reports whether the role may perform write operations
// (create/update/transition assets, manage employees).
func (r UserRole) CanMutate() bool {
	return r == RoleAdmin || r == RoleTechnician
}

// User is an IT staff account that can log into the system.
// Users receive warranty alerts; employees receive equipment.
type User struct {
	ID             int64     `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	FullName       string    `json:"full_name" db:"full_name"`
	Role           UserRole  `json:"role" db:"role"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// Employee is a member of the organization who receives IT equipment.
type Employee struct {
	ID         int64     `json:"id" db:"id"`
	EmployeeID string    `json:"employee_id,omitempty" db:"employee_id"`
	Email      string    `json:"email" db:"email"`
	FullName   string    `json:"full_name" db:"full_name"`
	Department string    `json:"department,omitempty" db:"department"`
	Location   string    `json:"location,omitempty" db:"location"`
	Manager    string    `json:"manager,omitempty" db:"manager"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Session is an opaque-token login session. Only the SHA-256 hash of the
// token is stored.
type Session struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
