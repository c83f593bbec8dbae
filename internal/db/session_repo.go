package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"assettrack/internal/types"
)

// SessionRepository stores opaque-token login sessions.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository creates a SessionRepository backed by the given connection.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a session row.
func (r *SessionRepository) Create(ctx context.Context, s *types.Session) error {
	row := r.db.QueryRow(ctx,
		`INSERT INTO sessions (user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.UserID, s.TokenHash, s.ExpiresAt)
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create session", err)
	}
	return nil
}

// GetByTokenHash looks up a session by its hashed token.
func (r *SessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*types.Session, error) {
	var s types.Session
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at FROM sessions WHERE token_hash = $1`,
		tokenHash)
	if err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeAuthTokenInvalid, "session not found", err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to load session", err)
	}
	return &s, nil
}

// Delete removes a session (logout).
func (r *SessionRepository) Delete(ctx context.Context, tokenHash string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, tokenHash); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete session", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is before the cutoff.
// Returns the number of rows removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete expired sessions", err)
	}
	return tag.RowsAffected(), nil
}
