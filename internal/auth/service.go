// Package auth implements password verification and opaque-token session
// management backed by Postgres.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"assettrack/internal/types"
)

// defaultSessionTTL is the lifetime of a new session when the config does
// not override it.
const defaultSessionTTL = 7 * 24 * time.Hour

// tokenBytes is the entropy of a raw session token before hex encoding.
const tokenBytes = 32

// UserStore defines the user lookups the auth service needs.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*types.User, error)
	GetByID(ctx context.Context, id int64) (*types.User, error)
}

// SessionStore defines the session persistence the auth service needs.
// Only SHA-256 hashes of tokens ever reach this layer.
type SessionStore interface {
	Create(ctx context.Context, s *types.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*types.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// PasswordHasher abstracts bcrypt operations for testability.
type PasswordHasher interface {
	CompareHashAndPassword(hashedPassword, password string) error
	GenerateFromPassword(password string) (string, error)
}

// bcryptHasher is the production implementation of PasswordHasher.
type bcryptHasher struct {
	cost int
}

func (b *bcryptHasher) CompareHashAndPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func (b *bcryptHasher) GenerateFromPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// TokenGenerator abstracts the entropy source for session tokens.
type TokenGenerator interface {
	GenerateToken() (string, error)
}

type randomTokenGenerator struct{}

func (randomTokenGenerator) GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 of a raw session token. The hash
// is deterministic so it can be looked up directly, unlike bcrypt output.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ServiceConfig carries the dependencies of the auth Service. Users and
// Sessions are required; the rest default to production implementations.
type ServiceConfig struct {
	Users      UserStore
	Sessions   SessionStore
	Hasher     PasswordHasher
	TokenGen   TokenGenerator
	Clock      types.Clock
	Logger     *slog.Logger
	SessionTTL time.Duration
	BcryptCost int
}

// Service authenticates users and manages login sessions. It implements
// core.Authenticator via ResolveToken.
type Service struct {
	users      UserStore
	sessions   SessionStore
	hasher     PasswordHasher
	tokenGen   TokenGenerator
	clock      types.Clock
	logger     *slog.Logger
	sessionTTL time.Duration
}

// NewService creates an auth Service. Nil optional fields fall back to the
// bcrypt hasher, crypto/rand token generator, real clock, and default logger.
func NewService(cfg ServiceConfig) *Service {
	hasher := cfg.Hasher
	if hasher == nil {
		cost := cfg.BcryptCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		hasher = &bcryptHasher{cost: cost}
	}
	tokenGen := cfg.TokenGen
	if tokenGen == nil {
		tokenGen = randomTokenGenerator{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.RealClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Service{
		users:      cfg.Users,
		sessions:   cfg.Sessions,
		hasher:     hasher,
		tokenGen:   tokenGen,
		clock:      clock,
		logger:     logger,
		sessionTTL: ttl,
	}
}

// Login verifies the credentials and, on success, creates a session and
// returns the user along with the raw token the client must present as a
// Bearer credential. The raw token is never stored.
//
// Failure modes:
//   - Unknown username or wrong password: auth_invalid_credentials. The two
//     cases are indistinguishable to the caller.
//   - Deactivated account: auth_account_not_active.
func (s *Service) Login(ctx context.Context, username, password string) (*types.User, string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		var appErr *types.AppError
		if errors.As(err, &appErr) && appErr.Code == types.ErrCodeNotFoundUser {
			// Burn a bcrypt comparison anyway so the response time does
			// not reveal whether the username exists.
			_ = s.hasher.CompareHashAndPassword(dummyBcryptHash, password)
			return nil, "", types.NewAppError(types.ErrCodeAuthInvalidCreds, "invalid username or password", nil)
		}
		return nil, "", err
	}

	if err := s.hasher.CompareHashAndPassword(user.HashedPassword, password); err != nil {
		s.logger.Warn("login failed: bad password", slog.String("username", username))
		return nil, "", types.NewAppError(types.ErrCodeAuthInvalidCreds, "invalid username or password", nil)
	}

	if !user.IsActive {
		s.logger.Warn("login rejected: account not active", slog.String("username", username))
		return nil, "", types.NewAppError(types.ErrCodeAuthInactiveUser, "account is not active", nil)
	}

	token, err := s.tokenGen.GenerateToken()
	if err != nil {
		return nil, "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to generate session token", err)
	}

	now := s.clock.Now()
	session := &types.Session{
		UserID:    user.ID,
		TokenHash: HashToken(token),
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", err
	}

	s.logger.Info("login succeeded",
		slog.String("username", username),
		slog.Int64("user_id", user.ID),
		slog.Time("session_expires_at", session.ExpiresAt),
	)
	return user, token, nil
}

// ResolveToken maps a raw bearer token to its user. Expired sessions are
// deleted on sight (best effort) and reported as auth_token_expired;
// deactivated accounts are rejected even when the session is still valid.
func (s *Service) ResolveToken(ctx context.Context, token string) (*types.User, error) {
	session, err := s.sessions.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		return nil, err
	}

	if !s.clock.Now().Before(session.ExpiresAt) {
		if delErr := s.sessions.Delete(ctx, session.TokenHash); delErr != nil {
			s.logger.Warn("failed to delete expired session", slog.Any("error", delErr))
		}
		return nil, types.NewAppError(types.ErrCodeAuthTokenExpired, "session has expired", nil)
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, types.NewAppError(types.ErrCodeAuthInactiveUser, "account is not active", nil)
	}
	return user, nil
}

// Logout invalidates the session for the given raw token. Unknown tokens
// are not an error; logout is idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, HashToken(token))
}

// PurgeExpired deletes all sessions that expired before now. Intended to be
// called periodically alongside the warranty scheduler.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged expired sessions", slog.Int64("count", n))
	}
	return n, nil
}

// dummyBcryptHash is a valid bcrypt hash of an unguessable value, used to
// equalize timing when the username does not exist.
const dummyBcryptHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"
