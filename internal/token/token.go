// Package token issues and verifies signed, expiring session tokens.
//
// Tokens are HS256 JWTs carrying the username as subject, the user id and a
// unique token id. Nothing is stored server side: a token is valid while its
// signature verifies and its expiry has not passed.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

// DefaultTTL is the validity window of an issued token.
const DefaultTTL = time.Hour

// sessionClaims is the JWT payload.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Manager signs and verifies session tokens with a symmetric key.
type Manager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager signing with key. A non-positive ttl falls
// back to DefaultTTL. The key is copied and never exposed.
func NewManager(key []byte, ttl time.Duration, opts ...Option) (*Manager, error) {
	if len(key) == 0 {
		return nil, errors.New("token signing key is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		key: append([]byte(nil), key...),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Issue produces a signed token for user that expires ttl from now.
func (m *Manager) Issue(user models.User) (string, error) {
	now := m.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: user.ID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw and returns its claims.
// Every failure is reported as models.ErrUnauthorized.
func (m *Manager) Verify(raw string) (models.Claims, error) {
	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.Claims{}, mapJWTError(err)
	}
	if parsed.Subject == "" || parsed.UserID == "" || parsed.ID == "" {
		return models.Claims{}, fmt.Errorf("%w: incomplete token claims", models.ErrUnauthorized)
	}

	return models.Claims{
		TokenID:   parsed.ID,
		UserID:    parsed.UserID,
		Username:  parsed.Subject,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: token expired", models.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: token signature is invalid", models.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: token alg is invalid", models.ErrUnauthorized)
	default:
		return fmt.Errorf("%w: token is invalid", models.ErrUnauthorized)
	}
}
