// Package service provides authentication and task business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// CreateUser stores a new user. It must report a taken username as
	// models.ErrConflict, decided atomically with the insert.
	CreateUser(ctx context.Context, user models.User) error
	// FindByUsername returns the user with the given name or models.ErrUserNotFound.
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// RevocationRepository stores the ids of tokens revoked before their expiry.
type RevocationRepository interface {
	// RevokeToken marks tokenID as revoked until expiresAt.
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// TokenIssuer signs session tokens for authenticated users.
type TokenIssuer interface {
	// Issue returns a signed token for user.
	Issue(user models.User) (string, error)
}

// AuthService implements registration, login and logout by delegating
// to an AuthRepository, a TokenIssuer and a RevocationRepository.
type AuthService struct {
	repo       AuthRepository
	tokens     TokenIssuer
	revoked    RevocationRepository
	bcryptCost int
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// NewAuthService constructs a new AuthService.
func NewAuthService(repo AuthRepository, tokens TokenIssuer, revoked RevocationRepository, opts ...AuthOption) *AuthService {
	s := &AuthService{
		repo:       repo,
		tokens:     tokens,
		revoked:    revoked,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with a bcrypt hash of password.
// Empty fields or an over-long username yield models.ErrValidation; a taken
// username yields models.ErrConflict from the repository.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username and password are required", models.ErrValidation)
	}
	if utf8.RuneCountInString(username) > models.MaxUsernameLength {
		return models.User{}, fmt.Errorf("%w: username must be at most %d characters", models.ErrValidation, models.MaxUsernameLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.User{}, fmt.Errorf("%w: password is too long", models.ErrValidation)
		}
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login checks the credentials and returns a signed session token.
// An unknown username yields models.ErrUserNotFound, a wrong password
// models.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", models.ErrValidation)
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: invalid username or password", models.ErrUnauthorized)
	}

	return s.tokens.Issue(user)
}

// Logout revokes the token the claims were read from until it expires.
func (s *AuthService) Logout(ctx context.Context, claims models.Claims) error {
	if claims.TokenID == "" {
		return fmt.Errorf("%w: token has no id", models.ErrUnauthorized)
	}
	return s.revoked.RevokeToken(ctx, claims.TokenID, claims.ExpiresAt)
}
