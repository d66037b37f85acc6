package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresRevocationRepository stores the ids of session tokens that were
// logged out before their natural expiry.
type PostgresRevocationRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresRevocationRepository creates a new PostgresRevocationRepository.
func NewPostgresRevocationRepository(db *sql.DB) *PostgresRevocationRepository {
	return &PostgresRevocationRepository{DB: db}
}

// RevokeToken records tokenID as revoked until expiresAt.
// Revoking the same token twice is a no-op thanks to ON CONFLICT DO NOTHING.
func (r *PostgresRevocationRepository) RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO revoked_tokens (jti, expires_at) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		tokenID, expiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks whether tokenID has been revoked.
func (r *PostgresRevocationRepository) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`,
		tokenID,
	).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}
