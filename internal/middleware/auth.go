// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/TaskKeeper/internal/models"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	callerKey ctxKey = "caller"
)

// callerHolder lets BearerAuth report the authenticated username to an outer
// middleware, which cannot see the context BearerAuth derives.
type callerHolder struct {
	username string
}

func withCallerHolder(ctx context.Context, h *callerHolder) context.Context {
	return context.WithValue(ctx, callerKey, h)
}

// TokenVerifier checks a raw bearer token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (models.Claims, error)
}

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// BearerAuth is a middleware that requires an "Authorization: Bearer <token>"
// header on every request it wraps.
//
// The token is verified by verifier and checked against the revocation list.
// On success the claims are stored in the request context, so they can be
// read downstream with ClaimsFromContext. Any failure short-circuits with
// 401 before the next handler runs. A nil revoked skips the revocation check.
func BearerAuth(verifier TokenVerifier, revoked RevocationChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				logger.Debug("rejected bearer token", zap.Error(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsTokenRevoked(r.Context(), claims.TokenID)
				if err != nil {
					logger.Error("failed to check token revocation", zap.Error(err))
					http.Error(w, "internal error", http.StatusInternalServerError)
					return
				}
				if isRevoked {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
			}

			if h, ok := r.Context().Value(callerKey).(*callerHolder); ok {
				h.username = claims.Username
			}
			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("authorization header required")
	}
	scheme, raw, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("invalid authorization header format")
	}
	return raw, nil
}

// ClaimsFromContext returns the claims stored by BearerAuth.
// The boolean is false when the request did not pass through BearerAuth.
func ClaimsFromContext(ctx context.Context) (models.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(models.Claims)
	return claims, ok
}
