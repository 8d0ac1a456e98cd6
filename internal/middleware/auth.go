// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/auth"
	"pressroom/internal/authz"
	"pressroom/internal/models"
	"pressroom/internal/render"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	userKey   contextKey = "user"
	claimsKey contextKey = "claims"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(ctx context.Context, raw string) (*auth.Claims, error)
}

// UserLoader resolves the token subject to a current user record.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Authenticate resolves the caller from an "Authorization: Bearer" header
// and stores the user in the request context. It does NOT enforce
// authentication: requests without a usable token continue anonymously
// and the route gates decide.
func Authenticate(tokens TokenParser, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(r.Context(), raw)
			if errors.Is(err, auth.ErrInvalidToken) {
				zap.L().Debug("rejected bearer token", zap.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				render.Error(w, r, apperr.StoreUnavailable(err))
				return
			}

			// Parse already rejected malformed subjects.
			id, _ := claims.UserID()
			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				render.Error(w, r, err)
				return
			}
			if user == nil || !user.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth answers 401 when no user was resolved.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromCtx(r.Context()) == nil {
			render.Error(w, r, apperr.Unauthenticated("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Require runs the authentication and role gates of rule before the
// handler loads anything. Ownership is checked later against the loaded
// resource.
func Require(rule authz.Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := authz.Authorize(UserFromCtx(r.Context()), rule, nil).Err(); err != nil {
				render.Error(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromCtx returns the authenticated user, or nil for anonymous
// requests.
func UserFromCtx(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// ClaimsFromCtx returns the verified token claims, or nil.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithUser stores user in ctx. Used by tests and internal callers.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
