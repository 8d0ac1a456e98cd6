// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package auth issues and verifies the bearer tokens that identify API
// callers. Logging out revokes a token by id until it would have expired.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pressroom/internal/models"
)

// ErrInvalidToken is returned for any token that does not verify.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by every access token. The role is informational; the
// current role is always reloaded from the user record.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Revocations remembers revoked token ids.
type Revocations interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	Revoked(ctx context.Context, id string) (bool, error)
}

// Tokens signs tokens with HS256.
type Tokens struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	revoked Revocations
	now     func() time.Time
}

// NewTokens returns a token service. revoked may be nil, in which case
// Revoke is a no-op and every unexpired token stays valid.
func NewTokens(secret, issuer string, ttl time.Duration, revoked Revocations) *Tokens {
	return &Tokens{secret: []byte(secret), issuer: issuer, ttl: ttl, revoked: revoked, now: time.Now}
}

// Issue creates a token for user.
func (t *Tokens) Issue(user *models.User) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies signature, issuer, expiry and revocation.
func (t *Tokens) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithIssuer(t.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrInvalidToken
	}

	if t.revoked != nil && claims.ID != "" {
		revoked, err := t.revoked.Revoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// Revoke invalidates the token until its natural expiry.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if t.revoked == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	return t.revoked.Revoke(ctx, claims.ID, ttl)
}
