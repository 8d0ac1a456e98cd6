// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/auth"
	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/render"
)

// Accounts is the user persistence the auth handlers need.
type Accounts interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, u *models.User, password string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
	TouchLogin(ctx context.Context, id uuid.UUID) error
}

// TokenIssuer issues and revokes bearer tokens.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	accounts Accounts
	tokens   TokenIssuer
}

// NewAuth creates a new Auth handler group.
func NewAuth(accounts Accounts, tokens TokenIssuer) *Auth {
	return &Auth{accounts: accounts, tokens: tokens}
}

type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	DisplayName string `json:"display_name" validate:"max=100"`
}

type loginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Register creates a reader account and logs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	user, err := a.accounts.Create(r.Context(), &models.User{
		Username:    req.Username,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        models.RoleReader,
	}, req.Password)
	if err != nil {
		render.Error(w, r, err)
		return
	}

	zap.L().Info("user registered", zap.String("user", user.ID.String()), zap.String("username", user.Username))
	a.respondWithToken(w, r, http.StatusCreated, user)
}

// Login exchanges an email or username and password for a token.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}

	user, err := a.accounts.FindByLogin(r.Context(), req.Login)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	// Same answer for unknown accounts and wrong passwords.
	if user == nil || !user.IsActive || !a.accounts.CheckPassword(user, req.Password) {
		render.Error(w, r, apperr.Unauthenticated("invalid credentials"))
		return
	}

	if err := a.accounts.TouchLogin(r.Context(), user.ID); err != nil {
		zap.L().Warn("record login time", zap.String("user", user.ID.String()), zap.Error(err))
	}
	a.respondWithToken(w, r, http.StatusOK, user)
}

func (a *Auth) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, expires, err := a.tokens.Issue(user)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, status, TokenResponse{Token: token, ExpiresAt: expires, User: user})
}

// Logout revokes the presented token for the rest of its lifetime.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		render.Error(w, r, apperr.Unauthenticated("authentication required"))
		return
	}
	if err := a.tokens.Revoke(r.Context(), claims); err != nil {
		render.Error(w, r, apperr.StoreUnavailable(err))
		return
	}
	render.Message(w, http.StatusOK, "logged out")
}

// Me returns the authenticated user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, http.StatusOK, middleware.UserFromCtx(r.Context()))
}
