// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/render"
)

// userPageSize is the default page size of the user list.
const userPageSize = 20

// UserAdmin is the user persistence the admin endpoints need.
type UserAdmin interface {
	List(ctx context.Context, role *models.Role, sort query.Sort, page query.Page) (query.Result[models.User], error)
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Users groups the admin-only user management endpoints.
type Users struct {
	users UserAdmin
}

// NewUsers creates a new Users handler group.
func NewUsers(users UserAdmin) *Users {
	return &Users{users: users}
}

type roleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=admin editor author reader"`
}

// List returns a page of users, optionally filtered by ?role.
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	var role *models.Role
	if raw := values.Get("role"); raw != "" {
		rl := models.Role(raw)
		if !rl.Valid() {
			render.Error(w, r, apperr.Invalid("role", "must be one of admin, editor, author, reader"))
			return
		}
		role = &rl
	}
	sort, err := query.UserSorter.Parse(values.Get("sort"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	page := query.ParsePage(values, userPageSize)

	res, err := h.users.List(r.Context(), role, sort, page)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.List(w, res, page)
}

// SetRole changes a user's role. Admins cannot change their own role.
func (h *Users) SetRole(w http.ResponseWriter, r *http.Request) {
	id, err := h.otherUser(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req roleRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	u, err := h.users.SetRole(r.Context(), id, req.Role)
	h.respond(w, r, u, err, "role changed")
}

// Deactivate disables an account. Its tokens stop working immediately
// because authentication reloads the user on every request.
func (h *Users) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := h.otherUser(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	u, err := h.users.Deactivate(r.Context(), id)
	h.respond(w, r, u, err, "user deactivated")
}

// otherUser parses {id} and rejects the caller's own id.
func (h *Users) otherUser(r *http.Request) (uuid.UUID, error) {
	id, err := idParam(r)
	if err != nil {
		return uuid.Nil, err
	}
	if actor := middleware.UserFromCtx(r.Context()); actor != nil && actor.ID == id {
		return uuid.Nil, apperr.Invalid("id", "cannot change your own account")
	}
	return id, nil
}

func (h *Users) respond(w http.ResponseWriter, r *http.Request, u *models.User, err error, action string) {
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if u == nil {
		render.Error(w, r, apperr.NotFound("user"))
		return
	}
	zap.L().Info(action,
		zap.String("user", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("by", middleware.UserFromCtx(r.Context()).ID.String()),
	)
	render.JSON(w, http.StatusOK, u)
}
