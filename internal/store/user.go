// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"pressroom/internal/models"
	"pressroom/internal/query"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sqlx.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, password_hash, display_name, role, is_active,
	last_login_at, created_at, updated_at`

func (s *UserStore) findOne(ctx context.Context, op, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, "find user by id", "id = $1", id)
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "find user by email", "email = $1", strings.ToLower(strings.TrimSpace(email)))
}

// FindByLogin accepts either a username or an email address.
func (s *UserStore) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if strings.Contains(login, "@") {
		return s.FindByEmail(ctx, login)
	}
	return s.findOne(ctx, "find user by username", "username = $1", login)
}

// Create inserts a new user with a bcrypt-hashed password.
func (s *UserStore) Create(ctx context.Context, u *models.User, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if u.Role == "" {
		u.Role = models.RoleReader
	}

	var created models.User
	err = s.db.GetContext(ctx, &created, `
		INSERT INTO users (username, email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		strings.TrimSpace(u.Username), strings.ToLower(strings.TrimSpace(u.Email)),
		string(hash), strings.TrimSpace(u.DisplayName), u.Role,
	)
	if err != nil {
		return nil, storeError("create user", err)
	}
	return &created, nil
}

// CheckPassword verifies a plaintext password against the user's stored hash.
func (s *UserStore) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// TouchLogin records a successful login.
func (s *UserStore) TouchLogin(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return storeError("touch login", err)
	}
	return nil
}

// List returns a page of users, optionally restricted to one role.
func (s *UserStore) List(ctx context.Context, role *models.Role, sort query.Sort, page query.Page) (query.Result[models.User], error) {
	w := &query.Where{}
	if role != nil {
		w.Add("u.role = ?", string(*role))
	}

	var res query.Result[models.User]
	if err := s.db.GetContext(ctx, &res.Total, `SELECT COUNT(*) FROM users u `+w.SQL(), w.Args()...); err != nil {
		return res, storeError("count users", err)
	}

	pw := w.Clone()
	q := fmt.Sprintf(`SELECT %s FROM users u %s ORDER BY %s LIMIT %s OFFSET %s`,
		userColumns, pw.SQL(), query.UserSorter.OrderBy(sort), pw.Arg(page.Limit()), pw.Arg(page.Offset()))
	res.Items = []models.User{}
	if err := s.db.SelectContext(ctx, &res.Items, q, pw.Args()...); err != nil {
		return res, storeError("list users", err)
	}
	return res, nil
}

// SetRole changes a user's role. Returns nil if the user does not exist.
func (s *UserStore) SetRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	return s.updateOne(ctx, "set user role", `role = $2`, id, role)
}

// Deactivate disables a user. Users are never hard-deleted because posts
// and media keep referencing them.
func (s *UserStore) Deactivate(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.updateOne(ctx, "deactivate user", `is_active = FALSE`, id)
}

func (s *UserStore) updateOne(ctx context.Context, op, set string, id uuid.UUID, args ...any) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `
		UPDATE users SET `+set+`, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, append([]any{id}, args...)...)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return &u, nil
}
