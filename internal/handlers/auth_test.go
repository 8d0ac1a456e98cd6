// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"pressroom/internal/apperr"
	"pressroom/internal/auth"
	"pressroom/internal/middleware"
	"pressroom/internal/models"
)

const goodPassword = "correct-horse"

type stubAccounts struct {
	byLogin   map[string]*models.User
	created   *models.User
	createErr error
	touched   []uuid.UUID
	touchErr  error
}

func (s *stubAccounts) FindByLogin(_ context.Context, login string) (*models.User, error) {
	return s.byLogin[login], nil
}

func (s *stubAccounts) Create(_ context.Context, u *models.User, _ string) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	cp := *u
	cp.ID = uuid.New()
	cp.IsActive = true
	s.created = &cp
	return &cp, nil
}

func (s *stubAccounts) CheckPassword(_ *models.User, password string) bool {
	return password == goodPassword
}

func (s *stubAccounts) TouchLogin(_ context.Context, id uuid.UUID) error {
	s.touched = append(s.touched, id)
	return s.touchErr
}

type stubTokens struct {
	issued    []uuid.UUID
	revoked   *auth.Claims
	revokeErr error
}

func (s *stubTokens) Issue(user *models.User) (string, time.Time, error) {
	s.issued = append(s.issued, user.ID)
	return "token-" + user.ID.String(), time.Now().Add(time.Hour), nil
}

func (s *stubTokens) Revoke(_ context.Context, claims *auth.Claims) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = claims
	return nil
}

// claimsParser resolves every bearer token to fixed claims for user.
type claimsParser struct{ claims *auth.Claims }

func (p claimsParser) Parse(context.Context, string) (*auth.Claims, error) {
	return p.claims, nil
}

type oneUser struct{ user *models.User }

func (o oneUser) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if o.user.ID == id {
		return o.user, nil
	}
	return nil, nil
}

func TestRegister(t *testing.T) {
	accounts := &stubAccounts{}
	tokens := &stubTokens{}
	h := NewAuth(accounts, tokens)

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, nil, ""))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if accounts.created == nil {
		t.Fatal("account not created")
	}
	if accounts.created.Role != models.RoleReader {
		t.Errorf("role = %s, want reader", accounts.created.Role)
	}
	if accounts.created.DisplayName != "alice" {
		t.Errorf("display name = %q, want it to default to the username", accounts.created.DisplayName)
	}
	body := decodeBody(t, rec)
	if body["token"] != "token-"+accounts.created.ID.String() {
		t.Errorf("token = %v", body["token"])
	}
	if _, ok := body["user"].(map[string]any)["password_hash"]; ok {
		t.Error("response leaked the password hash")
	}
}

func TestRegister_Validation(t *testing.T) {
	h := NewAuth(&stubAccounts{}, &stubTokens{})

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(http.MethodPost, "/api/auth/register",
		`{"username":"a!","email":"nope","password":"123"}`, nil, ""))

	body := assertError(t, rec, http.StatusBadRequest, apperr.KindValidationFailed)
	fields, _ := body["fields"].(map[string]any)
	for _, f := range []string{"username", "email", "password"} {
		if fields[f] == nil {
			t.Errorf("missing field error for %s in %v", f, fields)
		}
	}
}

func TestRegister_Duplicate(t *testing.T) {
	accounts := &stubAccounts{createErr: apperr.Invalid("email", "email already exists")}
	h := NewAuth(accounts, &stubTokens{})

	rec := httptest.NewRecorder()
	h.Register(rec, newRequest(http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"secret1"}`, nil, ""))

	assertError(t, rec, http.StatusBadRequest, apperr.KindValidationFailed)
}

func TestLogin(t *testing.T) {
	active := newUser(models.RoleAuthor)
	inactive := newUser(models.RoleEditor)
	inactive.IsActive = false

	tests := []struct {
		name     string
		login    string
		password string
		status   int
	}{
		{"ok by username", active.Username, goodPassword, http.StatusOK},
		{"ok by email", active.Email, goodPassword, http.StatusOK},
		{"wrong password", active.Username, "nope", http.StatusUnauthorized},
		{"unknown user", "ghost", goodPassword, http.StatusUnauthorized},
		{"inactive user", inactive.Username, goodPassword, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := &stubAccounts{byLogin: map[string]*models.User{
				active.Username:   active,
				active.Email:      active,
				inactive.Username: inactive,
			}}
			tokens := &stubTokens{}
			h := NewAuth(accounts, tokens)

			rec := httptest.NewRecorder()
			h.Login(rec, newRequest(http.MethodPost, "/api/auth/login",
				`{"login":"`+tt.login+`","password":"`+tt.password+`"}`, nil, ""))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				body := decodeBody(t, rec)
				if body["message"] != "invalid credentials" {
					t.Errorf("message = %v, want the generic credentials message", body["message"])
				}
				if len(tokens.issued) != 0 {
					t.Error("token issued for a failed login")
				}
				return
			}
			if len(accounts.touched) != 1 || accounts.touched[0] != active.ID {
				t.Errorf("touched = %v, want [%v]", accounts.touched, active.ID)
			}
		})
	}
}

func TestLogin_TouchFailureIsNotFatal(t *testing.T) {
	u := newUser(models.RoleReader)
	accounts := &stubAccounts{
		byLogin:  map[string]*models.User{u.Username: u},
		touchErr: errors.New("db down"),
	}
	h := NewAuth(accounts, &stubTokens{})

	rec := httptest.NewRecorder()
	h.Login(rec, newRequest(http.MethodPost, "/api/auth/login",
		`{"login":"`+u.Username+`","password":"`+goodPassword+`"}`, nil, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	u := newUser(models.RoleReader)
	claims := &auth.Claims{
		Role:             string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{Subject: u.ID.String(), ID: uuid.NewString()},
	}

	serve := func(tokens *stubTokens, withToken bool) *httptest.ResponseRecorder {
		h := NewAuth(&stubAccounts{}, tokens)
		handler := middleware.Authenticate(claimsParser{claims}, oneUser{u})(http.HandlerFunc(h.Logout))
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
		if withToken {
			req.Header.Set("Authorization", "Bearer abc")
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("revokes the presented token", func(t *testing.T) {
		tokens := &stubTokens{}
		rec := serve(tokens, true)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		if tokens.revoked == nil || tokens.revoked.ID != claims.ID {
			t.Errorf("revoked = %v, want %s", tokens.revoked, claims.ID)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		assertError(t, serve(&stubTokens{}, false), http.StatusUnauthorized, apperr.KindUnauthenticated)
	})

	t.Run("revocation store down", func(t *testing.T) {
		rec := serve(&stubTokens{revokeErr: errors.New("valkey down")}, true)
		assertError(t, rec, http.StatusServiceUnavailable, apperr.KindStoreUnavailable)
	})
}

func TestMe(t *testing.T) {
	u := newUser(models.RoleEditor)
	h := NewAuth(&stubAccounts{}, &stubTokens{})

	rec := httptest.NewRecorder()
	h.Me(rec, newRequest(http.MethodGet, "/api/auth/me", "", u, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), u.ID.String()) {
		t.Errorf("body %s does not contain the user id", rec.Body.String())
	}
}
