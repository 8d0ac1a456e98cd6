// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"pressroom/internal/apperr"
	"pressroom/internal/category"
	"pressroom/internal/models"
)

// createOnlyRepo stores created categories; every other method is left to
// the embedded nil interface and panics if reached.
type createOnlyRepo struct {
	category.Repository
	created []*models.Category
}

func (r *createOnlyRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	cp := *c
	cp.ID = uuid.New()
	r.created = append(r.created, &cp)
	return &cp, nil
}

func createCategory(t *testing.T, repo *createOnlyRepo, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	h := NewCategories(category.NewManager(repo), nil)
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/api/categories", string(raw), newUser(models.RoleEditor), ""))
	return rec
}

func TestCategoriesCreate_LengthLimits(t *testing.T) {
	t.Run("long name and description within limits", func(t *testing.T) {
		repo := &createOnlyRepo{}
		name := strings.Repeat("n", 80)
		rec := createCategory(t, repo, map[string]any{
			"name":        name,
			"description": strings.Repeat("d", 400),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
		}
		if len(repo.created) != 1 || repo.created[0].Name != name {
			t.Fatalf("created = %v", repo.created)
		}
		if repo.created[0].Slug != name {
			t.Errorf("slug = %q, want %q", repo.created[0].Slug, name)
		}
	})

	t.Run("explicit slug of 120 characters", func(t *testing.T) {
		repo := &createOnlyRepo{}
		rec := createCategory(t, repo, map[string]any{
			"name": "Tech",
			"slug": strings.Repeat("s", 120),
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
		}
	})

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"name too long", map[string]any{"name": strings.Repeat("n", 101)}, "name"},
		{"description too long", map[string]any{"name": "Tech", "description": strings.Repeat("d", 501)}, "description"},
		{"slug too long", map[string]any{"name": "Tech", "slug": strings.Repeat("s", 121)}, "slug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &createOnlyRepo{}
			body := assertError(t, createCategory(t, repo, tt.body), http.StatusBadRequest, apperr.KindValidationFailed)
			if fields, _ := body["fields"].(map[string]any); fields[tt.field] == nil {
				t.Errorf("fields = %v, want an entry for %s", body["fields"], tt.field)
			}
			if len(repo.created) != 0 {
				t.Error("category stored despite the validation error")
			}
		})
	}
}
