// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/cache"
	"pressroom/internal/category"
	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/render"
)

// Categories groups the category endpoints. Writes are gated to staff by
// the router.
type Categories struct {
	manager *category.Manager
	cache   *cache.JSONCache
}

// NewCategories creates a new Categories handler group. cache may be nil.
func NewCategories(manager *category.Manager, c *cache.JSONCache) *Categories {
	return &Categories{manager: manager, cache: c}
}

type categoryCreateRequest struct {
	Name        string     `json:"name" validate:"required,max=100"`
	Slug        string     `json:"slug" validate:"omitempty,max=120"`
	Description string     `json:"description" validate:"max=500"`
	Color       *string    `json:"color" validate:"omitempty,hexcolor"`
	Parent      optionalID `json:"parent"`
	Order       int        `json:"order" validate:"min=0"`
	IsActive    *bool      `json:"is_active"`
}

type categoryUpdateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=100"`
	Slug        *string    `json:"slug" validate:"omitempty,max=120"`
	Description *string    `json:"description" validate:"omitempty,max=500"`
	Color       *string    `json:"color" validate:"omitempty,hexcolor"`
	Parent      optionalID `json:"parent"`
	Order       *int       `json:"order" validate:"omitempty,min=0"`
	IsActive    *bool      `json:"is_active"`
}

// includeEmpty reads ?includeEmpty; only an explicit "false" prunes.
func includeEmpty(r *http.Request) bool {
	return r.URL.Query().Get("includeEmpty") != "false"
}

// List returns a flat page of categories with post counts.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	f, err := query.ParseCategoryFilter(values)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	sort, err := query.CategorySorter.Parse(values.Get("sort"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	page := query.ParsePage(values, query.CategoryPageSize)

	res, err := h.manager.List(r.Context(), f, sort, page, includeEmpty(r))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.List(w, res, page)
}

// Hierarchy returns the active categories as a nested tree.
func (h *Categories) Hierarchy(w http.ResponseWriter, r *http.Request) {
	empty := includeEmpty(r)
	tree, err := cache.Fetch(r.Context(), h.cache, cache.HierarchyKey(empty), func(ctx context.Context) ([]models.CategoryNode, error) {
		return h.manager.Hierarchy(ctx, empty)
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, tree)
}

// Get returns one category with its parent, children and post count.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	d, err := h.manager.Get(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, d)
}

// GetBySlug returns one category by slug.
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	d, err := h.manager.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, d)
}

// Create adds a category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	actor := middleware.UserFromCtx(r.Context())
	c, err := h.manager.Create(r.Context(), actor.ID, category.CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		ParentID:    req.Parent.ID,
		SortOrder:   req.Order,
		IsActive:    req.IsActive,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, c)
}

// Update applies a partial change. "parent": null moves the category to
// the root.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req categoryUpdateRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	c, err := h.manager.Update(r.Context(), id, category.UpdateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Color:       req.Color,
		ParentSet:   req.Parent.Set,
		ParentID:    req.Parent.ID,
		SortOrder:   req.Order,
		IsActive:    req.IsActive,
	})
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, c)
}

// Delete removes a category. Without ?force=true it fails with HasPosts
// while posts still reference it.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	res, err := h.manager.Delete(r.Context(), id, flag(r, "force"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		category.DeleteResult
	}{Message: "category deleted", DeleteResult: res})
}
