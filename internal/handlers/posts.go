// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pressroom/internal/middleware"
	"pressroom/internal/models"
	"pressroom/internal/post"
	"pressroom/internal/query"
	"pressroom/internal/render"
)

// Posts groups the post endpoints.
type Posts struct {
	posts *post.Service
}

// NewPosts creates a new Posts handler group.
func NewPosts(posts *post.Service) *Posts {
	return &Posts{posts: posts}
}

// postRequest is the body of create and update. Omitted fields are left
// alone on update.
type postRequest struct {
	Title          *string            `json:"title" validate:"omitempty,max=200"`
	Slug           *string            `json:"slug" validate:"omitempty,max=200"`
	Content        *string            `json:"content"`
	Excerpt        *string            `json:"excerpt" validate:"omitempty,max=500"`
	FeaturedImage  *string            `json:"featured_image"`
	Status         *models.PostStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Category       optionalID         `json:"category"`
	Tags           *models.Tags       `json:"tags"`
	IsFeatured     *bool              `json:"is_featured"`
	AllowComments  *bool              `json:"allow_comments"`
	SEOTitle       *string            `json:"seo_title" validate:"omitempty,max=60"`
	SEODescription *string            `json:"seo_description" validate:"omitempty,max=160"`
	SEOKeywords    *models.Tags       `json:"seo_keywords"`
}

func (req postRequest) input() post.Input {
	return post.Input{
		Title:          req.Title,
		Slug:           req.Slug,
		Content:        req.Content,
		Excerpt:        req.Excerpt,
		FeaturedImage:  req.FeaturedImage,
		Status:         req.Status,
		CategorySet:    req.Category.Set,
		CategoryID:     req.Category.ID,
		Tags:           req.Tags,
		IsFeatured:     req.IsFeatured,
		AllowComments:  req.AllowComments,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		SEOKeywords:    req.SEOKeywords,
	}
}

// List returns a page of posts. Anonymous callers only see published
// posts. Without an explicit sort, searches rank by relevance.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	f, err := query.ParsePostFilter(values)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var sort *query.Sort
	if raw := values.Get("sort"); raw != "" {
		s, err := query.PostSorter.Parse(raw)
		if err != nil {
			render.Error(w, r, err)
			return
		}
		sort = &s
	}
	page := query.ParsePage(values, query.PostPageSize)

	res, err := h.posts.List(r.Context(), middleware.UserFromCtx(r.Context()), f, sort, page)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.List(w, res, page)
}

// Get returns one post. ?increment_views=true also counts a view.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	v, err := h.posts.Get(r.Context(), middleware.UserFromCtx(r.Context()), id, flag(r, "increment_views"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, v)
}

// GetBySlug returns one post by slug.
func (h *Posts) GetBySlug(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.UserFromCtx(r.Context())
	v, err := h.posts.GetBySlug(r.Context(), viewer, chi.URLParam(r, "slug"), flag(r, "increment_views"))
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, v)
}

// Create stores a new post authored by the caller.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	p, err := h.posts.Create(r.Context(), middleware.UserFromCtx(r.Context()), req.input())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusCreated, p)
}

// Update applies a partial change. Editors and authors may only update
// their own posts.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	var req postRequest
	if err := render.Bind(w, r, &req); err != nil {
		render.Error(w, r, err)
		return
	}
	p, err := h.posts.Update(r.Context(), middleware.UserFromCtx(r.Context()), id, req.input())
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, p)
}

// Delete removes a post.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	if err := h.posts.Delete(r.Context(), middleware.UserFromCtx(r.Context()), id); err != nil {
		render.Error(w, r, err)
		return
	}
	render.Message(w, http.StatusOK, "post deleted")
}

// Like adds one like. No authentication is needed.
func (h *Posts) Like(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	likes, err := h.posts.Like(r.Context(), id)
	if err != nil {
		render.Error(w, r, err)
		return
	}
	render.JSON(w, http.StatusOK, map[string]int64{"likes": likes})
}
