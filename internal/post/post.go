// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package post implements the post lifecycle: slug and excerpt
// derivation, publish timestamps, ownership checks and the public read
// paths with view counting.
package post

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/authz"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/slug"
)

// Field limits.
const (
	maxTitleLen          = 200
	maxExcerptLen        = 500
	maxTagLen            = 50
	maxSEOTitleLen       = 60
	maxSEODescriptionLen = 160
)

// Repository is the persistence the service needs. Find and View return
// (nil, nil) when the post does not exist.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	View(ctx context.Context, id uuid.UUID) (*models.PostView, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	Update(ctx context.Context, p *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (int64, error)
	IncrementLikes(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, f query.PostFilter, sort *query.Sort, page query.Page) (query.Result[models.PostView], error)
}

// Categories resolves category ids for validation.
type Categories interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
}

// Renderer turns post content into HTML.
type Renderer interface {
	Render(source string) (string, error)
}

// Input carries the writable fields of a post. Nil pointers leave the
// current value alone on update; on create they take the defaults.
type Input struct {
	Title          *string
	Slug           *string
	Content        *string
	Excerpt        *string
	FeaturedImage  *string
	Status         *models.PostStatus
	CategorySet    bool
	CategoryID     *uuid.UUID
	Tags           *models.Tags
	IsFeatured     *bool
	AllowComments  *bool
	SEOTitle       *string
	SEODescription *string
	SEOKeywords    *models.Tags
}

// Service applies post rules on top of a Repository.
type Service struct {
	repo       Repository
	categories Categories
	renderer   Renderer
	now        func() time.Time
	onChange   func(ctx context.Context)
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer enables ContentHTML on single-post reads.
func WithRenderer(r Renderer) Option {
	return func(s *Service) { s.renderer = r }
}

// WithClock overrides the time source used for publish timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithOnChange registers a callback run after every successful mutation.
func WithOnChange(fn func(ctx context.Context)) Option {
	return func(s *Service) { s.onChange = fn }
}

// NewService returns a Service.
func NewService(repo Repository, categories Categories, opts ...Option) *Service {
	s := &Service{repo: repo, categories: categories, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) changed(ctx context.Context) {
	if s.onChange != nil {
		s.onChange(ctx)
	}
}

// Create stores a new post authored by actor. The slug is derived from
// the title unless given, and made unique with a numeric suffix when
// derived. An explicit slug that is taken is a validation failure.
func (s *Service) Create(ctx context.Context, actor *models.User, in Input) (*models.Post, error) {
	if err := authz.Authorize(actor, authz.PostCreate, nil).Err(); err != nil {
		return nil, err
	}

	p := &models.Post{
		Status:        models.PostStatusDraft,
		AuthorID:      actor.ID,
		AllowComments: true,
		Tags:          models.Tags{},
		SEOKeywords:   models.Tags{},
	}
	s.apply(p, in)
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	var err error
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		p.Slug, err = s.explicitSlug(ctx, *in.Slug)
	} else {
		p.Slug, err = s.derivedSlug(ctx, p.Title)
	}
	if err != nil {
		return nil, err
	}

	if p.Excerpt == "" {
		p.Excerpt = models.DeriveExcerpt(p.Content)
	}
	if p.Status == models.PostStatusPublished {
		now := s.now()
		p.PublishedAt = &now
	}

	created, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	zap.L().Info("post created",
		zap.String("id", created.ID.String()),
		zap.String("slug", created.Slug),
		zap.String("author", actor.ID.String()),
	)
	s.changed(ctx)
	return created, nil
}

// Update edits a post. Only admins and the post's author may edit it.
// The slug and author never change; PublishedAt is set the first time
// the post is published.
func (s *Service) Update(ctx context.Context, actor *models.User, id uuid.UUID, in Input) (*models.Post, error) {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	s.apply(p, in)
	if err := validate(p); err != nil {
		return nil, err
	}
	if in.CategorySet {
		if err := s.checkCategory(ctx, p.CategoryID); err != nil {
			return nil, err
		}
	}
	if p.Excerpt == "" {
		p.Excerpt = models.DeriveExcerpt(p.Content)
	}
	if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
		now := s.now()
		p.PublishedAt = &now
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("post")
	}
	s.changed(ctx)
	return updated, nil
}

// Delete removes a post. Only admins and the post's author may delete it.
func (s *Service) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("post")
	}
	zap.L().Info("post deleted", zap.String("id", id.String()), zap.String("by", actor.ID.String()))
	s.changed(ctx)
	return nil
}

// load fetches a post and runs the full policy against it.
func (s *Service) load(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Post, error) {
	if err := authz.Authorize(actor, authz.PostModify, nil).Err(); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("post")
	}
	if err := authz.Authorize(actor, authz.PostModify, p).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns a post with its author and category. Drafts and archived
// posts are NotFound for anonymous viewers. With countView the view
// counter is incremented atomically and the new total returned.
func (s *Service) Get(ctx context.Context, viewer *models.User, id uuid.UUID, countView bool) (*models.PostView, error) {
	v, err := s.repo.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil || (viewer == nil && v.Status != models.PostStatusPublished) {
		return nil, apperr.NotFound("post")
	}
	if countView {
		views, err := s.repo.IncrementViews(ctx, id)
		if err != nil {
			return nil, err
		}
		v.Views = views
	}
	s.render(v)
	return v, nil
}

// GetBySlug is Get keyed by slug.
func (s *Service) GetBySlug(ctx context.Context, viewer *models.User, slug string, countView bool) (*models.PostView, error) {
	p, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("post")
	}
	return s.Get(ctx, viewer, p.ID, countView)
}

func (s *Service) render(v *models.PostView) {
	if s.renderer == nil {
		return
	}
	html, err := s.renderer.Render(v.Content)
	if err != nil {
		zap.L().Warn("render post content", zap.String("id", v.ID.String()), zap.Error(err))
		return
	}
	v.ContentHTML = html
}

// Like adds one like and returns the new total.
func (s *Service) Like(ctx context.Context, id uuid.UUID) (int64, error) {
	return s.repo.IncrementLikes(ctx, id)
}

// List returns a page of posts. Anonymous readers only ever see
// published posts, whatever status they ask for.
func (s *Service) List(ctx context.Context, viewer *models.User, f query.PostFilter, sort *query.Sort, page query.Page) (query.Result[models.PostView], error) {
	if viewer == nil {
		published := models.PostStatusPublished
		f.Status = &published
	}
	return s.repo.List(ctx, f, sort, page)
}

func (s *Service) apply(p *models.Post, in Input) {
	if in.Title != nil {
		p.Title = strings.TrimSpace(*in.Title)
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.Excerpt != nil {
		p.Excerpt = strings.TrimSpace(*in.Excerpt)
	}
	if in.FeaturedImage != nil {
		if *in.FeaturedImage == "" {
			p.FeaturedImage = nil
		} else {
			p.FeaturedImage = in.FeaturedImage
		}
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.CategorySet {
		p.CategoryID = in.CategoryID
	}
	if in.Tags != nil {
		p.Tags = in.Tags.Normalize()
	}
	if in.IsFeatured != nil {
		p.IsFeatured = *in.IsFeatured
	}
	if in.AllowComments != nil {
		p.AllowComments = *in.AllowComments
	}
	if in.SEOTitle != nil {
		p.SEOTitle = strings.TrimSpace(*in.SEOTitle)
	}
	if in.SEODescription != nil {
		p.SEODescription = strings.TrimSpace(*in.SEODescription)
	}
	if in.SEOKeywords != nil {
		p.SEOKeywords = in.SEOKeywords.Normalize()
	}
}

func (s *Service) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	c, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.Invalid("category", "invalid category")
	}
	return nil
}

func (s *Service) explicitSlug(ctx context.Context, raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if !slug.Valid(candidate) {
		return "", apperr.Invalid("slug", "slug can only contain lowercase letters, numbers, and hyphens")
	}
	taken, err := s.repo.SlugTaken(ctx, candidate)
	if err != nil {
		return "", err
	}
	if taken {
		return "", apperr.Invalid("slug", "slug already exists")
	}
	return candidate, nil
}

func (s *Service) derivedSlug(ctx context.Context, title string) (string, error) {
	base := slug.Generate(title)
	if base == "" {
		return "", apperr.Invalid("title", "title must contain at least one letter or digit")
	}
	return slug.Unique(ctx, base, s.repo.SlugTaken)
}

func validate(p *models.Post) error {
	fields := map[string]string{}
	switch n := utf8.RuneCountInString(p.Title); {
	case n == 0:
		fields["title"] = "title is required"
	case n > maxTitleLen:
		fields["title"] = fmt.Sprintf("title cannot exceed %d characters", maxTitleLen)
	}
	if strings.TrimSpace(p.Content) == "" {
		fields["content"] = "content is required"
	}
	if utf8.RuneCountInString(p.Excerpt) > maxExcerptLen {
		fields["excerpt"] = fmt.Sprintf("excerpt cannot exceed %d characters", maxExcerptLen)
	}
	if !p.Status.Valid() {
		fields["status"] = "status must be one of draft, published, archived"
	}
	for _, tag := range p.Tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			fields["tags"] = fmt.Sprintf("each tag cannot exceed %d characters", maxTagLen)
			break
		}
	}
	if utf8.RuneCountInString(p.SEOTitle) > maxSEOTitleLen {
		fields["seo_title"] = fmt.Sprintf("SEO title cannot exceed %d characters", maxSEOTitleLen)
	}
	if utf8.RuneCountInString(p.SEODescription) > maxSEODescriptionLen {
		fields["seo_description"] = fmt.Sprintf("SEO description cannot exceed %d characters", maxSEODescriptionLen)
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
