// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package category manages the category tree: parent validation, slug
// derivation, cascading deletes and on-demand hierarchy materialization
// over the flat adjacency list kept by the store.
package category

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pressroom/internal/apperr"
	"pressroom/internal/models"
	"pressroom/internal/query"
	"pressroom/internal/slug"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
)

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Repository is the persistence the manager needs. Find methods return
// (nil, nil) when the category does not exist.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) (*models.Category, error)
	CountPosts(ctx context.Context, id uuid.UUID) (int, error)
	Children(ctx context.Context, id uuid.UUID) ([]models.CategoryRef, error)
	// DeleteCascade locks the category, passes its post count to check,
	// then clears post references and child parents and removes the
	// category, as one atomic unit. An error from check aborts the delete
	// and is returned unchanged. A missing category is NotFound.
	DeleteCascade(ctx context.Context, id uuid.UUID, check func(posts int) error) (DeleteResult, error)
	// ListActive returns every active category with its post count,
	// ordered by (sort_order, name).
	ListActive(ctx context.Context) ([]models.CategoryCount, error)
	List(ctx context.Context, f query.CategoryFilter, s query.Sort, p query.Page) (query.Result[models.CategoryCount], error)
}

// DeleteResult reports what a cascade delete touched.
type DeleteResult struct {
	PostsCleared     int `json:"posts_cleared"`
	ChildrenOrphaned int `json:"children_orphaned"`
}

// CreateInput holds the fields for a new category. An empty Slug is
// derived from Name.
type CreateInput struct {
	Name        string
	Slug        string
	Description string
	Color       *string
	ParentID    *uuid.UUID
	SortOrder   int
	IsActive    *bool
}

// UpdateInput holds optional changes. ParentSet distinguishes "move to
// root" (ParentSet with nil ParentID) from "leave parent alone".
type UpdateInput struct {
	Name        *string
	Slug        *string
	Description *string
	Color       *string
	ParentSet   bool
	ParentID    *uuid.UUID
	SortOrder   *int
	IsActive    *bool
}

// Manager applies the tree rules on top of a Repository.
type Manager struct {
	repo     Repository
	onChange func(ctx context.Context)
}

// Option configures a Manager.
type Option func(*Manager)

// WithOnChange registers a callback run after every successful mutation,
// e.g. to drop cached hierarchies.
func WithOnChange(fn func(ctx context.Context)) Option {
	return func(m *Manager) { m.onChange = fn }
}

// NewManager returns a Manager backed by repo.
func NewManager(repo Repository, opts ...Option) *Manager {
	m := &Manager{repo: repo}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) changed(ctx context.Context) {
	if m.onChange != nil {
		m.onChange(ctx)
	}
}

// Create validates the parent and persists a new category owned by actor.
func (m *Manager) Create(ctx context.Context, actor uuid.UUID, in CreateInput) (*models.Category, error) {
	c := &models.Category{
		Name:        strings.TrimSpace(in.Name),
		Slug:        strings.TrimSpace(in.Slug),
		Description: strings.TrimSpace(in.Description),
		Color:       in.Color,
		ParentID:    in.ParentID,
		SortOrder:   in.SortOrder,
		IsActive:    true,
		CreatedBy:   &actor,
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if c.Slug == "" {
		c.Slug = slug.Generate(c.Name)
	}
	if err := validate(c); err != nil {
		return nil, err
	}
	if c.ParentID != nil {
		if err := m.requireParent(ctx, *c.ParentID); err != nil {
			return nil, err
		}
	}

	created, err := m.repo.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	zap.L().Info("category created", zap.String("id", created.ID.String()), zap.String("slug", created.Slug))
	m.changed(ctx)
	return created, nil
}

// Update applies in to category id. A new parent is checked for existence,
// self-reference and cycles before anything is written.
func (m *Manager) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Category, error) {
	c, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("category")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name != c.Name && in.Slug == nil {
			c.Slug = slug.Generate(name)
		}
		c.Name = name
	}
	if in.Slug != nil {
		c.Slug = strings.TrimSpace(*in.Slug)
		if c.Slug == "" {
			c.Slug = slug.Generate(c.Name)
		}
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.Color != nil {
		if *in.Color == "" {
			c.Color = nil
		} else {
			c.Color = in.Color
		}
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := validate(c); err != nil {
		return nil, err
	}

	if in.ParentSet {
		if in.ParentID != nil {
			if *in.ParentID == id {
				return nil, apperr.SelfParent()
			}
			if err := m.requireParent(ctx, *in.ParentID); err != nil {
				return nil, err
			}
			if err := m.checkCycle(ctx, id, *in.ParentID); err != nil {
				return nil, err
			}
		}
		c.ParentID = in.ParentID
	}

	updated, err := m.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperr.NotFound("category")
	}
	m.changed(ctx)
	return updated, nil
}

// Delete removes a category. Without force it refuses while posts still
// reference it. Referencing posts lose their category and children move
// to the root; nothing else is deleted.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID, force bool) (DeleteResult, error) {
	res, err := m.repo.DeleteCascade(ctx, id, func(posts int) error {
		if posts > 0 && !force {
			return apperr.HasPosts(posts)
		}
		return nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	zap.L().Info("category deleted",
		zap.String("id", id.String()),
		zap.Bool("force", force),
		zap.Int("posts_cleared", res.PostsCleared),
		zap.Int("children_orphaned", res.ChildrenOrphaned),
	)
	m.changed(ctx)
	return res, nil
}

// Get returns a category with its parent, children and post count.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.CategoryDetail, error) {
	c, err := m.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.detail(ctx, c)
}

// GetBySlug is Get keyed by slug.
func (m *Manager) GetBySlug(ctx context.Context, s string) (*models.CategoryDetail, error) {
	c, err := m.repo.FindBySlug(ctx, s)
	if err != nil {
		return nil, err
	}
	return m.detail(ctx, c)
}

func (m *Manager) detail(ctx context.Context, c *models.Category) (*models.CategoryDetail, error) {
	if c == nil {
		return nil, apperr.NotFound("category")
	}
	d := &models.CategoryDetail{Category: *c}

	if c.ParentID != nil {
		parent, err := m.repo.FindByID(ctx, *c.ParentID)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			ref := parent.Ref()
			d.Parent = &ref
		}
	}

	children, err := m.repo.Children(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	d.Children = children
	if d.Children == nil {
		d.Children = []models.CategoryRef{}
	}

	if d.PostCount, err = m.repo.CountPosts(ctx, c.ID); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns a flat page of categories. When includeEmpty is false,
// categories without posts are filtered out by the query itself so the
// total and the pages agree.
func (m *Manager) List(ctx context.Context, f query.CategoryFilter, s query.Sort, p query.Page, includeEmpty bool) (query.Result[models.CategoryCount], error) {
	f.NonEmpty = f.NonEmpty || !includeEmpty
	return m.repo.List(ctx, f, s, p)
}

// Hierarchy materializes the active categories as a tree rooted at the
// categories without a parent. Siblings are ordered by (sort_order, name).
// With includeEmpty false, a category without posts is left out but its
// children are still visited and take its place under its parent.
func (m *Manager) Hierarchy(ctx context.Context, includeEmpty bool) ([]models.CategoryNode, error) {
	flat, err := m.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat, includeEmpty), nil
}

// BuildTree groups flat by parent and builds the nested tree. Categories
// whose parent is not in flat are unreachable and omitted. flat must already
// be in display order; siblings keep that order, including categories
// lifted out of a pruned parent.
func BuildTree(flat []models.CategoryCount, includeEmpty bool) []models.CategoryNode {
	t := tree{
		byParent: make(map[uuid.UUID][]models.CategoryCount),
		position: make(map[uuid.UUID]int, len(flat)),
		visited:  make(map[uuid.UUID]bool, len(flat)),
		pruning:  !includeEmpty,
	}
	for i, c := range flat {
		key := uuid.Nil
		if c.ParentID != nil {
			key = *c.ParentID
		}
		t.byParent[key] = append(t.byParent[key], c)
		t.position[c.ID] = i
	}
	return t.level(uuid.Nil)
}

type tree struct {
	byParent map[uuid.UUID][]models.CategoryCount
	position map[uuid.UUID]int
	visited  map[uuid.UUID]bool
	pruning  bool
}

func (t *tree) level(parent uuid.UUID) []models.CategoryNode {
	result := []models.CategoryNode{}
	hoisted := false
	for _, c := range t.byParent[parent] {
		if t.visited[c.ID] {
			continue
		}
		t.visited[c.ID] = true

		children := t.level(c.ID)
		if t.pruning && c.PostCount == 0 {
			result = append(result, children...)
			hoisted = hoisted || len(children) > 0
			continue
		}
		result = append(result, models.CategoryNode{
			Category:  c.Category,
			PostCount: c.PostCount,
			Children:  children,
		})
	}
	if hoisted {
		sort.SliceStable(result, func(i, j int) bool {
			return t.position[result[i].ID] < t.position[result[j].ID]
		})
	}
	return result
}

func (m *Manager) requireParent(ctx context.Context, parentID uuid.UUID) error {
	parent, err := m.repo.FindByID(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperr.InvalidParent("parent category does not exist")
	}
	return nil
}

// checkCycle walks from the proposed parent up to the root and rejects the
// assignment if it passes through id.
func (m *Manager) checkCycle(ctx context.Context, id, parentID uuid.UUID) error {
	seen := map[uuid.UUID]bool{}
	cur := &parentID
	for cur != nil {
		if *cur == id {
			return apperr.InvalidParent("parent assignment would create a cycle")
		}
		if seen[*cur] {
			// Pre-existing loop that does not include id.
			return nil
		}
		seen[*cur] = true

		c, err := m.repo.FindByID(ctx, *cur)
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		cur = c.ParentID
	}
	return nil
}

func validate(c *models.Category) error {
	fields := map[string]string{}
	switch n := utf8.RuneCountInString(c.Name); {
	case n == 0:
		fields["name"] = "name is required"
	case n > maxNameLen:
		fields["name"] = fmt.Sprintf("name cannot exceed %d characters", maxNameLen)
	}
	if !slug.Valid(c.Slug) {
		fields["slug"] = "slug can only contain lowercase letters, numbers, and hyphens"
	}
	if utf8.RuneCountInString(c.Description) > maxDescriptionLen {
		fields["description"] = fmt.Sprintf("description cannot exceed %d characters", maxDescriptionLen)
	}
	if c.Color != nil && !hexColor.MatchString(*c.Color) {
		fields["color"] = "color must be a valid hex color"
	}
	if c.SortOrder < 0 {
		fields["sort_order"] = "order must be a non-negative integer"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
