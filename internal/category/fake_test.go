package category

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/apperr"
	"pressroom/internal/models"
	"pressroom/internal/query"
)

// memRepo is an in-memory Repository. posts maps post id to category id.
type memRepo struct {
	mu         sync.Mutex
	categories map[uuid.UUID]*models.Category
	posts      map[uuid.UUID]*uuid.UUID
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[uuid.UUID]*models.Category{},
		posts:      map[uuid.UUID]*uuid.UUID{},
	}
}

func (r *memRepo) addPost(categoryID uuid.UUID) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	cat := categoryID
	r.posts[id] = &cat
	return id
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *memRepo) FindBySlug(_ context.Context, s string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.Slug == s {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepo) uniqueViolation(c *models.Category) error {
	for _, other := range r.categories {
		if other.ID == c.ID {
			continue
		}
		if other.Name == c.Name {
			return apperr.Invalid("name", "category name already exists")
		}
		if other.Slug == c.Slug {
			return apperr.Invalid("slug", "slug already exists")
		}
	}
	return nil
}

func (r *memRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.uniqueViolation(c); err != nil {
		return nil, err
	}
	cp := *c
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.categories[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) Update(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.ID]; !ok {
		return nil, nil
	}
	if err := r.uniqueViolation(c); err != nil {
		return nil, err
	}
	cp := *c
	cp.UpdatedAt = time.Now()
	r.categories[c.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) CountPosts(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(id), nil
}

func (r *memRepo) countLocked(id uuid.UUID) int {
	n := 0
	for _, cat := range r.posts {
		if cat != nil && *cat == id {
			n++
		}
	}
	return n
}

func (r *memRepo) Children(_ context.Context, id uuid.UUID) ([]models.CategoryRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CategoryRef
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			out = append(out, c.Ref())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memRepo) DeleteCascade(_ context.Context, id uuid.UUID, check func(posts int) error) (DeleteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res DeleteResult
	if _, ok := r.categories[id]; !ok {
		return res, apperr.NotFound("category")
	}
	if err := check(r.countLocked(id)); err != nil {
		return res, err
	}
	for pid, cat := range r.posts {
		if cat != nil && *cat == id {
			r.posts[pid] = nil
			res.PostsCleared++
		}
	}
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			c.ParentID = nil
			res.ChildrenOrphaned++
		}
	}
	delete(r.categories, id)
	return res, nil
}

func (r *memRepo) sorted(filter func(*models.Category) bool) []models.CategoryCount {
	var out []models.CategoryCount
	for _, c := range r.categories {
		if filter(c) {
			out = append(out, models.CategoryCount{Category: *c, PostCount: r.countLocked(c.ID)})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func (r *memRepo) ListActive(_ context.Context) ([]models.CategoryCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sorted(func(c *models.Category) bool { return c.IsActive }), nil
}

func (r *memRepo) List(_ context.Context, f query.CategoryFilter, _ query.Sort, p query.Page) (query.Result[models.CategoryCount], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(c *models.Category) bool {
		if f.RootOnly && c.ParentID != nil {
			return false
		}
		if f.ParentID != nil && (c.ParentID == nil || *c.ParentID != *f.ParentID) {
			return false
		}
		if f.IsActive != nil && c.IsActive != *f.IsActive {
			return false
		}
		if f.NonEmpty && r.countLocked(c.ID) == 0 {
			return false
		}
		return true
	})
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit()
	if end > len(all) {
		end = len(all)
	}
	return query.Result[models.CategoryCount]{Items: all[start:end], Total: len(all)}, nil
}
