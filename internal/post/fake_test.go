package post

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/apperr"
	"pressroom/internal/models"
	"pressroom/internal/query"
)

type memRepo struct {
	mu    sync.Mutex
	posts map[uuid.UUID]*models.Post
	users map[uuid.UUID]*models.User
}

func newMemRepo() *memRepo {
	return &memRepo{posts: map[uuid.UUID]*models.Post{}, users: map[uuid.UUID]*models.User{}}
}

func (r *memRepo) get(id uuid.UUID) *models.Post {
	p, ok := r.posts[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id), nil
}

func (r *memRepo) FindBySlug(_ context.Context, slug string) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.posts {
		if p.Slug == slug {
			return r.get(id), nil
		}
	}
	return nil, nil
}

func (r *memRepo) view(p *models.Post) *models.PostView {
	v := &models.PostView{Post: *p, ReadingTime: p.ReadingTime()}
	if u, ok := r.users[p.AuthorID]; ok {
		s := u.Summary()
		v.Author = &s
	}
	return v
}

func (r *memRepo) View(_ context.Context, id uuid.UUID) (*models.PostView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.get(id)
	if p == nil {
		return nil, nil
	}
	return r.view(p), nil
}

func (r *memRepo) SlugTaken(_ context.Context, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.posts {
		if other.Slug == p.Slug {
			return nil, apperr.Invalid("slug", "slug already exists")
		}
	}
	cp := *p
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.posts[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.posts[p.ID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Slug = cur.Slug
	cp.AuthorID = cur.AuthorID
	cp.Views = cur.Views
	cp.Likes = cur.Likes
	cp.UpdatedAt = time.Now()
	r.posts[p.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return false, nil
	}
	delete(r.posts, id)
	return true, nil
}

func (r *memRepo) IncrementViews(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return 0, apperr.NotFound("post")
	}
	p.Views++
	return p.Views, nil
}

func (r *memRepo) IncrementLikes(_ context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return 0, apperr.NotFound("post")
	}
	p.Likes++
	return p.Likes, nil
}

func (r *memRepo) List(_ context.Context, f query.PostFilter, _ *query.Sort, page query.Page) (query.Result[models.PostView], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.PostView
	for _, p := range r.posts {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		if f.AuthorID != nil && p.AuthorID != *f.AuthorID {
			continue
		}
		all = append(all, *r.view(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	start := min(page.Offset(), len(all))
	end := min(start+page.Limit(), len(all))
	return query.Result[models.PostView]{Items: all[start:end], Total: len(all)}, nil
}

type memCategories map[uuid.UUID]*models.Category

func (c memCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	return c[id], nil
}

type failingRenderer struct{}

func (failingRenderer) Render(string) (string, error) {
	return "", fmt.Errorf("renderer exploded")
}
