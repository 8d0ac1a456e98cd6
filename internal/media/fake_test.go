package media

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressroom/internal/models"
	"pressroom/internal/query"
)

type memRepo struct {
	mu        sync.Mutex
	items     map[uuid.UUID]*models.Media
	failNames map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[uuid.UUID]*models.Media{}, failNames: map[string]bool{}}
}

func (r *memRepo) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNames[m.OriginalName] {
		return nil, errors.New("insert failed")
	}
	cp := *m
	cp.ID = uuid.New()
	cp.IsActive = true
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	r.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memRepo) View(ctx context.Context, id uuid.UUID) (*models.MediaView, error) {
	m, _ := r.FindByID(ctx, id)
	if m == nil {
		return nil, nil
	}
	return &models.MediaView{Media: *m, Kind: m.Kind(), HumanSize: m.HumanSize()}, nil
}

func (r *memRepo) List(_ context.Context, f query.MediaFilter, _ query.Sort, _ query.Page) (query.Result[models.MediaView], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res query.Result[models.MediaView]
	for _, m := range r.items {
		if !f.IncludeInactive && !m.IsActive {
			continue
		}
		res.Items = append(res.Items, models.MediaView{Media: *m})
	}
	res.Total = len(res.Items)
	return res, nil
}

func (r *memRepo) UpdateMeta(_ context.Context, id uuid.UUID, alt, caption string) (*models.Media, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || !m.IsActive {
		return nil, nil
	}
	m.Alt, m.Caption = alt, caption
	cp := *m
	return &cp, nil
}

func (r *memRepo) SoftDelete(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || !m.IsActive {
		return false, nil
	}
	m.IsActive = false
	return true, nil
}

func (r *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memRepo) Stats(_ context.Context) (models.MediaStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var st models.MediaStats
	for _, m := range r.items {
		if !m.IsActive {
			continue
		}
		st.TotalFiles++
		st.TotalSize += m.Size
	}
	return st, nil
}

// memBackend records stored objects in memory.
type memBackend struct {
	mu          sync.Mutex
	objects     map[string][]byte
	failPut     bool
	failRemove  bool
	removeCalls int
}

func newMemBackend() *memBackend {
	return &memBackend{objects: map[string][]byte{}}
}

func (b *memBackend) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failPut {
		return "", errors.New("disk full")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	b.objects[key] = data
	return "http://files.test/" + key, nil
}

func (b *memBackend) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeCalls++
	if b.failRemove {
		return errors.New("permission denied")
	}
	delete(b.objects, key)
	return nil
}

func (b *memBackend) has(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[key]
	return ok
}

func (b *memBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}
