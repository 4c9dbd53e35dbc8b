package repository

import (
	"context"
	"sort"
	"sync"

	"lucosms-backend/internal/model"
)

type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	nextID    int64
	templates map[int64]model.Template
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{nextID: 1, templates: make(map[int64]model.Template)}
}

func (r *MemoryTemplateRepository) CreateTemplate(_ context.Context, t *model.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	r.templates[t.ID] = *t
	return nil
}

func (r *MemoryTemplateRepository) GetTemplate(_ context.Context, id int64) (*model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// ListTemplates orders by name, then id.
func (r *MemoryTemplateRepository) ListTemplates(_ context.Context) ([]model.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryTemplateRepository) UpdateTemplate(_ context.Context, t *model.Template) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.templates[t.ID]
	if !ok {
		return false, nil
	}
	t.CreatedAt = old.CreatedAt
	r.templates[t.ID] = *t
	return true, nil
}

func (r *MemoryTemplateRepository) DeleteTemplate(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.templates[id]; !ok {
		return false, nil
	}
	delete(r.templates, id)
	return true, nil
}
