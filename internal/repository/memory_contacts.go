package repository

import (
	"context"
	"sync"

	"lucosms-backend/internal/model"
)

// MemoryContactRepository keeps contacts for the life of the process when no
// database is configured.
type MemoryContactRepository struct {
	mu  sync.RWMutex
	set *model.ContactSet
}

func NewMemoryContactRepository(contacts ...model.Contact) *MemoryContactRepository {
	return &MemoryContactRepository{set: model.NewContactSet(contacts...)}
}

func (r *MemoryContactRepository) ListContacts(_ context.Context) ([]model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.set.Contacts(), nil
}

func (r *MemoryContactRepository) AddContact(_ context.Context, c model.Contact) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.Add(c), nil
}

func (r *MemoryContactRepository) MergeContacts(ctx context.Context, contacts []model.Contact) ([]model.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.Merge(contacts), nil
}

func (r *MemoryContactRepository) DeleteContact(_ context.Context, phoneNumber string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set.Remove(phoneNumber), nil
}
