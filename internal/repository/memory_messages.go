package repository

import (
	"context"
	"sync"

	"lucosms-backend/internal/model"
)

type MemoryMessageRepository struct {
	mu     sync.RWMutex
	nextID int64
	logs   []model.MessageLog
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{nextID: 1}
}

func (r *MemoryMessageRepository) LogMessage(_ context.Context, log *model.MessageLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log.ID = r.nextID
	r.nextID++

	entry := *log
	entry.Recipients = append([]string(nil), log.Recipients...)
	r.logs = append(r.logs, entry)
	return nil
}

// ListMessages returns the newest entries first.
func (r *MemoryMessageRepository) ListMessages(_ context.Context, limit int) ([]model.MessageLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.MessageLog, 0, len(r.logs))
	for i := len(r.logs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, r.logs[i])
	}
	return out, nil
}
