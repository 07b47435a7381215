package message

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   []Message
}

// NewMemoryRepository builds an in-memory message store for tests and local runs.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Insert(_ context.Context, msg Message) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	r.byID = append(r.byID, msg)
	return msg, nil
}

func (r *memoryRepository) ListByHandle(_ context.Context, handle string) ([]Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Message
	for i := len(r.byID) - 1; i >= 0; i-- {
		if r.byID[i].Handle == handle {
			out = append(out, r.byID[i])
		}
	}
	return out, nil
}
