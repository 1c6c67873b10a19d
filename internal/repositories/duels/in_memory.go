package duels

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Havocprime/Lowlife-New/internal/game/duel"
)

type inMemoryRepository struct {
	mu    sync.RWMutex
	duels map[string][]byte
}

// NewInMemoryRepository creates an in-memory active duel repository.
// Records are stored serialised so callers never share state with the store.
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{duels: make(map[string][]byte)}
}

func (r *inMemoryRepository) Create(ctx context.Context, key string, rec *duel.Record) error {
	data, err := encode(key, rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.duels[key]; exists {
		return fmt.Errorf("%w: %s", ErrExists, key)
	}
	r.duels[key] = data
	return nil
}

func (r *inMemoryRepository) Get(ctx context.Context, key string) (*duel.Record, error) {
	r.mu.RLock()
	data, exists := r.duels[key]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	var rec duel.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to deserialize duel %s: %w", key, err)
	}
	return &rec, nil
}

func (r *inMemoryRepository) Update(ctx context.Context, key string, rec *duel.Record) error {
	data, err := encode(key, rec)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.duels[key]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	r.duels[key] = data
	return nil
}

func (r *inMemoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.duels, key)
	return nil
}
