package cart

import (
	"context"
	"sync"
)

// Store holds cart contents per browser session: a product-id → quantity
// mapping with no server-side meaning beyond the session lifetime.
type Store interface {
	Get(ctx context.Context, sessionID string) (map[string]int, error)
	Save(ctx context.Context, sessionID string, items map[string]int) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]map[string]int)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make(map[string]int, len(m.carts[sessionID]))
	for k, v := range m.carts[sessionID] {
		items[k] = v
	}
	return items, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, items map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]int, len(items))
	for k, v := range items {
		copied[k] = v
	}
	m.carts[sessionID] = copied
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
