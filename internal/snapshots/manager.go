package snapshots

import (
	"sync"

	"codeberg.org/tubetrack/server/internal/kvstore"
)

// Manager hands out one Store per account so that the scheduler and the
// API share a single mutex per key.
type Manager struct {
	kv kvstore.Store

	mu     sync.Mutex
	stores map[string]*Store
}

// creates a new store manager over kv
func NewManager(kv kvstore.Store) *Manager {
	return &Manager{
		kv:     kv,
		stores: make(map[string]*Store),
	}
}

// returns the snapshot store of an account
func (m *Manager) For(accountID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[accountID]; ok {
		return store
	}

	store := NewStore(m.kv, KeyFor(accountID))
	m.stores[accountID] = store

	return store
}
