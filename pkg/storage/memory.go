package storage

import "sync"

// MemoryStorage is an in-memory Settings implementation.
// Useful for testing and development. Data is lost when the process exits.
//
// All methods are safe for concurrent use.
type MemoryStorage struct {
	mu sync.RWMutex

	secretKey []byte
	saves     int
}

// NewMemoryStorage creates a new in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// LoadSLAACSecretKey returns a copy of the stored secret key.
func (m *MemoryStorage) LoadSLAACSecretKey() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.secretKey == nil {
		return nil, ErrNotFound
	}
	return clone(m.secretKey), nil
}

// SaveSLAACSecretKey stores a copy of the secret key.
func (m *MemoryStorage) SaveSLAACSecretKey(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.secretKey = clone(key)
	m.saves++
	return nil
}

// Saves returns how many times SaveSLAACSecretKey has been called.
func (m *MemoryStorage) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// Clear removes all stored data.
func (m *MemoryStorage) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.secretKey = nil
	m.saves = 0
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Verify MemoryStorage implements Settings.
var _ Settings = (*MemoryStorage)(nil)
