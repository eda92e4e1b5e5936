package song

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a thread-safe store used when a database is not configured.
// FailInsert lets tests reject inserts.
type MemoryStore struct {
	FailInsert func(s *Song) error

	mu    sync.RWMutex
	songs []Song // newest first
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{songs: make([]Song, 0)}
}

// Insert prepends a copy of s.
func (m *MemoryStore) Insert(_ context.Context, s *Song) (*Song, error) {
	if m.FailInsert != nil {
		if err := m.FailInsert(s); err != nil {
			return nil, err
		}
	}

	out := *s
	out.ID = uuid.NewString()
	out.CreatedAt = time.Now().UTC()

	m.mu.Lock()
	m.songs = append([]Song{out}, m.songs...)
	m.mu.Unlock()

	return &out, nil
}

// GetByID returns a song by ID.
func (m *MemoryStore) GetByID(_ context.Context, id string) (*Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.songs {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// ListByOwner returns up to limit songs owned by ownerID.
func (m *MemoryStore) ListByOwner(_ context.Context, ownerID string, limit int) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Song{}
	for _, s := range m.songs {
		if len(out) == limit {
			break
		}
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListRecent returns up to limit songs, newest first.
func (m *MemoryStore) ListRecent(_ context.Context, limit int) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.songs)
	if limit >= 0 && limit < n {
		n = limit
	}
	out := make([]Song, n)
	copy(out, m.songs[:n])
	return out, nil
}

// FindByAttempt returns the song written by the given attempt, if any.
func (m *MemoryStore) FindByAttempt(attemptID string) (*Song, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, s := range m.songs {
		if s.AttemptID == attemptID {
			found := s
			return &found, true
		}
	}
	return nil, false
}
