package cache

import (
	"context"
	"sync"
	"time"

	"github.com/civicwire/statehouse-news/internal/domain"
)

type memoryEntry struct {
	resp      *domain.NewsResponse
	expiresAt time.Time
}

// Memory is a process-local TTL cache. Expired entries are evicted lazily the
// first time they are read past their deadline; there is no sweeper.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory builds an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Get returns the cached response if present and unexpired. Reading an
// expired entry deletes it.
func (m *Memory) Get(_ context.Context, key string) (*domain.NewsResponse, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.resp, true, nil
}

// Set stores the response under key for ttl (DefaultTTL when non-positive).
func (m *Memory) Set(_ context.Context, key string, resp *domain.NewsResponse, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{resp: resp, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes a single entry.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Clear removes all entries unconditionally.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory backend.
func (m *Memory) Close() error { return nil }

// Len reports the number of stored entries, including not-yet-evicted expired
// ones.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
