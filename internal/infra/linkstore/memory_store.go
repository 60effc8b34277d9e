package linkstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
)

// MemoryStore keeps liveness results in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]linkcheck.Entry
	backoff map[string]time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]linkcheck.Entry),
		backoff: make(map[string]time.Time),
	}
}

// Entry implements linkcheck.Store. Freshness is judged by the caller.
func (s *MemoryStore) Entry(_ context.Context, url string) (linkcheck.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[url]
	return entry, ok, nil
}

func (s *MemoryStore) PutEntry(_ context.Context, url string, entry linkcheck.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[url] = entry
	return nil
}

func (s *MemoryStore) BackoffUntil(_ context.Context, domain string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	until, ok := s.backoff[domain]
	return until, ok, nil
}

func (s *MemoryStore) SetBackoff(_ context.Context, domain string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backoff[domain] = until
	return nil
}

// PurgeExpired drops entries and backoffs that ended at or before now.
func (s *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for url, entry := range s.entries {
		if !entry.ExpiresAt.After(now) {
			delete(s.entries, url)
			removed++
		}
	}
	for domain, until := range s.backoff {
		if !until.After(now) {
			delete(s.backoff, domain)
			removed++
		}
	}
	return removed, nil
}

var _ linkcheck.Store = (*MemoryStore)(nil)
