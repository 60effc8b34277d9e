package sessionstore

import (
	"context"
	"sync"

	"github.com/yanqian/agentic-commerce/internal/domain/session"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

// MemoryStore keeps sessions in process memory. Different ids never contend
// beyond the map lock.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]session.Session)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (session.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.Session{}, false, nil
	}
	sess.Ranked = sess.Ranked.Clone()
	return sess, true, nil
}

func (s *MemoryStore) Put(_ context.Context, sess session.Session) error {
	sess.Ranked = cloneOrEmpty(sess.Ranked)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func cloneOrEmpty(r shopping.RankedSet) shopping.RankedSet {
	if r.ByCategory == nil {
		return shopping.NewRankedSet()
	}
	return r.Clone()
}

var _ session.Store = (*MemoryStore)(nil)
