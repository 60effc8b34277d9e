package session

import (
	"context"
	"strings"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

// DefaultID is used when a request does not name a session.
const DefaultID = "default"

// Session keeps the latest spec and ranking a shopper is working with.
// Concurrent writers to one session id are last-writer-wins.
type Session struct {
	ID        string                 `json:"id"`
	Spec      *shopping.ShoppingSpec `json:"spec,omitempty"`
	Ranked    shopping.RankedSet     `json:"ranked"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// Store persists sessions by id.
type Store interface {
	Get(ctx context.Context, id string) (Session, bool, error)
	Put(ctx context.Context, s Session) error
}

// NormalizeID trims id and falls back to DefaultID.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultID
	}
	return id
}

// Load returns the stored session or a fresh empty one.
func Load(ctx context.Context, store Store, id string) (Session, error) {
	id = NormalizeID(id)
	s, ok, err := store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{ID: id, Ranked: shopping.NewRankedSet()}, nil
	}
	if s.Ranked.ByCategory == nil {
		s.Ranked = shopping.NewRankedSet()
	}
	s.ID = id
	return s, nil
}

// Budget returns the spec's total budget, or fallback when no spec is stored.
func (s Session) Budget(fallback float64) float64 {
	if s.Spec == nil {
		return fallback
	}
	return s.Spec.Constraints.Budget.Total
}
