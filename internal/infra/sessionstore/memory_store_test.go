package sessionstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agentic-commerce/internal/domain/session"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	ranked := shopping.NewRankedSet()
	ranked.Set(shopping.CategoryJacket, []shopping.ScoredProduct{{Product: shopping.Product{ID: "j1"}, Rank: 1}})
	require.NoError(t, store.Put(ctx, session.Session{ID: "a", Ranked: ranked}))

	ranked.ByCategory[shopping.CategoryJacket][0].Product.ID = "mutated"

	got, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "j1", got.Ranked.ByCategory[shopping.CategoryJacket][0].Product.ID)

	got.Ranked.ByCategory[shopping.CategoryJacket][0].Product.ID = "mutated-again"
	again, _, _ := store.Get(ctx, "a")
	require.Equal(t, "j1", again.Ranked.ByCategory[shopping.CategoryJacket][0].Product.ID)

	_, ok, err = store.Get(ctx, "b")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStoreNilRanking(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), session.Session{ID: "x"}))
	got, ok, _ := store.Get(context.Background(), "x")
	require.True(t, ok)
	require.NotNil(t, got.Ranked.ByCategory)
}
