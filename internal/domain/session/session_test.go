package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

type storeStub struct {
	getFn func(ctx context.Context, id string) (Session, bool, error)
}

func (s storeStub) Get(ctx context.Context, id string) (Session, bool, error) {
	return s.getFn(ctx, id)
}
func (s storeStub) Put(context.Context, Session) error { return nil }

func TestNormalizeID(t *testing.T) {
	require.Equal(t, DefaultID, NormalizeID("  "))
	require.Equal(t, "abc", NormalizeID(" abc "))
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	var asked string
	missing := storeStub{getFn: func(_ context.Context, id string) (Session, bool, error) {
		asked = id
		return Session{}, false, nil
	}}
	s, err := Load(ctx, missing, "")
	require.NoError(t, err)
	require.Equal(t, DefaultID, asked)
	require.Equal(t, DefaultID, s.ID)
	require.NotNil(t, s.Ranked.ByCategory)
	require.Equal(t, 400.0, s.Budget(400))

	spec := &shopping.ShoppingSpec{Constraints: shopping.Constraints{Budget: shopping.Budget{Total: 750}}}
	found := storeStub{getFn: func(context.Context, string) (Session, bool, error) {
		return Session{Spec: spec}, true, nil
	}}
	s, err = Load(ctx, found, "u1")
	require.NoError(t, err)
	require.Equal(t, "u1", s.ID)
	require.Equal(t, 750.0, s.Budget(400))

	failing := storeStub{getFn: func(context.Context, string) (Session, bool, error) {
		return Session{}, false, errors.New("valkey down")
	}}
	_, err = Load(ctx, failing, "u1")
	require.Error(t, err)
}
