package sessionstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewValkeyStoreKeepsSessionsWithoutTTL(t *testing.T) {
	store := NewValkeyStore(nil, "", 0)
	require.Zero(t, store.ttl)
	require.Equal(t, "session:abc", store.key("abc"))

	require.Zero(t, NewValkeyStore(nil, "s", -time.Minute).ttl)
	require.Equal(t, time.Hour, NewValkeyStore(nil, "s", time.Hour).ttl)
}
