package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/agentic-commerce/internal/domain/session"
)

// ValkeyStore keeps sessions in Valkey so several instances can serve one shopper.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkeyStore constructs a new store backed by Valkey. A non-positive ttl
// keeps sessions until they are overwritten.
func NewValkeyStore(client valkey.Client, prefix string, ttl time.Duration) *ValkeyStore {
	if prefix == "" {
		prefix = "session"
	}
	if ttl < 0 {
		ttl = 0
	}
	return &ValkeyStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *ValkeyStore) Get(ctx context.Context, id string) (session.Session, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.key(id)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return session.Session{}, false, nil
		}
		return session.Session{}, false, err
	}
	var sess session.Session
	if err := json.Unmarshal([]byte(payload), &sess); err != nil {
		return session.Session{}, false, fmt.Errorf("decode session %s: %w", id, err)
	}
	return sess, true, nil
}

func (s *ValkeyStore) Put(ctx context.Context, sess session.Session) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	set := s.client.B().Set().Key(s.key(sess.ID)).Value(string(payload))
	if s.ttl > 0 {
		return s.client.Do(ctx, set.Ex(s.ttl).Build()).Error()
	}
	return s.client.Do(ctx, set.Build()).Error()
}

func (s *ValkeyStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

var _ session.Store = (*ValkeyStore)(nil)
