package linkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
)

// ValkeyStore shares liveness results between instances. Keys expire natively.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	now    func() time.Time
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "linkcheck"
	}
	return &ValkeyStore{client: client, prefix: prefix, now: time.Now}
}

func (s *ValkeyStore) Entry(ctx context.Context, url string) (linkcheck.Entry, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.entryKey(url)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return linkcheck.Entry{}, false, nil
		}
		return linkcheck.Entry{}, false, err
	}
	var entry linkcheck.Entry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		return linkcheck.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *ValkeyStore) PutEntry(ctx context.Context, url string, entry linkcheck.Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.setString(ctx, s.entryKey(url), string(payload), entry.ExpiresAt.Sub(s.now()))
}

func (s *ValkeyStore) BackoffUntil(ctx context.Context, domain string) (time.Time, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.backoffKey(domain)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	until, err := time.Parse(time.RFC3339Nano, payload)
	if err != nil {
		return time.Time{}, false, err
	}
	return until, true, nil
}

func (s *ValkeyStore) SetBackoff(ctx context.Context, domain string, until time.Time) error {
	return s.setString(ctx, s.backoffKey(domain), until.UTC().Format(time.RFC3339Nano), until.Sub(s.now()))
}

// PurgeExpired is a no-op: Valkey evicts keys when their TTL ends.
func (s *ValkeyStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *ValkeyStore) setString(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	return s.client.Do(ctx, s.client.B().Set().Key(key).Value(value).Ex(ttl).Build()).Error()
}

func (s *ValkeyStore) entryKey(url string) string {
	return fmt.Sprintf("%s:url:%s", s.prefix, url)
}

func (s *ValkeyStore) backoffKey(domain string) string {
	return fmt.Sprintf("%s:backoff:%s", s.prefix, domain)
}

var _ linkcheck.Store = (*ValkeyStore)(nil)
