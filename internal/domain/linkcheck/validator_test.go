package linkcheck

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const productPage = `<html><head><title>Alpine Shell</title><script>var x = "page not found";</script></head>
<body><h1>Alpine Shell Jacket</h1><p>Price: $349.00</p><button>Add to cart</button></body></html>`

type memStore struct {
	mu      sync.Mutex
	entries map[string]Entry
	backoff map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{entries: map[string]Entry{}, backoff: map[string]time.Time{}}
}

func (s *memStore) Entry(_ context.Context, url string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[url]
	return e, ok, nil
}

func (s *memStore) PutEntry(_ context.Context, url string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[url] = entry
	return nil
}

func (s *memStore) BackoffUntil(_ context.Context, domain string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.backoff[domain]
	return t, ok, nil
}

func (s *memStore) SetBackoff(_ context.Context, domain string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backoff[domain] = until
	return nil
}

func (s *memStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries {
		if !e.ExpiresAt.After(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}

type fetcherStub struct {
	calls   atomic.Int32
	fetchFn func(ctx context.Context, url string) (Page, error)
}

func (f *fetcherStub) Fetch(ctx context.Context, url string) (Page, error) {
	f.calls.Add(1)
	return f.fetchFn(ctx, url)
}

func okPage(body string) func(context.Context, string) (Page, error) {
	return func(context.Context, string) (Page, error) {
		return Page{StatusCode: 200, Body: []byte(body)}, nil
	}
}

type textStub struct {
	classifyFn func(ctx context.Context, text string) (Verdict, error)
}

func (t textStub) ClassifyText(ctx context.Context, text string) (Verdict, error) {
	return t.classifyFn(ctx, text)
}

type visionStub struct {
	classifyFn func(ctx context.Context, png []byte) (Verdict, error)
}

func (v visionStub) ClassifyScreenshot(ctx context.Context, png []byte) (Verdict, error) {
	return v.classifyFn(ctx, png)
}

type rendererStub struct {
	screenshotFn func(ctx context.Context, url string) ([]byte, error)
}

func (r rendererStub) Screenshot(ctx context.Context, url string) ([]byte, error) {
	return r.screenshotFn(ctx, url)
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newValidator(t *testing.T, fetcher PageFetcher, caps Capabilities) (*validator, *memStore, *testClock) {
	t.Helper()
	store := newMemStore()
	clock := &testClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	v := NewService(Config{}, store, fetcher, caps, logger).(*validator)
	v.now = clock.now
	return v, store, clock
}

func TestCheckRejectsMalformedURLWithoutFetching(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: okPage(productPage)}
	v, _, _ := newValidator(t, fetcher, Capabilities{})

	for _, raw := range []string{"", "   ", "not a url", "ftp://shop.example/item", "https://"} {
		require.False(t, v.Check(context.Background(), raw), raw)
	}
	require.Zero(t, fetcher.calls.Load())
}

func TestCheckProductPageIsValidAndCached(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: okPage(productPage)}
	v, store, clock := newValidator(t, fetcher, Capabilities{})
	url := "https://shop.example/p/alpine"

	require.True(t, v.Check(context.Background(), url))
	require.True(t, v.Check(context.Background(), url))
	require.EqualValues(t, 1, fetcher.calls.Load())

	entry, ok, _ := store.Entry(context.Background(), url)
	require.True(t, ok)
	require.True(t, entry.Valid)
	require.Equal(t, clock.t.Add(6*time.Hour), entry.ExpiresAt)

	clock.advance(6*time.Hour + time.Second)
	require.True(t, v.Check(context.Background(), url))
	require.EqualValues(t, 2, fetcher.calls.Load())
}

func TestCheckNotFoundStatusSetsBackoff(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: func(context.Context, string) (Page, error) {
		return Page{StatusCode: 404, Body: []byte("gone")}, nil
	}}
	v, _, clock := newValidator(t, fetcher, Capabilities{})
	ctx := context.Background()

	require.False(t, v.Check(ctx, "https://shop.example/p/old"))
	until, ok := v.BackoffUntil(ctx, "shop.example")
	require.True(t, ok)
	require.Equal(t, clock.t.Add(time.Hour), until)

	// Same URL is served from cache, another URL on the domain is blocked by backoff.
	require.False(t, v.Check(ctx, "https://shop.example/p/old"))
	require.False(t, v.Check(ctx, "https://shop.example/p/new"))
	require.EqualValues(t, 1, fetcher.calls.Load())

	fetcher.fetchFn = okPage(productPage)
	clock.advance(time.Hour + time.Minute)
	require.True(t, v.Check(ctx, "https://shop.example/p/old"))
	require.EqualValues(t, 2, fetcher.calls.Load())
}

func TestCheckFetchErrorCountsAsFailure(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: func(context.Context, string) (Page, error) {
		return Page{}, errors.New("connection reset")
	}}
	v, store, _ := newValidator(t, fetcher, Capabilities{})

	require.False(t, v.Check(context.Background(), "https://flaky.example/item"))
	_, ok, _ := store.BackoffUntil(context.Background(), "flaky.example")
	require.True(t, ok)
}

func TestCheckCallerCancellationDoesNotPoisonCache(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: func(ctx context.Context, _ string) (Page, error) {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		return Page{StatusCode: 200, Body: []byte(productPage)}, nil
	}}
	v, store, _ := newValidator(t, fetcher, Capabilities{})
	url := "https://shop.example/p/alpine"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.True(t, v.Check(ctx, url))

	_, backoff, _ := store.BackoffUntil(context.Background(), "shop.example")
	require.False(t, backoff)
	entry, ok, _ := store.Entry(context.Background(), url)
	require.True(t, ok)
	require.True(t, entry.Valid)

	require.True(t, v.Check(context.Background(), url))
	require.True(t, v.Check(context.Background(), "https://shop.example/p/other"))
	require.EqualValues(t, 2, fetcher.calls.Load())
}

func TestCheckUnavailablePhrasing(t *testing.T) {
	body := `<html><body><h1>Oops</h1><p>Sorry, we couldn't find this page. Try searching our catalog.</p></body></html>`
	fetcher := &fetcherStub{fetchFn: okPage(body)}
	v, store, clock := newValidator(t, fetcher, Capabilities{})
	url := "https://shop.example/p/missing"

	require.False(t, v.Check(context.Background(), url))
	entry, ok, _ := store.Entry(context.Background(), url)
	require.True(t, ok)
	require.False(t, entry.Valid)
	require.Equal(t, clock.t.Add(time.Hour), entry.ExpiresAt)
	_, backoff, _ := store.BackoffUntil(context.Background(), "shop.example")
	require.False(t, backoff)
}

func TestCheckShortBodySkipsPatterns(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: okPage("<p>Out of stock</p>")}
	v, _, _ := newValidator(t, fetcher, Capabilities{})
	require.True(t, v.Check(context.Background(), "https://shop.example/p/tiny"))
}

func TestCheckVisionVerdictWins(t *testing.T) {
	renderer := rendererStub{screenshotFn: func(context.Context, string) ([]byte, error) {
		return []byte{0x89, 'P', 'N', 'G'}, nil
	}}
	caps := Capabilities{
		Renderer: renderer,
		Vision: visionStub{classifyFn: func(context.Context, []byte) (Verdict, error) {
			return VerdictUnavailable, nil
		}},
	}
	fetcher := &fetcherStub{fetchFn: okPage(productPage)}
	v, _, _ := newValidator(t, fetcher, caps)

	require.False(t, v.Check(context.Background(), "https://shop.example/p/vision"))
}

func TestCheckVisionFailureFallsThrough(t *testing.T) {
	caps := Capabilities{
		Renderer: rendererStub{screenshotFn: func(context.Context, string) ([]byte, error) {
			return nil, errors.New("browser crashed")
		}},
		Vision: visionStub{classifyFn: func(context.Context, []byte) (Verdict, error) {
			t.Fatal("vision classifier should not run without a screenshot")
			return VerdictUnknown, nil
		}},
	}
	fetcher := &fetcherStub{fetchFn: okPage(productPage)}
	v, _, _ := newValidator(t, fetcher, caps)

	require.True(t, v.Check(context.Background(), "https://shop.example/p/fallback"))
}

func TestCheckTextClassifier(t *testing.T) {
	ambiguous := "<html><body><main>" + strings.Repeat("Our winter collection celebrates the mountains. ", 80) + "</main></body></html>"

	tests := []struct {
		name    string
		verdict Verdict
		err     error
		want    bool
	}{
		{name: "unavailable", verdict: VerdictUnavailable, want: false},
		{name: "available", verdict: VerdictAvailable, want: true},
		{name: "unknown defaults to valid", verdict: VerdictUnknown, want: true},
		{name: "error defaults to valid", err: errors.New("llm down"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			caps := Capabilities{Text: textStub{classifyFn: func(_ context.Context, text string) (Verdict, error) {
				seen = text
				return tt.verdict, tt.err
			}}}
			v, _, _ := newValidator(t, &fetcherStub{fetchFn: okPage(ambiguous)}, caps)

			require.Equal(t, tt.want, v.Check(context.Background(), "https://shop.example/collections/winter"))
			require.Len(t, []rune(seen), classifierMaxText)
		})
	}
}

func TestCheckCollapsesConcurrentCallsForOneURL(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fetcherStub{fetchFn: func(context.Context, string) (Page, error) {
		<-release
		return Page{StatusCode: 200, Body: []byte(productPage)}, nil
	}}
	v, _, _ := newValidator(t, fetcher, Capabilities{})

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = v.Check(context.Background(), "https://shop.example/p/hot")
		}(i)
	}
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, ok := range results {
		require.True(t, ok)
	}
	require.LessOrEqual(t, fetcher.calls.Load(), int32(2))
}

func TestFirstValidCompared(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: func(_ context.Context, url string) (Page, error) {
		if strings.Contains(url, "dead") {
			return Page{StatusCode: 410}, nil
		}
		return Page{StatusCode: 200, Body: []byte(productPage)}, nil
	}}
	v, _, _ := newValidator(t, fetcher, Capabilities{})

	products := []shopping.ScoredProduct{
		{Product: shopping.Product{ID: "a", ProductURL: "https://one.example/a"}, Rank: 1},
		{Product: shopping.Product{ID: "b", ProductURL: "https://dead.example/b"}, Rank: 2},
		{Product: shopping.Product{ID: "c", ProductURL: ""}, Rank: 3},
		{Product: shopping.Product{ID: "d", ProductURL: "https://two.example/d"}, Rank: 4},
	}

	got, ok := v.FirstValidCompared(context.Background(), products, "a")
	require.True(t, ok)
	require.Equal(t, "d", got.Product.ID)

	_, ok = v.FirstValidCompared(context.Background(), products[:3], "a")
	require.False(t, ok)
}

func TestPurgeExpired(t *testing.T) {
	fetcher := &fetcherStub{fetchFn: okPage(productPage)}
	v, _, clock := newValidator(t, fetcher, Capabilities{})

	require.True(t, v.Check(context.Background(), "https://shop.example/p/1"))
	n, err := v.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)

	clock.advance(7 * time.Hour)
	n, err = v.PurgeExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
