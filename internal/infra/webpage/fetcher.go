package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
)

const (
	// DefaultUserAgent identifies liveness checks to retailers.
	DefaultUserAgent    = "Mozilla/5.0 (compatible; AgenticCommerce/1.0)"
	defaultMaxBodyBytes = 50_000
	defaultTimeout      = 8 * time.Second
)

// FetcherConfig bounds a single page download.
type FetcherConfig struct {
	UserAgent    string
	MaxBodyBytes int64
	Timeout      time.Duration
}

// Fetcher downloads the leading bytes of a page. It implements linkcheck.PageFetcher.
type Fetcher struct {
	cfg        FetcherConfig
	httpClient *http.Client
}

// NewFetcher builds a bounded page fetcher.
func NewFetcher(cfg FetcherConfig) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Fetcher{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Fetch follows redirects and returns the final status with at most
// MaxBodyBytes of body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (linkcheck.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return linkcheck.Page{}, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return linkcheck.Page{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return linkcheck.Page{StatusCode: resp.StatusCode}, fmt.Errorf("read page body: %w", err)
	}
	return linkcheck.Page{StatusCode: resp.StatusCode, Body: body}, nil
}
