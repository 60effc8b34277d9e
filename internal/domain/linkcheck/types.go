package linkcheck

import (
	"context"
	"time"
)

// Verdict is a classifier's answer about a product page.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictAvailable
	VerdictUnavailable
)

func (v Verdict) String() string {
	switch v {
	case VerdictAvailable:
		return "available"
	case VerdictUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Page is the bounded prefix of a fetched page.
type Page struct {
	StatusCode int
	Body       []byte
}

// PageFetcher downloads at most a fixed byte budget of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Renderer captures an above-the-fold PNG screenshot of a page.
type Renderer interface {
	Screenshot(ctx context.Context, url string) ([]byte, error)
}

// TextClassifier decides availability from page text.
type TextClassifier interface {
	ClassifyText(ctx context.Context, text string) (Verdict, error)
}

// VisionClassifier decides availability from a page screenshot.
type VisionClassifier interface {
	ClassifyScreenshot(ctx context.Context, png []byte) (Verdict, error)
}

// Entry is the cached outcome of a liveness check.
type Entry struct {
	Valid     bool      `json:"valid"`
	CheckedAt time.Time `json:"checkedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store keeps liveness results per URL and backoff deadlines per domain.
type Store interface {
	Entry(ctx context.Context, url string) (Entry, bool, error)
	PutEntry(ctx context.Context, url string, entry Entry) error
	BackoffUntil(ctx context.Context, domain string) (time.Time, bool, error)
	SetBackoff(ctx context.Context, domain string, until time.Time) error
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}

// Config tunes cache lifetimes and timeouts.
type Config struct {
	ValidTTL       time.Duration
	InvalidTTL     time.Duration
	DomainBackoff  time.Duration
	RequestTimeout time.Duration
}

// Capabilities are the optional classifiers. Nil fields are skipped.
type Capabilities struct {
	Renderer Renderer
	Vision   VisionClassifier
	Text     TextClassifier
}

func (c Config) withDefaults() Config {
	if c.ValidTTL <= 0 {
		c.ValidTTL = 6 * time.Hour
	}
	if c.InvalidTTL <= 0 {
		c.InvalidTTL = time.Hour
	}
	if c.DomainBackoff <= 0 {
		c.DomainBackoff = time.Hour
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 8 * time.Second
	}
	return c
}
