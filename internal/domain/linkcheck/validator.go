package linkcheck

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

// Service decides whether product URLs still lead to a purchasable page.
type Service interface {
	Check(ctx context.Context, url string) bool
	FirstValidCompared(ctx context.Context, products []shopping.ScoredProduct, excludeID string) (shopping.ScoredProduct, bool)
	BackoffUntil(ctx context.Context, domain string) (time.Time, bool)
	PurgeExpired(ctx context.Context) (int, error)
}

type validator struct {
	cfg     Config
	store   Store
	fetcher PageFetcher
	caps    Capabilities
	logger  *slog.Logger
	now     func() time.Time
	flight  singleflight.Group
}

// NewService wires the liveness validator.
func NewService(cfg Config, store Store, fetcher PageFetcher, caps Capabilities, logger *slog.Logger) Service {
	return &validator{
		cfg:     cfg.withDefaults(),
		store:   store,
		fetcher: fetcher,
		caps:    caps,
		logger:  logger.With("component", "linkcheck.validator"),
		now:     time.Now,
	}
}

// Check runs the cached, multi-signal liveness decision. Malformed URLs are
// rejected without any network call. Concurrent checks of one URL share a
// single evaluation. The evaluation ignores caller cancellation and is bounded
// by RequestTimeout, so an abandoned request never marks a live page dead.
func (v *validator) Check(ctx context.Context, rawURL string) bool {
	u, ok := ParseProductURL(rawURL)
	if !ok {
		return false
	}
	key := strings.TrimSpace(rawURL)
	flightCtx := context.WithoutCancel(ctx)
	result, _, _ := v.flight.Do(key, func() (any, error) {
		return v.evaluate(flightCtx, key, u.Host), nil
	})
	return result.(bool)
}

func (v *validator) evaluate(ctx context.Context, url, domain string) bool {
	now := v.now()
	entry, found, err := v.store.Entry(ctx, url)
	if err != nil {
		v.logger.Warn("liveness cache read failed", "url", url, "error", err)
	}
	if found && now.Sub(entry.CheckedAt) < v.ttl(entry.Valid) {
		return entry.Valid
	}

	if until, ok := v.BackoffUntil(ctx, domain); ok && until.After(now) {
		v.logger.Debug("domain under backoff", "domain", domain, "until", until)
		return false
	}

	fetchCtx, cancel := context.WithTimeout(ctx, v.cfg.RequestTimeout)
	page, err := v.fetcher.Fetch(fetchCtx, url)
	cancel()
	if err != nil || page.StatusCode < 200 || page.StatusCode >= 300 {
		v.logger.Warn("page fetch failed", "url", url, "status", page.StatusCode, "error", err)
		if err := v.store.SetBackoff(ctx, domain, now.Add(v.cfg.DomainBackoff)); err != nil {
			v.logger.Warn("set domain backoff failed", "domain", domain, "error", err)
		}
		return v.remember(ctx, url, false, now)
	}

	text := visibleText(page.Body)
	if indicatesUnavailable(page.Body, text) {
		return v.remember(ctx, url, false, now)
	}

	if verdict := v.visionVerdict(ctx, url); verdict != VerdictUnknown {
		return v.remember(ctx, url, verdict == VerdictAvailable, now)
	}

	if hasProductSignals(text) {
		return v.remember(ctx, url, true, now)
	}

	if verdict := v.textVerdict(ctx, url, text); verdict != VerdictUnknown {
		return v.remember(ctx, url, verdict == VerdictAvailable, now)
	}

	return v.remember(ctx, url, true, now)
}

// visionVerdict screenshots the page and asks the vision classifier about it.
// Render or classification failures yield VerdictUnknown.
func (v *validator) visionVerdict(ctx context.Context, url string) Verdict {
	if v.caps.Vision == nil || v.caps.Renderer == nil {
		return VerdictUnknown
	}
	renderCtx, cancel := context.WithTimeout(ctx, v.cfg.RequestTimeout)
	png, err := v.caps.Renderer.Screenshot(renderCtx, url)
	cancel()
	if err != nil || len(png) == 0 {
		v.logger.Warn("screenshot failed", "url", url, "error", err)
		return VerdictUnknown
	}
	verdict, err := v.caps.Vision.ClassifyScreenshot(ctx, png)
	if err != nil {
		v.logger.Warn("vision classifier failed", "url", url, "error", err)
		return VerdictUnknown
	}
	return verdict
}

func (v *validator) textVerdict(ctx context.Context, url, text string) Verdict {
	if v.caps.Text == nil || len(text) < classifierMinText {
		return VerdictUnknown
	}
	verdict, err := v.caps.Text.ClassifyText(ctx, truncateRunes(text, classifierMaxText))
	if err != nil {
		v.logger.Warn("text classifier failed", "url", url, "error", err)
		return VerdictUnknown
	}
	return verdict
}

func (v *validator) remember(ctx context.Context, url string, valid bool, now time.Time) bool {
	entry := Entry{Valid: valid, CheckedAt: now, ExpiresAt: now.Add(v.ttl(valid))}
	if err := v.store.PutEntry(ctx, url, entry); err != nil {
		v.logger.Warn("liveness cache write failed", "url", url, "error", err)
	}
	v.logger.Debug("liveness decided", "url", url, "valid", valid)
	return valid
}

func (v *validator) ttl(valid bool) time.Duration {
	if valid {
		return v.cfg.ValidTTL
	}
	return v.cfg.InvalidTTL
}

// BackoffUntil exposes the domain backoff deadline, if one is recorded.
func (v *validator) BackoffUntil(ctx context.Context, domain string) (time.Time, bool) {
	if domain == "" {
		return time.Time{}, false
	}
	until, ok, err := v.store.BackoffUntil(ctx, domain)
	if err != nil {
		v.logger.Warn("backoff read failed", "domain", domain, "error", err)
		return time.Time{}, false
	}
	return until, ok
}

func (v *validator) PurgeExpired(ctx context.Context) (int, error) {
	return v.store.PurgeExpired(ctx, v.now())
}

// FirstValidCompared walks the other candidates by rank and returns the first
// one whose URL passes the liveness check.
func (v *validator) FirstValidCompared(ctx context.Context, products []shopping.ScoredProduct, excludeID string) (shopping.ScoredProduct, bool) {
	candidates := make([]shopping.ScoredProduct, 0, len(products))
	for _, sp := range products {
		if sp.Product.ID != excludeID {
			candidates = append(candidates, sp)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return rankKey(candidates[i]) < rankKey(candidates[j])
	})
	for _, sp := range candidates {
		if strings.TrimSpace(sp.Product.ProductURL) == "" {
			continue
		}
		if v.Check(ctx, sp.Product.ProductURL) {
			return sp, true
		}
	}
	return shopping.ScoredProduct{}, false
}

// rankKey sorts unranked candidates last.
func rankKey(sp shopping.ScoredProduct) int {
	if sp.Rank <= 0 {
		return int(^uint(0) >> 1)
	}
	return sp.Rank
}
