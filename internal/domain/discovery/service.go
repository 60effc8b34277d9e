package discovery

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/agentic-commerce/internal/domain/ranking"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

const oneSize = "One Size"

// Provider searches a live product source.
type Provider interface {
	Search(ctx context.Context, query string, priceMax float64) ([]shopping.Product, error)
}

// Catalog serves offline products per category.
type Catalog interface {
	Products(category shopping.Category) []shopping.Product
}

// Config controls discovery.
type Config struct {
	MockMode    bool
	MaxResults  int
	Concurrency int
}

// Service finds candidates for every item in a spec.
type Service interface {
	Discover(ctx context.Context, spec shopping.ShoppingSpec) ranking.Discovery
}

type service struct {
	cfg      Config
	provider Provider
	catalog  Catalog
	logger   *slog.Logger
}

// NewService wires discovery. provider may be nil when no search key is set.
func NewService(cfg Config, provider Provider, catalog Catalog, logger *slog.Logger) Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &service{
		cfg:      cfg,
		provider: provider,
		catalog:  catalog,
		logger:   logger.With("component", "discovery.service"),
	}
}

// Discover searches all categories concurrently. A failing category yields an
// empty list and never affects the others.
func (s *service) Discover(ctx context.Context, spec shopping.ShoppingSpec) ranking.Discovery {
	out := ranking.Discovery{ProductsByCategory: make(map[shopping.Category][]shopping.Product, len(spec.ItemsNeeded))}
	if len(spec.ItemsNeeded) == 0 {
		return out
	}
	budgetPerItem := spec.Constraints.Budget.Total / float64(len(spec.ItemsNeeded))

	items := make([]shopping.ItemSpec, 0, len(spec.ItemsNeeded))
	for _, item := range spec.ItemsNeeded {
		if _, seen := out.ProductsByCategory[item.Category]; seen {
			continue
		}
		out.Order = append(out.Order, item.Category)
		out.ProductsByCategory[item.Category] = []shopping.Product{}
		items = append(items, item)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, item := range items {
		g.Go(func() error {
			products := s.discoverCategory(gctx, item, spec, budgetPerItem)
			mu.Lock()
			out.ProductsByCategory[item.Category] = products
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, products := range out.ProductsByCategory {
		total += len(products)
	}
	s.logger.Info("discovery finished", "categories", len(out.Order), "products", total, "mock_mode", s.cfg.MockMode)
	return out
}

func (s *service) discoverCategory(ctx context.Context, item shopping.ItemSpec, spec shopping.ShoppingSpec, budgetPerItem float64) []shopping.Product {
	products := []shopping.Product{}

	if !s.cfg.MockMode && s.provider != nil {
		query := BuildQuery(item.Category, item.Requirements, spec.Constraints.Size, spec.Scenario)
		found, err := s.provider.Search(ctx, query, budgetPerItem)
		if err != nil {
			s.logger.Error("provider search failed", "category", item.Category, "query", query, "error", err)
		} else {
			if len(found) > s.cfg.MaxResults {
				found = found[:s.cfg.MaxResults]
			}
			products = append(products, found...)
		}
	}

	if s.cfg.MockMode && s.catalog != nil {
		products = mergeByName(products, filterBySize(s.catalog.Products(item.Category), spec.Constraints.Size))
	}
	return products
}

// BuildQuery joins requirements, scenario words and the category name, adding
// the size only when one applies.
func BuildQuery(category shopping.Category, requirements []string, size, scenario string) string {
	parts := make([]string, 0, 4)
	if req := strings.TrimSpace(strings.Join(requirements, " ")); req != "" {
		parts = append(parts, req)
	}
	if words := strings.TrimSpace(strings.ReplaceAll(scenario, "_", " ")); words != "" {
		parts = append(parts, words)
	}
	parts = append(parts, category.Words())
	size = strings.TrimSpace(size)
	if size != "" && !strings.EqualFold(size, shopping.SizeNotApplicable) {
		parts = append(parts, size)
	}
	return strings.Join(parts, " ")
}

// filterBySize drops apparel that does not come in the requested size.
func filterBySize(products []shopping.Product, size string) []shopping.Product {
	size = strings.TrimSpace(size)
	if size == "" || strings.EqualFold(size, shopping.SizeNotApplicable) {
		return products
	}
	out := make([]shopping.Product, 0, len(products))
	for _, p := range products {
		if len(p.Sizes) == 0 || contains(p.Sizes, size) || contains(p.Sizes, oneSize) {
			out = append(out, p)
		}
	}
	return out
}

// mergeByName appends extra products whose lower-cased name is not present yet.
func mergeByName(base, extra []shopping.Product) []shopping.Product {
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, p := range base {
		seen[strings.ToLower(p.Name)] = struct{}{}
	}
	for _, p := range extra {
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		base = append(base, p)
	}
	return base
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
