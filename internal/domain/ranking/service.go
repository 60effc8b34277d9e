package ranking

import (
	"log/slog"
	"sort"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

// Service ranks discovered candidates category by category.
type Service interface {
	Rank(req Request) Response
}

type service struct {
	scorer Scorer
	logger *slog.Logger
}

// NewService wires the ranking domain.
func NewService(logger *slog.Logger) Service {
	return &service{
		scorer: NewScorer(time.Now),
		logger: logger.With("component", "ranking.service"),
	}
}

// Rank processes must-have categories before nice-to-have ones. Each
// category's winner joins the running cart so later categories are scored
// for brand and color coherence against it.
func (s *service) Rank(req Request) Response {
	spec := req.Spec
	categoryCount := len(spec.ItemsNeeded)
	categories := s.orderCategories(req.Discovery, spec)

	ranked := shopping.NewRankedSet()
	var cart []shopping.Product
	for _, category := range categories {
		item, ok := spec.Item(category)
		if !ok {
			item = shopping.ItemSpec{Category: category, Priority: shopping.PriorityNiceToHave}
		}
		list := s.scorer.Rank(req.Discovery.ProductsByCategory[category], item, spec.Constraints, cart, categoryCount, req.LikedSnapshots)
		ranked.Set(category, list)
		if len(list) > 0 {
			cart = append(cart, list[0].Product)
		}
	}
	s.logger.Info("ranked candidates", "categories", len(categories), "liked", len(req.LikedSnapshots))

	return Response{RankedSet: ranked, Spec: spec, SessionID: req.SessionID}
}

// orderCategories follows the spec's item order, then any extra discovered
// categories alphabetically, and finally moves must-haves to the front.
func (s *service) orderCategories(d Discovery, spec shopping.ShoppingSpec) []shopping.Category {
	present := shopping.RankedSet{ByCategory: make(map[shopping.Category][]shopping.ScoredProduct, len(d.ProductsByCategory))}
	for c := range d.ProductsByCategory {
		present.ByCategory[c] = nil
	}
	specOrder := make([]shopping.Category, 0, len(spec.ItemsNeeded)+len(d.Order))
	for _, item := range spec.ItemsNeeded {
		specOrder = append(specOrder, item.Category)
	}
	present.Order = append(specOrder, d.Order...)
	categories := present.Categories()

	sort.SliceStable(categories, func(i, j int) bool {
		return priorityOf(spec, categories[i]) < priorityOf(spec, categories[j])
	})
	return categories
}

func priorityOf(spec shopping.ShoppingSpec, category shopping.Category) int {
	if item, ok := spec.Item(category); ok && item.Priority == shopping.PriorityMustHave {
		return 0
	}
	return 1
}
