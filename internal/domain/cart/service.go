package cart

import (
	"log/slog"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/pkg/util"
)

const (
	// maxBudgetPasses bounds the budget-fit local search.
	maxBudgetPasses = 20
	// seedAlternatives keeps ranks 2-5 of each category as the swap pool.
	seedAlternatives = 4
	// maxAlternatives caps the pool after a mutation.
	maxAlternatives = 5
	minRetailers    = 3
	// qualityFloor is the lowest total score a budget optimization may pick.
	qualityFloor = 60.0
	// fastDeliveryDays is the horizon for the cart's all-within-deadline flag.
	fastDeliveryDays = 7
)

// Service assembles carts from ranked candidates and rewrites them on request.
type Service interface {
	Build(ranked shopping.RankedSet, budget float64) shopping.Cart
	Swap(current shopping.Cart, category shopping.Category, productID string, ranked shopping.RankedSet) shopping.Cart
	OptimizeBudget(current shopping.Cart, ranked shopping.RankedSet) shopping.Cart
	OptimizeDelivery(current shopping.Cart, ranked shopping.RankedSet, deadline shopping.Date) shopping.Cart
}

type service struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the cart domain.
func NewService(logger *slog.Logger) Service {
	return &service{
		logger: logger.With("component", "cart.service"),
		now:    time.Now,
	}
}

// computeTotals is the single place cart totals are derived from lines.
func computeTotals(items []shopping.CartItem, budget float64) shopping.Cart {
	var total float64
	retailers := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	allWithin := true
	for _, item := range items {
		p := item.Selected.Product
		total += p.Price
		if _, ok := seen[p.Retailer]; !ok {
			seen[p.Retailer] = struct{}{}
			retailers = append(retailers, p.Retailer)
		}
		if p.DeliveryDays == nil || *p.DeliveryDays > fastDeliveryDays {
			allWithin = false
		}
	}
	if items == nil {
		items = []shopping.CartItem{}
	}
	return shopping.Cart{
		Items:             items,
		TotalPrice:        roundCents(total),
		BudgetRemaining:   roundCents(budget - total),
		RetailersInvolved: retailers,
		AllWithinDeadline: allWithin,
	}
}

// promote selects chosen for the line and demotes the current selection to the
// head of the alternatives. A positive limit caps the resulting pool.
func promote(item shopping.CartItem, chosen shopping.ScoredProduct, limit int) shopping.CartItem {
	alternatives := make([]shopping.ScoredProduct, 0, len(item.Alternatives)+1)
	alternatives = append(alternatives, item.Selected)
	for _, alt := range item.Alternatives {
		if alt.Product.ID != chosen.Product.ID {
			alternatives = append(alternatives, alt)
		}
	}
	if limit > 0 && len(alternatives) > limit {
		alternatives = alternatives[:limit]
	}
	return shopping.CartItem{
		Category:     item.Category,
		Selected:     chosen,
		Alternatives: alternatives,
	}
}

func copyItems(items []shopping.CartItem) []shopping.CartItem {
	out := make([]shopping.CartItem, len(items))
	copy(out, items)
	return out
}

func roundCents(v float64) float64 {
	return util.RoundTo(v, 2)
}
