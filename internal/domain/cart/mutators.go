package cart

import (
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/pkg/util"
)

// Swap replaces the selection of a category with the given product, looked up
// in the line's alternatives first and the full ranking second. An unknown id
// leaves the line untouched.
func (s *service) Swap(current shopping.Cart, category shopping.Category, productID string, ranked shopping.RankedSet) shopping.Cart {
	budget := current.Budget()
	items := copyItems(current.Items)
	for i, item := range items {
		if item.Category != category || item.Selected.Product.ID == productID {
			continue
		}
		chosen, ok := findAlternative(item.Alternatives, productID)
		if !ok {
			chosen, ok = ranked.Find(category, productID)
		}
		if !ok {
			s.logger.Info("swap target not found", "category", category, "product_id", productID)
			continue
		}
		items[i] = promote(item, chosen, maxAlternatives)
	}
	return computeTotals(items, budget)
}

// OptimizeBudget moves each line, most expensive first, to the cheapest
// candidate that is strictly cheaper and still scores at least qualityFloor.
func (s *service) OptimizeBudget(current shopping.Cart, ranked shopping.RankedSet) shopping.Cart {
	budget := current.Budget()
	items := copyItems(current.Items)
	for _, idx := range indicesByPrice(items, true) {
		item := items[idx]
		var best *shopping.ScoredProduct
		for _, alt := range candidatePool(item, ranked) {
			if alt.Product.ID == item.Selected.Product.ID ||
				alt.Product.Price >= item.Selected.Product.Price ||
				alt.TotalScore < qualityFloor {
				continue
			}
			if best == nil || alt.Product.Price < best.Product.Price {
				candidate := alt
				best = &candidate
			}
		}
		if best != nil {
			items[idx] = promote(item, *best, maxAlternatives)
		}
	}
	return computeTotals(items, budget)
}

// OptimizeDelivery replaces lines that would arrive after the deadline with the
// best-scoring candidate that arrives in time. Lines without a delivery
// estimate are left alone.
func (s *service) OptimizeDelivery(current shopping.Cart, ranked shopping.RankedSet, deadline shopping.Date) shopping.Cart {
	budget := current.Budget()
	daysLeft := util.DaysBetween(s.now(), deadline.Time)
	items := copyItems(current.Items)
	for i, item := range items {
		days := item.Selected.Product.DeliveryDays
		if days == nil || *days <= daysLeft {
			continue
		}
		var best *shopping.ScoredProduct
		for _, alt := range candidatePool(item, ranked) {
			if alt.Product.ID == item.Selected.Product.ID ||
				alt.Product.DeliveryDays == nil ||
				*alt.Product.DeliveryDays > daysLeft {
				continue
			}
			if best == nil || alt.TotalScore > best.TotalScore {
				candidate := alt
				best = &candidate
			}
		}
		if best != nil {
			items[i] = promote(item, *best, maxAlternatives)
		}
	}
	return computeTotals(items, budget)
}

// candidatePool prefers the category's full ranking and falls back to the
// line's own alternatives when the ranking is unavailable.
func candidatePool(item shopping.CartItem, ranked shopping.RankedSet) []shopping.ScoredProduct {
	if list := ranked.ByCategory[item.Category]; len(list) > 0 {
		return list
	}
	return item.Alternatives
}

func findAlternative(alts []shopping.ScoredProduct, productID string) (shopping.ScoredProduct, bool) {
	for _, alt := range alts {
		if alt.Product.ID == productID {
			return alt, true
		}
	}
	return shopping.ScoredProduct{}, false
}
