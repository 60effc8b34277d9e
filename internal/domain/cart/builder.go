package cart

import (
	"sort"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

// Build seeds each category with its top candidate, then fits the cart to the
// budget and widens the retailer mix. Staying over budget is not an error: it
// shows up as a negative BudgetRemaining.
func (s *service) Build(ranked shopping.RankedSet, budget float64) shopping.Cart {
	var items []shopping.CartItem
	for _, category := range ranked.Categories() {
		list := ranked.ByCategory[category]
		if len(list) == 0 {
			continue
		}
		end := min(len(list), 1+seedAlternatives)
		items = append(items, shopping.CartItem{
			Category:     category,
			Selected:     list[0],
			Alternatives: append([]shopping.ScoredProduct(nil), list[1:end]...),
		})
	}

	passes := fitBudget(items, budget)
	swaps := diversifyRetailers(items)
	cart := computeTotals(items, budget)
	s.logger.Debug("cart built",
		"lines", len(items),
		"budget_passes", passes,
		"diversity_swaps", swaps,
		"total", cart.TotalPrice,
		"budget_remaining", cart.BudgetRemaining,
	)
	return cart
}

// fitBudget swaps selections for cheaper alternatives while over budget and
// reports how many swaps it made.
func fitBudget(items []shopping.CartItem, budget float64) int {
	passes := 0
	for passes < maxBudgetPasses && computeTotals(items, budget).BudgetRemaining < 0 {
		if !swapOneCheaper(items) {
			break
		}
		passes++
	}
	return passes
}

// swapOneCheaper walks lines from most to least expensive and replaces the
// first one that has a strictly cheaper alternative with its cheapest one.
func swapOneCheaper(items []shopping.CartItem) bool {
	for _, idx := range indicesByPrice(items, true) {
		item := items[idx]
		alts := append([]shopping.ScoredProduct(nil), item.Alternatives...)
		sort.SliceStable(alts, func(i, j int) bool {
			return alts[i].Product.Price < alts[j].Product.Price
		})
		for _, alt := range alts {
			if alt.Product.Price < item.Selected.Product.Price {
				items[idx] = promote(item, alt, 0)
				return true
			}
		}
	}
	return false
}

// diversifyRetailers swaps lines toward unseen retailers until the cart spans
// minRetailers of them. Swaps are not bounded by the budget.
func diversifyRetailers(items []shopping.CartItem) int {
	present := make(map[string]struct{})
	counts := make(map[string]int)
	for _, item := range items {
		present[item.Selected.Product.Retailer] = struct{}{}
		counts[item.Selected.Product.Retailer]++
	}
	if len(present) >= minRetailers {
		return 0
	}

	swaps := 0
	for _, idx := range indicesByPrice(items, false) {
		if len(present) >= minRetailers {
			break
		}
		item := items[idx]
		current := item.Selected.Product.Retailer
		if counts[current] <= 1 {
			continue
		}
		var fresh []shopping.ScoredProduct
		for _, alt := range item.Alternatives {
			if _, ok := present[alt.Product.Retailer]; !ok {
				fresh = append(fresh, alt)
			}
		}
		if len(fresh) == 0 {
			continue
		}
		sort.SliceStable(fresh, func(i, j int) bool {
			if fresh[i].TotalScore != fresh[j].TotalScore {
				return fresh[i].TotalScore > fresh[j].TotalScore
			}
			return fresh[i].Product.Price < fresh[j].Product.Price
		})
		chosen := fresh[0]
		items[idx] = promote(item, chosen, 0)
		counts[current]--
		counts[chosen.Product.Retailer]++
		present[chosen.Product.Retailer] = struct{}{}
		swaps++
	}
	return swaps
}

func indicesByPrice(items []shopping.CartItem, descending bool) []int {
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := items[idx[a]].Selected.Product.Price, items[idx[b]].Selected.Product.Price
		if descending {
			return pa > pb
		}
		return pa < pb
	})
	return idx
}
