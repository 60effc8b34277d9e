package ranking

import (
	"sort"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

// Rank scores every candidate and orders them by total score, highest first.
// Ties keep their input order. Ranks are 1-based and dense.
func (s Scorer) Rank(products []shopping.Product, item shopping.ItemSpec, constraints shopping.Constraints, cart []shopping.Product, categoryCount int, liked []shopping.LikedSnapshot) []shopping.ScoredProduct {
	scored := make([]shopping.ScoredProduct, 0, len(products))
	for _, p := range products {
		scored = append(scored, s.Score(Input{
			Product:       p,
			Item:          item,
			Constraints:   constraints,
			CurrentCart:   cart,
			CategoryCount: categoryCount,
			Liked:         liked,
		}))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].TotalScore > scored[j].TotalScore
	})
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}
