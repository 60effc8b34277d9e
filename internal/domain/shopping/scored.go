package shopping

import "sort"

// Maximum points per sub-score.
const (
	MaxReviews        = 35.0
	MaxPrice          = 25.0
	MaxDelivery       = 25.0
	MaxPreference     = 10.0
	MaxCoherence      = 5.0
	MaxUserPreference = 5.0
)

// ScoreBreakdown holds each sub-score scaled to its maximum.
type ScoreBreakdown struct {
	Reviews        float64 `json:"reviews"`
	Price          float64 `json:"price"`
	Delivery       float64 `json:"delivery"`
	Preference     float64 `json:"preference"`
	Coherence      float64 `json:"coherence"`
	UserPreference float64 `json:"userPreference"`
}

// ScoredProduct pairs a product with its score and rank within its category.
type ScoredProduct struct {
	Product    Product        `json:"product"`
	TotalScore float64        `json:"totalScore"`
	Breakdown  ScoreBreakdown `json:"breakdown"`
	Rank       int            `json:"rank"`
}

// RankedSet holds ranked candidates per category together with the order
// categories were ranked in.
type RankedSet struct {
	Order      []Category                   `json:"order,omitempty"`
	ByCategory map[Category][]ScoredProduct `json:"rankedByCategory"`
}

// NewRankedSet returns an empty set ready for use.
func NewRankedSet() RankedSet {
	return RankedSet{ByCategory: make(map[Category][]ScoredProduct)}
}

// Categories lists categories in ranking order. Categories present in the map
// but missing from Order follow alphabetically.
func (r RankedSet) Categories() []Category {
	seen := make(map[Category]struct{}, len(r.ByCategory))
	out := make([]Category, 0, len(r.ByCategory))
	for _, c := range r.Order {
		if _, ok := r.ByCategory[c]; !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	var rest []Category
	for c := range r.ByCategory {
		if _, ok := seen[c]; !ok {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(out, rest...)
}

// Set stores products for a category, appending it to the order when new.
func (r *RankedSet) Set(category Category, products []ScoredProduct) {
	if r.ByCategory == nil {
		r.ByCategory = make(map[Category][]ScoredProduct)
	}
	if _, ok := r.ByCategory[category]; !ok {
		r.Order = append(r.Order, category)
	}
	r.ByCategory[category] = products
}

// Find returns the ranked product with the given id in a category.
func (r RankedSet) Find(category Category, productID string) (ScoredProduct, bool) {
	for _, sp := range r.ByCategory[category] {
		if sp.Product.ID == productID {
			return sp, true
		}
	}
	return ScoredProduct{}, false
}

// Clone copies the order and per-category slices so callers can mutate freely.
func (r RankedSet) Clone() RankedSet {
	out := RankedSet{
		Order:      append([]Category(nil), r.Order...),
		ByCategory: make(map[Category][]ScoredProduct, len(r.ByCategory)),
	}
	for c, list := range r.ByCategory {
		out.ByCategory[c] = append([]ScoredProduct(nil), list...)
	}
	return out
}
