package explainer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

type factor struct {
	name  string
	value float64
	max   float64
}

func factorsOf(b shopping.ScoreBreakdown) []factor {
	return []factor{
		{name: "reviews", value: b.Reviews, max: shopping.MaxReviews},
		{name: "price", value: b.Price, max: shopping.MaxPrice},
		{name: "delivery", value: b.Delivery, max: shopping.MaxDelivery},
		{name: "preference match", value: b.Preference, max: shopping.MaxPreference},
		{name: "set coherence", value: b.Coherence, max: shopping.MaxCoherence},
	}
}

func (f factor) ratio() float64 { return f.value / f.max }

func (f factor) percent() int { return int(math.RoundToEven(f.ratio() * 100)) }

// strongestAndWeakest returns the factors with the highest and lowest share of
// their maximum. Ties keep the earlier factor.
func strongestAndWeakest(b shopping.ScoreBreakdown) (factor, factor) {
	factors := factorsOf(b)
	strongest, weakest := factors[0], factors[0]
	for _, f := range factors[1:] {
		if f.ratio() > strongest.ratio() {
			strongest = f
		}
		if f.ratio() < weakest.ratio() {
			weakest = f
		}
	}
	return strongest, weakest
}

// Template renders the deterministic two-sentence rationale used when no
// generative model is available.
func Template(sp shopping.ScoredProduct, category shopping.Category, rank int, compared *shopping.ScoredProduct) string {
	strongest, weakest := strongestAndWeakest(sp.Breakdown)

	var b strings.Builder
	fmt.Fprintf(&b, "Ranked #%d for %s with a score of %s/100. ", rank, category.Words(), formatNumber(sp.TotalScore))
	if compared != nil {
		cp := compared.Product
		fmt.Fprintf(&b, "Compared to %s from %s ($%s), this option wins on %s (%d%%) and fits your budget and delivery needs better.",
			cp.Name, cp.Retailer, formatNumber(cp.Price), strongest.name, strongest.percent())
	} else {
		fmt.Fprintf(&b, "Strongest in %s (%d%%), while %s (%d%%) offers room for improvement.",
			strongest.name, strongest.percent(), weakest.name, weakest.percent())
	}
	return b.String()
}

// formatNumber prints the shortest form of v that keeps one decimal place.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
