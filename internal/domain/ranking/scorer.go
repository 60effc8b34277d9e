package ranking

import (
	"math"
	"strings"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/pkg/util"
)

// Weights of each sub-score in the composite.
const (
	weightReviews        = 0.35
	weightPrice          = 0.25
	weightDelivery       = 0.25
	weightPreference     = 0.10
	weightCoherence      = 0.05
	weightUserPreference = 0.05
)

// Input is everything the scorer needs to evaluate one candidate.
type Input struct {
	Product       shopping.Product
	Item          shopping.ItemSpec
	Constraints   shopping.Constraints
	CurrentCart   []shopping.Product
	CategoryCount int
	Liked         []shopping.LikedSnapshot
}

// Scorer computes the weighted score of a candidate. It has no side effects;
// the clock is only read to resolve days left until the delivery deadline.
type Scorer struct {
	now func() time.Time
}

// NewScorer builds a scorer reading the given clock. A nil clock means time.Now.
func NewScorer(now func() time.Time) Scorer {
	if now == nil {
		now = time.Now
	}
	return Scorer{now: now}
}

// Score evaluates one candidate. Rank is left at zero.
func (s Scorer) Score(in Input) shopping.ScoredProduct {
	p := in.Product
	reviews := reviewScore(p)
	price := priceScore(p, in.Constraints.Budget.Total, in.CategoryCount)
	delivery := deliveryScore(p, util.DaysBetween(s.now(), in.Constraints.DeliveryDeadline.Time))
	pref := preferenceScore(p, in.Item.Requirements)
	coherence := coherenceScore(p, in.CurrentCart)
	userPref := userPreferenceScore(p, in.Liked)

	total := weightReviews*reviews +
		weightPrice*price +
		weightDelivery*delivery +
		weightPreference*pref +
		weightCoherence*coherence +
		weightUserPreference*(userPref/shopping.MaxUserPreference)

	return shopping.ScoredProduct{
		Product:    p,
		TotalScore: util.RoundTo(total*100, 1),
		Breakdown: shopping.ScoreBreakdown{
			Reviews:        util.RoundTo(reviews*shopping.MaxReviews, 1),
			Price:          util.RoundTo(price*shopping.MaxPrice, 1),
			Delivery:       util.RoundTo(delivery*shopping.MaxDelivery, 1),
			Preference:     util.RoundTo(pref*shopping.MaxPreference, 1),
			Coherence:      util.RoundTo(coherence*shopping.MaxCoherence, 1),
			UserPreference: userPref,
		},
	}
}

func reviewScore(p shopping.Product) float64 {
	if p.Rating == nil || *p.Rating <= 0 || p.ReviewsCount == nil || *p.ReviewsCount <= 0 {
		return 0.3
	}
	rating := clamp(*p.Rating/5, 0, 1)
	volume := math.Min(1, math.Log(float64(*p.ReviewsCount)+1)/math.Log(500))
	return 0.7*rating + 0.3*volume
}

func priceScore(p shopping.Product, budget float64, categories int) float64 {
	perItem := budget / float64(max(categories, 1))
	ratio := p.Price / math.Max(perItem, 1)
	var score float64
	if ratio <= 1 {
		score = 1 - 0.5*ratio
	} else {
		score = math.Max(0, 1-(ratio-1))
	}
	if p.OriginalPrice != nil && *p.OriginalPrice > p.Price {
		discount := (*p.OriginalPrice - p.Price) / *p.OriginalPrice
		score = math.Min(1, score+discount*0.2)
	}
	return clamp(score, 0, 1)
}

func deliveryScore(p shopping.Product, daysLeft int) float64 {
	score := 0.4
	if p.DeliveryDays != nil {
		switch days := *p.DeliveryDays; {
		case days <= daysLeft:
			score = 1.0
		case days <= daysLeft+2:
			score = 0.5
		default:
			score = 0.1
		}
	}
	if p.DeliveryCost != nil && *p.DeliveryCost == 0 {
		score = math.Min(1, score+0.1)
	}
	return score
}

func preferenceScore(p shopping.Product, requirements []string) float64 {
	if len(requirements) == 0 {
		return 0.5
	}
	searchable := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Highlights, " "))
	matched := 0
	for _, req := range requirements {
		if strings.Contains(searchable, strings.ToLower(req)) {
			matched++
		}
	}
	if matched == 0 {
		return 0.1
	}
	return float64(matched) / float64(len(requirements))
}

func coherenceScore(p shopping.Product, cart []shopping.Product) float64 {
	score := 0.5
	if len(cart) == 0 {
		return score
	}
	if p.Brand != "" {
		for _, other := range cart {
			if other.Brand != "" && other.Brand == p.Brand {
				score += 0.3
				break
			}
		}
	}
	cartColors := make(map[string]struct{})
	for _, other := range cart {
		for _, c := range other.Colors {
			cartColors[strings.ToLower(c)] = struct{}{}
		}
	}
	for _, c := range p.Colors {
		if _, ok := cartColors[strings.ToLower(c)]; ok {
			score += 0.2
			break
		}
	}
	return math.Min(1, score)
}

// userPreferenceScore returns 0-5 points for similarity to liked items.
func userPreferenceScore(p shopping.Product, liked []shopping.LikedSnapshot) float64 {
	if len(liked) == 0 {
		return 0
	}
	retailers := make(map[string]struct{}, len(liked))
	var sum float64
	for _, s := range liked {
		if s.Retailer != "" {
			retailers[strings.ToLower(s.Retailer)] = struct{}{}
		}
		sum += s.Price
	}
	avg := sum / float64(len(liked))

	retailerMatch := 0.0
	if _, ok := retailers[strings.ToLower(p.Retailer)]; ok {
		retailerMatch = 1
	}
	priceSim := 0.5
	if avg > 0 {
		priceSim = math.Max(0, 1-math.Abs(p.Price-avg)/avg)
	}
	raw := 0.6*retailerMatch + 0.4*priceSim
	return util.RoundTo(math.Min(shopping.MaxUserPreference, raw*shopping.MaxUserPreference), 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
