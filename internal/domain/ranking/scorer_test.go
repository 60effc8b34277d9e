package ranking

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/pkg/util"
)

var fixedNow = time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC)

func newTestScorer() Scorer {
	return NewScorer(func() time.Time { return fixedNow })
}

func constraintsWith(budget float64, daysLeft int) shopping.Constraints {
	return shopping.Constraints{
		Budget:           shopping.Budget{Total: budget, Currency: "USD"},
		Size:             shopping.SizeNotApplicable,
		DeliveryDeadline: shopping.NewDate(fixedNow.AddDate(0, 0, daysLeft)),
	}
}

func TestScoreWorkedExample(t *testing.T) {
	product := shopping.Product{
		ID:           "p1",
		Name:         "Alpine Shell",
		Retailer:     "REI",
		Price:        80,
		Rating:       shopping.Float64(4.8),
		ReviewsCount: shopping.Int(1200),
		DeliveryDays: shopping.Int(2),
		DeliveryCost: shopping.Float64(0),
		Description:  "Fully waterproof shell",
	}
	got := newTestScorer().Score(Input{
		Product:       product,
		Item:          shopping.ItemSpec{Category: shopping.CategoryJacket, Requirements: []string{"waterproof"}},
		Constraints:   constraintsWith(100, 5),
		CategoryCount: 1,
	})

	require.Equal(t, shopping.ScoreBreakdown{
		Reviews:    34.0,
		Price:      15.0,
		Delivery:   25.0,
		Preference: 10.0,
		Coherence:  2.5,
	}, got.Breakdown)
	// 0.35*0.972 + 0.25*0.6 + 0.25*1.0 + 0.10*1.0 + 0.05*0.5 = 0.8652
	require.Equal(t, 86.5, got.TotalScore)
}

func TestScoreUnreviewedProductGetsFlatReviewScore(t *testing.T) {
	got := newTestScorer().Score(Input{
		Product:       shopping.Product{Price: 10, Rating: shopping.Float64(4.5)},
		Constraints:   constraintsWith(100, 5),
		CategoryCount: 1,
	})
	require.Equal(t, 10.5, got.Breakdown.Reviews)
}

func TestScorePriceAboveBudgetFloorsAtZero(t *testing.T) {
	got := newTestScorer().Score(Input{
		Product:       shopping.Product{Price: 250},
		Constraints:   constraintsWith(100, 5),
		CategoryCount: 1,
	})
	require.Equal(t, 0.0, got.Breakdown.Price)

	sale := newTestScorer().Score(Input{
		Product:       shopping.Product{Price: 40, OriginalPrice: shopping.Float64(80)},
		Constraints:   constraintsWith(100, 5),
		CategoryCount: 1,
	})
	// 1 - 0.5*0.4 = 0.8, plus 50% discount * 0.2
	require.Equal(t, 22.5, sale.Breakdown.Price)
}

func TestScoreDeliveryTiers(t *testing.T) {
	cases := []struct {
		name string
		days *int
		cost *float64
		want float64
	}{
		{name: "unknown", want: 10.0},
		{name: "unknown free", cost: shopping.Float64(0), want: 12.5},
		{name: "on time", days: shopping.Int(3), want: 25.0},
		{name: "two days late", days: shopping.Int(5), want: 12.5},
		{name: "two days late free", days: shopping.Int(5), cost: shopping.Float64(0), want: 15.0},
		{name: "very late", days: shopping.Int(9), want: 2.5},
		{name: "paid shipping", days: shopping.Int(9), cost: shopping.Float64(4.99), want: 2.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := newTestScorer().Score(Input{
				Product:       shopping.Product{Price: 10, DeliveryDays: tc.days, DeliveryCost: tc.cost},
				Constraints:   constraintsWith(100, 3),
				CategoryCount: 1,
			})
			require.Equal(t, tc.want, got.Breakdown.Delivery)
		})
	}
}

func TestScorePreferenceFloorAndNeutral(t *testing.T) {
	scorer := newTestScorer()
	product := shopping.Product{Name: "Trail Runner", Highlights: []string{"Breathable mesh"}}

	neutral := scorer.Score(Input{Product: product, Constraints: constraintsWith(100, 5)})
	require.Equal(t, 5.0, neutral.Breakdown.Preference)

	none := scorer.Score(Input{
		Product:     product,
		Item:        shopping.ItemSpec{Requirements: []string{"waterproof"}},
		Constraints: constraintsWith(100, 5),
	})
	require.Equal(t, 1.0, none.Breakdown.Preference)

	half := scorer.Score(Input{
		Product:     product,
		Item:        shopping.ItemSpec{Requirements: []string{"BREATHABLE", "waterproof"}},
		Constraints: constraintsWith(100, 5),
	})
	require.Equal(t, 5.0, half.Breakdown.Preference)
}

func TestScoreCoherenceAgainstCart(t *testing.T) {
	cart := []shopping.Product{{Brand: "Burton", Colors: []string{"Black"}}}
	got := newTestScorer().Score(Input{
		Product:     shopping.Product{Brand: "Burton", Colors: []string{"black", "red"}},
		Constraints: constraintsWith(100, 5),
		CurrentCart: cart,
	})
	require.Equal(t, 5.0, got.Breakdown.Coherence)

	otherCase := newTestScorer().Score(Input{
		Product:     shopping.Product{Brand: "burton"},
		Constraints: constraintsWith(100, 5),
		CurrentCart: cart,
	})
	require.Equal(t, 2.5, otherCase.Breakdown.Coherence)
}

func TestScoreUserPreference(t *testing.T) {
	liked := []shopping.LikedSnapshot{{Retailer: "rei", Price: 100}, {Retailer: "", Price: 100}}
	got := newTestScorer().Score(Input{
		Product:       shopping.Product{Retailer: "REI", Price: 100},
		Constraints:   constraintsWith(100, 5),
		CategoryCount: 1,
		Liked:         liked,
	})
	require.Equal(t, 5.0, got.Breakdown.UserPreference)

	withoutLiked := newTestScorer().Score(Input{
		Product:       shopping.Product{Retailer: "REI", Price: 100},
		Constraints:   constraintsWith(100, 5),
		CategoryCount: 1,
	})
	require.Equal(t, 0.0, withoutLiked.Breakdown.UserPreference)
	require.InDelta(t, 5.0, got.TotalScore-withoutLiked.TotalScore, 0.1)

	zeroPrice := userPreferenceScore(shopping.Product{Retailer: "Other", Price: 10}, []shopping.LikedSnapshot{{Price: 0}})
	require.Equal(t, 1.0, zeroPrice)
}

func TestScoreBoundsHoldForArbitraryCandidates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scorer := newTestScorer()
	colors := []string{"black", "red", "blue"}
	brands := []string{"", "Burton", "Smith"}

	for i := 0; i < 500; i++ {
		p := shopping.Product{
			Price:  rng.Float64() * 600,
			Brand:  brands[rng.Intn(len(brands))],
			Colors: []string{colors[rng.Intn(len(colors))]},
			Name:   "warm waterproof jacket",
		}
		if rng.Intn(2) == 0 {
			p.Rating = shopping.Float64(rng.Float64() * 5)
			p.ReviewsCount = shopping.Int(rng.Intn(5000))
		}
		if rng.Intn(2) == 0 {
			p.OriginalPrice = shopping.Float64(p.Price * (0.5 + rng.Float64()))
		}
		if rng.Intn(2) == 0 {
			p.DeliveryDays = shopping.Int(rng.Intn(14))
		}
		if rng.Intn(2) == 0 {
			p.DeliveryCost = shopping.Float64(float64(rng.Intn(2)) * 5)
		}
		var liked []shopping.LikedSnapshot
		if rng.Intn(2) == 0 {
			liked = []shopping.LikedSnapshot{{Retailer: "REI", Price: rng.Float64() * 300}}
		}
		in := Input{
			Product:       p,
			Item:          shopping.ItemSpec{Requirements: []string{"warm", "packable"}},
			Constraints:   constraintsWith(400, rng.Intn(10)),
			CurrentCart:   []shopping.Product{{Brand: "Burton", Colors: []string{"Black"}}},
			CategoryCount: 1 + rng.Intn(4),
			Liked:         liked,
		}
		got := scorer.Score(in)

		b := got.Breakdown
		require.GreaterOrEqual(t, b.Reviews, 0.0)
		require.LessOrEqual(t, b.Reviews, shopping.MaxReviews)
		require.GreaterOrEqual(t, b.Price, 0.0)
		require.LessOrEqual(t, b.Price, shopping.MaxPrice)
		require.GreaterOrEqual(t, b.Delivery, 0.0)
		require.LessOrEqual(t, b.Delivery, shopping.MaxDelivery)
		require.GreaterOrEqual(t, b.Preference, 0.0)
		require.LessOrEqual(t, b.Preference, shopping.MaxPreference)
		require.GreaterOrEqual(t, b.Coherence, 0.0)
		require.LessOrEqual(t, b.Coherence, shopping.MaxCoherence)
		require.GreaterOrEqual(t, b.UserPreference, 0.0)
		require.LessOrEqual(t, b.UserPreference, shopping.MaxUserPreference)

		// Each of the five rounded sub-scores and the total carry up to 0.05 of rounding.
		sum := b.Reviews + b.Price + b.Delivery + b.Preference + b.Coherence + b.UserPreference
		require.InDelta(t, sum, got.TotalScore, 0.3+1e-9)

		daysLeft := util.DaysBetween(fixedNow, in.Constraints.DeliveryDeadline.Time)
		weighted := 100 * (0.35*reviewScore(p) +
			0.25*priceScore(p, 400, in.CategoryCount) +
			0.25*deliveryScore(p, daysLeft) +
			0.10*preferenceScore(p, in.Item.Requirements) +
			0.05*coherenceScore(p, in.CurrentCart) +
			0.05*userPreferenceScore(p, liked)/shopping.MaxUserPreference)
		require.InDelta(t, weighted, got.TotalScore, 0.1)
	}
}
