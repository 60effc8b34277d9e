package ranking

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

func TestRankOrdersByScoreWithDenseRanks(t *testing.T) {
	products := []shopping.Product{
		{ID: "slow", Price: 50, DeliveryDays: shopping.Int(12)},
		{ID: "fast", Price: 50, DeliveryDays: shopping.Int(1)},
		{ID: "fast-twin", Price: 50, DeliveryDays: shopping.Int(1)},
		{ID: "cheap", Price: 5, DeliveryDays: shopping.Int(1)},
	}
	ranked := newTestScorer().Rank(products, shopping.ItemSpec{}, constraintsWith(100, 3), nil, 1, nil)

	require.Len(t, ranked, len(products))
	ids := make([]string, 0, len(ranked))
	for i, sp := range ranked {
		require.Equal(t, i+1, sp.Rank)
		if i > 0 {
			require.GreaterOrEqual(t, ranked[i-1].TotalScore, sp.TotalScore)
		}
		ids = append(ids, sp.Product.ID)
	}
	require.Equal(t, []string{"cheap", "fast", "fast-twin", "slow"}, ids)
}

func TestRankEmptyInput(t *testing.T) {
	ranked := newTestScorer().Rank(nil, shopping.ItemSpec{}, constraintsWith(100, 3), nil, 1, nil)
	require.Empty(t, ranked)
}

func TestServiceRanksMustHaveFirstAndSeedsCoherence(t *testing.T) {
	svc := &service{scorer: newTestScorer(), logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	spec := shopping.ShoppingSpec{
		Scenario: "skiing_outfit",
		ItemsNeeded: []shopping.ItemSpec{
			{Category: shopping.CategoryGoggles, Priority: shopping.PriorityNiceToHave},
			{Category: shopping.CategoryJacket, Priority: shopping.PriorityMustHave},
		},
		Constraints: constraintsWith(400, 5),
	}
	req := Request{
		Spec: spec,
		Discovery: Discovery{ProductsByCategory: map[shopping.Category][]shopping.Product{
			shopping.CategoryGoggles: {
				{ID: "g-smith", Brand: "Smith", Price: 70},
				{ID: "g-burton", Brand: "Burton", Price: 70},
			},
			shopping.CategoryJacket: {
				{ID: "j-burton", Brand: "Burton", Price: 150},
			},
			shopping.CategoryGloves: {
				{ID: "extra", Price: 30},
			},
		}},
	}

	resp := svc.Rank(req)

	require.Equal(t, []shopping.Category{shopping.CategoryJacket, shopping.CategoryGoggles, shopping.CategoryGloves}, resp.Categories())
	goggles := resp.ByCategory[shopping.CategoryGoggles]
	require.Equal(t, "g-burton", goggles[0].Product.ID)
	require.InDelta(t, goggles[1].TotalScore+1.5, goggles[0].TotalScore, 1e-9)
	require.Len(t, resp.ByCategory[shopping.CategoryGloves], 1)
	require.Equal(t, spec, resp.Spec)
}
