package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

var today = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func TestParseOfflineAsksForBudget(t *testing.T) {
	res := ParseOffline("I need ski gear", today)
	require.Nil(t, res.Spec)
	require.NotNil(t, res.Question)
	require.Equal(t, budgetQuestion, res.Question.Question)
}

func TestParseOfflineSkiDefault(t *testing.T) {
	res := ParseOffline("Ski trip, budget $600, size medium, need it within 4 days", today)
	require.NotNil(t, res.Spec)
	spec := res.Spec
	require.Equal(t, "skiing_outfit", spec.Scenario)
	require.Len(t, spec.ItemsNeeded, 4)
	require.Equal(t, shopping.CategoryJacket, spec.ItemsNeeded[0].Category)
	require.Equal(t, []string{"waterproof", "warm"}, spec.ItemsNeeded[0].Requirements)
	require.Equal(t, 600.0, spec.Constraints.Budget.Total)
	require.Equal(t, "M", spec.Constraints.Size)
	require.Equal(t, "2025-01-14", spec.Constraints.DeliveryDeadline.String())
}

func TestParseOfflineGPUIgnoresModelNumber(t *testing.T) {
	res := ParseOffline("Looking for an RTX 5090, I can spend 1500", today)
	require.NotNil(t, res.Spec)
	require.Equal(t, "gaming_setup", res.Spec.Scenario)
	require.Equal(t, shopping.CategoryGPU, res.Spec.ItemsNeeded[0].Category)
	require.Equal(t, 1500.0, res.Spec.Constraints.Budget.Total)
	require.Equal(t, shopping.SizeNotApplicable, res.Spec.Constraints.Size)
}

func TestParseOfflineGPUOnlyModelNumbers(t *testing.T) {
	res := ParseOffline("rtx 4090 please, what can I spend", today)
	require.NotNil(t, res.Spec)
	require.Equal(t, defaultBudget, res.Spec.Constraints.Budget.Total)
}

func TestExtractBudget(t *testing.T) {
	tests := []struct {
		msg  string
		want float64
	}{
		{msg: "budget within 1000 quid for a gpu 5090", want: 1000},
		{msg: "about 300 quid", want: 300},
		{msg: "under £250 please", want: 250},
		{msg: "less than 120.50", want: 120.5},
		{msg: "$75 socks", want: 75},
		{msg: "80 dollars", want: 80},
		{msg: "spend 2 on 900", want: 2},
		{msg: "no numbers at all", want: defaultBudget},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			require.Equal(t, tt.want, extractBudget(tt.msg, tt.msg))
		})
	}
}

func TestParseDeadline(t *testing.T) {
	require.Equal(t, "2025-01-13", parseDeadline("in 3 days", today).String())
	require.Equal(t, "2025-01-17", parseDeadline("deliver within a week", today).String())
	require.Equal(t, "2025-01-15", parseDeadline("whenever", today).String())
}

func TestParseSize(t *testing.T) {
	tests := map[string]string{
		"size m please":      "M",
		"large fits me":      "L",
		"small":              "S",
		"extra large":        "XL",
		"xl":                 "XL",
		"no size given here": shopping.SizeNotApplicable,
	}
	for msg, want := range tests {
		require.Equal(t, want, parseSize(msg, msg), msg)
	}
}

func TestParseOfflineOfficeHasNoSize(t *testing.T) {
	res := ParseOffline("office chair and webcam, budget 500, size large", today)
	require.NotNil(t, res.Spec)
	require.Equal(t, "office_desk", res.Spec.Scenario)
	require.Equal(t, shopping.SizeNotApplicable, res.Spec.Constraints.Size)
	require.Equal(t, shopping.PriorityMustHave, res.Spec.ItemsNeeded[0].Priority)
}
