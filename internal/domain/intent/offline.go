package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

const (
	defaultBudget       = 400.0
	defaultDeadlineDays = 5
	budgetQuestion      = "What's your total budget? For example: '$400' or 'budget $300'"
)

var (
	budgetCues = []string{"$", "budget", "spend", "dollar", "usd", "400", "500", "300", "200", "100"}
	sizeCues   = []string{"small", "medium", "large", "xl", "xxl", "size m", "size l", "size s"}

	budgetPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)budget\s*(?:within|under|of|is)?\s*[£$]?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*quid`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:pound|pounds)\b`),
		regexp.MustCompile(`(?i)(?:under|within|max|up to)\s*[£$]?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)(?:less than|below)\s*[£$]?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)£\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)\$\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*dollars?\b`),
	}
	bareNumber    = regexp.MustCompile(`\b(\d+)\b`)
	daysPattern   = regexp.MustCompile(`(\d+)\s*days?`)
	sizeMPattern  = regexp.MustCompile(`(?i)\bsize\s*m\b`)
	sizeSPattern  = regexp.MustCompile(`(?i)\bsize\s*s\b`)
	xlPattern     = regexp.MustCompile(`(?i)\bxl\b`)
	xxlPattern    = regexp.MustCompile(`(?i)\bxxl\b`)
	xsPattern     = regexp.MustCompile(`(?i)\bxs\b`)
	gpuModelNames = map[int]struct{}{4070: {}, 4080: {}, 4090: {}, 5080: {}, 5090: {}}
)

type scenarioTemplate struct {
	name        string
	cues        []string
	items       []shopping.ItemSpec
	apparelSize bool
}

func item(c shopping.Category, p shopping.Priority, reqs ...string) shopping.ItemSpec {
	if reqs == nil {
		reqs = []string{}
	}
	return shopping.ItemSpec{Category: c, Priority: p, Requirements: reqs}
}

// scenarioTemplates are tried in order; the last one is the default.
var scenarioTemplates = []scenarioTemplate{
	{
		name:  "gaming_setup",
		cues:  []string{"rtx", "gpu", "graphics card", "5090", "4080", "4090"},
		items: []shopping.ItemSpec{item(shopping.CategoryGPU, shopping.PriorityMustHave)},
	},
	{
		name: "gaming_setup",
		cues: []string{"gaming", "headset", "keyboard", "monitor", "desk", "laptop", "pc"},
		items: []shopping.ItemSpec{
			item(shopping.CategoryHeadset, shopping.PriorityMustHave, "gaming"),
			item(shopping.CategoryKeyboard, shopping.PriorityMustHave),
			item(shopping.CategoryMonitor, shopping.PriorityNiceToHave),
		},
	},
	{
		name: "running_gear",
		cues: []string{"running", "jogging", "shoes"},
		items: []shopping.ItemSpec{
			item(shopping.CategoryRunningShoes, shopping.PriorityMustHave),
			item(shopping.CategoryTShirt, shopping.PriorityNiceToHave, "moisture-wicking"),
		},
		apparelSize: true,
	},
	{
		name: "office_desk",
		cues: []string{"office", "chair", "webcam"},
		items: []shopping.ItemSpec{
			item(shopping.CategoryDeskChair, shopping.PriorityMustHave),
			item(shopping.CategoryMonitor, shopping.PriorityNiceToHave),
			item(shopping.CategoryWebcam, shopping.PriorityNiceToHave),
		},
	},
	{
		name: "skiing_outfit",
		items: []shopping.ItemSpec{
			item(shopping.CategoryJacket, shopping.PriorityMustHave, "waterproof", "warm"),
			item(shopping.CategoryPants, shopping.PriorityMustHave, "waterproof"),
			item(shopping.CategoryGloves, shopping.PriorityMustHave, "warm"),
			item(shopping.CategoryGoggles, shopping.PriorityMustHave),
		},
		apparelSize: true,
	},
}

// ParseOffline turns a sanitized message into a spec using keyword rules only.
// It asks for a budget when the message carries no budget cue.
func ParseOffline(message string, today time.Time) Result {
	lower := strings.ToLower(message)
	if !containsAny(lower, budgetCues) {
		return Result{Question: &shopping.ClarifyingQuestion{Question: budgetQuestion, IsClarification: true}}
	}

	tmpl := scenarioTemplates[len(scenarioTemplates)-1]
	for _, candidate := range scenarioTemplates[:len(scenarioTemplates)-1] {
		if containsAny(lower, candidate.cues) {
			tmpl = candidate
			break
		}
	}

	size := shopping.SizeNotApplicable
	if tmpl.apparelSize {
		size = parseSize(message, lower)
	}

	items := make([]shopping.ItemSpec, len(tmpl.items))
	for i, it := range tmpl.items {
		items[i] = shopping.ItemSpec{
			Category:     it.Category,
			Priority:     it.Priority,
			Requirements: append([]string{}, it.Requirements...),
		}
	}

	spec := shopping.ShoppingSpec{
		Scenario:    tmpl.name,
		ItemsNeeded: items,
		Constraints: shopping.Constraints{
			Budget:           shopping.Budget{Total: extractBudget(message, lower), Currency: "USD"},
			Size:             size,
			DeliveryDeadline: parseDeadline(lower, today),
			StylePreferences: []string{},
			BrandPreferences: []string{},
			ColorPreferences: []string{},
		},
	}
	return Result{Spec: &spec}
}

// extractBudget prefers numbers next to budget words and never reads GPU model
// numbers as a budget.
func extractBudget(message, lower string) float64 {
	for _, p := range budgetPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v
			}
		}
	}

	numbers := bareNumber.FindAllStringSubmatch(message, -1)
	if len(numbers) == 0 {
		return defaultBudget
	}
	if containsAny(lower, []string{"rtx", "gpu", "graphics"}) {
		for _, m := range numbers {
			v, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if _, model := gpuModelNames[v]; v < 100 || (v < 10000 && !model) {
				return float64(v)
			}
		}
		return defaultBudget
	}
	v, err := strconv.ParseFloat(numbers[0][1], 64)
	if err != nil {
		return defaultBudget
	}
	return v
}

func parseDeadline(lower string, today time.Time) shopping.Date {
	base := shopping.NewDate(today)
	if m := daysPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return shopping.Date{Time: base.AddDate(0, 0, n)}
		}
	}
	if strings.Contains(lower, "week") && (strings.Contains(lower, "within") || strings.Contains(lower, "in a week")) {
		return shopping.Date{Time: base.AddDate(0, 0, 7)}
	}
	return shopping.Date{Time: base.AddDate(0, 0, defaultDeadlineDays)}
}

// parseSize returns a concrete size only when the message states one.
func parseSize(message, lower string) string {
	if !containsAny(lower, sizeCues) {
		return shopping.SizeNotApplicable
	}
	switch {
	case strings.Contains(lower, "medium") || sizeMPattern.MatchString(message):
		return "M"
	case strings.Contains(lower, "large") && !strings.Contains(lower, "extra"):
		return "L"
	case strings.Contains(lower, "small") || sizeSPattern.MatchString(message):
		return "S"
	case strings.Contains(lower, "extra large") || strings.Contains(lower, "x-large") || xlPattern.MatchString(message):
		return "XL"
	case xxlPattern.MatchString(message):
		return "XXL"
	case xsPattern.MatchString(message):
		return "XS"
	}
	return shopping.SizeNotApplicable
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
