package serpapi

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var knownBrands = []string{
	"Arc'teryx", "Patagonia", "The North Face", "Helly Hansen",
	"Columbia", "Burton", "Smith", "Oakley", "Giro", "Anon",
	"Black Diamond", "Hestra", "Dakine", "Smartwool", "Darn Tough",
	"Icebreaker", "Under Armour", "BUFF", "Outdoor Research",
}

// ExtractBrand returns the first known brand named in title.
func ExtractBrand(title string) string {
	lower := strings.ToLower(title)
	for _, brand := range knownBrands {
		if strings.Contains(lower, strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

var (
	dayCount = regexp.MustCompile(`(\d+)\s*(?:business\s+)?days?`)
	weekdays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
)

// ParseDeliveryDays reads an estimate in days from free delivery text such as
// "Free 2-day delivery", "Get it by Thu" or "5 business days".
func ParseDeliveryDays(text string, today time.Time) *int {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)
	days := func(n int) *int { return &n }

	switch {
	case strings.Contains(lower, "next-day") || strings.Contains(lower, "tomorrow") || strings.Contains(lower, "1-day"):
		return days(1)
	case strings.Contains(lower, "2-day") || strings.Contains(lower, "2 day"):
		return days(2)
	case strings.Contains(lower, "3-day") || strings.Contains(lower, "3 day"):
		return days(3)
	}
	if m := dayCount.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return days(n)
		}
	}

	// Monday is index 0 in weekdays, time.Weekday starts on Sunday.
	todayIndex := (int(today.Weekday()) + 6) % 7
	for i, day := range weekdays {
		if strings.Contains(lower, day) {
			ahead := (i - todayIndex + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return days(ahead)
		}
	}
	return nil
}
