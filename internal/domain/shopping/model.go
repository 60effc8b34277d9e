package shopping

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SizeNotApplicable marks requests whose products do not use apparel sizing.
const SizeNotApplicable = "N/A"

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar date.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD and full RFC 3339 timestamps.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if idx := strings.Index(raw, "T"); idx > 0 {
		raw = raw[:idx]
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ItemSpec describes one category the shopper needs.
type ItemSpec struct {
	Category     Category `json:"category"`
	Priority     Priority `json:"priority"`
	Requirements []string `json:"requirements"`
}

// Budget is the total spend the shopper allows.
type Budget struct {
	Total    float64 `json:"total"`
	Currency string  `json:"currency"`
}

// Constraints bound the whole shopping request. Style, brand and color
// preferences are carried through but not scored.
type Constraints struct {
	Budget           Budget   `json:"budget"`
	Size             string   `json:"size"`
	DeliveryDeadline Date     `json:"deliveryDeadline"`
	StylePreferences []string `json:"stylePreferences"`
	BrandPreferences []string `json:"brandPreferences"`
	ColorPreferences []string `json:"colorPreferences"`
}

// SizeApplies reports whether a concrete size was requested.
func (c Constraints) SizeApplies() bool {
	size := strings.TrimSpace(c.Size)
	return size != "" && !strings.EqualFold(size, SizeNotApplicable)
}

// ShoppingSpec is the structured form of a shopping request.
type ShoppingSpec struct {
	Scenario    string      `json:"scenario"`
	ItemsNeeded []ItemSpec  `json:"itemsNeeded"`
	Constraints Constraints `json:"constraints"`
}

// Item returns the spec for a category, if requested.
func (s ShoppingSpec) Item(category Category) (ItemSpec, bool) {
	for _, item := range s.ItemsNeeded {
		if item.Category == category {
			return item, true
		}
	}
	return ItemSpec{}, false
}

// ClarifyingQuestion is returned instead of a spec when key details are missing.
type ClarifyingQuestion struct {
	Question        string `json:"question"`
	IsClarification bool   `json:"isClarification"`
}

// Product is one retailer offer. Products are treated as immutable once discovered.
type Product struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Retailer      string   `json:"retailer"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewsCount  *int     `json:"reviewsCount,omitempty"`
	DeliveryDays  *int     `json:"deliveryDays,omitempty"`
	DeliveryCost  *float64 `json:"deliveryCost,omitempty"`
	DeliveryText  string   `json:"deliveryText,omitempty"`
	Sizes         []string `json:"sizes,omitempty"`
	Colors        []string `json:"colors,omitempty"`
	Brand         string   `json:"brand,omitempty"`
	Description   string   `json:"description,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	ProductURL    string   `json:"productUrl,omitempty"`
	Highlights    []string `json:"highlights,omitempty"`
}

// LikedSnapshot is the minimal view of a product the shopper liked earlier.
type LikedSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Retailer string  `json:"retailer"`
	Price    float64 `json:"price"`
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
