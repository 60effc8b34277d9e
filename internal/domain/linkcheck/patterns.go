package linkcheck

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minPatternBody is the smallest body the unavailable patterns are run against.
	minPatternBody = 50
	// classifierMinText and classifierMaxText bound what the text classifier sees.
	classifierMinText = 100
	classifierMaxText = 2500
)

var unavailablePatterns = compileAll(
	`product\s+no\s+longer\s+(exists|available|sold)`,
	`no\s+longer\s+(available|exists|sold|in\s+stock)`,
	`this\s+item\s+is\s+no\s+longer`,
	`discontinued`,
	`page\s+not\s+found`,
	`sorry[,.]?\s*we\s+(couldn't|could\s+not)\s+find`,
	`we\s+couldn't\s+find\s+that`,
	`item\s+not\s+found`,
	`product\s+not\s+found`,
	`no\s+longer\s+in\s+(our\s+)?(catalog|store)`,
	`has\s+been\s+removed`,
	`no\s+longer\s+carry`,
	`currently\s+unavailable`,
	`out\s+of\s+stock`,
)

var productSignals = compileAll(
	`add\s+to\s+(cart|bag)`,
	`buy\s+now`,
	`[\$£]\s*[\d,]+(?:\.\d{2})?`,
	`price[:\s]`,
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(`(?is)`+p))
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// visibleText returns the lower-cased text a shopper would read on the page.
func visibleText(body []byte) string {
	var text string
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		text = tagPattern.ReplaceAllString(string(body), " ")
	} else {
		doc.Find("script, style, noscript, template").Remove()
		text = doc.Text()
	}
	text = strings.NewReplacer("&nbsp;", " ", "\u00a0", " ", "\u2019", "'").Replace(text)
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

func indicatesUnavailable(body []byte, text string) bool {
	if len(body) < minPatternBody {
		return false
	}
	return matchesAny(unavailablePatterns, text)
}

func hasProductSignals(text string) bool {
	return text != "" && matchesAny(productSignals, text)
}

// ParseProductURL accepts only absolute http(s) URLs with a host.
func ParseProductURL(raw string) (*url.URL, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, false
	}
	return u, true
}

// ValidProductURL reports whether raw is a usable product link.
func ValidProductURL(raw string) bool {
	_, ok := ParseProductURL(raw)
	return ok
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
