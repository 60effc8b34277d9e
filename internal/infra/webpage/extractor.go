package webpage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yanqian/agentic-commerce/internal/domain/catalog"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	maxPageBytes     = 2 << 20
)

// Extractor reads schema.org Product JSON-LD from retailer pages. It
// implements catalog.Extractor.
type Extractor struct {
	httpClient *http.Client
}

// NewExtractor builds an extractor with a 10s page timeout.
func NewExtractor() *Extractor {
	return &Extractor{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Extract downloads url and returns the first Product found in its JSON-LD blocks.
func (e *Extractor) Extract(ctx context.Context, url string) (catalog.ProductDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return catalog.ProductDetails{}, fmt.Errorf("build page request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return catalog.ProductDetails{}, fmt.Errorf("fetch product page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return catalog.ProductDetails{}, fmt.Errorf("fetch product page: status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return catalog.ProductDetails{}, fmt.Errorf("read product page: %w", err)
	}
	return ParseProduct(body)
}

// ParseProduct scans JSON-LD scripts in an HTML document. Malformed blocks are
// skipped.
func ParseProduct(html []byte) (catalog.ProductDetails, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return catalog.ProductDetails{}, fmt.Errorf("parse product page: %w", err)
	}

	var (
		found   catalog.ProductDetails
		matched bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(sel.Text())), &data); err != nil {
			return true
		}
		if node, ok := findProduct(data); ok {
			found = toDetails(node)
			matched = true
			return false
		}
		return true
	})
	if !matched {
		return catalog.ProductDetails{}, catalog.ErrNoProduct
	}
	return found, nil
}

// findProduct walks lists and @graph containers looking for @type Product.
func findProduct(data any) (map[string]any, bool) {
	switch v := data.(type) {
	case []any:
		for _, item := range v {
			if node, ok := findProduct(item); ok {
				return node, true
			}
		}
	case map[string]any:
		if isProductType(v["@type"]) {
			return v, true
		}
		if graph, ok := v["@graph"]; ok {
			return findProduct(graph)
		}
	}
	return nil, false
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func toDetails(node map[string]any) catalog.ProductDetails {
	offers := firstObject(node["offers"])
	rating := firstObject(node["aggregateRating"])

	details := catalog.ProductDetails{
		Name:        stringOf(node["name"]),
		Description: stringOf(node["description"]),
		Brand:       nameOf(node["brand"]),
		Image:       imageOf(node["image"]),
	}
	if offers != nil {
		details.Price = floatOf(offers["price"])
		if details.Price == nil {
			details.Price = floatOf(offers["lowPrice"])
		}
		details.Currency = stringOf(offers["priceCurrency"])
		details.Availability = stringOf(offers["availability"])
	}
	if rating != nil {
		details.Rating = floatOf(rating["ratingValue"])
		if n := floatOf(rating["reviewCount"]); n != nil {
			count := int(*n)
			details.ReviewCount = &count
		}
	}
	return details
}

func firstObject(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return m
			}
		}
	}
	return nil
}

func stringOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func nameOf(v any) string {
	if m := firstObject(v); m != nil {
		return stringOf(m["name"])
	}
	return stringOf(v)
}

func imageOf(v any) string {
	switch t := v.(type) {
	case []any:
		if len(t) > 0 {
			return imageOf(t[0])
		}
	case map[string]any:
		return stringOf(t["url"])
	}
	return stringOf(v)
}

func floatOf(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		if err == nil {
			return &f
		}
	}
	return nil
}
