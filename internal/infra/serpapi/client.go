package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
)

const defaultBaseURL = "https://serpapi.com"

// Config holds SerpAPI credentials and quotas.
type Config struct {
	APIKey            string
	BaseURL           string
	MaxResults        int
	RequestsPerSecond float64
	Burst             int
}

// Client searches Google Shopping through SerpAPI.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient constructs a SerpAPI client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("serpapi key cannot be empty")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  logger.With("component", "serpapi.client"),
		now:     time.Now,
	}, nil
}

type shoppingResult struct {
	ProductID         json.RawMessage `json:"product_id"`
	Title             string          `json:"title"`
	Source            string          `json:"source"`
	ExtractedPrice    *float64        `json:"extracted_price"`
	ExtractedOldPrice *float64        `json:"extracted_old_price"`
	Rating            *float64        `json:"rating"`
	Reviews           *int            `json:"reviews"`
	Delivery          string          `json:"delivery"`
	Thumbnail         string          `json:"thumbnail"`
	Link              string          `json:"link"`
	ProductLink       string          `json:"product_link"`
}

type searchResponse struct {
	Error           string           `json:"error"`
	ShoppingResults []shoppingResult `json:"shopping_results"`
}

// Search implements discovery.Provider.
func (c *Client) Search(ctx context.Context, query string, priceMax float64) ([]shopping.Product, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("serpapi rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("gl", "us")
	params.Set("hl", "en")
	if priceMax > 0 {
		params.Set("tbs", fmt.Sprintf("mr:1,price:1,ppr_max:%d", int(priceMax)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build serpapi request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request serpapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("serpapi request failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode serpapi response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error: %s", out.Error)
	}

	results := out.ShoppingResults
	if len(results) > c.cfg.MaxResults {
		results = results[:c.cfg.MaxResults]
	}
	today := c.now()
	products := make([]shopping.Product, 0, len(results))
	for i, r := range results {
		products = append(products, r.toProduct(i, today))
	}
	c.logger.Info("serpapi search completed", "query", query, "results", len(products))
	return products, nil
}

func (r shoppingResult) toProduct(index int, today time.Time) shopping.Product {
	id := productID(r.ProductID)
	if id == "" {
		id = fmt.Sprintf("unknown-%d", index)
	}
	name := r.Title
	if name == "" {
		name = "Unknown Product"
	}
	retailer := r.Source
	if retailer == "" {
		retailer = "Unknown"
	}
	price := 0.0
	if r.ExtractedPrice != nil {
		price = *r.ExtractedPrice
	}
	link := r.Link
	if link == "" {
		link = r.ProductLink
	}
	return shopping.Product{
		ID:            "serp-" + id,
		Name:          name,
		Retailer:      retailer,
		Price:         price,
		OriginalPrice: r.ExtractedOldPrice,
		Rating:        r.Rating,
		ReviewsCount:  r.Reviews,
		DeliveryText:  r.Delivery,
		DeliveryDays:  ParseDeliveryDays(r.Delivery, today),
		ImageURL:      r.Thumbnail,
		ProductURL:    link,
		Brand:         ExtractBrand(r.Title),
	}
}

// productID accepts both string and numeric ids.
func productID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}
