package serpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 2025-01-08 is a Wednesday.
var wednesday = time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{APIKey: "serp-key", BaseURL: srv.URL, MaxResults: 2}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	c.now = func() time.Time { return wednesday }
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}

func TestSearchMapsShoppingResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "/search.json", r.URL.Path)
		require.Equal(t, "google_shopping", q.Get("engine"))
		require.Equal(t, "waterproof ski jacket", q.Get("q"))
		require.Equal(t, "mr:1,price:1,ppr_max:199", q.Get("tbs"))
		require.Equal(t, "serp-key", q.Get("api_key"))
		_, _ = w.Write([]byte(`{"shopping_results":[
			{"product_id":"123","title":"Patagonia Powder Town Jacket","source":"REI","extracted_price":199.5,"extracted_old_price":279,"rating":4.6,"reviews":812,"delivery":"Free delivery by Fri","thumbnail":"https://img/1.jpg","product_link":"https://google.example/p/123"},
			{"product_id":456,"title":"Generic Shell","extracted_price":89,"delivery":"Free 2-day shipping","link":"https://shop.example/shell"},
			{"title":"Dropped by max results"}
		]}`))
	})

	products, err := c.Search(context.Background(), "waterproof ski jacket", 199.99)
	require.NoError(t, err)
	require.Len(t, products, 2)

	first := products[0]
	require.Equal(t, "serp-123", first.ID)
	require.Equal(t, "Patagonia", first.Brand)
	require.Equal(t, 199.5, first.Price)
	require.Equal(t, 279.0, *first.OriginalPrice)
	require.Equal(t, 812, *first.ReviewsCount)
	require.Equal(t, 2, *first.DeliveryDays)
	require.Equal(t, "https://google.example/p/123", first.ProductURL)

	second := products[1]
	require.Equal(t, "serp-456", second.ID)
	require.Equal(t, "Unknown", second.Retailer)
	require.Nil(t, second.Rating)
	require.Equal(t, 2, *second.DeliveryDays)
	require.Equal(t, "https://shop.example/shell", second.ProductURL)
	require.Empty(t, second.Brand)
}

func TestSearchErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "bad" {
			_, _ = w.Write([]byte(`{"error":"Invalid API key"}`))
			return
		}
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Search(context.Background(), "bad", 0)
	require.ErrorContains(t, err, "Invalid API key")
	_, err = c.Search(context.Background(), "other", 0)
	require.ErrorContains(t, err, "status=502")
}

func TestSearchHonoursCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	c.limiter.SetBurst(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Search(ctx, "jacket", 0)
	require.Error(t, err)
}
