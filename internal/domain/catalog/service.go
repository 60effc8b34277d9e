package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	apperrors "github.com/yanqian/agentic-commerce/pkg/errors"
)

const (
	msgInvalidURL  = "Invalid product URL"
	msgUnavailable = "Product no longer available or page unavailable"
	msgScrape      = "Could not fetch product details from page"
	customScore    = 50.0
)

// ErrNoProduct is returned by extractors when a page carries no Product data.
var ErrNoProduct = errors.New("no schema.org product on page")

// Extractor reads structured product data from a page.
type Extractor interface {
	Extract(ctx context.Context, url string) (ProductDetails, error)
}

// LivenessChecker is satisfied by linkcheck.Service.
type LivenessChecker interface {
	Check(ctx context.Context, url string) bool
}

// Service looks up products by URL.
type Service interface {
	Details(ctx context.Context, url string) DetailsResponse
	CustomProduct(ctx context.Context, url string) (shopping.ScoredProduct, error)
}

type service struct {
	checker   LivenessChecker
	extractor Extractor
	logger    *slog.Logger
}

// NewService wires product lookups.
func NewService(checker LivenessChecker, extractor Extractor, logger *slog.Logger) Service {
	return &service{
		checker:   checker,
		extractor: extractor,
		logger:    logger.With("component", "catalog.service"),
	}
}

// Details never fails outright: problems are reported inside the response.
func (s *service) Details(ctx context.Context, rawURL string) DetailsResponse {
	url := strings.TrimSpace(rawURL)
	if !linkcheck.ValidProductURL(url) {
		return DetailsResponse{Exists: false, Error: msgInvalidURL}
	}
	if !s.checker.Check(ctx, url) {
		return DetailsResponse{Exists: false, Error: msgUnavailable}
	}
	details, err := s.extractor.Extract(ctx, url)
	if err != nil {
		if errors.Is(err, ErrNoProduct) {
			return DetailsResponse{Exists: true}
		}
		s.logger.Warn("product details extraction failed", "url", url, "error", err)
		return DetailsResponse{Exists: true, Error: err.Error()}
	}
	return DetailsResponse{Exists: true, Details: &details}
}

// CustomProduct builds a neutral-scored candidate for a user supplied link.
func (s *service) CustomProduct(ctx context.Context, rawURL string) (shopping.ScoredProduct, error) {
	url := strings.TrimSpace(rawURL)
	if !linkcheck.ValidProductURL(url) {
		return shopping.ScoredProduct{}, apperrors.Wrap(apperrors.CodeInvalidInput, msgInvalidURL, nil)
	}
	if !s.checker.Check(ctx, url) {
		return shopping.ScoredProduct{}, apperrors.Wrap(apperrors.CodeInvalidInput, msgUnavailable, nil)
	}
	details, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return shopping.ScoredProduct{}, apperrors.Wrap(apperrors.CodeScrapeFailed, msgScrape, err)
	}

	name := details.Name
	if name == "" {
		name = "Product"
	}
	price := 0.0
	if details.Price != nil {
		price = *details.Price
	}
	product := shopping.Product{
		ID:           CustomProductID(url),
		Name:         name,
		Retailer:     RetailerFromURL(url),
		Price:        price,
		Rating:       details.Rating,
		ReviewsCount: details.ReviewCount,
		Brand:        details.Brand,
		Description:  details.Description,
		ImageURL:     details.Image,
		ProductURL:   url,
	}
	s.logger.Info("custom product added", "id", product.ID, "retailer", product.Retailer, "price", price)
	return shopping.ScoredProduct{
		Product:    product,
		TotalScore: customScore,
		Breakdown: shopping.ScoreBreakdown{
			Reviews:    shopping.MaxReviews / 2,
			Price:      shopping.MaxPrice / 2,
			Delivery:   shopping.MaxDelivery / 2,
			Preference: shopping.MaxPreference / 2,
			Coherence:  shopping.MaxCoherence / 2,
		},
		Rank: 1,
	}, nil
}

// CustomProductID derives a stable id from the URL.
func CustomProductID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "custom_" + hex.EncodeToString(sum[:])[:12]
}

// RetailerFromURL turns "https://www.rei.com/p" into "Rei".
func RetailerFromURL(raw string) string {
	u, ok := linkcheck.ParseProductURL(raw)
	if !ok {
		return "Unknown"
	}
	host := strings.Replace(u.Hostname(), "www.", "", 1)
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return "Unknown"
	}
	return strings.ToUpper(label[:1]) + strings.ToLower(label[1:])
}
