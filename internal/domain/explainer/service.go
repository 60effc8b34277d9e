package explainer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/agentic-commerce/internal/domain/intent"
	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/internal/infra/llm/chatgpt"
	"github.com/yanqian/agentic-commerce/pkg/metrics"
)

const (
	notFoundExplanation = "Product not found."
	maxExplanationRunes = 500
	defaultCategoryHint = 4
)

var systemPrompt = intent.HardenSystemPrompt(`You are a shopping assistant that explains why a chosen product is the best pick (rank #1).

Given the chosen product and optionally another product it was compared to, write a concise 2-3 sentence explanation of why this product is better for the customer.

Reference specific factors: price, delivery, reviews, preference match, set coherence. If comparing to another product, say clearly why this one wins (e.g. better price, faster delivery, higher ratings).

Be factual and helpful. Do not use marketing language.

Respond with ONLY the explanation text. No JSON, no formatting, no extra commentary.`)

// Config controls the generative path.
type Config struct {
	Model     string
	MaxTokens int
	MockMode  bool
}

// Request asks why ProductID ranks where it does within Ranked.
type Request struct {
	Category  shopping.Category
	ProductID string
	Ranked    []shopping.ScoredProduct
	Spec      *shopping.ShoppingSpec
}

// Response carries the rationale and the product it was contrasted with.
type Response struct {
	ProductID           string              `json:"productId"`
	Category            shopping.Category   `json:"category"`
	Explanation         string              `json:"explanation"`
	ComparedProductName *string             `json:"comparedProductName"`
	ComparedProductURL  *string             `json:"comparedProductUrl"`
	Usage               *metrics.TokenUsage `json:"usage,omitempty"`
}

// Comparer finds a live alternative to contrast against.
type Comparer interface {
	FirstValidCompared(ctx context.Context, products []shopping.ScoredProduct, excludeID string) (shopping.ScoredProduct, bool)
}

// ChatClient is implemented by the ChatGPT client.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Service explains rankings.
type Service interface {
	Explain(ctx context.Context, req Request) Response
}

type service struct {
	cfg      Config
	comparer Comparer
	client   ChatClient
	logger   *slog.Logger
}

// NewService wires the explainer. A nil client always uses the template.
func NewService(cfg Config, comparer Comparer, client ChatClient, logger *slog.Logger) Service {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	return &service{
		cfg:      cfg,
		comparer: comparer,
		client:   client,
		logger:   logger.With("component", "explainer.service"),
	}
}

// Explain never fails: a missing product yields a fixed message and model
// errors fall back to the template.
func (s *service) Explain(ctx context.Context, req Request) Response {
	res := Response{ProductID: req.ProductID, Category: req.Category}

	var product *shopping.ScoredProduct
	for i := range req.Ranked {
		if req.Ranked[i].Product.ID == req.ProductID {
			product = &req.Ranked[i]
			break
		}
	}
	if product == nil {
		res.Explanation = notFoundExplanation
		return res
	}

	var compared *shopping.ScoredProduct
	if s.comparer != nil {
		if validated, ok := s.comparer.FirstValidCompared(ctx, req.Ranked, req.ProductID); ok {
			compared = &validated
			if linkcheck.ValidProductURL(validated.Product.ProductURL) {
				url := validated.Product.ProductURL
				res.ComparedProductURL = &url
			}
		}
	}
	if compared == nil {
		for i := range req.Ranked {
			if req.Ranked[i].Product.ID != req.ProductID {
				compared = &req.Ranked[i]
				break
			}
		}
	}
	if compared != nil {
		name := compared.Product.Name
		res.ComparedProductName = &name
	}

	if s.cfg.MockMode || s.client == nil {
		res.Explanation = Template(*product, req.Category, product.Rank, compared)
		return res
	}

	text, usage, err := s.generate(ctx, *product, req, compared)
	if err != nil {
		s.logger.Error("explanation model failed, using template", "product_id", req.ProductID, "error", err)
		res.Explanation = Template(*product, req.Category, product.Rank, compared)
		return res
	}
	res.Explanation = text
	if !usage.IsZero() {
		res.Usage = &usage
	}
	return res
}

func (s *service) generate(ctx context.Context, sp shopping.ScoredProduct, req Request, compared *shopping.ScoredProduct) (string, metrics.TokenUsage, error) {
	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:     s.cfg.Model,
		MaxTokens: s.cfg.MaxTokens,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: intent.WrapUserInput(buildPrompt(sp, req, compared))},
		},
	})
	if err != nil {
		return "", metrics.TokenUsage{}, err
	}
	text, ok := completion.FirstContent()
	if !ok || text == "" {
		return "", metrics.TokenUsage{}, errors.New("chatgpt returned no explanation")
	}
	if runes := []rune(text); len(runes) > maxExplanationRunes {
		text = string(runes[:maxExplanationRunes])
	}
	return text, metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}, nil
}

func buildPrompt(sp shopping.ScoredProduct, req Request, compared *shopping.ScoredProduct) string {
	categories := defaultCategoryHint
	budget := 0.0
	deadline := "N/A"
	if req.Spec != nil {
		categories = max(len(req.Spec.ItemsNeeded), 1)
		budget = req.Spec.Constraints.Budget.Total
		if d := req.Spec.Constraints.DeliveryDeadline.String(); d != "" {
			deadline = d
		}
	}

	p := sp.Product
	b := sp.Breakdown
	var sb strings.Builder
	fmt.Fprintf(&sb, "Chosen product (rank #1): %s from %s\n", p.Name, p.Retailer)
	fmt.Fprintf(&sb, "Price: $%s, Delivery: %s\n", formatNumber(p.Price), orNA(p.DeliveryText))
	fmt.Fprintf(&sb, "Score: %s/100\n", formatNumber(sp.TotalScore))
	fmt.Fprintf(&sb, "Breakdown: reviews=%s/35, price=%s/25, delivery=%s/25, preference=%s/10, coherence=%s/5\n",
		formatNumber(b.Reviews), formatNumber(b.Price), formatNumber(b.Delivery), formatNumber(b.Preference), formatNumber(b.Coherence))
	fmt.Fprintf(&sb, "Category: %s\n", req.Category)
	fmt.Fprintf(&sb, "Budget per item: $%.2f, Delivery deadline: %s", budget/float64(categories), deadline)
	if compared != nil {
		cp := compared.Product
		fmt.Fprintf(&sb, "\nCompared to (alternative): %s from %s, price $%s, delivery: %s. Explain why the chosen product is better.",
			cp.Name, cp.Retailer, formatNumber(cp.Price), orNA(cp.DeliveryText))
	}
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
