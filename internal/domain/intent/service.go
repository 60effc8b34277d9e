package intent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yanqian/agentic-commerce/internal/domain/shopping"
	"github.com/yanqian/agentic-commerce/internal/infra/llm/chatgpt"
	"github.com/yanqian/agentic-commerce/pkg/metrics"
)

// Config controls the intent parser.
type Config struct {
	Model          string
	Temperature    float32
	MaxTokens      int
	MaxInputLength int
	MockMode       bool
}

// Result is either a ShoppingSpec or a ClarifyingQuestion, never both.
type Result struct {
	Spec     *shopping.ShoppingSpec
	Question *shopping.ClarifyingQuestion
	Usage    metrics.TokenUsage
}

// Service turns free text into a shopping spec.
type Service interface {
	Parse(ctx context.Context, message string) (Result, error)
}

// ChatClient is implemented by the ChatGPT client.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg    Config
	client ChatClient
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires the parser. A nil client or mock mode uses keyword rules only.
func NewService(cfg Config, client ChatClient, logger *slog.Logger) Service {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}
	return &service{
		cfg:    cfg,
		client: client,
		logger: logger.With("component", "intent.service"),
		now:    time.Now,
	}
}

func (s *service) Parse(ctx context.Context, message string) (Result, error) {
	sanitized, err := Sanitize(message, s.cfg.MaxInputLength)
	if err != nil {
		return Result{}, err
	}
	today := s.now()
	if s.cfg.MockMode || s.client == nil {
		return ParseOffline(sanitized, today), nil
	}

	res, err := s.parseWithModel(ctx, sanitized, today)
	if err != nil {
		s.logger.Error("intent model failed, using offline parser", "error", err)
		return ParseOffline(sanitized, today), nil
	}
	return res, nil
}

func (s *service) parseWithModel(ctx context.Context, message string, today time.Time) (Result, error) {
	date := shopping.NewDate(today).String()
	user := fmt.Sprintf("Today's date is %s. Use this date when computing any relative delivery deadlines (e.g. 'within 5 days' -> %s + 5 days).\n\n", date, date) +
		WrapUserInput(message)

	completion, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:          s.cfg.Model,
		Temperature:    s.cfg.Temperature,
		MaxTokens:      s.cfg.MaxTokens,
		ResponseFormat: &chatgpt.ResponseFormat{Type: "json_object"},
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return Result{}, err
	}
	content, ok := completion.FirstContent()
	if !ok {
		return Result{}, errors.New("chatgpt returned no choices")
	}
	res, err := decodeResult(content, today)
	if err != nil {
		return Result{}, err
	}
	res.Usage = metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}
	s.logger.Info("intent parsed", "clarification", res.Question != nil, "total_tokens", res.Usage.TotalTokens)
	return res, nil
}

type wireItem struct {
	Category     shopping.Category `json:"category"`
	Priority     shopping.Priority `json:"priority"`
	Requirements []string          `json:"requirements"`
}

type wireConstraints struct {
	Budget struct {
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	} `json:"budget"`
	Size             string   `json:"size"`
	DeliveryDeadline string   `json:"delivery_deadline"`
	StylePreferences []string `json:"style_preferences"`
	BrandPreferences []string `json:"brand_preferences"`
	ColorPreferences []string `json:"color_preferences"`
}

type wireSpec struct {
	Scenario    string          `json:"scenario"`
	ItemsNeeded []wireItem      `json:"items_needed"`
	Constraints wireConstraints `json:"constraints"`
}

type wireQuestion struct {
	Question string `json:"question"`
}

// decodeResult validates model output. Anything that is not a well-formed
// clarification or spec is an error.
func decodeResult(raw string, today time.Time) (Result, error) {
	payload := []byte(stripFences(raw))

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(payload, &keys); err != nil {
		return Result{}, fmt.Errorf("decode intent json: %w", err)
	}
	_, hasQuestion := keys["question"]
	_, hasFlag := keys["is_clarification"]
	if hasQuestion || hasFlag {
		var q wireQuestion
		if err := json.Unmarshal(payload, &q); err != nil {
			return Result{}, fmt.Errorf("decode clarification: %w", err)
		}
		if strings.TrimSpace(q.Question) == "" {
			return Result{}, errors.New("clarification has no question")
		}
		return Result{Question: &shopping.ClarifyingQuestion{Question: strings.TrimSpace(q.Question), IsClarification: true}}, nil
	}

	var w wireSpec
	if err := json.Unmarshal(payload, &w); err != nil {
		return Result{}, fmt.Errorf("decode spec: %w", err)
	}
	spec, err := w.toSpec(today)
	if err != nil {
		return Result{}, err
	}
	return Result{Spec: &spec}, nil
}

func (w wireSpec) toSpec(today time.Time) (shopping.ShoppingSpec, error) {
	if len(w.ItemsNeeded) == 0 {
		return shopping.ShoppingSpec{}, errors.New("spec has no items")
	}
	items := make([]shopping.ItemSpec, 0, len(w.ItemsNeeded))
	for _, it := range w.ItemsNeeded {
		if !it.Category.Valid() {
			return shopping.ShoppingSpec{}, fmt.Errorf("unknown category %q", it.Category)
		}
		if !it.Priority.Valid() {
			return shopping.ShoppingSpec{}, fmt.Errorf("unknown priority %q", it.Priority)
		}
		items = append(items, shopping.ItemSpec{
			Category:     it.Category,
			Priority:     it.Priority,
			Requirements: nonNil(it.Requirements),
		})
	}

	c := w.Constraints
	if c.Budget.Total <= 0 {
		return shopping.ShoppingSpec{}, fmt.Errorf("budget must be positive, got %v", c.Budget.Total)
	}
	currency := strings.ToUpper(strings.TrimSpace(c.Budget.Currency))
	if currency == "" {
		currency = "USD"
	}
	size := strings.ToUpper(strings.TrimSpace(c.Size))
	if size == "" {
		size = shopping.SizeNotApplicable
	}

	base := shopping.NewDate(today)
	fallback := shopping.Date{Time: base.AddDate(0, 0, defaultDeadlineDays)}
	deadline := fallback
	if strings.TrimSpace(c.DeliveryDeadline) != "" {
		parsed, err := shopping.ParseDate(c.DeliveryDeadline)
		if err != nil {
			return shopping.ShoppingSpec{}, err
		}
		deadline = parsed
	}
	if deadline.Before(base.Time) {
		deadline = fallback
	}

	scenario := strings.TrimSpace(w.Scenario)
	if scenario == "" {
		scenario = "shopping"
	}
	return shopping.ShoppingSpec{
		Scenario:    scenario,
		ItemsNeeded: items,
		Constraints: shopping.Constraints{
			Budget:           shopping.Budget{Total: c.Budget.Total, Currency: currency},
			Size:             size,
			DeliveryDeadline: deadline,
			StylePreferences: nonNil(c.StylePreferences),
			BrandPreferences: nonNil(c.BrandPreferences),
			ColorPreferences: nonNil(c.ColorPreferences),
		},
	}, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
