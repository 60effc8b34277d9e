package pageclassifier

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/infra/llm/chatgpt"
)

const (
	textPrompt = "You are checking whether a product page is still usable. " +
		"Answer YES if the text says the product is discontinued, no longer available, not found, " +
		"or the page is an error page. Answer NO if the product can still be viewed or bought. " +
		"Reply with exactly one word: YES or NO."
	visionPrompt = "This is a screenshot of an online store page. Answer YES if it shows an error page, " +
		"a 'product not found' or 'no longer available' message, or a generic landing page instead of a product. " +
		"Answer NO if it shows a specific product that can be purchased. Reply with exactly one word: YES or NO."
	maxAnswerTokens = 10
)

// ChatClient is the subset of the chat API the classifiers need.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Classifier answers availability questions with a chat model. A YES answer
// means the page is unavailable.
type Classifier struct {
	client      ChatClient
	textModel   string
	visionModel string
	logger      *slog.Logger
}

// New builds a classifier pair backed by one chat client.
func New(client ChatClient, textModel, visionModel string, logger *slog.Logger) *Classifier {
	if textModel == "" {
		textModel = "gpt-4o-mini"
	}
	if visionModel == "" {
		visionModel = "gpt-4o"
	}
	return &Classifier{
		client:      client,
		textModel:   textModel,
		visionModel: visionModel,
		logger:      logger.With("component", "pageclassifier"),
	}
}

// ClassifyText implements linkcheck.TextClassifier.
func (c *Classifier) ClassifyText(ctx context.Context, text string) (linkcheck.Verdict, error) {
	return c.ask(ctx, c.textModel, []chatgpt.Message{
		{Role: "system", Content: textPrompt},
		{Role: "user", Content: "Page text:\n" + text},
	})
}

// ClassifyScreenshot implements linkcheck.VisionClassifier.
func (c *Classifier) ClassifyScreenshot(ctx context.Context, png []byte) (linkcheck.Verdict, error) {
	if len(png) == 0 {
		return linkcheck.VerdictUnknown, errors.New("empty screenshot")
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return c.ask(ctx, c.visionModel, []chatgpt.Message{
		{Role: "user", Parts: []chatgpt.ContentPart{
			chatgpt.TextPart(visionPrompt),
			chatgpt.ImagePart(dataURL, "low"),
		}},
	})
}

func (c *Classifier) ask(ctx context.Context, model string, messages []chatgpt.Message) (linkcheck.Verdict, error) {
	resp, err := c.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: maxAnswerTokens,
	})
	if err != nil {
		return linkcheck.VerdictUnknown, fmt.Errorf("classify page: %w", err)
	}
	answer, ok := resp.FirstContent()
	if !ok {
		return linkcheck.VerdictUnknown, errors.New("classifier returned no choices")
	}
	verdict := parseAnswer(answer)
	c.logger.Debug("page classified", "model", model, "answer", answer, "verdict", verdict.String())
	return verdict, nil
}

func parseAnswer(answer string) linkcheck.Verdict {
	word := strings.ToUpper(strings.Trim(strings.TrimSpace(answer), ".!\"'"))
	switch {
	case strings.HasPrefix(word, "YES"):
		return linkcheck.VerdictUnavailable
	case strings.HasPrefix(word, "NO"):
		return linkcheck.VerdictAvailable
	default:
		return linkcheck.VerdictUnknown
	}
}
