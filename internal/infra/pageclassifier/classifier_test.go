package pageclassifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/agentic-commerce/internal/domain/linkcheck"
	"github.com/yanqian/agentic-commerce/internal/infra/llm/chatgpt"
)

type chatStub struct {
	createFn func(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

func (s chatStub) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	return s.createFn(ctx, req)
}

func reply(content string) chatgpt.ChatCompletionResponse {
	return chatgpt.ChatCompletionResponse{Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: content}}}}
}

func TestParseAnswer(t *testing.T) {
	require.Equal(t, linkcheck.VerdictUnavailable, parseAnswer("YES"))
	require.Equal(t, linkcheck.VerdictUnavailable, parseAnswer(" yes."))
	require.Equal(t, linkcheck.VerdictAvailable, parseAnswer("No"))
	require.Equal(t, linkcheck.VerdictUnknown, parseAnswer("maybe"))
	require.Equal(t, linkcheck.VerdictUnknown, parseAnswer(""))
}

func TestClassifyTextUsesTextModel(t *testing.T) {
	var req chatgpt.ChatCompletionRequest
	c := New(chatStub{createFn: func(_ context.Context, r chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
		req = r
		return reply("YES"), nil
	}}, "", "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	verdict, err := c.ClassifyText(context.Background(), "this product has been discontinued")
	require.NoError(t, err)
	require.Equal(t, linkcheck.VerdictUnavailable, verdict)
	require.Equal(t, "gpt-4o-mini", req.Model)
	require.Equal(t, maxAnswerTokens, req.MaxTokens)
}

func TestClassifyScreenshotSendsImage(t *testing.T) {
	var req chatgpt.ChatCompletionRequest
	c := New(chatStub{createFn: func(_ context.Context, r chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
		req = r
		return reply("NO"), nil
	}}, "", "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	verdict, err := c.ClassifyScreenshot(context.Background(), []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, linkcheck.VerdictAvailable, verdict)
	require.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages[0].Parts, 2)
	require.Equal(t, "data:image/png;base64,AQID", req.Messages[0].Parts[1].ImageURL.URL)

	_, err = c.ClassifyScreenshot(context.Background(), nil)
	require.Error(t, err)
}

func TestClassifyErrorIsUnknown(t *testing.T) {
	c := New(chatStub{createFn: func(context.Context, chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
		return chatgpt.ChatCompletionResponse{}, errors.New("timeout")
	}}, "m", "v", slog.New(slog.NewTextHandler(io.Discard, nil)))

	verdict, err := c.ClassifyText(context.Background(), "text")
	require.Error(t, err)
	require.Equal(t, linkcheck.VerdictUnknown, verdict)
}
