package chatgpt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ", "")
	require.Error(t, err)

	c, err := NewClient("sk-test", "")
	require.NoError(t, err)
	require.Equal(t, defaultBaseURL, c.baseURL)
}

func TestCreateChatCompletion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"model":"gpt-4o","choices":[{"index":0,"message":{"role":"assistant","content":"  NO \n"},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":1,"total_tokens":13}}`))
	}))
	defer srv.Close()

	c, err := NewClient("sk-test", srv.URL+"/v1/")
	require.NoError(t, err)

	resp, err := c.CreateChatCompletion(context.Background(), ChatCompletionRequest{
		Model:          "gpt-4o",
		MaxTokens:      10,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		Messages: []Message{
			{Role: "system", Content: "classify"},
			{Role: "user", Parts: []ContentPart{TextPart("look"), ImagePart("data:image/png;base64,AAAA", "low")}},
		},
	})
	require.NoError(t, err)
	content, ok := resp.FirstContent()
	require.True(t, ok)
	require.Equal(t, "NO", content)
	require.Equal(t, 13, resp.Usage.TotalTokens)

	messages := got["messages"].([]any)
	require.Equal(t, "classify", messages[0].(map[string]any)["content"])
	parts := messages[1].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	require.Equal(t, "image_url", parts[1].(map[string]any)["type"])
	require.EqualValues(t, 10, got["max_tokens"])
	require.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
}

func TestCreateChatCompletionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := NewClient("sk-test", srv.URL)
	require.NoError(t, err)
	_, err = c.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "gpt-4o-mini"})
	require.ErrorContains(t, err, "status=429")
}
