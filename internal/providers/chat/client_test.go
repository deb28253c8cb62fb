package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 3, "completion_tokens": 2, "total_tokens": 5}
}`

var conversation = []Message{
	{ID: "1", Role: RoleSystem, Content: "Be brief."},
	{ID: "2", Role: RoleUser, Content: "Hello"},
}

func TestSend(t *testing.T) {
	var got Request
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL + "/v1/", APIKey: "sk-test", Model: "gpt-4o", Temperature: 0.2})
	resp, err := client.Send(context.Background(), conversation)
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.False(t, got.Stream)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, 0.2, got.Temperature)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "Hello", got.Messages[1].Content)

	assert.Equal(t, "chatcmpl-1", resp.ID)
	assert.Equal(t, "Hi there", resp.Content())
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
}

func TestSendWithoutKeyOmitsAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Send(context.Background(), conversation)
	require.NoError(t, err)
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Send(context.Background(), conversation)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "bad key")
	assert.Contains(t, err.Error(), "401")
}

func TestTestConnection(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionJSON))
	}))
	defer ok.Close()
	assert.True(t, NewClient(Config{BaseURL: ok.URL}).TestConnection(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	assert.False(t, NewClient(Config{BaseURL: down.URL}).TestConnection(context.Background()))
}

func TestIsValidAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"openai shape", "sk-abcdefghijklmnopqrstuvwxyz", true},
		{"exactly 20", "sk-abcdefghijklmnopq", false},
		{"missing prefix", "pk-abcdefghijklmnopqrstuvwxyz", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAPIKey(tt.key))
		})
	}
}

func TestMockResponse(t *testing.T) {
	resp := MockResponse("What is Go?")

	assert.Contains(t, resp.ID, "mock-")
	assert.Equal(t, "chat.completion", resp.Object)
	assert.Equal(t, DefaultModel, resp.Model)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, RoleAssistant, resp.Choices[0].Message.Role)
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Contains(t, resp.Content(), `Mock response to: "What is Go?"`)
	assert.Equal(t, 30, resp.Usage.TotalTokens)
}

func TestConfigFromEnv(t *testing.T) {
	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)

	t.Setenv("API_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("API_KEY", "sk-local")
	t.Setenv("API_MODEL", "llama3")

	cfg, err = ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", cfg.BaseURL)
	assert.Equal(t, "sk-local", cfg.APIKey)
	assert.Equal(t, "llama3", cfg.Model)
}

func TestDefaultsFillEmptyFields(t *testing.T) {
	cfg := NewClient(Config{}).Config()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultConfig().BaseURL, cfg.BaseURL)
}
