package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/previewbridge/internal/infrastructure/monitoring"
)

const completionsPath = "/chat/completions"

// Client talks to an OpenAI-compatible chat completions API. Requests are
// never retried.
type Client struct {
	resty   *resty.Client
	config  Config
	logger  *zap.Logger
	metrics *monitoring.Metrics
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics enables request counters
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a client for cfg
func NewClient(cfg Config, opts ...Option) *Client {
	cfg = cfg.withDefaults()

	r := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "previewbridge-chat/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if cfg.APIKey != "" {
		r.SetAuthToken(cfg.APIKey)
	}

	c := &Client{
		resty:  r,
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.config
}

func (c *Client) payload(messages []Message, stream bool) Request {
	return Request{
		Messages:    toWire(messages),
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
		Stream:      stream,
	}
}

// Send requests a complete response
func (c *Client) Send(ctx context.Context, messages []Message) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var out Response
	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(c.payload(messages, false)).
		SetResult(&out).
		Post(completionsPath)
	if err != nil {
		c.metrics.RecordChatRequest("send", "error")
		return nil, fmt.Errorf("chat request: %w", err)
	}
	if resp.IsError() {
		c.metrics.RecordChatRequest("send", "error")
		return nil, &APIError{Status: resp.StatusCode(), Body: resp.String()}
	}

	c.metrics.RecordChatRequest("send", "ok")
	c.logger.Debug("Chat response received",
		zap.String("id", out.ID),
		zap.String("model", out.Model),
		zap.Duration("duration", resp.Time()),
	)
	return &out, nil
}

// TestConnection sends a short probe and reports whether it succeeded
func (c *Client) TestConnection(ctx context.Context) bool {
	probe := []Message{{
		ID:        "test-1",
		Role:      RoleUser,
		Content:   "Hello, this is a connection test.",
		Timestamp: time.Now().UnixMilli(),
	}}
	if _, err := c.Send(ctx, probe); err != nil {
		c.logger.Warn("API connection test failed", zap.Error(err))
		return false
	}
	return true
}

// MockResponse builds a canned response for offline use
func MockResponse(userMessage string) *Response {
	now := time.Now()
	resp := &Response{
		ID:      fmt.Sprintf("mock-%d", now.UnixMilli()),
		Object:  "chat.completion",
		Created: now.Unix(),
		Model:   DefaultModel,
		Usage:   &Usage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}

	choice := Choice{FinishReason: "stop"}
	choice.Message.Role = RoleAssistant
	choice.Message.Content = fmt.Sprintf("Mock response to: %q\n\nThis is a simulated API response for testing purposes.", userMessage)
	resp.Choices = []Choice{choice}
	return resp
}
