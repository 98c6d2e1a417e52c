// Package anthropic adapts the Anthropic messages API to backend.Backend.
package anthropic

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-haiku-4-5"

const defaultMaxTokens = 1024

// Client wraps the Anthropic SDK.
type Client struct {
	client    *anthropic.Client
	maxTokens int64
}

// ClientOption configures the Anthropic client.
type ClientOption func(*Client)

// WithMaxTokens caps the answer length.
func WithMaxTokens(n int64) ClientOption {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// New creates a new Anthropic client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &Client{
		client:    &client,
		maxTokens: defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Backend returns the backend for one model. It matches backend.Factory.
func (c *Client) Backend(model string) (backend.Backend, error) {
	if model == "" {
		model = DefaultModel
	}
	return &Model{client: c, name: model}, nil
}

// Model is a single Claude model.
type Model struct {
	client *Client
	name   string
}

// Name implements backend.Backend.
func (m *Model) Name() string { return m.name }

// Submit implements backend.Backend.
func (m *Model) Submit(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(m.name),
		MaxTokens: m.client.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &nb.TransportError{Backend: m.name, Err: wrapError(err)}
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 || string(resp.StopReason) == "refusal" {
		return "", &nb.RejectedError{Backend: m.name, Reason: string(resp.StopReason)}
	}
	return sb.String(), nil
}
