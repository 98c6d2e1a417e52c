// Package openai adapts the OpenAI chat completions API to backend.Backend.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-5-mini"

// Client wraps the OpenAI SDK.
type Client struct {
	client *openai.Client
}

// ClientOption configures the OpenAI client.
type ClientOption func(*[]option.RequestOption)

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(url string) ClientOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithBaseURL(url))
	}
}

// New creates a new OpenAI client with the given API key.
func New(apiKey string, opts ...ClientOption) *Client {
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(&reqOpts)
	}
	client := openai.NewClient(reqOpts...)
	return &Client{client: &client}
}

// Backend returns the backend for one model. It matches backend.Factory.
func (c *Client) Backend(model string) (backend.Backend, error) {
	if model == "" {
		model = DefaultModel
	}
	return &Model{client: c.client, name: model}, nil
}

// Model is a single chat model. OpenAI exposes no per-request safety
// thresholds, so the posture has nothing to configure here.
type Model struct {
	client *openai.Client
	name   string
}

// Name implements backend.Backend.
func (m *Model) Name() string { return m.name }

// Submit implements backend.Backend.
func (m *Model) Submit(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    m.name,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", &nb.TransportError{Backend: m.name, Err: wrapError(err)}
	}
	if len(resp.Choices) == 0 {
		return "", &nb.TransportError{Backend: m.name, Err: fmt.Errorf("response has no choices")}
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		reason := string(choice.FinishReason)
		if choice.Message.Refusal != "" {
			reason = choice.Message.Refusal
		}
		return "", &nb.RejectedError{Backend: m.name, Reason: reason}
	}
	return choice.Message.Content, nil
}
