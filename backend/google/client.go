// Package google adapts the Gemini API to backend.Backend and lists the live
// model catalog.
package google

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
)

// Client wraps the Google GenAI SDK. One client serves every Gemini model
// in a chain.
type Client struct {
	client *genai.Client
	safety []*genai.SafetySetting
}

// ClientOption configures the Google client.
type ClientOption func(*Client)

// WithSafety sets the content-safety posture sent with every request.
func WithSafety(s backend.Safety) ClientOption {
	return func(c *Client) {
		c.safety = safetySettings(s)
	}
}

// New creates a new Google GenAI client with the given API key.
func New(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		client: client,
		safety: safetySettings(backend.PermissiveSafety),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Backend returns the backend for one model. It matches backend.Factory.
func (c *Client) Backend(model string) (backend.Backend, error) {
	if model == "" {
		return nil, fmt.Errorf("google: empty model name")
	}
	return &Model{client: c, name: model}, nil
}

// ListModels returns the names of all models that support content
// generation. It implements catalog.Source.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, wrapError(err)
		}
		if supportsGenerate(m.SupportedActions) {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

// Model is a single Gemini model bound to a client.
type Model struct {
	client *Client
	name   string
}

// Name implements backend.Backend.
func (m *Model) Name() string { return m.name }

// Submit implements backend.Backend.
func (m *Model) Submit(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SafetySettings: m.client.safety,
	}

	resp, err := m.client.client.Models.GenerateContent(ctx, m.name, genai.Text(prompt), config)
	if err != nil {
		return "", &nb.TransportError{Backend: m.name, Err: wrapError(err)}
	}
	return answer(m.name, resp)
}

// answer extracts the text of the first candidate. A response with no text
// is a rejection carrying the block or finish reason.
func answer(model string, resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", &nb.TransportError{Backend: model, Err: fmt.Errorf("empty response")}
	}

	var sb strings.Builder
	finishReason := ""
	if len(resp.Candidates) > 0 {
		cand := resp.Candidates[0]
		finishReason = string(cand.FinishReason)
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if part != nil && part.Text != "" && !part.Thought {
					sb.WriteString(part.Text)
				}
			}
		}
	}
	if text := sb.String(); strings.TrimSpace(text) != "" {
		return text, nil
	}

	reason := finishReason
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reason = string(resp.PromptFeedback.BlockReason)
	}
	return "", &nb.RejectedError{Backend: model, Reason: reason}
}

func supportsGenerate(actions []string) bool {
	for _, a := range actions {
		if a == "generateContent" {
			return true
		}
	}
	return false
}
