package client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend"
	"github.com/spetersoncode/newsbrief/backend/anthropic"
	"github.com/spetersoncode/newsbrief/backend/google"
	"github.com/spetersoncode/newsbrief/backend/openai"
	"github.com/spetersoncode/newsbrief/catalog"
	"github.com/spetersoncode/newsbrief/dispatch"
	"github.com/spetersoncode/newsbrief/extract"
	"github.com/spetersoncode/newsbrief/internal/config"
	"github.com/spetersoncode/newsbrief/internal/retry"
)

// APIKeys holds API keys for the providers.
// Google is required; the others enable the external tail.
type APIKeys struct {
	Google    string
	OpenAI    string
	Anthropic string
}

// External names the non-Gemini models appended to every chain. Empty
// fields add nothing.
type External struct {
	OpenAIModel    string
	AnthropicModel string
}

// Config holds configuration for creating a Client.
type Config struct {
	APIKeys  APIKeys
	External External

	// Retry is the per-backend retry budget. Nil uses retry.DefaultConfig().
	Retry *retry.Config

	// MaxAttempts is the validation budget of strict index selection.
	// Zero uses the extractor default.
	MaxAttempts int

	// CatalogTTL is how long built chains are reused. Zero uses
	// catalog.DefaultTTL.
	CatalogTTL time.Duration

	// Source overrides the live model listing.
	Source catalog.Source

	// Events receives every backend attempt without blocking.
	Events chan<- dispatch.Event

	Logger *slog.Logger
}

// ErrMissingAPIKey is returned when a provider is used but no API key
// is configured for it.
type ErrMissingAPIKey struct {
	Provider string
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// Client wires the catalog, backends, dispatcher and extractor.
// Provider clients are lazily initialized when first needed.
type Client struct {
	apiKeys     APIKeys
	maxAttempts int
	logger      *slog.Logger

	session    *catalog.Session
	registry   *backend.Registry
	dispatcher *dispatch.Dispatcher
	extractor  *extract.Extractor

	// Lazy-initialized providers (protected by mutex)
	mu              sync.Mutex
	googleClient    *google.Client
	googleInitErr   error
	openaiClient    *openai.Client
	anthropicClient *anthropic.Client
}

// New creates a client. No network call is made until the first chain is
// requested.
func New(cfg Config) (*Client, error) {
	if cfg.APIKeys.Google == "" {
		return nil, &ErrMissingAPIKey{Provider: nb.ProviderGoogle.String()}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	retryConfig := retry.DefaultConfig()
	if cfg.Retry != nil {
		retryConfig = *cfg.Retry
	}

	c := &Client{
		apiKeys:     cfg.APIKeys,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
		registry:    backend.NewRegistry(),
	}

	c.registry.Register(nb.ProviderGoogle, func(model string) (backend.Backend, error) {
		g, err := c.getGoogleClient()
		if err != nil {
			return nil, err
		}
		return g.Backend(model)
	})
	c.registry.Register(nb.ProviderOpenAI, func(model string) (backend.Backend, error) {
		o, err := c.getOpenAIClient(model)
		if err != nil {
			return nil, err
		}
		return o.Backend(model)
	})
	c.registry.Register(nb.ProviderAnthropic, func(model string) (backend.Backend, error) {
		a, err := c.getAnthropicClient(model)
		if err != nil {
			return nil, err
		}
		return a.Backend(model)
	})

	src := cfg.Source
	if src == nil {
		src = catalog.SourceFunc(func(ctx context.Context) ([]string, error) {
			g, err := c.getGoogleClient()
			if err != nil {
				return nil, err
			}
			return g.ListModels(ctx)
		})
	}
	sessionOpts := []catalog.SessionOption{catalog.WithTail(tail(cfg.External)...)}
	if cfg.CatalogTTL != 0 {
		sessionOpts = append(sessionOpts, catalog.WithTTL(cfg.CatalogTTL))
	}
	c.session = catalog.NewSession(src, sessionOpts...)

	dispatchOpts := []dispatch.Option{
		dispatch.WithRetryConfig(retryConfig),
		dispatch.WithLogger(logger),
	}
	if cfg.Events != nil {
		dispatchOpts = append(dispatchOpts, dispatch.WithEvents(cfg.Events))
	}
	c.dispatcher = dispatch.New(c.registry, dispatchOpts...)
	c.extractor = c.NewExtractor(c.dispatcher)
	return c, nil
}

// FromConfig builds the Config described by environment configuration.
func FromConfig(cfg *config.Config, logger *slog.Logger) Config {
	r := retry.Fixed(cfg.RetriesPerBackend, cfg.RetryDelay)
	return Config{
		APIKeys: APIKeys{
			Google:    cfg.GoogleKey,
			OpenAI:    cfg.OpenAIKey,
			Anthropic: cfg.AnthropicKey,
		},
		External: External{
			OpenAIModel:    cfg.OpenAIModel,
			AnthropicModel: cfg.AnthropicModel,
		},
		Retry:       &r,
		MaxAttempts: cfg.MaxAttempts,
		CatalogTTL:  cfg.CatalogTTL,
		Logger:      logger,
	}
}

func tail(e External) []catalog.Descriptor {
	var ds []catalog.Descriptor
	if e.OpenAIModel != "" {
		ds = append(ds, catalog.External(nb.ProviderOpenAI, e.OpenAIModel))
	}
	if e.AnthropicModel != "" {
		ds = append(ds, catalog.External(nb.ProviderAnthropic, e.AnthropicModel))
	}
	return ds
}

// Session returns the catalog session.
func (c *Client) Session() *catalog.Session { return c.session }

// Resolver returns the backend registry.
func (c *Client) Resolver() backend.Resolver { return c.registry }

// Dispatcher returns the shared dispatcher.
func (c *Client) Dispatcher() *dispatch.Dispatcher { return c.dispatcher }

// Extractor returns the shared extractor.
func (c *Client) Extractor() *extract.Extractor { return c.extractor }

// NewExtractor builds an extractor over gen using the client's chains and
// attempt budget. opts are applied after the defaults.
func (c *Client) NewExtractor(gen dispatch.Generator, opts ...extract.Option) *extract.Extractor {
	base := []extract.Option{extract.WithLogger(c.logger)}
	if c.maxAttempts > 0 {
		base = append(base, extract.WithMaxAttempts(c.maxAttempts))
	}
	return extract.New(gen, c.session, append(base, opts...)...)
}

// getGoogleClient returns the Google client, initializing it if needed.
// An initialization error is remembered.
func (c *Client) getGoogleClient() (*google.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.googleClient != nil {
		return c.googleClient, nil
	}
	if c.googleInitErr != nil {
		return nil, c.googleInitErr
	}

	g, err := google.New(context.Background(), c.apiKeys.Google)
	if err != nil {
		c.googleInitErr = fmt.Errorf("google: init client: %w", err)
		return nil, c.googleInitErr
	}
	c.googleClient = g
	return g, nil
}

// getOpenAIClient returns the OpenAI client, initializing it if needed.
func (c *Client) getOpenAIClient(model string) (*openai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.openaiClient != nil {
		return c.openaiClient, nil
	}
	if c.apiKeys.OpenAI == "" {
		return nil, &ErrMissingAPIKey{Provider: nb.ProviderOpenAI.String(), Model: model}
	}
	c.openaiClient = openai.New(c.apiKeys.OpenAI)
	return c.openaiClient, nil
}

// getAnthropicClient returns the Anthropic client, initializing it if needed.
func (c *Client) getAnthropicClient(model string) (*anthropic.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.anthropicClient != nil {
		return c.anthropicClient, nil
	}
	if c.apiKeys.Anthropic == "" {
		return nil, &ErrMissingAPIKey{Provider: nb.ProviderAnthropic.String(), Model: model}
	}
	c.anthropicClient = anthropic.New(c.apiKeys.Anthropic)
	return c.anthropicClient, nil
}
