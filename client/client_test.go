package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/catalog"
	"github.com/spetersoncode/newsbrief/internal/config"
)

func TestErrMissingAPIKey(t *testing.T) {
	t.Run("Error with model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "anthropic", Model: "claude-haiku-4-5"}
		expected := `no API key configured for anthropic (required by model "claude-haiku-4-5")`
		assert.Equal(t, expected, err.Error())
	})

	t.Run("Error without model", func(t *testing.T) {
		err := &ErrMissingAPIKey{Provider: "openai"}
		expected := "no API key configured for openai"
		assert.Equal(t, expected, err.Error())
	})
}

func TestNewRequiresGoogleKey(t *testing.T) {
	_, err := New(Config{})

	var missing *ErrMissingAPIKey
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "google", missing.Provider)
}

var listing = catalog.StaticSource{
	"models/gemini-2.0-flash",
	"models/gemini-2.5-flash",
	"models/gemini-2.5-flash-lite",
	"models/text-embedding-004",
}

func TestChainsIncludeExternalTail(t *testing.T) {
	c, err := New(Config{
		APIKeys:  APIKeys{Google: "g-key", OpenAI: "o-key"},
		External: External{OpenAIModel: "gpt-5-mini", AnthropicModel: "claude-haiku-4-5"},
		Source:   listing,
	})
	require.NoError(t, err)
	ctx := context.Background()

	fast, err := c.Session().Chain(ctx, catalog.TierFast)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"gemini-2.0-flash",
		"gemini-2.5-flash-lite",
		"openai:gpt-5-mini",
		"anthropic:claude-haiku-4-5",
	}, fast.IDs())

	standard, err := c.Session().Chain(ctx, catalog.TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", standard.At(0).ID)
}

func TestRegistryBuildsProvidersLazily(t *testing.T) {
	c, err := New(Config{
		APIKeys: APIKeys{Google: "g-key", OpenAI: "o-key"},
		Source:  listing,
	})
	require.NoError(t, err)

	b, err := c.Resolver().Resolve(catalog.External(nb.ProviderOpenAI, "gpt-5-mini"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-5-mini", b.Name())

	_, err = c.Resolver().Resolve(catalog.External(nb.ProviderAnthropic, "claude-haiku-4-5"))
	var missing *ErrMissingAPIKey
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "claude-haiku-4-5", missing.Model)

	d, ok := catalog.Parse("gemini-2.0-flash")
	require.True(t, ok)
	b, err = c.Resolver().Resolve(d)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.0-flash", b.Name())
}

func TestNewExtractorUsesSession(t *testing.T) {
	c, err := New(Config{APIKeys: APIKeys{Google: "g-key"}, Source: catalog.StaticSource{}})
	require.NoError(t, err)
	assert.NotNil(t, c.Extractor())
	assert.NotSame(t, c.Extractor(), c.NewExtractor(c.Dispatcher()))

	// An empty catalog fails before any backend is contacted.
	_, err = c.Extractor().SelectTop(context.Background(), []nb.Article{{ID: 1}, {ID: 2}}, 1)
	assert.ErrorIs(t, err, catalog.ErrEmptyChain)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{
		GoogleKey:         "g",
		OpenAIKey:         "o",
		OpenAIModel:       "gpt-5-mini",
		RetriesPerBackend: 3,
		RetryDelay:        500 * time.Millisecond,
		MaxAttempts:       7,
		CatalogTTL:        time.Hour,
	}

	got := FromConfig(cfg, nil)

	assert.Equal(t, "g", got.APIKeys.Google)
	assert.Equal(t, "gpt-5-mini", got.External.OpenAIModel)
	require.NotNil(t, got.Retry)
	assert.Equal(t, 3, got.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, got.Retry.InitialDelay)
	assert.Equal(t, 7, got.MaxAttempts)
	assert.Equal(t, time.Hour, got.CatalogTTL)
}
