package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/backend/backendtest"
	"github.com/spetersoncode/newsbrief/dispatch"
	"github.com/spetersoncode/newsbrief/extract"
	"github.com/spetersoncode/newsbrief/internal/retry"
)

func articles() []nb.Article {
	return []nb.Article{
		{ID: 3, Title: "Central bank cuts policy rate", Type: nb.NewsDomestic},
		{ID: 7, Title: "Fed holds rates", Type: nb.NewsInternational},
		{ID: 12, Title: "Steelmaker posts record profit", Type: nb.NewsEnterprise},
	}
}

// connect serves an extractor backed by one scripted backend and returns an
// in-process client for it.
func connect(t *testing.T, texts ...string) *Client {
	t.Helper()
	steps := make([]backendtest.Step, len(texts))
	for i, s := range texts {
		steps[i] = backendtest.Answer(s)
	}
	chain, r := backendtest.Chain(backendtest.New("gemini-2.0-flash", steps...))
	d := dispatch.New(r, dispatch.WithRetryConfig(retry.Fixed(1, 0)))
	x := extract.New(d, extract.SameChain(chain), extract.WithMaxAttempts(2))

	srv := NewServer(x, WithName("test-server"), WithVersion("1.0.0"))
	c, err := client.NewInProcessClient(srv)
	require.NoError(t, err)

	cl, err := Connect(context.Background(), c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })
	return cl
}

func TestServer_ListsTools(t *testing.T) {
	c := connect(t)

	names, err := c.Tools(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		ToolClassifyImpact, ToolExtractSectors, ToolSelectTop, ToolSelectGrouped, ToolSummarize,
	}, names)
}

func TestServer_ClassifyImpact(t *testing.T) {
	c := connect(t, "positive|NEGATIVE|maybe")

	res, err := c.ClassifyImpact(context.Background(), articles())

	require.NoError(t, err)
	assert.Equal(t, []nb.Impact{nb.ImpactPositive, nb.ImpactNeutral, nb.ImpactNeutral}, res.Value)
	assert.Equal(t, 1, res.Attempts)
	assert.Len(t, res.Warnings, 2)
}

func TestServer_ExtractSectors(t *testing.T) {
	c := connect(t, "Banking|Banking, Energy|Steel")

	res, err := c.ExtractSectors(context.Background(), articles())

	require.NoError(t, err)
	assert.Equal(t, []string{"Banking", "Banking, Energy", "Steel"}, res.Value)
}

func TestServer_SelectTop(t *testing.T) {
	ctx := context.Background()

	t.Run("valid selection", func(t *testing.T) {
		c := connect(t, "7,3")

		res, err := c.SelectTop(ctx, SelectTopArgs{Articles: articles(), K: 2})

		require.NoError(t, err)
		assert.Equal(t, []int64{7, 3}, res.Value)
	})

	t.Run("exhaustion is a tool error", func(t *testing.T) {
		c := connect(t, "nope", "still nope")

		_, err := c.SelectTop(ctx, SelectTopArgs{Articles: articles(), K: 2})

		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, ToolSelectTop, te.Tool)
		assert.Contains(t, te.Message, "2 attempts")
	})

	t.Run("k out of range", func(t *testing.T) {
		c := connect(t)

		_, err := c.SelectTop(ctx, SelectTopArgs{Articles: articles(), K: 9})

		var te *ToolError
		require.ErrorAs(t, err, &te)
	})
}

func TestServer_SelectGrouped(t *testing.T) {
	c := connect(t, `{"trong_nuoc":[3],"quoc_te":[7],"doanh_nghiep":[12]}`)

	res, err := c.SelectGrouped(context.Background(), SelectGroupedArgs{Articles: articles(), K: 1})

	require.NoError(t, err)
	assert.Equal(t, map[nb.NewsType][]int64{
		nb.NewsDomestic:      {3},
		nb.NewsInternational: {7},
		nb.NewsEnterprise:    {12},
	}, res.Value)
}

func TestServer_Summarize(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown band", func(t *testing.T) {
		c := connect(t)

		_, err := c.Summarize(ctx, SummarizeArgs{Content: "x", Band: "monthly"})

		var te *ToolError
		require.ErrorAs(t, err, &te)
		assert.Contains(t, te.Message, "monthly")
	})

	t.Run("returns last answer with warnings", func(t *testing.T) {
		c := connect(t, "Too short.")

		res, err := c.Summarize(ctx, SummarizeArgs{Content: "GDP grew.", Band: "weekly"})

		require.NoError(t, err)
		assert.Equal(t, "Too short.", res.Value)
		assert.NotEmpty(t, res.Warnings)
	})
}
