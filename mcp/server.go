package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/extract"
)

// Extractor is the set of extraction tasks served as tools.
// *extract.Extractor implements it.
type Extractor interface {
	ClassifyImpact(ctx context.Context, articles []nb.Article) (extract.Outcome[[]nb.Impact], error)
	ExtractSectors(ctx context.Context, articles []nb.Article) (extract.Outcome[[]string], error)
	SelectTop(ctx context.Context, articles []nb.Article, k int, opts ...extract.SelectOption) (extract.Outcome[[]int64], error)
	SelectGrouped(ctx context.Context, articles []nb.Article, k int) (extract.Outcome[map[nb.NewsType][]int64], error)
	Summarize(ctx context.Context, content string, band extract.WordBand) (extract.Outcome[string], error)
}

// ServerOption configures a Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	name    string
	version string
}

// WithName sets the server name reported to MCP clients.
func WithName(name string) ServerOption {
	return func(c *serverConfig) {
		c.name = name
	}
}

// WithVersion sets the server version reported to MCP clients.
func WithVersion(version string) ServerOption {
	return func(c *serverConfig) {
		c.version = version
	}
}

// NewServer creates an MCP server with one tool per extraction task.
// Extraction failures are returned as tool errors, not protocol errors.
func NewServer(x Extractor, opts ...ServerOption) *server.MCPServer {
	cfg := &serverConfig{
		name:    "newsbrief",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := server.NewMCPServer(
		cfg.name,
		cfg.version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewToolWithRawSchema(ToolClassifyImpact,
			"Label each article positive, negative or neutral for the market. Always returns one label per article.",
			articlesSchema),
		handle(func(ctx context.Context, args ArticlesArgs) (any, error) {
			out, err := x.ClassifyImpact(ctx, args.Articles)
			return resultOf(out), err
		}))

	s.AddTool(
		mcp.NewToolWithRawSchema(ToolExtractSectors,
			"Tag each article with the economic sectors it concerns, as a comma separated list.",
			articlesSchema),
		handle(func(ctx context.Context, args ArticlesArgs) (any, error) {
			out, err := x.ExtractSectors(ctx, args.Articles)
			return resultOf(out), err
		}))

	s.AddTool(
		mcp.NewToolWithRawSchema(ToolSelectTop,
			"Select exactly k of the given article IDs, most important first.",
			selectTopSchema),
		handle(func(ctx context.Context, args SelectTopArgs) (any, error) {
			out, err := x.SelectTop(ctx, args.Articles, args.K, extract.CapPerImpact(args.CapPerImpact))
			return resultOf(out), err
		}))

	s.AddTool(
		mcp.NewToolWithRawSchema(ToolSelectGrouped,
			"Select exactly k article IDs for each news type: domestic, international and enterprise.",
			selectGroupedSchema),
		handle(func(ctx context.Context, args SelectGroupedArgs) (any, error) {
			out, err := x.SelectGrouped(ctx, args.Articles, args.K)
			return resultOf(out), err
		}))

	s.AddTool(
		mcp.NewToolWithRawSchema(ToolSummarize,
			"Summarize an article within the daily or weekly length band.",
			summarizeSchema),
		handle(func(ctx context.Context, args SummarizeArgs) (any, error) {
			band, err := bandOf(args.Band)
			if err != nil {
				return nil, err
			}
			out, err := x.Summarize(ctx, args.Content, band)
			return resultOf(out), err
		}))

	return s
}

// handle decodes the call arguments into A and encodes the returned value
// as JSON text.
func handle[A any](fn func(ctx context.Context, args A) (any, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args A
		if req.Params.Arguments != nil {
			data, err := json.Marshal(req.Params.Arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to marshal arguments: %v", err)), nil
			}
			if err := json.Unmarshal(data, &args); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
		}

		v, err := fn(ctx, args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		data, err := json.Marshal(v)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}

// ServeStdio serves the extraction tools over stdin/stdout.
func ServeStdio(x Extractor, opts ...ServerOption) error {
	return server.ServeStdio(NewServer(x, opts...))
}
