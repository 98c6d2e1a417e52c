package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	nb "github.com/spetersoncode/newsbrief"
)

// Client calls the tools of a newsbrief MCP server.
type Client struct {
	client *client.Client
}

// DialStdio starts the server command as a subprocess and connects to it.
func DialStdio(ctx context.Context, command string, env []string, args ...string) (*Client, error) {
	c, err := client.NewStdioMCPClient(command, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client: %w", err)
	}
	return Connect(ctx, c)
}

// Connect initializes an MCP session over c.
func Connect(ctx context.Context, c *client.Client) (*Client, error) {
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}

	_, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "newsbrief-client",
				Version: "1.0.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize MCP session: %w", err)
	}
	return &Client{client: c}, nil
}

// Close closes the connection to the MCP server.
func (c *Client) Close() error {
	return c.client.Close()
}

// Tools returns the names of the tools the server offers.
func (c *Client) Tools(ctx context.Context) ([]string, error) {
	result, err := c.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, err
	}
	names := make([]string, len(result.Tools))
	for i, t := range result.Tools {
		names[i] = t.Name
	}
	return names, nil
}

// ToolError is a failure reported by the tool rather than the transport.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tool, e.Message)
}

// call invokes a tool and decodes its JSON text result into out.
func (c *Client) call(ctx context.Context, name string, args any, out any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	var argMap map[string]any
	if err := json.Unmarshal(data, &argMap); err != nil {
		return err
	}

	result, err := c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: argMap},
	})
	if err != nil {
		return err
	}

	text := textOf(result)
	if result.IsError {
		return &ToolError{Tool: name, Message: text}
	}
	if text == "" {
		return errors.New(name + ": empty result")
	}
	return json.Unmarshal([]byte(text), out)
}

func textOf(r *mcp.CallToolResult) string {
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// ClassifyImpact calls classify_impact.
func (c *Client) ClassifyImpact(ctx context.Context, articles []nb.Article) (Result[[]nb.Impact], error) {
	var out Result[[]nb.Impact]
	err := c.call(ctx, ToolClassifyImpact, ArticlesArgs{Articles: articles}, &out)
	return out, err
}

// ExtractSectors calls extract_sectors.
func (c *Client) ExtractSectors(ctx context.Context, articles []nb.Article) (Result[[]string], error) {
	var out Result[[]string]
	err := c.call(ctx, ToolExtractSectors, ArticlesArgs{Articles: articles}, &out)
	return out, err
}

// SelectTop calls select_top.
func (c *Client) SelectTop(ctx context.Context, args SelectTopArgs) (Result[[]int64], error) {
	var out Result[[]int64]
	err := c.call(ctx, ToolSelectTop, args, &out)
	return out, err
}

// SelectGrouped calls select_grouped.
func (c *Client) SelectGrouped(ctx context.Context, args SelectGroupedArgs) (Result[map[nb.NewsType][]int64], error) {
	var out Result[map[nb.NewsType][]int64]
	err := c.call(ctx, ToolSelectGrouped, args, &out)
	return out, err
}

// Summarize calls summarize.
func (c *Client) Summarize(ctx context.Context, args SummarizeArgs) (Result[string], error) {
	var out Result[string]
	err := c.call(ctx, ToolSummarize, args, &out)
	return out, err
}
