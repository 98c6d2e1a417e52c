// Command mcp serves the extraction tasks as MCP tools over stdio.
//
// Usage:
//
//	go run ./cmd/mcp
//
// Configuration for an MCP client:
//
//	{
//	    "mcpServers": {
//	        "newsbrief": {
//	            "command": "go",
//	            "args": ["run", "./cmd/mcp"],
//	            "cwd": "/path/to/newsbrief",
//	            "env": {"GOOGLE_API_KEY": "..."}
//	        }
//	    }
//	}
//
// Logs go to stderr; stdout carries the protocol.
package main

import (
	"log/slog"
	"os"

	"github.com/spetersoncode/newsbrief/client"
	"github.com/spetersoncode/newsbrief/internal/config"
	"github.com/spetersoncode/newsbrief/mcp"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	c, err := client.New(client.FromConfig(cfg, logger))
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	if err := mcp.ServeStdio(c.Extractor(),
		mcp.WithName("newsbrief"),
		mcp.WithVersion(version),
	); err != nil {
		slog.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
