// Package mcp exposes the extractors as MCP (Model Context Protocol) tools.
//
// MCP lets assistants discover and call tools over a standard transport.
// [NewServer] registers one tool per extraction task; [Client] is the typed
// counterpart used to call a newsbrief server from Go.
//
// Serve over stdio for subprocess-based MCP clients:
//
//	x := extract.New(dispatcher, session)
//	if err := mcp.ServeStdio(x); err != nil {
//	    log.Fatal(err)
//	}
package mcp

import (
	"encoding/json"
	"fmt"

	nb "github.com/spetersoncode/newsbrief"
	"github.com/spetersoncode/newsbrief/extract"
)

// Tool names.
const (
	ToolClassifyImpact = "classify_impact"
	ToolExtractSectors = "extract_sectors"
	ToolSelectTop      = "select_top"
	ToolSelectGrouped  = "select_grouped"
	ToolSummarize      = "summarize"
)

const articleSchema = `{
  "type": "object",
  "properties": {
    "id": {"type": "integer", "description": "Article ID"},
    "title": {"type": "string"},
    "content": {"type": "string"},
    "type": {"type": "string", "enum": ["domestic", "international", "enterprise"]},
    "impact": {"type": "string", "enum": ["positive", "negative", "neutral"]}
  },
  "required": ["id", "title"]
}`

var (
	articlesSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "articles": {"type": "array", "items": ` + articleSchema + `}
  },
  "required": ["articles"]
}`)

	selectTopSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "articles": {"type": "array", "items": ` + articleSchema + `},
    "k": {"type": "integer", "minimum": 1, "description": "Number of IDs to select"},
    "cap_per_impact": {"type": "integer", "minimum": 0, "description": "Ask for at most this many selections per impact label"}
  },
  "required": ["articles", "k"]
}`)

	selectGroupedSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "articles": {"type": "array", "items": ` + articleSchema + `},
    "k": {"type": "integer", "minimum": 1, "description": "Number of IDs per news type"}
  },
  "required": ["articles", "k"]
}`)

	summarizeSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "content": {"type": "string"},
    "band": {"type": "string", "enum": ["daily", "weekly"], "default": "daily"}
  },
  "required": ["content"]
}`)
)

// ArticlesArgs are the arguments of classify_impact and extract_sectors.
type ArticlesArgs struct {
	Articles []nb.Article `json:"articles"`
}

// SelectTopArgs are the arguments of select_top.
type SelectTopArgs struct {
	Articles     []nb.Article `json:"articles"`
	K            int          `json:"k"`
	CapPerImpact int          `json:"cap_per_impact,omitempty"`
}

// SelectGroupedArgs are the arguments of select_grouped.
type SelectGroupedArgs struct {
	Articles []nb.Article `json:"articles"`
	K        int          `json:"k"`
}

// SummarizeArgs are the arguments of summarize.
type SummarizeArgs struct {
	Content string `json:"content"`
	Band    string `json:"band,omitempty"`
}

// Result is the JSON body of every successful tool call.
type Result[T any] struct {
	Value    T        `json:"value"`
	Attempts int      `json:"attempts"`
	Warnings []string `json:"warnings,omitempty"`
}

func resultOf[T any](o extract.Outcome[T]) Result[T] {
	return Result[T]{Value: o.Value, Attempts: o.Attempts, Warnings: o.Warnings}
}

func bandOf(name string) (extract.WordBand, error) {
	switch name {
	case "", "daily":
		return extract.DailyBand, nil
	case "weekly":
		return extract.WeeklyBand, nil
	}
	return extract.WordBand{}, fmt.Errorf("unknown band %q (want daily or weekly)", name)
}
