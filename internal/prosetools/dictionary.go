package prosetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/prose"
)

// DictionaryTool handles the snerge_dictionary MCP tool.
type DictionaryTool struct {
	model *prose.Model
}

// NewDictionaryTool creates a DictionaryTool.
func NewDictionaryTool(model *prose.Model) *DictionaryTool {
	return &DictionaryTool{model: model}
}

// Definition returns the MCP tool definition for snerge_dictionary.
func (t *DictionaryTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_dictionary",
		mcp.WithDescription(
			"List the tokens the model knows, in sorted order. Filter by prefix to keep the list short.",
		),
		mcp.WithString("prefix",
			mcp.Description("Only list tokens starting with this text"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max tokens to list (default: 200, 0 for all)"),
		),
	)
}

// Handle processes the snerge_dictionary tool call.
func (t *DictionaryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := req.GetString("prefix", "")
	limit := intArg(req, "limit", 200)

	var matched []string
	for _, tok := range t.model.AllTokens() {
		if strings.HasPrefix(tok, prefix) {
			matched = append(matched, tok)
		}
	}

	if len(matched) == 0 {
		return mcp.NewToolResultText("No tokens found."), nil
	}

	total := len(matched)
	if limit > 0 && total > limit {
		matched = matched[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d tokens", total)
	if len(matched) < total {
		fmt.Fprintf(&b, " (showing %d)", len(matched))
	}
	b.WriteString(":\n\n")
	b.WriteString(strings.Join(matched, "\n"))

	return mcp.NewToolResultText(b.String()), nil
}
