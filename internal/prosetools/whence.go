package prosetools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/quotes"
)

// WhenceTool handles the snerge_whence MCP tool.
type WhenceTool struct {
	speaker *quotes.Speaker
}

// NewWhenceTool creates a WhenceTool.
func NewWhenceTool(speaker *quotes.Speaker) *WhenceTool {
	return &WhenceTool{speaker: speaker}
}

// Definition returns the MCP tool definition for snerge_whence.
func (t *WhenceTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_whence",
		mcp.WithDescription(
			"Find which training quotes a word came from. Give space separated words; "+
				"each is matched exactly against the model's tokens (lower case, punctuation as [!PERIOD] style markers).",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Space separated tokens to look up"),
		),
	)
}

// Handle processes the snerge_whence tool call.
func (t *WhenceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}

	return jsonResult(quotes.AttributeAll(t.speaker.Whence(query))), nil
}
