package prosetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/corpus"
	"github.com/HendryAvila/snerge/internal/prose"
	"github.com/HendryAvila/snerge/internal/quotes"
)

// LearnTool handles the snerge_learn MCP tool.
type LearnTool struct {
	loader *corpus.Loader
}

// NewLearnTool creates a LearnTool.
func NewLearnTool(loader *corpus.Loader) *LearnTool {
	return &LearnTool{loader: loader}
}

// Definition returns the MCP tool definition for snerge_learn.
func (t *LearnTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_learn",
		mcp.WithDescription(
			"Teach the model a new statement. The statement is stored with the corpus and "+
				"influences future quotes immediately.",
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The statement to learn"),
		),
		mcp.WithString("source",
			mcp.Description("Attribution for the statement (default: chat)"),
		),
	)
}

// Handle processes the snerge_learn tool call.
func (t *LearnTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := strings.TrimSpace(req.GetString("text", ""))
	if text == "" {
		return mcp.NewToolResultError("'text' is required"), nil
	}
	source := req.GetString("source", quotes.PromptSource)

	tokens := prose.Tokenize(text)
	if len(tokens) == 0 {
		return mcp.NewToolResultError("the text has no words the model can learn"), nil
	}

	added, err := t.loader.Learn(source, text, source)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to learn: %v", err)), nil
	}
	if !added {
		return mcp.NewToolResultText(fmt.Sprintf("Already known: %q from %s.", text, source)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Learned %d tokens from %s: %s", len(tokens), source, strings.Join(tokens, " "),
	)), nil
}
