package prosetools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/quotes"
)

// QuoteTool handles the snerge_quote MCP tool.
type QuoteTool struct {
	speaker *quotes.Speaker
}

// NewQuoteTool creates a QuoteTool.
func NewQuoteTool(speaker *quotes.Speaker) *QuoteTool {
	return &QuoteTool{speaker: speaker}
}

// Definition returns the MCP tool definition for snerge_quote.
func (t *QuoteTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_quote",
		mcp.WithDescription(
			"Generate a novel quote in the voice of the training corpus. "+
				"An optional prompt seeds the opening words; words the model has never seen are ignored.",
		),
		mcp.WithString("prompt",
			mcp.Description("Words to start the quote with"),
		),
		mcp.WithBoolean("owo",
			mcp.Description("Rewrite the quote in the playful ~UωU~ register"),
		),
	)
}

// Handle processes the snerge_quote tool call.
func (t *QuoteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := strings.TrimSpace(req.GetString("prompt", ""))

	quote := t.speaker.Quote(prompt)
	if boolArg(req, "owo", false) {
		quote = "~UωU~ " + quotes.OwO(quote) + " ~UωU~"
	}

	return mcp.NewToolResultText(quote), nil
}

// PredictTool handles the snerge_predict MCP tool.
type PredictTool struct {
	speaker *quotes.Speaker
}

// NewPredictTool creates a PredictTool.
func NewPredictTool(speaker *quotes.Speaker) *PredictTool {
	return &PredictTool{speaker: speaker}
}

// Definition returns the MCP tool definition for snerge_predict.
func (t *PredictTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_predict",
		mcp.WithDescription(
			"Continue the given words with one generated statement and show the tokens on both sides. "+
				"Useful for seeing how the model reads a prompt.",
		),
		mcp.WithString("words",
			mcp.Required(),
			mcp.Description("Text to continue"),
		),
	)
}

// Handle processes the snerge_predict tool call.
func (t *PredictTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	words := req.GetString("words", "")
	if strings.TrimSpace(words) == "" {
		return mcp.NewToolResultError("'words' is required"), nil
	}

	return jsonResult(t.speaker.Predict(words)), nil
}
