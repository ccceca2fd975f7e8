package prosetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/corpus"
)

// CorpusSearchTool handles the snerge_corpus_search MCP tool.
type CorpusSearchTool struct {
	store *corpus.Store
}

// NewCorpusSearchTool creates a CorpusSearchTool.
func NewCorpusSearchTool(store *corpus.Store) *CorpusSearchTool {
	return &CorpusSearchTool{store: store}
}

// Definition returns the MCP tool definition for snerge_corpus_search.
func (t *CorpusSearchTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_corpus_search",
		mcp.WithDescription(
			"Full-text search over the stored training quotes. An empty query lists the most recently learned ones.",
		),
		mcp.WithString("query",
			mcp.Description("Words to search for"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 10)"),
		),
	)
}

// Handle processes the snerge_corpus_search tool call.
func (t *CorpusSearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	limit := intArg(req, "limit", 10)

	results, err := t.store.Search(query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No quotes found matching your query."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d quotes:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n    %s\n\n", i+1, r.Source, r.Text)
	}

	return mcp.NewToolResultText(b.String()), nil
}
