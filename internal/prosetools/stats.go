package prosetools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/corpus"
	"github.com/HendryAvila/snerge/internal/prose"
)

// StatsTool handles the snerge_stats MCP tool.
type StatsTool struct {
	model *prose.Model
	store *corpus.Store // may be nil
}

// NewStatsTool creates a StatsTool. store may be nil when persistence is
// disabled.
func NewStatsTool(model *prose.Model, store *corpus.Store) *StatsTool {
	return &StatsTool{model: model, store: store}
}

// Definition returns the MCP tool definition for snerge_stats.
func (t *StatsTool) Definition() mcp.Tool {
	return mcp.NewTool("snerge_stats",
		mcp.WithDescription(
			"Show model and corpus statistics: context order, facts learned, known tokens, and stored quotes per corpus.",
		),
	)
}

// Handle processes the snerge_stats tool call.
func (t *StatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ms := t.model.Stats()

	var sb strings.Builder
	sb.WriteString("## Model\n\n")
	sb.WriteString(fmt.Sprintf("- **Order**: %d\n", ms.Order))
	sb.WriteString(fmt.Sprintf("- **Facts**: %d\n", ms.Facts))
	sb.WriteString(fmt.Sprintf("- **Tokens**: %d\n", ms.Tokens))
	sb.WriteString(fmt.Sprintf("- **Contexts**: %d\n", ms.Contexts))

	if t.store == nil {
		sb.WriteString("\n## Corpus\n\npersistence disabled\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	cs, err := t.store.Stats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get corpus stats: %v", err)), nil
	}

	sb.WriteString("\n## Corpus\n\n")
	sb.WriteString(fmt.Sprintf("- **Stored quotes**: %d\n", cs.TotalFacts))
	sb.WriteString(fmt.Sprintf("- **Imports**: %d\n", cs.TotalImports))
	for _, c := range cs.Corpora {
		label := c.Corpus
		if label == "" {
			label = "(unlabelled)"
		}
		sb.WriteString(fmt.Sprintf("  - %s: %d\n", label, c.Facts))
	}
	if cs.LastImport != nil {
		sb.WriteString(fmt.Sprintf("- **Last import**: %s (%d added, %d skipped) at %s\n",
			cs.LastImport.Path, cs.LastImport.Added, cs.LastImport.Skipped, cs.LastImport.FinishedAt))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
