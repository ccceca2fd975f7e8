// Package resources implements MCP resource handlers for the prose engine.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (snerge://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/snerge/internal/prose"
)

// DictionaryURI addresses the list of known tokens.
const DictionaryURI = "snerge://dictionary"

// Handler manages snerge resource endpoints.
type Handler struct {
	model *prose.Model
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(model *prose.Model) *Handler {
	return &Handler{model: model}
}

// DictionaryResource returns the MCP resource definition for the token
// dictionary.
func (h *Handler) DictionaryResource() mcp.Resource {
	return mcp.NewResource(
		DictionaryURI,
		"Snerge Dictionary",
		mcp.WithResourceDescription("Every token the model has learned, sorted, as a JSON array"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleDictionary returns the known tokens as JSON.
func (h *Handler) HandleDictionary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.model.AllTokens())
	if err != nil {
		return nil, fmt.Errorf("marshaling dictionary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
