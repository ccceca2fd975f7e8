// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates the engine and injects it into
// the tools, prompts and resources that depend on it. No business logic
// lives here, only wiring.
package server

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/snerge/internal/config"
	"github.com/HendryAvila/snerge/internal/prompts"
	"github.com/HendryAvila/snerge/internal/prosetools"
	"github.com/HendryAvila/snerge/internal/resources"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts and
// resources registered. Corpora are loaded in the background so the server
// can answer the handshake straight away; quotes generated before loading
// finishes come from whatever has been learned so far.
//
// The returned cleanup function stops the background load, the watcher and
// the store. It is always non-nil.
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := NewEngine(cfg, logger)
	if err != nil {
		return nil, noop, err
	}

	s := newMCPServer(engine)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := engine.Warm(ctx); err != nil && ctx.Err() == nil {
			logger.Error("corpus warm-up failed", zap.Error(err))
		}
	}()

	cleanup := func() {
		cancel()
		wg.Wait()
		engine.Close()
	}
	return s, cleanup, nil
}

// noop is the cleanup returned when nothing was created.
func noop() {}

// newMCPServer registers every handler against e.
func newMCPServer(e *Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"snerge",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register quote tools ---

	quoteTool := prosetools.NewQuoteTool(e.Speaker)
	s.AddTool(quoteTool.Definition(), quoteTool.Handle)

	predictTool := prosetools.NewPredictTool(e.Speaker)
	s.AddTool(predictTool.Definition(), predictTool.Handle)

	whenceTool := prosetools.NewWhenceTool(e.Speaker)
	s.AddTool(whenceTool.Definition(), whenceTool.Handle)

	dictionaryTool := prosetools.NewDictionaryTool(e.Model)
	s.AddTool(dictionaryTool.Definition(), dictionaryTool.Handle)

	learnTool := prosetools.NewLearnTool(e.Loader)
	s.AddTool(learnTool.Definition(), learnTool.Handle)

	statsTool := prosetools.NewStatsTool(e.Model, e.Store)
	s.AddTool(statsTool.Definition(), statsTool.Handle)

	// Search needs the store; without persistence there is nothing to search.
	if e.Store != nil {
		searchTool := prosetools.NewCorpusSearchTool(e.Store)
		s.AddTool(searchTool.Definition(), searchTool.Handle)
	}

	// --- Register prompts ---

	wisdomPrompt := prompts.NewWisdomPrompt()
	s.AddPrompt(wisdomPrompt.Definition(), wisdomPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(e.Model)
	s.AddResource(resourceHandler.DictionaryResource(), resourceHandler.HandleDictionary)

	return s
}

// serverInstructions tells the AI how to use snerge.
func serverInstructions() string {
	return `You have access to snerge, a quote generator trained on a corpus of chat quotes.

## Tools

- snerge_quote: generate a quote. Pass a prompt to start from given words.
  Show the quote verbatim; it is meant to be odd.
- snerge_predict: continue some words and show the tokens on both sides.
- snerge_whence: find the training quotes a token came from. Tokens are
  lower case; punctuation uses markers like [!PERIOD] and [!COMMA].
- snerge_dictionary: list known tokens, filtered by prefix.
- snerge_learn: teach a new statement. Only do this when the user asks.
- snerge_corpus_search: full-text search over stored training quotes.
- snerge_stats: model and corpus sizes.

## Notes

Right after startup the corpus may still be loading; snerge_stats shows
how many facts are learned. When the model knows too little, snerge_quote
returns a fixed fallback line.`
}
