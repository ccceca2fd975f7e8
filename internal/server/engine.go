package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HendryAvila/snerge/internal/config"
	"github.com/HendryAvila/snerge/internal/corpus"
	"github.com/HendryAvila/snerge/internal/prose"
	"github.com/HendryAvila/snerge/internal/quotes"
)

// Engine bundles the model with the collaborators that feed and query it.
// Store is nil when persistence could not be opened; everything else still
// works from memory.
type Engine struct {
	Model   *prose.Model
	Store   *corpus.Store
	Loader  *corpus.Loader
	Speaker *quotes.Speaker

	cfg     *config.Config
	logger  *zap.Logger
	watcher *corpus.Watcher
}

// NewEngine builds an untrained engine from cfg. Call Warm to load the
// corpora and Close when done.
func NewEngine(cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := prose.New(cfg.Order, prose.WithLogger(logger.Named("prose")))
	if err != nil {
		return nil, err
	}

	exclude, err := corpus.ReadExcludeFile(cfg.Corpus.Exclude)
	if err != nil {
		return nil, err
	}

	store, err := corpus.New(corpus.Config{DataDir: cfg.DataDir})
	if err != nil {
		logger.Warn("corpus persistence disabled", zap.Error(err))
		store = nil
	}

	loader := corpus.NewLoader(model, store,
		corpus.WithLogger(logger.Named("corpus")),
		corpus.WithExclude(exclude),
	)

	return &Engine{
		Model:   model,
		Store:   store,
		Loader:  loader,
		Speaker: quotes.NewSpeaker(model, cfg.Quote, quotes.WithLogger(logger.Named("quotes"))),
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Sources returns the configured corpora.
func (e *Engine) Sources() []corpus.Source {
	out := make([]corpus.Source, len(e.cfg.Corpus.Sources))
	for i, s := range e.cfg.Corpus.Sources {
		out[i] = corpus.Source{Path: s.Path, Label: s.Label}
	}
	return out
}

// Warm replays the store into the model, imports every configured corpus
// and, when enabled, starts watching them for changes. The watcher runs
// until ctx is cancelled or Close is called.
func (e *Engine) Warm(ctx context.Context) error {
	if _, err := e.Loader.Restore(ctx); err != nil {
		return err
	}

	sources := e.Sources()
	if len(sources) > 0 {
		if _, err := e.Loader.Load(ctx, sources...); err != nil {
			return fmt.Errorf("loading corpora: %w", err)
		}
	}

	if e.cfg.Corpus.Watch && len(sources) > 0 && e.watcher == nil {
		w, err := corpus.NewWatcher(e.Loader, sources...)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			w.Stop()
			return err
		}
		e.watcher = w
	}

	stats := e.Model.Stats()
	e.logger.Info("model ready",
		zap.Int("facts", stats.Facts),
		zap.Int("tokens", stats.Tokens),
		zap.Int("contexts", stats.Contexts))
	return nil
}

// Close stops the watcher and closes the store.
func (e *Engine) Close() {
	if e.watcher != nil {
		e.watcher.Stop()
		e.watcher = nil
	}
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			e.logger.Warn("corpus store close", zap.Error(err))
		}
	}
}
