package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HendryAvila/snerge/internal/prose"
)

// Loader is the single owner of training. Corpus files are read
// concurrently, but every fact is stored and trained under one lock, so the
// model only ever sees one writer from this package.
type Loader struct {
	model   *prose.Model
	store   *Store
	exclude Exclude
	logger  *zap.Logger

	mu sync.Mutex
	// seen replaces the store's uniqueness check when there is no store.
	seen map[prose.FactKey]struct{}
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the Loader's logger.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithExclude drops moderated ids from every CSV load.
func WithExclude(e Exclude) LoaderOption {
	return func(ld *Loader) { ld.exclude = e }
}

// NewLoader trains m, persisting through store. A nil store keeps
// everything in memory.
func NewLoader(m *prose.Model, store *Store, opts ...LoaderOption) *Loader {
	l := &Loader{
		model:  m,
		store:  store,
		logger: zap.NewNop(),
		seen:   make(map[prose.FactKey]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Learn stores and trains one fact. It reports false when the fact was
// already known, in which case the model is left untouched.
func (l *Loader) Learn(source, text, corpus string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.learnLocked(source, text, corpus)
}

func (l *Loader) learnLocked(source, text, corpus string) (bool, error) {
	if l.store != nil {
		added, err := l.store.AddFact(source, text, corpus)
		if err != nil || !added {
			return false, err
		}
	} else {
		key := prose.FactKey{Source: source, Original: text}
		if _, ok := l.seen[key]; ok {
			return false, nil
		}
		l.seen[key] = struct{}{}
	}

	l.model.Train(text, source)
	return true, nil
}

// Restore retrains the model from every stored fact and returns how many
// were replayed.
func (l *Loader) Restore(ctx context.Context) (int, error) {
	if l.store == nil {
		return 0, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	err := l.store.Each(ctx, func(r Record) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		l.model.Train(r.Text, r.Source)
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("corpus: restore: %w", err)
	}

	l.logger.Info("model restored from store", zap.Int("facts", n))
	return n, nil
}

type loadedEntry struct {
	Entry
	// source is the index of the Source the entry was read from.
	source int
}

// Load reads every source concurrently and learns their facts. It returns
// one Import per source, in the order given. When a store is configured,
// the imports are also recorded there.
func (l *Loader) Load(ctx context.Context, sources ...Source) ([]Import, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	started := Now()
	imports := make([]Import, len(sources))
	for i, src := range sources {
		imports[i] = Import{ID: uuid.NewString(), Path: src.Path, Corpus: src.Label, StartedAt: started}
	}

	entries := make(chan loadedEntry, 64)
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			l.logger.Info("loading corpus", zap.String("path", src.Path), zap.String("label", src.Label))
			return ReadCSVFile(src, l.exclude, func(e Entry) error {
				select {
				case entries <- loadedEntry{Entry: e, source: i}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		})
	}

	var readErr error
	go func() {
		readErr = g.Wait()
		close(entries)
	}()

	var learnErr error
	for e := range entries {
		if learnErr != nil {
			continue
		}
		added, err := l.Learn(e.Source, e.Text, e.Corpus)
		if err != nil && !errors.Is(err, ErrEmptyFact) {
			learnErr = err
			cancel()
			continue
		}
		imp := &imports[e.source]
		if added {
			imp.Added++
		} else {
			imp.Skipped++
		}
	}

	if learnErr != nil {
		return imports, learnErr
	}
	if readErr != nil {
		return imports, readErr
	}

	finished := Now()
	for i := range imports {
		imports[i].FinishedAt = finished
		l.logger.Info("corpus loaded",
			zap.String("path", imports[i].Path),
			zap.Int("added", imports[i].Added),
			zap.Int("skipped", imports[i].Skipped))

		if l.store != nil {
			if err := l.store.RecordImport(imports[i]); err != nil {
				return imports, err
			}
		}
	}
	return imports, nil
}
