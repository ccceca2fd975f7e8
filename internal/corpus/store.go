// Package corpus persists training facts and feeds them to the model.
//
// Facts are kept in SQLite with an FTS5 mirror so that the corpus can be
// searched and the model rebuilt on startup without re-reading every CSV
// file. Loading, watching and restoring all funnel through a Loader, which
// owns training.
package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrEmptyFact is returned when a fact has no text to store.
var ErrEmptyFact = errors.New("corpus: fact text is empty")

// ─── Types ───────────────────────────────────────────────────────────────────

// Record is one stored fact.
type Record struct {
	ID        int64  `json:"id"`
	Source    string `json:"source"`
	Text      string `json:"text"`
	Corpus    string `json:"corpus"`
	CreatedAt string `json:"created_at"`
}

// SearchResult embeds a Record with its FTS5 rank.
type SearchResult struct {
	Record
	Rank float64 `json:"rank"`
}

// Import is the audit row written for every corpus file load.
type Import struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Corpus     string `json:"corpus"`
	Added      int    `json:"added"`
	Skipped    int    `json:"skipped"`
	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at"`
}

// CorpusCount is the number of facts stored for one corpus label.
type CorpusCount struct {
	Corpus string `json:"corpus"`
	Facts  int    `json:"facts"`
}

// Stats holds aggregate corpus statistics.
type Stats struct {
	TotalFacts   int           `json:"total_facts"`
	TotalImports int           `json:"total_imports"`
	Corpora      []CorpusCount `json:"corpora"`
	LastImport   *Import       `json:"last_import,omitempty"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds corpus store configuration.
type Config struct {
	DataDir          string
	MaxSearchResults int
}

// DefaultConfig returns the default configuration for the corpus store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:          filepath.Join(home, ".snerge"),
		MaxSearchResults: 50,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the persistent fact store backed by SQLite + FTS5.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates a Store in cfg.DataDir. It creates the directory if needed,
// opens SQLite in WAL mode and runs migrations.
func New(cfg Config) (*Store, error) {
	if cfg.MaxSearchResults <= 0 {
		cfg.MaxSearchResults = DefaultConfig().MaxSearchResults
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("corpus: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "corpus.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("corpus: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("corpus: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("corpus: migration: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS facts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			source     TEXT    NOT NULL,
			text       TEXT    NOT NULL,
			corpus     TEXT    NOT NULL DEFAULT '',
			created_at TEXT    NOT NULL DEFAULT (datetime('now')),
			UNIQUE (source, text)
		);

		CREATE INDEX IF NOT EXISTS idx_facts_corpus ON facts(corpus);

		CREATE VIRTUAL TABLE IF NOT EXISTS facts_fts USING fts5(
			source,
			text,
			content='facts',
			content_rowid='id'
		);

		CREATE TABLE IF NOT EXISTS imports (
			id          TEXT    PRIMARY KEY,
			path        TEXT    NOT NULL,
			corpus      TEXT    NOT NULL DEFAULT '',
			added       INTEGER NOT NULL DEFAULT 0,
			skipped     INTEGER NOT NULL DEFAULT 0,
			started_at  TEXT    NOT NULL,
			finished_at TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_imports_finished ON imports(finished_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// FTS triggers (idempotent)
	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='trigger' AND name='facts_fts_insert'",
	).Scan(&name)

	if err == sql.ErrNoRows {
		triggers := `
			CREATE TRIGGER facts_fts_insert AFTER INSERT ON facts BEGIN
				INSERT INTO facts_fts(rowid, source, text)
				VALUES (new.id, new.source, new.text);
			END;

			CREATE TRIGGER facts_fts_delete AFTER DELETE ON facts BEGIN
				INSERT INTO facts_fts(facts_fts, rowid, source, text)
				VALUES ('delete', old.id, old.source, old.text);
			END;
		`
		if _, err := s.db.Exec(triggers); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	return nil
}

// ─── Facts ───────────────────────────────────────────────────────────────────

// AddFact stores a fact. It reports false when the same source and text
// are already stored.
func (s *Store) AddFact(source, text, corpus string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, ErrEmptyFact
	}

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO facts (source, text, corpus) VALUES (?, ?, ?)`,
		source, text, corpus,
	)
	if err != nil {
		return false, fmt.Errorf("corpus: add fact %q: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("corpus: add fact %q: %w", source, err)
	}
	return n == 1, nil
}

// Each calls fn for every stored fact in insertion order. It stops at the
// first error from fn or when ctx is done.
func (s *Store) Each(ctx context.Context, fn func(Record) error) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, text, corpus, created_at FROM facts ORDER BY id`)
	if err != nil {
		return fmt.Errorf("corpus: list facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Source, &r.Text, &r.Corpus, &r.CreatedAt); err != nil {
			return fmt.Errorf("corpus: scan fact: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Search runs a full-text query over fact text and sources. An empty query
// returns the most recently stored facts.
func (s *Store) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > s.cfg.MaxSearchResults {
		limit = s.cfg.MaxSearchResults
	}

	ftsQuery := sanitizeFTS(query)
	if ftsQuery == "" {
		return s.searchRecent(limit)
	}

	rows, err := s.db.Query(`
		SELECT f.id, f.source, f.text, f.corpus, f.created_at, fts.rank
		FROM facts_fts fts
		JOIN facts f ON f.id = fts.rowid
		WHERE facts_fts MATCH ?
		ORDER BY fts.rank
		LIMIT ?
	`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("corpus: search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Source, &r.Text, &r.Corpus, &r.CreatedAt, &r.Rank); err != nil {
			return nil, fmt.Errorf("corpus: scan search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Store) searchRecent(limit int) ([]SearchResult, error) {
	rows, err := s.db.Query(`
		SELECT id, source, text, corpus, created_at
		FROM facts
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("corpus: recent facts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Source, &r.Text, &r.Corpus, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("corpus: scan fact: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ─── Imports ─────────────────────────────────────────────────────────────────

// RecordImport writes an import audit row.
func (s *Store) RecordImport(imp Import) error {
	_, err := s.db.Exec(
		`INSERT INTO imports (id, path, corpus, added, skipped, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		imp.ID, imp.Path, imp.Corpus, imp.Added, imp.Skipped, imp.StartedAt, imp.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("corpus: record import %s: %w", imp.Path, err)
	}
	return nil
}

// RecentImports returns the latest imports, newest first.
func (s *Store) RecentImports(limit int) ([]Import, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, path, corpus, added, skipped, started_at, finished_at
		FROM imports
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("corpus: recent imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var imports []Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.ID, &imp.Path, &imp.Corpus, &imp.Added, &imp.Skipped,
			&imp.StartedAt, &imp.FinishedAt); err != nil {
			return nil, fmt.Errorf("corpus: scan import: %w", err)
		}
		imports = append(imports, imp)
	}
	return imports, rows.Err()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate corpus statistics.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM facts").Scan(&stats.TotalFacts); err != nil {
		return nil, fmt.Errorf("corpus: count facts: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM imports").Scan(&stats.TotalImports); err != nil {
		return nil, fmt.Errorf("corpus: count imports: %w", err)
	}

	rows, err := s.db.Query("SELECT corpus, COUNT(*) FROM facts GROUP BY corpus ORDER BY corpus")
	if err != nil {
		return nil, fmt.Errorf("corpus: count corpora: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c CorpusCount
		if err := rows.Scan(&c.Corpus, &c.Facts); err == nil {
			stats.Corpora = append(stats.Corpora, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("corpus: count corpora: %w", err)
	}

	if recent, err := s.RecentImports(1); err == nil && len(recent) == 1 {
		stats.LastImport = &recent[0]
	}

	return stats, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// sanitizeFTS wraps each word in quotes for safe FTS5 queries.
// "no coffee today" → `"no" "coffee" "today"`
func sanitizeFTS(query string) string {
	var words []string
	for _, w := range strings.Fields(query) {
		w = strings.ReplaceAll(w, `"`, "")
		if w != "" {
			words = append(words, `"`+w+`"`)
		}
	}
	return strings.Join(words, " ")
}

// Now returns the current time formatted for SQLite.
func Now() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05")
}
