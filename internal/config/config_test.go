package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Order != 20 {
		t.Errorf("Order = %d, want 20", cfg.Order)
	}
	if cfg.Quote.MinLength != 24 || cfg.Quote.MaxLength != 100 {
		t.Errorf("quote length = (%d, %d), want (24, 100)", cfg.Quote.MinLength, cfg.Quote.MaxLength)
	}
	if cfg.Quote.MaxAttempts != 100 {
		t.Errorf("MaxAttempts = %d, want 100", cfg.Quote.MaxAttempts)
	}
	if cfg.Quote.Fallback != "I don't like coffee." {
		t.Errorf("Fallback = %q", cfg.Quote.Fallback)
	}
	if cfg.Quote.PredictMin != 30 {
		t.Errorf("PredictMin = %d, want 30", cfg.Quote.PredictMin)
	}
	if !strings.HasSuffix(cfg.DataDir, ".snerge") {
		t.Errorf("DataDir = %s, want it under .snerge", cfg.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults: %v", err)
	}
}

// --- Load ---

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("SNERGE_DATA_DIR", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	t.Setenv("SNERGE_DATA_DIR", "")
	dir := t.TempDir()
	path := writeFile(t, dir, "snerge.yaml", `
order: 8
quote:
  max_length: 140
corpus:
  exclude: moderation.txt
  watch: true
  sources:
    - path: quotes.csv
      label: Quote
    - path: /abs/extra.csv
      label: Extra
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Order != 8 {
		t.Errorf("Order = %d, want 8", cfg.Order)
	}
	if cfg.Quote.MaxLength != 140 {
		t.Errorf("MaxLength = %d, want 140", cfg.Quote.MaxLength)
	}
	if cfg.Quote.MinLength != 24 {
		t.Errorf("MinLength = %d, want default 24", cfg.Quote.MinLength)
	}
	if !cfg.Corpus.Watch {
		t.Error("Watch = false, want true")
	}

	want := []Source{
		{Path: filepath.Join(dir, "quotes.csv"), Label: "Quote"},
		{Path: "/abs/extra.csv", Label: "Extra"},
	}
	if diff := cmp.Diff(want, cfg.Corpus.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
	if cfg.Corpus.Exclude != filepath.Join(dir, "moderation.txt") {
		t.Errorf("Exclude = %s, want it resolved next to the config", cfg.Corpus.Exclude)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "order: [nope\n")

	if _, err := Load(path); err == nil {
		t.Fatal("Load() should fail on malformed YAML")
	}
}

func TestLoad_EnvOverridesDataDir(t *testing.T) {
	t.Setenv("SNERGE_DATA_DIR", "/tmp/snerge-env")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.DataDir != "/tmp/snerge-env" {
		t.Errorf("DataDir = %s, want /tmp/snerge-env", cfg.DataDir)
	}
}

// --- Validate ---

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"order too small", func(c *Config) { c.Order = 1 }, "order"},
		{"negative min", func(c *Config) { c.Quote.MinLength = -1 }, "min_length"},
		{"min not below max", func(c *Config) { c.Quote.MinLength = 100 }, "below"},
		{"no attempts", func(c *Config) { c.Quote.MaxAttempts = 0 }, "max_attempts"},
		{"no data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"source without path", func(c *Config) {
			c.Corpus.Sources = []Source{{Label: "x"}}
		}, "sources[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// --- Save ---

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv("SNERGE_DATA_DIR", "")
	path := filepath.Join(t.TempDir(), "nested", "snerge.yaml")

	cfg := DefaultConfig()
	cfg.Order = 12
	cfg.Corpus.Sources = []Source{{Path: "/data/q.csv", Label: "Quote"}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}
