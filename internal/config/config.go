// Package config holds the runtime settings for snerge.
//
// Settings live in a YAML file. Missing keys keep their defaults and a
// missing file yields DefaultConfig, so a bare install works out of the box.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the full snerge configuration.
type Config struct {
	// Order is the maximum context length the model keeps.
	Order int `yaml:"order"`

	Quote   QuoteConfig   `yaml:"quote"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	DataDir string        `yaml:"data_dir"`
	Logging LoggingConfig `yaml:"logging"`
}

// QuoteConfig controls the acceptance policy for generated quotes.
type QuoteConfig struct {
	MinLength    int    `yaml:"min_length"`
	MaxLength    int    `yaml:"max_length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	Fallback     string `yaml:"fallback"`
	PredictMin   int    `yaml:"predict_min_length"`
	SayCount     int    `yaml:"say_count"`
	SayMaxLength int    `yaml:"say_max_length"`
}

// CorpusConfig lists the training corpora.
type CorpusConfig struct {
	Sources []Source `yaml:"sources"`
	// Exclude is a moderation file of "<id> <reason>" lines.
	Exclude string `yaml:"exclude"`
	// Watch re-imports corpus files when they change on disk.
	Watch bool `yaml:"watch"`
}

// Source is one CSV corpus. Label prefixes the source of every fact read
// from it.
type Source struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label"`
}

// LoggingConfig controls the zap logger built by the binary.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Order: 20,
		Quote: QuoteConfig{
			MinLength:    24,
			MaxLength:    100,
			MaxAttempts:  100,
			Fallback:     "I don't like coffee.",
			PredictMin:   30,
			SayCount:     20,
			SayMaxLength: 80,
		},
		DataDir: filepath.Join(home, ".snerge"),
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Relative corpus paths are resolved against the config file.
	base := filepath.Dir(path)
	for i, src := range cfg.Corpus.Sources {
		cfg.Corpus.Sources[i].Path = resolve(base, src.Path)
	}
	cfg.Corpus.Exclude = resolve(base, cfg.Corpus.Exclude)

	cfg.applyEnvOverrides()
	return cfg, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("SNERGE_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.Order < 2 {
		return fmt.Errorf("config: order must be at least 2, got %d", c.Order)
	}
	if c.Quote.MinLength < 0 {
		return fmt.Errorf("config: quote.min_length must not be negative, got %d", c.Quote.MinLength)
	}
	if c.Quote.MinLength >= c.Quote.MaxLength {
		return fmt.Errorf("config: quote.min_length (%d) must be below quote.max_length (%d)",
			c.Quote.MinLength, c.Quote.MaxLength)
	}
	if c.Quote.MaxAttempts < 1 {
		return fmt.Errorf("config: quote.max_attempts must be at least 1, got %d", c.Quote.MaxAttempts)
	}
	if c.DataDir == "" {
		return errors.New("config: data_dir is required")
	}
	for i, src := range c.Corpus.Sources {
		if src.Path == "" {
			return fmt.Errorf("config: corpus.sources[%d] has no path", i)
		}
	}
	return nil
}

// Save writes c to path as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
