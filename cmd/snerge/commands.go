package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/snerge/internal/corpus"
	"github.com/HendryAvila/snerge/internal/quotes"
	snergeserver "github.com/HendryAvila/snerge/internal/server"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Long: `Writes the settings in effect (defaults merged with any existing file)
to the --config path, so they can be edited. An existing file is left
alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server (stdio transport)",
	RunE:  runServe,
}

var sayCmd = &cobra.Command{
	Use:   "say",
	Short: "Print a batch of generated quotes",
	Args:  cobra.NoArgs,
	RunE:  runSay,
}

var whenceCmd = &cobra.Command{
	Use:   "whence WORD...",
	Short: "Show the training quotes each token came from",
	Long: `Looks up each word as a token and prints the quotes it was learned
from as JSON. Tokens are lower case; punctuation uses markers such as
[!PERIOD] and [!COMMA].`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWhence,
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump every token with the quotes it came from, as JSON",
	Args:  cobra.NoArgs,
	RunE:  runDump,
}

var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import id,quote CSV files into the corpus store",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(configPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	s, cleanup, err := snergeserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// ServeStdio handles SIGINT and SIGTERM itself.
	return server.ServeStdio(s)
}

// warmEngine builds an engine and loads everything it knows. One-shot
// commands never watch.
func warmEngine(ctx context.Context) (*snergeserver.Engine, error) {
	c := *cfg
	c.Corpus.Watch = false

	e, err := snergeserver.NewEngine(&c, logger)
	if err != nil {
		return nil, err
	}
	if err := e.Warm(ctx); err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func runSay(cmd *cobra.Command, args []string) error {
	e, err := warmEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	count, _ := cmd.Flags().GetInt("count")
	if count <= 0 {
		count = cfg.Quote.SayCount
	}
	owo, _ := cmd.Flags().GetBool("owo")

	out := cmd.OutOrStdout()
	for _, q := range e.Speaker.Statements(count, cfg.Quote.SayMaxLength) {
		if owo {
			q = quotes.OwO(q)
		}
		fmt.Fprintln(out, q)
	}
	return nil
}

func runWhence(cmd *cobra.Command, args []string) error {
	e, err := warmEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	found := e.Speaker.Whence(strings.Join(args, " "))
	return writeJSON(cmd, quotes.AttributeAll(found))
}

func runDump(cmd *cobra.Command, args []string) error {
	e, err := warmEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	return writeJSON(cmd, quotes.AttributeAll(e.Model.Snapshot()))
}

func runImport(cmd *cobra.Command, args []string) error {
	c := *cfg
	c.Corpus.Sources = nil
	c.Corpus.Watch = false

	e, err := snergeserver.NewEngine(&c, logger)
	if err != nil {
		return err
	}
	defer e.Close()
	if e.Store == nil {
		return fmt.Errorf("corpus store unavailable in %s", c.DataDir)
	}

	label, _ := cmd.Flags().GetString("label")
	sources := make([]corpus.Source, len(args))
	for i, path := range args {
		l := label
		if l == "" {
			l = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		sources[i] = corpus.Source{Path: path, Label: l}
	}

	imports, err := e.Loader.Load(cmd.Context(), sources...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, imp := range imports {
		fmt.Fprintf(out, "%s: %d added, %d skipped\n", imp.Path, imp.Added, imp.Skipped)
		logger.Debug("import recorded", zap.String("id", imp.ID), zap.String("corpus", imp.Corpus))
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
