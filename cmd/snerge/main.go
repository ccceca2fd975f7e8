// snerge: a quote generator that speaks in the voice of its corpus.
//
// snerge learns from CSV corpora of quotes and generates new ones with a
// variable-order Markov model. It runs as an MCP server or as a small CLI.
//
// Usage:
//
//	snerge init             # Write a config file to edit
//	snerge serve            # Start MCP server (stdio transport)
//	snerge say              # Print a batch of quotes
//	snerge whence WORD...   # Show the quotes a token came from
//	snerge dump             # Dump every token with its quotes as JSON
//	snerge import FILE...   # Import CSV corpora into the store
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HendryAvila/snerge/internal/config"
	snergeserver "github.com/HendryAvila/snerge/internal/server"
)

var (
	// Global flags
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "snerge",
	Short: "snerge - quotes in the voice of a corpus",
	Long: `snerge learns the quotes in its corpora and makes up new ones.

Add it to your AI tool's MCP config:

  {
    "mcpServers": {
      "snerge": {
        "command": "snerge",
        "args": ["serve"]
      }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		// stdout carries the MCP transport, so logs always go to stderr.
		zcfg := zap.NewProductionConfig()
		zcfg.OutputPaths = []string{"stderr"}
		zcfg.ErrorOutputPaths = []string{"stderr"}
		if debug || cfg.Logging.Debug {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the snerge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "snerge v%s\n", snergeserver.Version)
	},
}

func init() {
	home, _ := os.UserHomeDir()
	rootCmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join(home, ".snerge", "config.yaml"),
		"Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log at debug level, including per-phrase training")

	sayCmd.Flags().Int("count", 0, "Number of quotes (default from config)")
	sayCmd.Flags().Bool("owo", false, "Rewrite quotes in the ~UωU~ register")
	importCmd.Flags().String("label", "", "Label for the imported quotes (default: file name)")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initCmd, serveCmd, sayCmd, whenceCmd, dumpCmd, importCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
