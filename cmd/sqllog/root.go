package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqllog/sqllog-go/pkg/sqllog"
)

var (
	// global flags
	cfgFile string
	verbose bool

	// cfg holds file-based defaults, merged before each run.
	cfg = defaultCLIConfig()
)

var rootCmd = &cobra.Command{
	Use:   "sqllog",
	Short: "Parse and follow DM database SQL trace logs",
	Long: `sqllog works with DM database SQL trace logs (sqllog files):
multi-line records carrying a timestamp, session metadata, the SQL text
and optional execution statistics.

Subcommands parse whole files, follow growing logs in real time, filter
records by keyword and export parsed records to SQLite.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile == "" {
			return nil
		}
		loaded, err := loadCLIConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Path to a YAML config file with default settings")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging to stderr")
}

// newLogger returns the logger for library calls: debug to stderr when
// --verbose is set, discarded otherwise.
func newLogger() *slog.Logger {
	if verbose {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// baseOptions assembles the library options shared by all subcommands,
// from the config file defaults and the per-command encoding flag.
func baseOptions(encodingFlag string) []sqllog.Option {
	enc := cfg.Encoding
	if encodingFlag != "" {
		enc = encodingFlag
	}
	opts := []sqllog.Option{
		sqllog.WithLogger(newLogger()),
		sqllog.WithEncoding(enc),
	}
	if cfg.BufferSize > 0 {
		opts = append(opts, sqllog.WithBufferSize(cfg.BufferSize))
	}
	return opts
}
