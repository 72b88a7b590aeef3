// Package cmd wires the demotrak CLI commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stattrak/demotrak/internal/career"
	"github.com/stattrak/demotrak/internal/config"
	"github.com/stattrak/demotrak/internal/sentiment"
	"github.com/stattrak/demotrak/internal/storage"
)

var (
	dbPath  string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "demotrak",
	Short: "Match telemetry stats tool",
	Long:  "Turn decoded match telemetry into per-match player stats and career trends.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(careerCmd)
	rootCmd.AddCommand(careersCmd)
}

// newLogger builds the process logger honoring --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config and applies the --db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

// openDB creates the database directory if needed and opens the store.
func openDB(cfg *config.Config) (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// newAnalyzer builds the chat scorer from the configured keyword lists.
func newAnalyzer(cfg *config.Config) sentiment.Analyzer {
	return sentiment.NewKeywordScorer(cfg.ToxicKeywords, cfg.PositiveKeywords)
}

// newCareerBuilder wires the career engine from config.
func newCareerBuilder(cfg *config.Config, db *storage.DB, logger *slog.Logger) *career.Builder {
	form := career.FormConfig{
		Window:           cfg.FormWindow,
		KDThreshold:      cfg.FormKDThreshold,
		ADRThreshold:     cfg.FormADRThreshold,
		WinRateThreshold: cfg.FormWinRateThreshold,
	}
	return career.NewBuilder(db, newAnalyzer(cfg), form, logger)
}
