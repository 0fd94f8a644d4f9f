package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	cfgpkg "github.com/KaramelBytes/fraudlens-cli/internal/config"
	"github.com/KaramelBytes/fraudlens-cli/internal/logger"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// Closes the rotating log file when log_file is configured
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "fraudlens",
	Short: "FraudLens CLI: charts and summaries for fraud-detection results",
	Long: `FraudLens reads a transaction table and the per-transaction anomaly scores produced by a
detection pipeline, validates that the two are row-aligned, and renders the standard
set of PNG charts together with a summary of the detected anomalies.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.fraudlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// settings returns the loaded configuration or the defaults when loading failed.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return cfgpkg.Defaults()
}

// commandContext attaches the diagnostic logger to the command's context.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if path := settings().LogFile; path != "" {
		l, closer := logger.NewWithFile(path, debug)
		logCloser = closer
		return logger.WithContext(ctx, l)
	}
	return logger.WithContext(ctx, logger.New(debug))
}
