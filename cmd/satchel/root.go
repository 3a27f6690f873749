package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/satchelhq/satchel"
)

var (
	verbose    bool
	configPath string
	token      string
	baseURL    string
	dbPath     string
	rootLabel  string
	mergeMode  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "satchel",
	Short: "A local-first note engine synced to a folder-oriented blob store",
	Long: `Satchel keeps a structured note collection in a remote blob service
that has no native record identity. Identity, versioning, and grouping live
in the blob payloads and names; satchel reconstructs them on every load
and writes changes back in the background.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ./satchel.yaml)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for the remote service (or SATCHEL_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Remote service endpoint")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Local snapshot database path")
	rootCmd.PersistentFlags().StringVar(&rootLabel, "root-label", "", "Label of the remote root folder")
	rootCmd.PersistentFlags().StringVar(&mergeMode, "merge", "", "Bulk-load merge policy: newer or replace")
}

// newEngine assembles an engine from flags, environment, and the
// optional config file. Flags win over the file.
func newEngine() (*satchel.Engine, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.apply(token, baseURL, dbPath, rootLabel, mergeMode)

	if cfg.Token == "" {
		cfg.Token = os.Getenv("SATCHEL_TOKEN")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("no token configured; use --token, SATCHEL_TOKEN, or the config file")
	}

	opts := []satchel.Option{
		satchel.WithStaticToken(cfg.Token),
		satchel.WithLogger(slog.Default()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, satchel.WithBaseURL(cfg.BaseURL))
	}
	if cfg.SnapshotPath != "" {
		opts = append(opts, satchel.WithSnapshotPath(cfg.SnapshotPath))
	}
	if cfg.RootLabel != "" {
		opts = append(opts, satchel.WithRootLabel(cfg.RootLabel))
	}
	if cfg.MergePolicy != "" {
		opts = append(opts, satchel.WithMergePolicy(satchel.MergePolicy(cfg.MergePolicy)))
	}
	return satchel.New(opts...)
}

// shutdown drains pending remote writes before the process exits.
func shutdown(eng *satchel.Engine) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := eng.Flush(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: pending changes not fully synced: %v\n", err)
	}
	if err := eng.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
