// Package cmd implements the versync CLI commands using Cobra.
// It provides commands for synchronizing the application version into the
// packaging configuration, checking it, and running the packager.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmgilman/versync/internal/config"
	"github.com/jmgilman/versync/internal/packager"
	"github.com/jmgilman/versync/internal/slogger"
	"github.com/jmgilman/versync/internal/version"
	"github.com/jmgilman/versync/internal/versionsync"
)

// Persistent flag values.
var (
	configPath    string
	primaryPath   string
	secondaryPath string
	verbosity     int
	quiet         bool
	cargoWarnings bool
)

// configLoader is used by the config command to read and write keys.
var configLoader *config.Loader

var rootCmd = &cobra.Command{
	Use:   "versync",
	Short: "Keep the packaging config version in step with the project manifest",
	Long: `versync copies the version from a project manifest (package.json) into a
packaging configuration (tauri.conf.json) before the packaging toolchain runs.

Synchronization is best effort: a missing or malformed file, a missing
version field or a failed write leaves the configuration untouched and never
fails the build. Run with -v to see why a sync was skipped.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		logger := slogger.New(slogger.Config{
			Verbosity: verbosity,
			Quiet:     quiet,
			Output:    cmd.ErrOrStderr(),
		})
		ctx = slogger.WithLogger(ctx, logger)

		cfg := loadConfig(ctx)
		applyFlags(cmd, cfg)

		ctx = WithConfig(ctx, cfg)
		ctx = WithLoader(ctx, configLoader)
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Main runs the CLI and returns the process exit code. A failing packager
// exits with its own status.
func Main() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := Execute(ctx)
	if err == nil {
		return 0
	}

	var exitErr *packager.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default "+config.DefaultConfigFile+")")
	flags.StringVar(&primaryPath, "primary", "", "path to the manifest holding the canonical version")
	flags.StringVar(&secondaryPath, "secondary", "", "path to the packaging config to update")
	flags.CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	flags.BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	flags.BoolVar(&cargoWarnings, "cargo", false, "also print the update notice as a cargo:warning line on stdout")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// loadConfig loads the project configuration, falling back to defaults
// with a warning. A broken config file never blocks the build.
func loadConfig(ctx context.Context) *config.Config {
	logger := slogger.L(ctx)

	configLoader = config.NewLoader(configPath)
	cfg, err := configLoader.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "path", configLoader.Path(), "error", err)
		cfg = config.Defaults()
	}

	if err := cfg.Validate(); err != nil {
		logger.Warn("config validation failed", "error", err)
	}

	return cfg
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("primary") {
		cfg.Sync.Primary = primaryPath
	}
	if flags.Changed("secondary") {
		cfg.Sync.Secondary = secondaryPath
	}
	if flags.Changed("cargo") {
		cfg.Log.Cargo = cargoWarnings
	}
}

// syncOptions returns the synchronizer options for cfg.
func syncOptions(cmd *cobra.Command, cfg *config.Config) []versionsync.Option {
	var opts []versionsync.Option
	if cfg.Log.Cargo {
		opts = append(opts, versionsync.WithCargoWarnings(cmd.OutOrStdout()))
	}
	return opts
}
