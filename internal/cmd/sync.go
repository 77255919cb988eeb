package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jmgilman/versync/internal/versionsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the manifest version into the packaging config",
	Long: `Copy the top-level "version" of the primary manifest into the secondary
packaging config if the two differ.

The secondary file is rewritten only when the version changes; all other
fields keep their order and values. Every failure is ignored and leaves the
file untouched, so this command always succeeds.`,
	Example: `  # Run from src-tauri/ with the default paths
  versync sync

  # Explicit paths
  versync sync --primary package.json --secondary src-tauri/tauri.conf.json

  # From a Cargo build script
  versync sync --cargo`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		syncVersion(cmd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// syncVersion runs the best-effort version synchronization for cmd.
func syncVersion(cmd *cobra.Command) {
	ctx := cmd.Context()
	cfg := ConfigFromContext(ctx)

	versionsync.Synchronize(ctx, cfg.Sync.Primary, cfg.Sync.Secondary, syncOptions(cmd, cfg)...)
}
