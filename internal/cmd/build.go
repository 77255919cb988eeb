package cmd

import (
	"os"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmgilman/versync/internal/exec"
	"github.com/jmgilman/versync/internal/packager"
)

var buildCmd = &cobra.Command{
	Use:   "build [-- packager-args...]",
	Short: "Synchronize the version, then run the packager",
	Long: `Synchronize the version exactly like "versync sync", then run the configured
packaging command (default: cargo tauri build).

The packager always runs, whatever the synchronization did. Arguments after
"--" are appended to the configured packager arguments. versync exits with
the packager's exit status.`,
	Example: `  # Sync and run cargo tauri build
  versync build

  # Pass extra arguments to the packager
  versync build -- --bundles deb --verbose

  # Use a different packager for one run
  VERSYNC_PACKAGER=npm versync build --config ci.yaml`,
	Args: cobra.ArbitraryArgs,
	RunE: runBuildCmd,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuildCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := ConfigFromContext(ctx)

	syncVersion(cmd)

	env, err := cfg.Packager.EnvMap()
	if err != nil {
		return err
	}

	opts := packager.Options{
		Command: cfg.Packager.Command,
		Args:    append(slices.Clone(cfg.Packager.Args), args...),
		Dir:     cfg.Packager.Dir,
		Env:     env,
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	}

	// Only hand over an interactive stdin (e.g. for a signing key
	// password prompt); a piped stdin in CI stays with versync.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		opts.Stdin = os.Stdin
	}

	return packager.New(exec.New()).Run(ctx, opts)
}
