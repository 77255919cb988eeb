package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/jmgilman/versync/internal/slogger"
	"github.com/jmgilman/versync/internal/versionsync"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the packaging config version matches the manifest",
	Long: `Compare the two versions without writing anything.

Exits 0 when they match and 1 when they differ or a file cannot be read.
Unlike sync and build, problems are reported as errors, which makes this
suitable as a CI guard.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := ConfigFromContext(ctx)
		primary := filepath.Base(cfg.Sync.Primary)
		secondary := filepath.Base(cfg.Sync.Secondary)

		st, err := versionsync.New(afero.NewOsFs()).Check(ctx, cfg.Sync.Primary, cfg.Sync.Secondary)
		if err != nil && !errors.Is(err, versionsync.ErrOutOfSync) {
			return err
		}

		if !st.Semver {
			slogger.L(ctx).Warn("version is not a valid semantic version", "file", primary, "version", st.Primary)
		}

		out := cmd.OutOrStdout()
		switch {
		case st.InSync():
			fmt.Fprintf(out, "%s and %s agree on version %s\n", primary, secondary, st.Primary)
		case st.SecondaryMissing:
			fmt.Fprintf(out, "%s has version %s, %s has no version\n", primary, st.Primary, secondary)
		default:
			fmt.Fprintf(out, "%s has version %s, %s has version %s\n", primary, st.Primary, secondary, st.Secondary)
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
