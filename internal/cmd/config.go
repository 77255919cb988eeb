package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmgilman/versync/internal/config"
	"github.com/jmgilman/versync/internal/exec"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View and modify configuration",
	Long: `View and modify the project's versync configuration.

With no arguments, displays the effective configuration (defaults, file,
environment and flags combined).
With one argument, displays the value for the specified key.
With two arguments, sets the value for the specified key in the config file,
creating it if needed. List values (packager.args, packager.env) are split
on whitespace.`,
	Example: `  # Show the effective config
  versync config

  # Show value for a specific key
  versync config sync.secondary

  # Set a value
  versync config packager.args "tauri build --debug"

  # List the available keys
  versync config --keys

  # Open config file in editor
  versync config --edit`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if keysFlag, _ := cmd.Flags().GetBool("keys"); keysFlag {
			for _, key := range config.Keys() {
				fmt.Fprintln(out, key)
			}
			return nil
		}

		loader := LoaderFromContext(cmd.Context())
		if loader == nil {
			loader = config.NewLoader(configPath)
			if _, err := loader.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		}

		if editFlag, _ := cmd.Flags().GetBool("edit"); editFlag {
			return runEdit(cmd, loader)
		}

		switch len(args) {
		case 0:
			return runShowAll(out, ConfigFromContext(cmd.Context()))
		case 1:
			return runShowKey(out, loader, args[0])
		case 2:
			return runSetKey(out, loader, args[0], args[1])
		}

		return nil
	},
}

func runEdit(cmd *cobra.Command, loader *config.Loader) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		return config.ErrNoEditor
	}

	_, err := exec.New().Run(cmd.Context(), &exec.RunOptions{
		Name:   editor,
		Args:   []string{loader.Path()},
		Stdin:  os.Stdin,
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("run editor: %w", err)
	}
	return nil
}

func runShowAll(out io.Writer, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	_, err = out.Write(data)
	return err
}

func runShowKey(out io.Writer, loader *config.Loader, key string) error {
	value, err := loader.Get(key)
	if err != nil {
		return err
	}

	if value == nil {
		fmt.Fprintln(out, "")
		return nil
	}

	switch v := value.(type) {
	case string:
		fmt.Fprintln(out, v)
	case map[string]any, []any, []string:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal value: %w", err)
		}
		_, err = out.Write(data)
		return err
	default:
		fmt.Fprintln(out, value)
	}

	return nil
}

func runSetKey(out io.Writer, loader *config.Loader, key, value string) error {
	if err := loader.Set(key, value); err != nil {
		return err
	}

	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("edit", false, "open config file in $EDITOR")
	configCmd.Flags().Bool("keys", false, "list the available configuration keys")
	configCmd.MarkFlagsMutuallyExclusive("edit", "keys")
}
