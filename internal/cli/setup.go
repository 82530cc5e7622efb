package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/config"
)

func newSetupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Configure your Anthropic API key",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if a.cfg.HasAPIKey() {
				fmt.Fprintf(os.Stdout, "An API key is already saved (%s).\n", a.cfg.MaskedKey())
				if !a.prompt.Confirm("Replace it?", false) {
					fmt.Fprintln(os.Stdout, "Keeping the existing key.")
					return
				}
			}

			key, err := a.prompt.ReadLine("Enter your Anthropic API key: ")
			if err != nil || key == "" {
				fmt.Fprintln(os.Stderr, "Error: no key entered")
				exitCode = ExitUsageError
				return
			}

			if !config.ValidKeyFormat(key) {
				fmt.Fprintln(os.Stderr, a.styles.Warning.Render("Warning: key does not start with sk-ant-, which Anthropic keys normally do."))
				if !a.prompt.Confirm("Save it anyway?", false) {
					fmt.Fprintln(os.Stdout, "Aborted.")
					return
				}
			}

			if err := a.cfg.SaveAPIKey(key); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintln(os.Stdout, a.styles.Success.Render("API key saved."))
			fmt.Fprintln(os.Stdout, "Try it with: alfred review <file>")
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var (
		flagShow  bool
		flagReset bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or reset saved configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if flagReset {
				if !a.prompt.Confirm("Remove the saved API key and settings?", false) {
					fmt.Fprintln(os.Stdout, "Aborted.")
					return
				}
				if err := a.cfg.Clear(); err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					exitCode = ExitRuntimeError
					return
				}
				fmt.Fprintln(os.Stdout, "Configuration cleared.")
				return
			}

			// Showing is the default action; --show exists for symmetry.
			fmt.Fprintf(os.Stdout, "Config directory: %s\n", a.cfg.Dir)
			fmt.Fprintf(os.Stdout, "Model:            %s\n", a.cfg.Model)
			if a.cfg.HasAPIKey() {
				fmt.Fprintf(os.Stdout, "API key:          %s\n", a.cfg.MaskedKey())
			} else {
				fmt.Fprintln(os.Stdout, "API key:          not set (run 'alfred setup')")
			}
		},
	}
	cmd.Flags().BoolVar(&flagShow, "show", false, "Show current configuration (default)")
	cmd.Flags().BoolVar(&flagReset, "reset", false, "Remove saved configuration")
	return cmd
}
