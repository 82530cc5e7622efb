package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/logging"
)

const version = "1.0.0"

// Exit codes.
const (
	ExitSuccess      = 0
	ExitBlocked      = 1 // review refused by the balance gate
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var flagVerbose bool

// Run executes the root command and returns an exit code.
func Run() int {
	app, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitRuntimeError
	}

	root := &cobra.Command{
		Use:   "alfred",
		Short: "AI code review assistant",
		Long:  "Alfred reviews files, git diffs, and GitHub pull requests with an AI backend,\ntracking token costs and review history locally.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(flagVerbose)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newReviewCmd(app))
	root.AddCommand(newDiffCmd(app))
	root.AddCommand(newPRCmd(app))
	root.AddCommand(newHistoryCmd(app))
	root.AddCommand(newCostsCmd(app))
	root.AddCommand(newBalanceCmd(app))
	root.AddCommand(newSetupCmd(app))
	root.AddCommand(newConfigCmd(app))
	root.AddCommand(newGitHubCmd(app))
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print alfred version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "alfred version %s\n", version)
		},
	}
}
