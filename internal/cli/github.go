package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/github"
)

func newGitHubCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "github",
		Short: "Manage GitHub authentication",
	}
	cmd.AddCommand(newGitHubLoginCmd(a))
	cmd.AddCommand(newGitHubStatusCmd(a))
	cmd.AddCommand(newGitHubLogoutCmd(a))
	return cmd
}

func newGitHubLoginCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to GitHub with the device flow",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			auth := github.NewAuth(a.cfg.Dir)
			if auth.IsLoggedIn() {
				fmt.Fprintln(os.Stdout, "Already logged in. Run 'alfred github logout' first to switch accounts.")
				return
			}

			ctx := context.Background()
			dc, err := auth.StartDeviceFlow(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}

			fmt.Fprintf(os.Stdout, "Open %s and enter the code:\n\n", dc.VerificationURI)
			fmt.Fprintf(os.Stdout, "    %s\n\n", a.styles.Title.Render(dc.UserCode))
			fmt.Fprintln(os.Stdout, "Waiting for authorization...")

			if _, err := auth.PollForToken(ctx, dc); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitAuthError
				return
			}
			fmt.Fprintln(os.Stdout, a.styles.Success.Render("Logged in to GitHub."))
		},
	}
}

func newGitHubStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show GitHub login status",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			auth := github.NewAuth(a.cfg.Dir)
			if !auth.IsLoggedIn() {
				fmt.Fprintln(os.Stdout, "Not logged in. Run 'alfred github login'.")
				return
			}

			login, err := auth.UserLogin(context.Background())
			if err != nil {
				fmt.Fprintf(os.Stderr, "Logged in, but the token check failed: %v\n", err)
				exitCode = ExitAuthError
				return
			}
			fmt.Fprintf(os.Stdout, "Logged in as %s.\n", login)
		},
	}
}

func newGitHubLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored GitHub token",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			auth := github.NewAuth(a.cfg.Dir)
			if err := auth.Logout(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintln(os.Stdout, "Logged out of GitHub.")
		},
	}
}
