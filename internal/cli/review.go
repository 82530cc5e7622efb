package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/backend"
	"github.com/dshills/alfred/internal/gitctx"
	"github.com/dshills/alfred/internal/github"
	"github.com/dshills/alfred/internal/review"
)

// Shared review flags
var (
	flagFocus  string
	flagAPIKey string
	flagNoCost bool
)

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagFocus, "focus", "f", "general", "Review focus (general, security, performance, style, bugs)")
	cmd.Flags().StringVarP(&flagAPIKey, "api-key", "k", "", "Anthropic API key (overrides saved config)")
	cmd.Flags().BoolVar(&flagNoCost, "no-cost", false, "Suppress the cost summary after the review")
}

func newReviewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Review a source file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			src, err := review.FileSource(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitUsageError
				return
			}
			runReviewPipeline(a, src)
		},
	}
	addReviewFlags(cmd)
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var (
		flagStaged   bool
		flagUnstaged bool
		flagSince    string
	)
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Review git changes (staged by default)",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if flagStaged && flagUnstaged {
				fmt.Fprintln(os.Stderr, "Error: --staged and --unstaged are mutually exclusive")
				exitCode = ExitUsageError
				return
			}

			var (
				d   gitctx.Diff
				err error
			)
			switch {
			case flagSince != "":
				d, err = gitctx.Since(flagSince)
			case flagUnstaged:
				d, err = gitctx.Unstaged()
			default:
				d, err = gitctx.Staged()
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}

			if d.IsEmpty() {
				fmt.Fprintln(os.Stdout, d.EmptyHint())
				return
			}
			if d.Truncated {
				fmt.Fprintln(os.Stderr, a.styles.Warning.Render("Note: diff exceeded the size budget and was truncated."))
			}
			runReviewPipeline(a, review.DiffSource(d))
		},
	}
	cmd.Flags().BoolVar(&flagStaged, "staged", false, "Review staged changes (default)")
	cmd.Flags().BoolVar(&flagUnstaged, "unstaged", false, "Review unstaged changes")
	cmd.Flags().StringVar(&flagSince, "since", "", "Review changes since a ref or commit")
	addReviewFlags(cmd)
	return cmd
}

func newPRCmd(a *app) *cobra.Command {
	var flagPost bool
	cmd := &cobra.Command{
		Use:   "pr <url|number>",
		Short: "Review a GitHub pull request",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ref, err := github.ParsePRRef(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitUsageError
				return
			}

			auth := github.NewAuth(a.cfg.Dir)
			var token string
			if tok, err := auth.Token(); err == nil {
				token = tok.AccessToken
			} else if flagPost {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitAuthError
				return
			}

			ctx := context.Background()
			client := github.NewClient(token)
			pr, err := client.GetPullRequest(ctx, ref.Owner, ref.Repo, ref.Number)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}

			src := review.PRSource(pr)
			if src.IsEmpty() {
				fmt.Fprintln(os.Stdout, "No reviewable changes in this pull request.")
				return
			}

			fmt.Fprintf(os.Stdout, "%s\n", a.styles.Title.Render(pr.Label()))
			fmt.Fprintf(os.Stdout, "Author: %s | State: %s | Files: %d (+%d -%d)\n\n",
				pr.Author, pr.State, pr.ChangedFiles, pr.Additions, pr.Deletions)

			outcome, ok := runReviewPipeline(a, src)
			if !ok || !flagPost {
				return
			}

			comment := github.FormatReviewComment(outcome.Review, pr)
			if err := client.PostIssueComment(ctx, ref.Owner, ref.Repo, ref.Number, comment); err != nil {
				fmt.Fprintf(os.Stderr, "Error posting comment: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintln(os.Stdout, a.styles.Success.Render("Review posted to the pull request."))
		},
	}
	cmd.Flags().BoolVar(&flagPost, "post", false, "Post the review as a PR comment")
	addReviewFlags(cmd)
	return cmd
}

// runReviewPipeline gates, runs, and prints one review. It reports whether a
// review was produced so callers can chain follow-up actions.
func runReviewPipeline(a *app, src review.Source) (review.Outcome, bool) {
	focus, err := review.ParseFocus(flagFocus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitUsageError
		return review.Outcome{}, false
	}

	key, ok := a.cfg.ResolveAPIKey(flagAPIKey)
	if !ok {
		fmt.Fprintln(os.Stderr, "Error: no API key configured. Run 'alfred setup' or pass --api-key.")
		exitCode = ExitAuthError
		return review.Outcome{}, false
	}

	engine := review.NewEngine(backend.NewAnthropic(key, a.cfg.Model), a.tracker, a.estimator, a.store)

	gate := engine.Gate()
	if !gate.Proceed {
		fmt.Fprintln(os.Stderr, a.styles.Error.Render(gate.Message))
		exitCode = ExitBlocked
		return review.Outcome{}, false
	}
	if gate.Message != "" {
		fmt.Fprintln(os.Stderr, a.styles.Warning.Render(gate.Message))
		if !a.prompt.Confirm("Continue with this review?", true) {
			exitCode = ExitBlocked
			return review.Outcome{}, false
		}
	}

	fmt.Fprintf(os.Stderr, "Reviewing %s with %s...\n", src.Name, engine.Model())

	outcome, err := engine.Run(context.Background(), src, focus)
	if err != nil {
		if backend.IsAuthError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\nCheck your API key or run 'alfred setup' again.\n", err)
			exitCode = ExitAuthError
			return review.Outcome{}, false
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitCode = ExitRuntimeError
		return review.Outcome{}, false
	}

	fmt.Fprintln(os.Stdout, outcome.Review)

	if !flagNoCost {
		fmt.Fprintf(os.Stdout, "\n%s\n", a.styles.Dim.Render(fmt.Sprintf(
			"Tokens: %d in / %d out | Cost: $%.4f | Saved as review #%d",
			outcome.Price.InputTokens, outcome.Price.OutputTokens, outcome.Price.Cost, outcome.HistoryID)))
		if est := a.estimator.Estimate(); est.Tracked {
			fmt.Fprintln(os.Stdout, a.styles.Dim.Render(fmt.Sprintf(
				"Estimated balance: $%.2f (~%d reviews left)", est.Balance, est.ReviewsLeft)))
		}
		if s := a.tracker.Session(); s.Reviews > 1 {
			fmt.Fprintln(os.Stdout, a.styles.Dim.Render(fmt.Sprintf(
				"Session: %d reviews, %d tokens, $%.4f total",
				s.Reviews, s.TotalTokens, s.TotalCost)))
		}
	}
	return outcome, true
}
