package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/history"
	"github.com/dshills/alfred/internal/output"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past reviews",
	}
	cmd.AddCommand(newHistoryListCmd(a))
	cmd.AddCommand(newHistoryShowCmd(a))
	cmd.AddCommand(newHistorySearchCmd(a))
	cmd.AddCommand(newHistoryFileCmd(a))
	cmd.AddCommand(newHistoryStatsCmd(a))
	cmd.AddCommand(newHistoryDeleteCmd(a))
	cmd.AddCommand(newHistoryClearCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var flagLimit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent reviews",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			records := a.store.Recent(flagLimit)
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "No reviews yet. Run 'alfred review <file>' to create one.")
				return
			}
			fmt.Fprint(os.Stdout, output.HistoryTable(records))
		},
	}
	cmd.Flags().IntVarP(&flagLimit, "limit", "n", 10, "Number of reviews to list")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a full stored review",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid review ID %q\n", args[0])
				exitCode = ExitUsageError
				return
			}
			rec, ok := a.store.Get(id)
			if !ok {
				fmt.Fprintf(os.Stderr, "Error: no review with ID %d\n", id)
				exitCode = ExitUsageError
				return
			}
			printRecord(a, rec)
		},
	}
}

func newHistorySearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search review text, filenames, and focus areas",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			records := a.store.Search(args[0])
			if len(records) == 0 {
				fmt.Fprintf(os.Stdout, "No reviews matching %q.\n", args[0])
				return
			}
			fmt.Fprint(os.Stdout, output.HistoryTable(records))
		},
	}
}

func newHistoryFileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "List reviews for a file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			records := a.store.ByFile(args[0])
			if len(records) == 0 {
				fmt.Fprintf(os.Stdout, "No reviews recorded for %s.\n", args[0])
				return
			}
			fmt.Fprint(os.Stdout, output.HistoryTable(records))
		},
	}
}

func newHistoryStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate review statistics",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			stats := a.store.GetStats()
			if stats.TotalReviews == 0 {
				fmt.Fprintln(os.Stdout, "No reviews yet.")
				return
			}
			fmt.Fprint(os.Stdout, output.StatsTable(stats))

			if len(stats.FocusBreakdown) > 0 {
				fmt.Fprintln(os.Stdout, "\nBy focus:")
				focuses := make([]string, 0, len(stats.FocusBreakdown))
				for f := range stats.FocusBreakdown {
					focuses = append(focuses, f)
				}
				sort.Strings(focuses)
				for _, f := range focuses {
					fmt.Fprintf(os.Stdout, "  %-12s %d\n", f, stats.FocusBreakdown[f])
				}
			}
		},
	}
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored review",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid review ID %q\n", args[0])
				exitCode = ExitUsageError
				return
			}
			deleted, err := a.store.Delete(id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			if !deleted {
				fmt.Fprintf(os.Stderr, "Error: no review with ID %d\n", id)
				exitCode = ExitUsageError
				return
			}
			fmt.Fprintf(os.Stdout, "Deleted review #%d.\n", id)
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored reviews",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if !a.prompt.Confirm("Delete all stored reviews?", false) {
				fmt.Fprintln(os.Stdout, "Aborted.")
				return
			}
			n, err := a.store.Clear()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintf(os.Stdout, "Cleared %d reviews.\n", n)
		},
	}
}

func printRecord(a *app, rec history.Record) {
	fmt.Fprintln(os.Stdout, a.styles.Title.Render(fmt.Sprintf("Review #%d - %s", rec.ID, rec.Filename)))
	fmt.Fprintf(os.Stdout, "Date: %s | Focus: %s", rec.Date, rec.Focus)
	if rec.Score != nil {
		fmt.Fprintf(os.Stdout, " | Score: %d/10", *rec.Score)
	}
	if rec.Cost != nil {
		fmt.Fprintf(os.Stdout, " | Cost: $%.4f", *rec.Cost)
	}
	fmt.Fprintf(os.Stdout, "\n\n%s\n", rec.Review)
}
