package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/output"
)

func newCostsCmd(a *app) *cobra.Command {
	var (
		flagLimit int
		flagTotal bool
	)
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Show token usage and costs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if flagTotal {
				totals := a.tracker.Totals()
				if totals.TotalReviews == 0 {
					fmt.Fprintln(os.Stdout, "No usage recorded yet.")
					return
				}
				fmt.Fprint(os.Stdout, output.CostTotalsTable(totals, a.tracker.MonthCost(time.Now())))
				return
			}

			records := a.tracker.Recent(flagLimit)
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "No usage recorded yet.")
				return
			}
			fmt.Fprint(os.Stdout, output.CostTable(records))

			session := a.tracker.Session()
			if session.Reviews > 0 {
				fmt.Fprintln(os.Stdout, a.styles.Dim.Render(fmt.Sprintf(
					"This session: %d reviews, %d tokens, $%.4f",
					session.Reviews, session.TotalTokens, session.TotalCost)))
			}
		},
	}
	cmd.Flags().IntVarP(&flagLimit, "limit", "n", 10, "Number of usage records to show")
	cmd.Flags().BoolVar(&flagTotal, "total", false, "Show all-time totals instead of recent records")
	return cmd
}
