package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/alfred/internal/balance"
)

func newBalanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Track your estimated API balance",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printEstimate(a)
		},
	}
	cmd.AddCommand(newBalanceSetCmd(a))
	cmd.AddCommand(newBalanceResetCmd(a))
	return cmd
}

func newBalanceSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <amount>",
		Short: "Record your current prepaid balance in USD",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			amount, err := strconv.ParseFloat(args[0], 64)
			if err != nil || amount < 0 {
				fmt.Fprintf(os.Stderr, "Error: invalid amount %q\n", args[0])
				exitCode = ExitUsageError
				return
			}
			if err := a.estimator.Save(amount); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintf(os.Stdout, "Balance set to $%.2f.\n", amount)
			printEstimate(a)
		},
	}
}

func newBalanceResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Stop tracking balance",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := a.estimator.Reset(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				exitCode = ExitRuntimeError
				return
			}
			fmt.Fprintln(os.Stdout, "Balance tracking reset.")
		},
	}
}

func printEstimate(a *app) {
	est := a.estimator.Estimate()
	if !est.Tracked {
		fmt.Fprintln(os.Stdout, "Balance tracking is off. Record your prepaid balance with:")
		fmt.Fprintln(os.Stdout, "  alfred balance set <amount>")
		return
	}

	style := a.styles.Success
	switch est.Status {
	case balance.StatusLow:
		style = a.styles.Error
	case balance.StatusWarning:
		style = a.styles.Warning
	}

	fmt.Fprintln(os.Stdout, style.Render(fmt.Sprintf("Estimated balance: $%.2f (%s)", est.Balance, est.Status)))
	fmt.Fprintf(os.Stdout, "Spent since last update: $%.4f (recorded %s)\n",
		est.SpentSinceSave, est.SavedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(os.Stdout, "Spent this month:        $%.4f\n", a.tracker.MonthCost(time.Now()))
	fmt.Fprintf(os.Stdout, "Approximately %d reviews left at recent costs.\n", est.ReviewsLeft)

	if est.Status.ShouldWarn() {
		fmt.Fprintln(os.Stdout, a.styles.Dim.Render("Top up at https://console.anthropic.com/ then run 'alfred balance set <amount>'."))
	}
}
