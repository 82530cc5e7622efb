package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dshills/alfred/internal/costs"
	"github.com/dshills/alfred/internal/history"
)

func newTable(buf *bytes.Buffer) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

// CostTable renders recent usage records, oldest first.
func CostTable(records []costs.UsageRecord) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Time", "Source", "Input", "Output", "Total", "Cost (USD)"})

	for _, r := range records {
		table.Append([]string{
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Filepath,
			formatCount(r.InputTokens),
			formatCount(r.OutputTokens),
			formatCount(r.TotalTokens),
			fmt.Sprintf("$%.4f", r.Cost),
		})
	}
	table.Render()
	return buf.String()
}

// CostTotalsTable renders the all-time ledger aggregate with the current
// month's spend.
func CostTotalsTable(totals costs.Totals, monthCost float64) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Reviews", "Total Tokens", "Avg Tokens", "Avg Cost", "This Month", "Total Cost"})
	table.Append([]string{
		strconv.Itoa(totals.TotalReviews),
		formatCount(totals.TotalTokens),
		fmt.Sprintf("%.0f", totals.AvgTokensPerReview),
		fmt.Sprintf("$%.4f", totals.AvgCostPerReview),
		fmt.Sprintf("$%.2f", monthCost),
		fmt.Sprintf("$%.2f", totals.TotalCost),
	})
	table.Render()
	return buf.String()
}

// HistoryTable renders review history records, newest first as given.
func HistoryTable(records []history.Record) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"ID", "Date", "File", "Focus", "Score", "Cost"})

	for _, r := range records {
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%d/10", *r.Score)
		}
		cost := "-"
		if r.Cost != nil {
			cost = fmt.Sprintf("$%.4f", *r.Cost)
		}
		table.Append([]string{
			strconv.Itoa(r.ID),
			r.Date,
			r.Filename,
			r.Focus,
			score,
			cost,
		})
	}
	table.Render()
	return buf.String()
}

// StatsTable renders aggregate review statistics.
func StatsTable(stats history.Stats) string {
	var buf bytes.Buffer
	table := newTable(&buf)
	table.Header([]string{"Reviews", "Files", "Avg Score", "Total Cost"})

	avgScore := "-"
	if stats.AvgScore > 0 {
		avgScore = fmt.Sprintf("%.1f/10", stats.AvgScore)
	}
	table.Append([]string{
		strconv.Itoa(stats.TotalReviews),
		strconv.Itoa(stats.FilesReviewed),
		avgScore,
		fmt.Sprintf("$%.4f", stats.TotalCost),
	})
	table.Render()
	return buf.String()
}

// formatCount adds thousand separators to token counts.
func formatCount(n int) string {
	if n < 0 {
		return "-" + formatCount(-n)
	}
	if n < 1000 {
		return strconv.Itoa(n)
	}
	return formatCount(n/1000) + "," + fmt.Sprintf("%03d", n%1000)
}
