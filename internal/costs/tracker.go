package costs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/alfred/internal/logging"
)

// maxLedgerRecords bounds the on-disk ledger; oldest entries past the cap
// are dropped on every write.
const maxLedgerRecords = 1000

// ledgerFile is the ledger filename inside the config directory.
const ledgerFile = "cost_history.json"

// UsageRecord is one ledger row per backend invocation.
type UsageRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Filepath     string    `json:"filepath"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	TotalTokens  int       `json:"total_tokens"`
	Cost         float64   `json:"cost"`
}

// PriceResult is the cost breakdown for a single priced invocation.
type PriceResult struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	InputCost    float64
	OutputCost   float64
	Cost         float64
}

// SessionSummary aggregates the current process invocation only. It is never
// persisted and resets every run.
type SessionSummary struct {
	Reviews          int
	InputTokens      int
	OutputTokens     int
	TotalTokens      int
	TotalCost        float64
	AvgCostPerReview float64
}

// Totals aggregates the whole ledger.
type Totals struct {
	TotalReviews       int
	TotalTokens        int
	TotalCost          float64
	AvgCostPerReview   float64
	AvgTokensPerReview float64
}

// Tracker prices backend invocations and maintains the bounded usage ledger.
type Tracker struct {
	path    string
	pricing Pricing

	sessionInput  int
	sessionOutput int
	sessionCost   float64
	sessionCount  int
}

// NewTracker creates a Tracker writing its ledger under dir.
func NewTracker(dir string, pricing Pricing) *Tracker {
	return &Tracker{
		path:    filepath.Join(dir, ledgerFile),
		pricing: pricing,
	}
}

// Price converts raw token counts into a priced record, appends it to the
// ledger, and folds it into the session aggregate. The source identifier is
// the reviewed file path, or a synthetic label for diff-based reviews.
func (t *Tracker) Price(inputTokens, outputTokens int, source string) (PriceResult, error) {
	inputCost := float64(inputTokens) / 1e6 * t.pricing.InputPerMTok
	outputCost := float64(outputTokens) / 1e6 * t.pricing.OutputPerMTok
	total := inputCost + outputCost

	t.sessionInput += inputTokens
	t.sessionOutput += outputTokens
	t.sessionCost += total
	t.sessionCount++

	record := UsageRecord{
		Timestamp:    time.Now(),
		Filepath:     source,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		Cost:         total,
	}
	if err := t.append(record); err != nil {
		return PriceResult{}, err
	}

	return PriceResult{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		InputCost:    inputCost,
		OutputCost:   outputCost,
		Cost:         total,
	}, nil
}

// Session returns this process's aggregate.
func (t *Tracker) Session() SessionSummary {
	s := SessionSummary{
		Reviews:      t.sessionCount,
		InputTokens:  t.sessionInput,
		OutputTokens: t.sessionOutput,
		TotalTokens:  t.sessionInput + t.sessionOutput,
		TotalCost:    t.sessionCost,
	}
	if t.sessionCount > 0 {
		s.AvgCostPerReview = t.sessionCost / float64(t.sessionCount)
	}
	return s
}

// Totals returns all-time aggregates over the ledger.
func (t *Tracker) Totals() Totals {
	records := t.load()
	totals := Totals{TotalReviews: len(records)}
	for _, r := range records {
		totals.TotalTokens += r.TotalTokens
		totals.TotalCost += r.Cost
	}
	if totals.TotalReviews > 0 {
		totals.AvgCostPerReview = totals.TotalCost / float64(totals.TotalReviews)
		totals.AvgTokensPerReview = float64(totals.TotalTokens) / float64(totals.TotalReviews)
	}
	return totals
}

// Recent returns the most recent limit records, oldest of the slice first.
func (t *Tracker) Recent(limit int) []UsageRecord {
	records := t.load()
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records
}

// MonthCost sums ledger costs for the calendar month containing now.
func (t *Tracker) MonthCost(now time.Time) float64 {
	var sum float64
	year, month := now.Year(), now.Month()
	for _, r := range t.load() {
		if r.Timestamp.Year() == year && r.Timestamp.Month() == month {
			sum += r.Cost
		}
	}
	return sum
}

func (t *Tracker) append(record UsageRecord) error {
	records := t.load()
	records = append(records, record)
	if len(records) > maxLedgerRecords {
		records = records[len(records)-maxLedgerRecords:]
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling usage ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		return fmt.Errorf("writing usage ledger: %w", err)
	}
	return nil
}

// load reads the ledger. A missing file is the normal empty state; a file
// that fails to parse degrades to empty rather than blocking the user.
func (t *Tracker) load() []UsageRecord {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Warn().Err(err).Str("path", t.path).Msg("usage ledger unreadable, treating as empty")
		}
		return nil
	}
	var records []UsageRecord
	if err := json.Unmarshal(data, &records); err != nil {
		logging.Warn().Err(err).Str("path", t.path).Msg("usage ledger corrupt, treating as empty")
		return nil
	}
	return records
}
