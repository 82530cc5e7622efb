package costs

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingCost(t *testing.T) {
	p := PricingFor("claude-sonnet-4-20250514")

	tests := []struct {
		name   string
		input  int
		output int
		want   float64
	}{
		{"zero", 0, 0, 0},
		{"input only", 1_000_000, 0, 3.00},
		{"output only", 0, 1_000_000, 15.00},
		{"mixed", 500_000, 100_000, 3.00},
		{"small", 1234, 567, 1234.0/1e6*3.00 + 567.0/1e6*15.00},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, p.Cost(tc.input, tc.output), 1e-9)
		})
	}
}

func TestPricingForUnknownModelFallsBack(t *testing.T) {
	p := PricingFor("some-future-model")
	assert.Equal(t, defaultPricing, p)
}

func TestPriceAppendsLedgerAndSession(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, PricingFor("claude-sonnet-4-20250514"))

	res, err := tracker.Price(2000, 1000, "main.go")
	require.NoError(t, err)

	want := 2000.0/1e6*3.00 + 1000.0/1e6*15.00
	assert.InDelta(t, want, res.Cost, 1e-9)
	assert.Equal(t, 3000, res.TotalTokens)
	assert.InDelta(t, res.InputCost+res.OutputCost, res.Cost, 1e-12)

	totals := tracker.Totals()
	assert.Equal(t, 1, totals.TotalReviews)
	assert.Equal(t, 3000, totals.TotalTokens)
	assert.InDelta(t, want, totals.TotalCost, 1e-9)

	session := tracker.Session()
	assert.Equal(t, 1, session.Reviews)
	assert.InDelta(t, want, session.TotalCost, 1e-9)
	assert.InDelta(t, want, session.AvgCostPerReview, 1e-9)
}

func TestSessionResetsPerProcess(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, defaultPricing)
	_, err := tracker.Price(100, 100, "a.go")
	require.NoError(t, err)

	// A fresh Tracker over the same ledger sees all-time totals but an
	// empty session.
	fresh := NewTracker(dir, defaultPricing)
	assert.Equal(t, 1, fresh.Totals().TotalReviews)
	assert.Equal(t, 0, fresh.Session().Reviews)
}

func TestLedgerCapDropsOldest(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, defaultPricing)

	// Seed a full ledger directly; appending through Price 1000+ times
	// would rewrite the file on every call.
	records := make([]UsageRecord, maxLedgerRecords)
	for i := range records {
		records[i] = UsageRecord{
			Timestamp: time.Now(),
			Filepath:  "seed.go",
		}
	}
	records[0].Filepath = "oldest.go"
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ledgerFile), data, 0o600))

	_, err = tracker.Price(10, 10, "newest.go")
	require.NoError(t, err)

	all := tracker.Recent(0)
	require.Len(t, all, maxLedgerRecords)
	assert.Equal(t, "seed.go", all[0].Filepath, "oldest record should be gone")
	assert.Equal(t, "newest.go", all[len(all)-1].Filepath)
}

func TestRecentSlice(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, defaultPricing)
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		_, err := tracker.Price(10, 10, name)
		require.NoError(t, err)
	}

	recent := tracker.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "b.go", recent[0].Filepath)
	assert.Equal(t, "c.go", recent[1].Filepath)
}

func TestCorruptLedgerTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ledgerFile), []byte("not json"), 0o600))

	tracker := NewTracker(dir, defaultPricing)
	assert.Equal(t, 0, tracker.Totals().TotalReviews)

	// And pricing still works over the fresh state.
	_, err := tracker.Price(10, 10, "a.go")
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.Totals().TotalReviews)
}

func TestMonthCost(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	records := []UsageRecord{
		{Timestamp: now.AddDate(0, -1, 0), Cost: 1.00},
		{Timestamp: now.AddDate(0, 0, -3), Cost: 0.25},
		{Timestamp: now, Cost: 0.50},
	}
	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ledgerFile), data, 0o600))

	tracker := NewTracker(dir, defaultPricing)
	assert.True(t, math.Abs(tracker.MonthCost(now)-0.75) < 1e-9)
}
