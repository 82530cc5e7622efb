package balance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/alfred/internal/costs"
)

// fakeLedger satisfies Ledger without touching disk.
type fakeLedger struct {
	totals    costs.Totals
	monthCost float64
}

func (f *fakeLedger) Totals() costs.Totals            { return f.totals }
func (f *fakeLedger) MonthCost(now time.Time) float64 { return f.monthCost }

func TestEstimateUntracked(t *testing.T) {
	e := NewEstimator(t.TempDir(), &fakeLedger{})
	est := e.Estimate()
	assert.False(t, est.Tracked, "no snapshot must report untracked, not $0")
}

func TestEstimateIdempotentAfterSave(t *testing.T) {
	ledger := &fakeLedger{totals: costs.Totals{TotalCost: 2.50}}
	e := NewEstimator(t.TempDir(), ledger)
	require.NoError(t, e.Save(10.00))

	est := e.Estimate()
	require.True(t, est.Tracked)
	assert.InDelta(t, 10.00, est.Balance, 1e-9)
	assert.InDelta(t, 0, est.SpentSinceSave, 1e-9)
}

func TestEstimateMonotonicDecrease(t *testing.T) {
	ledger := &fakeLedger{totals: costs.Totals{TotalCost: 1.00}}
	e := NewEstimator(t.TempDir(), ledger)
	require.NoError(t, e.Save(3.00))

	// Three more priced reviews summing to $0.90.
	ledger.totals.TotalCost = 1.90

	est := e.Estimate()
	assert.InDelta(t, 2.10, est.Balance, 1e-9)
	assert.InDelta(t, 0.90, est.SpentSinceSave, 1e-9)
}

func TestEstimateFlooredAtZero(t *testing.T) {
	ledger := &fakeLedger{}
	e := NewEstimator(t.TempDir(), ledger)
	require.NoError(t, e.Save(0.50))

	ledger.totals.TotalCost = 2.00

	est := e.Estimate()
	assert.Equal(t, 0.0, est.Balance)
	assert.Equal(t, StatusLow, est.Status)
}

func TestStatusThresholds(t *testing.T) {
	tests := []struct {
		balance float64
		want    Status
	}{
		{0.00, StatusLow},
		{0.99, StatusLow},
		{1.00, StatusWarning},
		{4.99, StatusWarning},
		{5.00, StatusOK},
		{100.00, StatusOK},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, classify(tc.balance), "balance %.2f", tc.balance)
	}
	assert.True(t, StatusLow.ShouldWarn())
	assert.True(t, StatusWarning.ShouldWarn())
	assert.False(t, StatusOK.ShouldWarn())
}

func TestGateNoSnapshotAlwaysProceeds(t *testing.T) {
	e := NewEstimator(t.TempDir(), &fakeLedger{})
	decision := e.CheckBeforeReview(0.15)
	assert.True(t, decision.Proceed)
	assert.Empty(t, decision.Message)
}

func TestGateLowBalanceWarnsButProceeds(t *testing.T) {
	e := NewEstimator(t.TempDir(), &fakeLedger{})
	require.NoError(t, e.Save(0.50))

	decision := e.CheckBeforeReview(0.15)
	assert.True(t, decision.Proceed)
	assert.False(t, decision.Blocking)
	assert.NotEmpty(t, decision.Message)
}

func TestGateInsufficientBalanceBlocks(t *testing.T) {
	e := NewEstimator(t.TempDir(), &fakeLedger{})
	require.NoError(t, e.Save(0.10))

	decision := e.CheckBeforeReview(0.15)
	assert.False(t, decision.Proceed)
	assert.True(t, decision.Blocking)
	assert.Contains(t, decision.Message, "Insufficient balance")
}

func TestGateHealthyBalanceSilent(t *testing.T) {
	e := NewEstimator(t.TempDir(), &fakeLedger{})
	require.NoError(t, e.Save(25.00))

	decision := e.CheckBeforeReview(0.15)
	assert.True(t, decision.Proceed)
	assert.Empty(t, decision.Message)
}

func TestEstimatedReviewCost(t *testing.T) {
	ledger := &fakeLedger{}
	e := NewEstimator(t.TempDir(), ledger)
	assert.InDelta(t, DefaultReviewCost, e.EstimatedReviewCost(), 1e-9)

	ledger.totals.AvgCostPerReview = 0.08
	assert.InDelta(t, 0.08, e.EstimatedReviewCost(), 1e-9)
}

func TestResetReturnsToUntracked(t *testing.T) {
	e := NewEstimator(t.TempDir(), &fakeLedger{})
	require.NoError(t, e.Save(5.00))
	require.True(t, e.Estimate().Tracked)

	require.NoError(t, e.Reset())
	assert.False(t, e.Estimate().Tracked)

	// Resetting twice is fine.
	require.NoError(t, e.Reset())
}

func TestReviewsLeftUsesLedgerAverage(t *testing.T) {
	ledger := &fakeLedger{totals: costs.Totals{AvgCostPerReview: 0.50}}
	e := NewEstimator(t.TempDir(), ledger)
	require.NoError(t, e.Save(4.00))

	est := e.Estimate()
	assert.Equal(t, 8, est.ReviewsLeft)
	assert.Equal(t, StatusWarning, est.Status)
}
