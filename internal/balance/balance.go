package balance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dshills/alfred/internal/costs"
)

// snapshotFile is the snapshot filename inside the config directory.
const snapshotFile = "api_balance.json"

// DefaultReviewCost is the assumed per-review cost when the ledger has no
// history to average over.
const DefaultReviewCost = 0.15

// Status classifies an estimated balance.
type Status string

const (
	StatusLow     Status = "low"     // below $1
	StatusWarning Status = "warning" // below $5
	StatusOK      Status = "ok"
)

// ShouldWarn reports whether the status belongs to the advisory set.
func (s Status) ShouldWarn() bool {
	return s == StatusLow || s == StatusWarning
}

// classify applies the fixed thresholds.
func classify(balance float64) Status {
	switch {
	case balance < 1:
		return StatusLow
	case balance < 5:
		return StatusWarning
	default:
		return StatusOK
	}
}

// Snapshot is the user's last self-reported prepaid balance, plus the
// cumulative ledger cost at the moment it was recorded.
type Snapshot struct {
	Balance         float64   `json:"balance"`
	SavedAt         time.Time `json:"last_updated"`
	TotalCostAtSave float64   `json:"total_cost_at_update"`
}

// Estimate is the derived current balance. No backend API reports a real
// balance, so this is purely a local projection from self-reported data; it
// never reflects top-ups until the user records a new snapshot.
type Estimate struct {
	Tracked        bool // false when the user never set a balance
	Balance        float64
	Status         Status
	SavedAt        time.Time
	SpentSinceSave float64
	ReviewsLeft    int
}

// GateDecision is the outcome of the pre-review balance check.
type GateDecision struct {
	Proceed  bool
	Blocking bool
	Message  string
}

// Ledger is the slice of the cost accountant the estimator reads.
type Ledger interface {
	Totals() costs.Totals
	MonthCost(now time.Time) float64
}

// Estimator derives an estimated remaining balance and gates reviews
// against it.
type Estimator struct {
	path   string
	ledger Ledger
}

// NewEstimator creates an Estimator storing its snapshot under dir.
func NewEstimator(dir string, ledger Ledger) *Estimator {
	return &Estimator{
		path:   filepath.Join(dir, snapshotFile),
		ledger: ledger,
	}
}

// Save records a new self-reported balance, overwriting any previous
// snapshot. The cumulative ledger cost is captured alongside so later
// estimates subtract only spending that happened after this moment.
func (e *Estimator) Save(balance float64) error {
	snap := Snapshot{
		Balance:         balance,
		SavedAt:         time.Now(),
		TotalCostAtSave: e.ledger.Totals().TotalCost,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling balance snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(e.path), 0o700); err != nil {
		return fmt.Errorf("creating balance directory: %w", err)
	}
	if err := os.WriteFile(e.path, data, 0o600); err != nil {
		return fmt.Errorf("writing balance snapshot: %w", err)
	}
	return nil
}

// Reset discards the snapshot, returning to the untracked state.
func (e *Estimator) Reset() error {
	if err := os.Remove(e.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing balance snapshot: %w", err)
	}
	return nil
}

// Estimate computes the current estimated balance. When no snapshot exists
// the result is untracked, a distinct state from a zero balance.
func (e *Estimator) Estimate() Estimate {
	snap, ok := e.load()
	if !ok {
		return Estimate{Tracked: false}
	}

	totals := e.ledger.Totals()
	spent := totals.TotalCost - snap.TotalCostAtSave
	remaining := snap.Balance - spent
	if remaining < 0 {
		remaining = 0
	}

	avg := totals.AvgCostPerReview
	if avg <= 0 {
		avg = DefaultReviewCost
	}

	return Estimate{
		Tracked:        true,
		Balance:        remaining,
		Status:         classify(remaining),
		SavedAt:        snap.SavedAt,
		SpentSinceSave: spent,
		ReviewsLeft:    int(remaining / avg),
	}
}

// CheckBeforeReview gates an upcoming review against the estimated balance.
// With no snapshot it always proceeds silently. An actually-insufficient
// balance blocks; a low or warning status merely produces an advisory
// message, and the caller decides whether to ask the user to continue.
func (e *Estimator) CheckBeforeReview(estimatedCost float64) GateDecision {
	est := e.Estimate()
	if !est.Tracked {
		return GateDecision{Proceed: true}
	}

	if est.Balance < estimatedCost {
		return GateDecision{
			Proceed:  false,
			Blocking: true,
			Message: fmt.Sprintf(
				"Insufficient balance for this review.\n"+
					"  Current balance: $%.2f\n"+
					"  Estimated cost:  $%.2f\n"+
					"Add credits at https://console.anthropic.com/ then run: alfred balance set <amount>",
				est.Balance, estimatedCost),
		}
	}

	if est.Status.ShouldWarn() {
		return GateDecision{
			Proceed: true,
			Message: fmt.Sprintf(
				"Balance running low: $%.2f remaining (~%d reviews). This review will cost ~$%.2f.",
				est.Balance, est.ReviewsLeft, estimatedCost),
		}
	}

	return GateDecision{Proceed: true}
}

// EstimatedReviewCost returns the cost used to gate the next review: the
// all-time ledger average, or DefaultReviewCost for an empty ledger.
func (e *Estimator) EstimatedReviewCost() float64 {
	if avg := e.ledger.Totals().AvgCostPerReview; avg > 0 {
		return avg
	}
	return DefaultReviewCost
}

// load reads the snapshot. Missing or malformed files both mean untracked;
// the distinction is deliberate but observable behavior is identical.
func (e *Estimator) load() (Snapshot, bool) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false
	}
	return snap, true
}
