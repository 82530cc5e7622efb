package review

import (
	"context"
	"fmt"

	"github.com/dshills/alfred/internal/backend"
	"github.com/dshills/alfred/internal/balance"
	"github.com/dshills/alfred/internal/costs"
	"github.com/dshills/alfred/internal/history"
	"github.com/dshills/alfred/internal/logging"
)

// Outcome is the full result of one review run.
type Outcome struct {
	Review    string
	Score     int
	HasScore  bool
	Price     costs.PriceResult
	HistoryID int
}

// Engine runs the review pipeline: prompt, complete, price, record. Balance
// gating stays outside the engine so callers decide how to confront the user
// with an advisory; see Gate.
type Engine struct {
	backend backend.Completer
	costs   *costs.Tracker
	balance *balance.Estimator
	history *history.Store
}

// NewEngine wires the pipeline's collaborators.
func NewEngine(completer backend.Completer, tracker *costs.Tracker, estimator *balance.Estimator, store *history.Store) *Engine {
	return &Engine{
		backend: completer,
		costs:   tracker,
		balance: estimator,
		history: store,
	}
}

// Gate returns the balance decision for an upcoming review. Callers must not
// call Run when the decision blocks; an advisory decision proceeds but
// carries a message the caller should show (and may confirm) first.
func (e *Engine) Gate() balance.GateDecision {
	return e.balance.CheckBeforeReview(e.balance.EstimatedReviewCost())
}

// Run sends the source through the backend and records the priced result.
func (e *Engine) Run(ctx context.Context, src Source, focus Focus) (Outcome, error) {
	logging.Debug().
		Str("kind", string(src.Kind)).
		Str("label", src.Label).
		Str("focus", string(focus)).
		Int("bytes", len(src.Content)).
		Msg("starting review")

	var userPrompt string
	switch src.Kind {
	case KindGitDiff:
		userPrompt = diffPrompt(src.Content, src.Name, focus)
	case KindPRDiff:
		userPrompt = prPrompt(src.Content, src.PRTitle, src.PRFiles, focus)
	default:
		userPrompt = filePrompt(src.Content, src.Name, focus)
	}

	result, err := e.backend.Complete(ctx, backend.CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return Outcome{}, err
	}

	price, err := e.costs.Price(result.InputTokens, result.OutputTokens, src.Label)
	if err != nil {
		return Outcome{}, fmt.Errorf("recording usage: %w", err)
	}

	id, err := e.history.Save(src.Label, result.Text, string(focus), nil, &price.Cost)
	if err != nil {
		return Outcome{}, fmt.Errorf("recording review: %w", err)
	}

	out := Outcome{
		Review:    result.Text,
		Price:     price,
		HistoryID: id,
	}
	out.Score, out.HasScore = history.ExtractScore(result.Text)
	return out, nil
}

// Model reports the backend model in use, for display alongside results.
func (e *Engine) Model() string {
	return e.backend.Model()
}
