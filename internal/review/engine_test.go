package review

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/alfred/internal/backend"
	"github.com/dshills/alfred/internal/balance"
	"github.com/dshills/alfred/internal/costs"
	"github.com/dshills/alfred/internal/history"
)

type stubCompleter struct {
	text    string
	in, out int
	err     error

	lastReq backend.CompletionRequest
}

func (s *stubCompleter) Complete(_ context.Context, req backend.CompletionRequest) (backend.CompletionResult, error) {
	s.lastReq = req
	if s.err != nil {
		return backend.CompletionResult{}, s.err
	}
	return backend.CompletionResult{Text: s.text, InputTokens: s.in, OutputTokens: s.out}, nil
}

func (s *stubCompleter) Model() string { return "stub-model" }

func newTestEngine(t *testing.T, stub *stubCompleter) (*Engine, *costs.Tracker, *history.Store, *balance.Estimator) {
	t.Helper()
	dir := t.TempDir()
	tracker := costs.NewTracker(dir, costs.PricingFor("claude-sonnet-4-20250514"))
	estimator := balance.NewEstimator(dir, tracker)
	store := history.NewStore(dir)
	return NewEngine(stub, tracker, estimator, store), tracker, store, estimator
}

func TestRunRecordsLedgerAndHistory(t *testing.T) {
	stub := &stubCompleter{
		text: "## Summary\nFine work.\n\n## Overall Score: 8/10\nSolid.",
		in:   1000,
		out:  500,
	}
	engine, tracker, store, _ := newTestEngine(t, stub)

	src := Source{Kind: KindFile, Label: "main.go", Name: "main.go", Content: "package main"}
	out, err := engine.Run(context.Background(), src, FocusGeneral)
	require.NoError(t, err)

	assert.Equal(t, stub.text, out.Review)
	assert.True(t, out.HasScore)
	assert.Equal(t, 8, out.Score)
	assert.InDelta(t, 1000.0/1e6*3.00+500.0/1e6*15.00, out.Price.Cost, 1e-9)

	totals := tracker.Totals()
	assert.Equal(t, 1, totals.TotalReviews)
	assert.Equal(t, 1500, totals.TotalTokens)

	rec, ok := store.Get(out.HistoryID)
	require.True(t, ok)
	assert.Equal(t, "main.go", rec.Filepath)
	require.NotNil(t, rec.Score)
	assert.Equal(t, 8, *rec.Score)
	require.NotNil(t, rec.Cost)
	assert.InDelta(t, out.Price.Cost, *rec.Cost, 1e-9)
}

func TestRunPromptSelectionByKind(t *testing.T) {
	stub := &stubCompleter{text: "ok"}
	engine, _, _, _ := newTestEngine(t, stub)
	ctx := context.Background()

	_, err := engine.Run(ctx, Source{Kind: KindFile, Name: "app.py", Content: "x = 1"}, FocusSecurity)
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.UserPrompt, "review this app.py file")
	assert.Contains(t, stub.lastReq.UserPrompt, "security vulnerabilities")
	assert.Contains(t, stub.lastReq.UserPrompt, "Overall Score: X/10")

	_, err = engine.Run(ctx, Source{Kind: KindGitDiff, Name: "git-staged-changes", Content: "diff --git"}, FocusGeneral)
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.UserPrompt, "review these changes (git-staged-changes)")
	assert.Contains(t, stub.lastReq.UserPrompt, "```diff")

	_, err = engine.Run(ctx, Source{Kind: KindPRDiff, PRTitle: "Fix parser", PRFiles: 3, Content: "diff"}, FocusGeneral)
	require.NoError(t, err)
	assert.Contains(t, stub.lastReq.UserPrompt, "pull request: Fix parser (3 files changed)")

	assert.True(t, strings.HasPrefix(stub.lastReq.SystemPrompt, "You are an expert code reviewer"))
}

func TestRunBackendErrorRecordsNothing(t *testing.T) {
	stub := &stubCompleter{err: assert.AnError}
	engine, tracker, store, _ := newTestEngine(t, stub)

	_, err := engine.Run(context.Background(), Source{Kind: KindFile, Name: "x.go", Content: "x"}, FocusGeneral)
	require.Error(t, err)
	assert.Equal(t, 0, tracker.Totals().TotalReviews)
	assert.Empty(t, store.All())
}

func TestGate(t *testing.T) {
	stub := &stubCompleter{text: "ok"}
	engine, _, _, estimator := newTestEngine(t, stub)

	// Untracked balance proceeds silently.
	gate := engine.Gate()
	assert.True(t, gate.Proceed)
	assert.Empty(t, gate.Message)

	// A balance below the estimated cost blocks.
	require.NoError(t, estimator.Save(0.01))
	gate = engine.Gate()
	assert.False(t, gate.Proceed)
	assert.True(t, gate.Blocking)
	assert.Contains(t, gate.Message, "Insufficient balance")

	// A low but sufficient balance proceeds with an advisory.
	require.NoError(t, estimator.Save(0.50))
	gate = engine.Gate()
	assert.True(t, gate.Proceed)
	assert.False(t, gate.Blocking)
	assert.Contains(t, gate.Message, "running low")
}

func TestFocusParsing(t *testing.T) {
	f, err := ParseFocus("Security")
	require.NoError(t, err)
	assert.Equal(t, FocusSecurity, f)

	f, err = ParseFocus("")
	require.NoError(t, err)
	assert.Equal(t, FocusGeneral, f)

	_, err = ParseFocus("speling")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bugs, general, performance, security, style")
}
