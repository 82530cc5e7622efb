package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/alfred/internal/config"
	"github.com/dshills/alfred/internal/review"
)

// stubPrompter answers every question with fixed values.
type stubPrompter struct {
	confirm bool
	line    string
}

func (s stubPrompter) Confirm(string, bool) bool       { return s.confirm }
func (s stubPrompter) ReadLine(string) (string, error) { return s.line, nil }

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg, err := config.NewAt(t.TempDir())
	require.NoError(t, err)
	a := newAppWith(cfg)
	a.prompt = stubPrompter{confirm: true}
	return a
}

func TestAppWiring(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, a.tracker)
	assert.NotNil(t, a.estimator)
	assert.NotNil(t, a.store)
	assert.Equal(t, config.DefaultModel, a.cfg.Model)
}

func TestReviewPipelineRequiresAPIKey(t *testing.T) {
	a := newTestApp(t)
	t.Setenv("ANTHROPIC_API_KEY", "")
	exitCode = ExitSuccess
	defer func() { exitCode = ExitSuccess }()

	flagAPIKey = ""
	defer func() { flagAPIKey = "" }()

	_, ok := runReviewPipeline(a, review.Source{Kind: review.KindFile, Name: "x.go", Content: "x"})
	assert.False(t, ok)
	assert.Equal(t, ExitAuthError, exitCode)
}

func TestReviewPipelineRejectsBadFocus(t *testing.T) {
	a := newTestApp(t)
	exitCode = ExitSuccess
	defer func() { exitCode = ExitSuccess }()

	flagFocus = "speling"
	defer func() { flagFocus = "general" }()

	_, ok := runReviewPipeline(a, review.Source{Kind: review.KindFile, Name: "x.go", Content: "x"})
	assert.False(t, ok)
	assert.Equal(t, ExitUsageError, exitCode)
}

func TestBalanceSetRejectsGarbage(t *testing.T) {
	a := newTestApp(t)
	exitCode = ExitSuccess
	defer func() { exitCode = ExitSuccess }()

	cmd := newBalanceSetCmd(a)
	cmd.Run(cmd, []string{"not-a-number"})
	assert.Equal(t, ExitUsageError, exitCode)

	exitCode = ExitSuccess
	cmd.Run(cmd, []string{"-5"})
	assert.Equal(t, ExitUsageError, exitCode)
}

func TestBalanceSetAndReset(t *testing.T) {
	a := newTestApp(t)
	exitCode = ExitSuccess
	defer func() { exitCode = ExitSuccess }()

	cmd := newBalanceSetCmd(a)
	cmd.Run(cmd, []string{"25"})
	require.Equal(t, ExitSuccess, exitCode)

	est := a.estimator.Estimate()
	assert.True(t, est.Tracked)
	assert.InDelta(t, 25.0, est.Balance, 1e-9)

	reset := newBalanceResetCmd(a)
	reset.Run(reset, nil)
	assert.False(t, a.estimator.Estimate().Tracked)
}

func TestHistoryDeleteUnknownID(t *testing.T) {
	a := newTestApp(t)
	exitCode = ExitSuccess
	defer func() { exitCode = ExitSuccess }()

	cmd := newHistoryDeleteCmd(a)
	cmd.Run(cmd, []string{"99"})
	assert.Equal(t, ExitUsageError, exitCode)
}
