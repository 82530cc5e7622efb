// Package gitctx shells out to the local git CLI for diffs, remote lookup,
// and working-tree status.
package gitctx

import (
	"fmt"
	"os/exec"
	"strings"
)

// MaxDiffBytes is the byte budget for git diffs sent to the backend. Larger
// diffs are truncated with a notice naming the original size.
const MaxDiffBytes = 50_000

// Mode selects which changes to diff.
type Mode string

const (
	ModeStaged   Mode = "staged"
	ModeUnstaged Mode = "unstaged"
	ModeSince    Mode = "since"
)

// Diff is a collected unified diff plus the synthetic identifier recorded
// in the ledger and history for diff-based reviews.
type Diff struct {
	Text      string
	Label     string
	Mode      Mode
	Truncated bool
}

// Staged returns the diff of index vs HEAD.
func Staged() (Diff, error) {
	out, err := gitOutput("diff", "--cached")
	if err != nil {
		return Diff{}, fmt.Errorf("git diff --cached: %w", err)
	}
	return newDiff(out, ModeStaged, "git-staged-changes"), nil
}

// Unstaged returns the diff of working tree vs index.
func Unstaged() (Diff, error) {
	out, err := gitOutput("diff")
	if err != nil {
		return Diff{}, fmt.Errorf("git diff: %w", err)
	}
	return newDiff(out, ModeUnstaged, "git-unstaged-changes"), nil
}

// Since returns the diff of the working tree against a named ref or commit.
func Since(ref string) (Diff, error) {
	out, err := gitOutput("diff", ref)
	if err != nil {
		return Diff{}, fmt.Errorf("git diff %s: %w", ref, err)
	}
	return newDiff(out, ModeSince, "git-changes-since-"+ref), nil
}

// IsEmpty reports whether the diff has no content.
func (d Diff) IsEmpty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// EmptyHint suggests the likely next action when a diff came back empty.
func (d Diff) EmptyHint() string {
	switch d.Mode {
	case ModeStaged:
		if status, err := StatusShort(); err == nil && strings.TrimSpace(status) != "" {
			return "No staged changes found. You have unstaged changes; stage them with 'git add' or review with --unstaged."
		}
		return "No staged changes found. Stage files with 'git add' first."
	case ModeUnstaged:
		return "No unstaged changes found. Your working tree is clean."
	default:
		return "No changes found for that ref."
	}
}

// RemoteURL returns the URL of a named remote, used to infer owner/repo when
// a PR is given by bare number.
func RemoteURL(name string) (string, error) {
	out, err := gitOutput("remote", "get-url", name)
	if err != nil {
		return "", fmt.Errorf("git remote get-url %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

// StatusShort returns porcelain short-format status lines.
func StatusShort() (string, error) {
	out, err := gitOutput("status", "--short")
	if err != nil {
		return "", fmt.Errorf("git status --short: %w", err)
	}
	return out, nil
}

func newDiff(text string, mode Mode, label string) Diff {
	d := Diff{Mode: mode, Label: label}
	d.Text, d.Truncated = TruncateDiff(text, MaxDiffBytes)
	return d
}

// TruncateDiff cuts text at limit bytes, appending a notice with the
// original size so the backend never receives an unbounded payload.
func TruncateDiff(text string, limit int) (string, bool) {
	if limit <= 0 || len(text) <= limit {
		return text, false
	}
	return text[:limit] + fmt.Sprintf("\n\n... [diff truncated: original size %d bytes]\n", len(text)), true
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, string(exitErr.Stderr))
		}
		return "", err
	}
	return string(out), nil
}
