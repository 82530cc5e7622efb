package review

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/alfred/internal/gitctx"
	"github.com/dshills/alfred/internal/github"
	"github.com/dshills/alfred/internal/redact"
)

// Kind identifies where review content came from.
type Kind string

const (
	KindFile    Kind = "file"
	KindGitDiff Kind = "git-diff"
	KindPRDiff  Kind = "pr-diff"
)

// Source is redacted content ready for prompting, plus the identifier it is
// recorded under in the ledger and history.
type Source struct {
	Kind    Kind
	Label   string
	Name    string // display name: base filename, diff label, or PR title
	Content string

	// PR-only context for the prompt and posted comments.
	PRTitle   string
	PRFiles   int
	Truncated bool
}

// FileSource reads a file for review. Non-UTF-8 content falls back to a
// Latin-1 decode so legacy files still review instead of erroring.
func FileSource(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory, not a file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("reading %s: %w", path, err)
	}

	text := string(data)
	if !utf8.Valid(data) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return Source{}, fmt.Errorf("decoding %s: %w", path, err)
		}
		text = string(decoded)
	}

	return Source{
		Kind:    KindFile,
		Label:   path,
		Name:    filepath.Base(path),
		Content: redact.FileContent(text, path),
	}, nil
}

// DiffSource wraps a collected git diff.
func DiffSource(d gitctx.Diff) Source {
	return Source{
		Kind:      KindGitDiff,
		Label:     d.Label,
		Name:      d.Label,
		Content:   redact.Secrets(d.Text),
		Truncated: d.Truncated,
	}
}

// PRSource assembles a pull request's patches into reviewable content.
func PRSource(pr github.PullRequest) Source {
	return Source{
		Kind:    KindPRDiff,
		Label:   pr.Label(),
		Name:    pr.Label(),
		Content: redact.Secrets(github.BuildPRDiff(pr)),
		PRTitle: pr.Title,
		PRFiles: pr.ChangedFiles,
	}
}

// IsEmpty reports whether there is anything to review.
func (s Source) IsEmpty() bool {
	return s.Content == ""
}
