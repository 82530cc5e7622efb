// Package github wraps the GitHub REST API surface alfred needs: pull
// request metadata with per-file patches, issue comments, and the OAuth
// device flow.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dshills/alfred/internal/gitctx"
)

const defaultAPIURL = "https://api.github.com"

// MaxPRDiffBytes is the byte budget for assembled PR diffs.
const MaxPRDiffBytes = 100_000

// Client provides access to the GitHub REST API.
type Client struct {
	token   string
	apiURL  string
	httpCli *http.Client
}

// NewClient creates a GitHub client with the given access token.
func NewClient(token string) *Client {
	apiURL := os.Getenv("GITHUB_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		token:   token,
		apiURL:  strings.TrimRight(apiURL, "/"),
		httpCli: &http.Client{Timeout: 60 * time.Second},
	}
}

// PRFile is one changed file in a pull request.
type PRFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
	Patch     string `json:"patch"`
}

// PullRequest is the PR metadata plus its file-level patches.
type PullRequest struct {
	Number       int
	Title        string
	Body         string
	Author       string
	State        string
	ChangedFiles int
	Additions    int
	Deletions    int
	URL          string
	Files        []PRFile
}

// Label returns the source identifier recorded for PR-based reviews.
func (pr PullRequest) Label() string {
	return fmt.Sprintf("PR #%d: %s", pr.Number, pr.Title)
}

type prResponse struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	ChangedFiles int    `json:"changed_files"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	HTMLURL      string `json:"html_url"`
}

// GetPullRequest fetches PR metadata and its per-file patches.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (PullRequest, error) {
	var meta prResponse
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d", c.apiURL, owner, repo, number)
	if err := c.getJSON(ctx, url, &meta); err != nil {
		return PullRequest{}, fmt.Errorf("fetching PR #%d from %s/%s: %w", number, owner, repo, err)
	}

	var files []PRFile
	filesURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/files", c.apiURL, owner, repo, number)
	if err := c.getJSON(ctx, filesURL, &files); err != nil {
		return PullRequest{}, fmt.Errorf("fetching files for PR #%d: %w", number, err)
	}

	return PullRequest{
		Number:       meta.Number,
		Title:        meta.Title,
		Body:         meta.Body,
		Author:       meta.User.Login,
		State:        meta.State,
		ChangedFiles: meta.ChangedFiles,
		Additions:    meta.Additions,
		Deletions:    meta.Deletions,
		URL:          meta.HTMLURL,
		Files:        files,
	}, nil
}

// PostIssueComment posts a Markdown comment on the PR's conversation.
func (c *Client) PostIssueComment(ctx context.Context, owner, repo string, number int, body string) error {
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", c.apiURL, owner, repo, number)

	payload, err := json.Marshal(map[string]string{"body": body})
	if err != nil {
		return fmt.Errorf("marshaling comment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode == 404:
		return fmt.Errorf("not found")
	case resp.StatusCode == 401 || resp.StatusCode == 403:
		return fmt.Errorf("authentication failed: %s", string(body))
	case resp.StatusCode != 200:
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}

// BuildPRDiff concatenates a PR's file patches into a single diff-like text
// block, annotated per file, truncated to MaxPRDiffBytes.
func BuildPRDiff(pr PullRequest) string {
	var b strings.Builder
	for _, f := range pr.Files {
		if f.Patch == "" {
			continue // binary or oversized patch omitted by the API
		}
		fmt.Fprintf(&b, "File: %s\n", f.Filename)
		fmt.Fprintf(&b, "Status: %s\n", f.Status)
		fmt.Fprintf(&b, "Changes: +%d -%d\n\n", f.Additions, f.Deletions)
		b.WriteString(f.Patch)
		b.WriteString("\n\n")
		b.WriteString(strings.Repeat("=", 80))
		b.WriteString("\n\n")
	}
	text, _ := gitctx.TruncateDiff(b.String(), MaxPRDiffBytes)
	return text
}

// FormatReviewComment wraps a review in the comment layout posted to PRs.
func FormatReviewComment(review string, pr PullRequest) string {
	var b strings.Builder
	b.WriteString("## Alfred AI Code Review\n\n")
	fmt.Fprintf(&b, "**PR:** #%d - %s\n", pr.Number, pr.Title)
	fmt.Fprintf(&b, "**Files changed:** %d\n", pr.ChangedFiles)
	fmt.Fprintf(&b, "**Changes:** +%d -%d\n\n", pr.Additions, pr.Deletions)
	b.WriteString("---\n\n")
	b.WriteString(review)
	b.WriteString("\n\n---\n\n")
	b.WriteString("*This review was automatically generated by Alfred AI*\n")
	return b.String()
}
