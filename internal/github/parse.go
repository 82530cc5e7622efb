package github

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/dshills/alfred/internal/gitctx"
)

var (
	prURLRe      = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)`)
	remoteSSHRe  = regexp.MustCompile(`git@github\.com:([^/]+)/(.+?)(?:\.git)?$`)
	remoteHTTPRe = regexp.MustCompile(`https://github\.com/([^/]+)/(.+?)(?:\.git)?$`)
)

// PRRef identifies a pull request.
type PRRef struct {
	Owner  string
	Repo   string
	Number int
}

// ParsePRRef resolves a PR argument, either a full github.com URL or a bare
// number. Bare numbers take owner/repo from the current repository's origin
// remote.
func ParsePRRef(arg string) (PRRef, error) {
	if m := prURLRe.FindStringSubmatch(arg); m != nil {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return PRRef{}, fmt.Errorf("invalid PR number %q", m[3])
		}
		return PRRef{Owner: m[1], Repo: m[2], Number: n}, nil
	}

	n, err := strconv.Atoi(arg)
	if err != nil {
		return PRRef{}, fmt.Errorf("invalid PR reference %q: expected a github.com pull request URL or a PR number", arg)
	}
	owner, repo, err := DetectRepo()
	if err != nil {
		return PRRef{}, fmt.Errorf("PR given by number but repository could not be detected: %w", err)
	}
	return PRRef{Owner: owner, Repo: repo, Number: n}, nil
}

// DetectRepo infers owner and repo from the origin remote.
func DetectRepo() (owner, repo string, err error) {
	url, err := gitctx.RemoteURL("origin")
	if err != nil {
		return "", "", err
	}
	return ParseRemoteURL(url)
}

// ParseRemoteURL extracts owner and repo from an SSH or HTTPS GitHub remote.
func ParseRemoteURL(url string) (owner, repo string, err error) {
	if m := remoteSSHRe.FindStringSubmatch(url); m != nil {
		return m[1], m[2], nil
	}
	if m := remoteHTTPRe.FindStringSubmatch(url); m != nil {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("remote %q is not a GitHub URL", url)
}
