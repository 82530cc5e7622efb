// Package review builds prompts from files, git diffs, and pull requests,
// runs them through a completion backend, and records the priced results.
package review

import (
	"fmt"
	"sort"
	"strings"
)

// Focus selects the review emphasis.
type Focus string

const (
	FocusGeneral     Focus = "general"
	FocusSecurity    Focus = "security"
	FocusPerformance Focus = "performance"
	FocusStyle       Focus = "style"
	FocusBugs        Focus = "bugs"
)

var focusInstructions = map[Focus]string{
	FocusGeneral:     "Review for bugs, code quality, best practices, and potential improvements.",
	FocusSecurity:    "Focus on security vulnerabilities, injection risks, authentication issues, and data exposure.",
	FocusPerformance: "Analyze for performance bottlenecks, inefficient algorithms, and resource usage.",
	FocusStyle:       "Check code style, naming conventions, documentation, and readability.",
	FocusBugs:        "Hunt for logical errors, edge cases, null pointer issues, and runtime errors.",
}

// ParseFocus validates a focus flag value.
func ParseFocus(s string) (Focus, error) {
	f := Focus(strings.ToLower(strings.TrimSpace(s)))
	if s == "" {
		return FocusGeneral, nil
	}
	if _, ok := focusInstructions[f]; !ok {
		return "", fmt.Errorf("invalid focus %q (valid: %s)", s, strings.Join(FocusNames(), ", "))
	}
	return f, nil
}

// FocusNames lists the valid focus values in stable order.
func FocusNames() []string {
	names := make([]string, 0, len(focusInstructions))
	for f := range focusInstructions {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

func (f Focus) instruction() string {
	if instr, ok := focusInstructions[f]; ok {
		return instr
	}
	return focusInstructions[FocusGeneral]
}
