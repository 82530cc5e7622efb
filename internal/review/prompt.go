package review

import (
	"fmt"
	"strings"
)

// systemPrompt sets the reviewer persona and the severity and scoring
// contract every review must follow. Score extraction depends on the
// "Overall Score: X/10" line it mandates.
const systemPrompt = `You are an expert code reviewer with deep knowledge of software engineering best practices, security, and performance optimization.

Your reviews should be:
- Specific and actionable
- Prioritized by severity (Critical, High, Medium, Low)
- Constructive and educational
- Focused on real issues, not nitpicks

For each issue found, provide:
1. Severity level
2. Line number (if applicable)
3. Clear description of the problem
4. Why it's a problem
5. Suggested fix with code example
`

// reviewFormat is the response skeleton appended to every user prompt.
const reviewFormat = `Provide your review in this format:

## Summary
[Brief overview of code quality]

## Issues Found

### Critical Issues
[List critical bugs/security issues]

### High Priority
[Important improvements needed]

### Medium Priority
[Good-to-have improvements]

### Low Priority
[Style and minor improvements]

## Positive Aspects
[What's done well]

## Overall Score: X/10
[Your rating with brief justification]
`

func filePrompt(code, filename string, focus Focus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please review this %s file.\n\n", filename)
	fmt.Fprintf(&b, "Focus: %s\n\n", focus.instruction())
	b.WriteString("Code to review:\n```\n")
	b.WriteString(code)
	b.WriteString("\n```\n\n")
	b.WriteString(reviewFormat)
	return b.String()
}

func diffPrompt(diff, description string, focus Focus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please review these changes (%s).\n\n", description)
	fmt.Fprintf(&b, "Focus: %s\n\n", focus.instruction())
	b.WriteString("Review only the changed lines and their immediate context.\n\n")
	b.WriteString("Diff to review:\n```diff\n")
	b.WriteString(diff)
	b.WriteString("\n```\n\n")
	b.WriteString(reviewFormat)
	return b.String()
}

func prPrompt(diff, title string, changedFiles int, focus Focus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please review this pull request: %s (%d files changed).\n\n", title, changedFiles)
	fmt.Fprintf(&b, "Focus: %s\n\n", focus.instruction())
	b.WriteString("Each file's patch is annotated with its name, status, and change counts.\n\n")
	b.WriteString("Changes to review:\n```diff\n")
	b.WriteString(diff)
	b.WriteString("\n```\n\n")
	b.WriteString(reviewFormat)
	return b.String()
}
