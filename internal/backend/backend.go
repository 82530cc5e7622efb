// Package backend adapts the LLM completion API behind a narrow interface.
// The rest of the pipeline depends on Completer only, so tests substitute a
// stub and never touch the network.
package backend

import "context"

// CompletionRequest is the input to one backend invocation.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// CompletionResult carries the response text plus token usage. Usage is
// required downstream for cost accounting.
type CompletionResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Completer is the LLM collaborator abstraction.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
	Model() string
}
