// Package models contains shared data models used across the SkillForge codebase.
package models

import "context"

// AIProvider is the core interface that all analysis-service integrations must
// implement. Callers inject this interface rather than a concrete provider.
type AIProvider interface {
	// Complete sends a system + user prompt to the provider and returns the
	// raw text of the completion. The text is expected, but not guaranteed,
	// to contain a JSON analysis object.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Name returns the provider identifier (e.g., "openai").
	Name() string
}

// CompletionRequest is the input to a single analysis-service call.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}
