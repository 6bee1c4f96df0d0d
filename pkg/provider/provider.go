// Package provider abstracts completion backends for rendered prompts.
package provider

import (
	"context"
	"time"
)

// Request carries one completion call. System is optional; Prompt is the
// rendered user-facing text.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Response is the completion outcome.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
	Duration   time.Duration
}

// Provider produces a completion for a rendered prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req Request) (*Response, error)
}
