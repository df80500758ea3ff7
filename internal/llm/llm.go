// Package llm talks to OpenAI-compatible chat completion endpoints.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

// ErrorKind classifies a failed completion so callers can decide between fallback and surfacing.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthFailure
	KindRateLimited
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthFailure:
		return "auth_failure"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by Completer implementations for every failed call.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion failed (%s, status=%d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind of err, KindUnknown when err is not an *Error.
func KindOf(err error) ErrorKind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindUnknown
}

// Prompt is a system + user message pair.
type Prompt struct {
	System string
	User   string
}

// Completion is a successful model answer.
type Completion struct {
	Text  string
	Model string
	Usage domain.Usage
}

// Completer produces a completion for a prompt in a single attempt.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (Completion, error)
}
