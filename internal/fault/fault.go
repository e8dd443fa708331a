// Package fault defines the tagged failure kinds surfaced to callers.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers that need to map it to a response.
type Kind string

const (
	// InvalidInput means the request was missing or contradictory.
	InvalidInput Kind = "invalid_input"
	// SourceFailed means the document text job reported failure.
	SourceFailed Kind = "source_failed"
	// Timeout means a bounded wait elapsed before completion.
	Timeout Kind = "timeout"
	// UpstreamUnavailable means an external service was unreachable or
	// returned a non-success status.
	UpstreamUnavailable Kind = "upstream_unavailable"
)

// Error is a failure with a kind and a caller-facing message. It wraps the
// underlying cause, if any, without exposing it in the message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a tagged failure without a cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a tagged failure wrapping an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of err, or an empty Kind if err carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
