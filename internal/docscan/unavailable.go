package docscan

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by Unavailable for every operation.
var ErrNotConfigured = errors.New("document text service not configured")

// Unavailable is a TextService for deployments without a vision backend.
// Inline-text extraction still works; document references fail cleanly.
type Unavailable struct{}

func (Unavailable) DetectText(context.Context, string) (string, int, error) {
	return "", 0, ErrNotConfigured
}

func (Unavailable) StartTextJob(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (Unavailable) PollTextJob(context.Context, string) (JobStatus, error) {
	return "", ErrNotConfigured
}

func (Unavailable) FetchTextResults(context.Context, string) (string, int, error) {
	return "", 0, ErrNotConfigured
}

func (Unavailable) Close() error {
	return nil
}
