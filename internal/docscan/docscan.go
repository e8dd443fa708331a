// Package docscan acquires plain text from stored bill documents. It fills
// the role of a document-text service with a synchronous single-call mode and
// an asynchronous job mode for multi-page formats.
package docscan

import "context"

// JobStatus reports the state of an asynchronous text job.
type JobStatus string

const (
	JobRunning   JobStatus = "RUNNING"
	JobSucceeded JobStatus = "SUCCEEDED"
	JobFailed    JobStatus = "FAILED"
)

// TextService defines the interface for document text acquisition
type TextService interface {
	// DetectText extracts text from a document in one synchronous call
	DetectText(ctx context.Context, ref string) (text string, pages int, err error)

	// StartTextJob begins asynchronous text extraction and returns a job ID
	StartTextJob(ctx context.Context, ref string) (jobID string, err error)

	// PollTextJob reports the status of a running job
	PollTextJob(ctx context.Context, jobID string) (JobStatus, error)

	// FetchTextResults returns the text and page count of a succeeded job
	FetchTextResults(ctx context.Context, jobID string) (text string, pages int, err error)

	// Close closes the service and releases resources
	Close() error
}

// DocumentSource fetches stored document bytes by reference.
type DocumentSource interface {
	Get(ref string) ([]byte, error)
}
