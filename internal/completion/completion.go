// Package completion provides text-completion backends for the
// model-assisted extractor. The reply is untrusted text; callers must
// recover any structure from it themselves.
package completion

import "context"

// Completer defines the interface for text-completion operations
type Completer interface {
	// Complete sends a prompt and returns the raw reply text
	Complete(ctx context.Context, prompt string) (string, error)
	// Close closes the completer and releases resources
	Close() error
}
