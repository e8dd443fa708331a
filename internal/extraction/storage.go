package extraction

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage persists uploaded bill documents by reference. References are
// opaque to callers but double as filenames, so implementations must keep
// them from escaping the store.
type Storage interface {
	// Save stores a document and returns the reference it was stored under
	Save(ref string, data []byte) (string, error)

	// Get retrieves a document by reference
	Get(ref string) ([]byte, error)

	// Delete removes a document
	Delete(ref string) error
}

// LocalStorage keeps documents as flat files under one directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates the document directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("creating document directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// path confines a reference to the document directory. References arrive
// from requests; any separators or parent segments are reduced to the final
// path element.
func (l *LocalStorage) path(ref string) string {
	return filepath.Join(l.basePath, filepath.Base(ref))
}

// Save writes a document, returning the confined reference.
func (l *LocalStorage) Save(ref string, data []byte) (string, error) {
	ref = filepath.Base(ref)
	if ref == "." || ref == string(filepath.Separator) {
		return "", fmt.Errorf("empty document reference")
	}
	if err := os.WriteFile(filepath.Join(l.basePath, ref), data, 0644); err != nil {
		return "", fmt.Errorf("writing document %s: %w", ref, err)
	}
	return ref, nil
}

// Get reads a document's bytes.
func (l *LocalStorage) Get(ref string) ([]byte, error) {
	data, err := os.ReadFile(l.path(ref))
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", ref, err)
	}
	return data, nil
}

// Delete removes a stored document.
func (l *LocalStorage) Delete(ref string) error {
	if err := os.Remove(l.path(ref)); err != nil {
		return fmt.Errorf("deleting document %s: %w", ref, err)
	}
	return nil
}
