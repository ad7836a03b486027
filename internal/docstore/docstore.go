// Package docstore defines the key/value document abstraction the coaching engine persists to.
// Documents are addressed by slash-separated paths such as users/{uid}/sessions/{sid};
// the collection of a document is its path without the last segment.
// Implementations live under internal/docstore/<driver>/.
package docstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandilya-stack/coach-server/internal/model"
)

// Document is a stored JSON body plus its concurrency version.
// Version is 1 after creation and increments on every successful Update.
type Document struct {
	Path       string
	Collection string
	Data       []byte
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store is the document store port.
type Store interface {
	// Get returns model.ErrNotFound when the document is absent.
	Get(ctx context.Context, path string) (*Document, error)
	// Create returns model.ErrConflict when the document already exists.
	Create(ctx context.Context, path string, data []byte) (*Document, error)
	// GetOrCreate atomically creates the document with data if absent and returns the stored one.
	GetOrCreate(ctx context.Context, path string, data []byte) (*Document, error)
	// Update replaces the body only if the stored version equals expectedVersion.
	// Returns model.ErrConflict on a stale version and model.ErrNotFound when absent.
	Update(ctx context.Context, path string, data []byte, expectedVersion int64) (*Document, error)
	// Query returns the direct children of collection, oldest first.
	Query(ctx context.Context, collection string) ([]*Document, error)
	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error
}

// Join builds a document or collection path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// CollectionOf returns the parent collection of a document path.
func CollectionOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// ValidatePath rejects empty paths and empty segments. Document paths have an even number of segments.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty document path", model.ErrValidation)
	}
	parts := strings.Split(path, "/")
	for _, p := range parts {
		if p == "" {
			return fmt.Errorf("%w: empty segment in path %q", model.ErrValidation, path)
		}
	}
	if len(parts)%2 != 0 {
		return fmt.Errorf("%w: %q is not a document path", model.ErrValidation, path)
	}
	return nil
}

// NotFound wraps model.ErrNotFound with the offending path.
func NotFound(path string) error {
	return fmt.Errorf("document %s: %w", path, model.ErrNotFound)
}

// Conflict wraps model.ErrConflict with the offending path.
func Conflict(path string) error {
	return fmt.Errorf("document %s: %w", path, model.ErrConflict)
}
