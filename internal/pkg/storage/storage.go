package storage

import (
	"context"
	"io"
)

// Storage defines the interface for stored file operations. Reads go through
// the HTTP static file route, so only writes and deletes are modeled here.
type Storage interface {
	// Save stores content under the given relative path.
	Save(ctx context.Context, path string, content io.Reader) error

	// Delete removes the file at the given relative path.
	// Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
}
