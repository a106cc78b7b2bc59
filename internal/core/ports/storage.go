// internal/core/ports/storage.go
package ports

import (
	"context"
	"io"
)

// ObjectStore is the port for blob storage of uploaded invoice documents.
type ObjectStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
