package interfaces

import (
	"context"
	"time"
)

// BlobStorage stores attachment bytes. Rows only carry paths; all byte
// access goes through this interface.
type BlobStorage interface {
	Upload(ctx context.Context, path string, data []byte) error
	CreateSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Remove deletes the given paths. Missing objects are not an error.
	Remove(ctx context.Context, paths []string) error
}
