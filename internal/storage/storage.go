// backend-go/internal/storage/storage.go
package storage

import "context"

// ObjectStorage captures the minimal S3-compatible operations the bundle
// fetcher needs.
type ObjectStorage interface {
	DownloadObject(ctx context.Context, key string, destPath string) error
}
