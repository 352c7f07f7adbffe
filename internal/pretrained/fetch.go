// backend-go/internal/pretrained/fetch.go
package pretrained

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"github.com/stockwise/backend-go/internal/storage"
)

// FetchBundle downloads the four bundle documents from object storage into
// destDir so LoadBundle can read them. keyPrefix is the object key prefix
// under which the training pipeline uploaded the bundle.
func FetchBundle(ctx context.Context, store storage.ObjectStorage, keyPrefix, destDir string) error {
	for _, name := range []string{ModelFile, ScalerFile, FeaturesFile, MetadataFile} {
		key := path.Join(keyPrefix, name)
		dest := filepath.Join(destDir, name)
		if err := store.DownloadObject(ctx, key, dest); err != nil {
			return fmt.Errorf("fetch bundle document %s: %w", name, err)
		}
	}
	return nil
}
