package ports

import (
	"context"
	"io"
)

// ArtifactStore holds uploaded model files. Remove is idempotent: removing
// an artifact that is already gone is success.
type ArtifactStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (path string, size int64, err error)
	Remove(path string) error
}
