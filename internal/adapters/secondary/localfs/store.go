package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	ports "guardian-audit-service/internal/core/ports/output"
)

type store struct {
	dir string
}

// NewStore creates a disk-backed artifact store rooted at dir.
func NewStore(dir string) (ports.ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &store{dir: dir}, nil
}

func (s *store) Save(ctx context.Context, filename string, r io.Reader) (string, int64, error) {
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create artifact file: %w", err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// Drop the partial write so the rollback path leaves no orphan.
		_ = os.Remove(path)
		return "", 0, fmt.Errorf("write artifact: %w", err)
	}

	return path, n, nil
}

func (s *store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact: %w", err)
	}
	return nil
}
