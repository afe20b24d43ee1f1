package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

// Storage writes uploads under {root}/user_{userId}/namespace_{collectionId}/,
// keeping the original filename. Re-uploading the same name overwrites the
// previous bytes, which makes retried uploads idempotent at the file level.
type Storage struct {
	root string
}

func New(root string) (*Storage, error) {
	if root == "" {
		root = "./data/uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}
	return &Storage{root: root}, nil
}

func (s *Storage) Save(_ context.Context, userID, collectionID int64, filename string, content []byte) (string, error) {
	dir := filepath.Join(s.root,
		fmt.Sprintf("user_%d", userID),
		fmt.Sprintf("namespace_%d", collectionID),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", domain.WrapError(domain.ErrStorageWrite, "create upload dir", err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", domain.WrapError(domain.ErrStorageWrite, "write upload", err)
	}
	return path, nil
}
