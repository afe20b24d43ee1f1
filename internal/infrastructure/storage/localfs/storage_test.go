package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sjlee-dev/ragdocs/internal/core/domain"
)

func TestSaveWritesUnderUserAndCollectionDirs(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := store.Save(context.Background(), 7, 42, "report.pdf", []byte("%PDF-"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	want := filepath.Join("user_7", "namespace_42", "report.pdf")
	if !pathHasSuffix(path, want) {
		t.Fatalf("expected path ending in %s, got %s", want, path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if string(raw) != "%PDF-" {
		t.Fatalf("unexpected saved content %q", raw)
	}
}

func TestSaveOverwritesExistingFilename(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, err := store.Save(context.Background(), 7, 42, "report.pdf", []byte("v1"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, err := store.Save(context.Background(), 7, 42, "report.pdf", []byte("v2"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if first != second {
		t.Fatalf("expected identical paths, got %s and %s", first, second)
	}
	raw, _ := os.ReadFile(second)
	if string(raw) != "v2" {
		t.Fatalf("expected overwrite, got %q", raw)
	}
}

func TestSaveStripsDirectoryTraversalFromFilename(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := store.Save(context.Background(), 1, 2, "../../escape.pdf", []byte("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !pathHasSuffix(path, filepath.Join("user_1", "namespace_2", "escape.pdf")) {
		t.Fatalf("expected traversal stripped, got %s", path)
	}
}

func TestSaveFailsOnUnwritableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := os.Chmod(root, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer func() { _ = os.Chmod(root, 0o755) }()

	_, err = store.Save(context.Background(), 1, 2, "report.pdf", []byte("x"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrStorageWrite) {
		t.Fatalf("expected ErrStorageWrite, got %v", err)
	}
}

func pathHasSuffix(path, suffix string) bool {
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}
