package filestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/thuee/info-system-backend/internal/platform/logger"
)

func TestLocalStoreOpen(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "proof.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := NewLocalStore(logger.Nop(), root)
	ctx := context.Background()

	got, err := ReadAll(ctx, s, "proof.pdf")
	if err != nil || string(got) != "pdf" {
		t.Fatalf("ReadAll: got %q err=%v", got, err)
	}
	if _, err := s.Open(ctx, "missing.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCleanNameRejectsTraversal(t *testing.T) {
	cases := map[string]bool{
		"a.pdf":           true,
		"dir/a.pdf":       true,
		"../etc/passwd":   false,
		"dir/../../x":     false,
		"":                false,
		"dir\\..\\x":      false,
		"dir//double.pdf": false,
	}
	for name, ok := range cases {
		_, err := cleanName(name)
		if ok && err != nil {
			t.Fatalf("%q: unexpected error %v", name, err)
		}
		if !ok && !errors.Is(err, ErrInvalidName) {
			t.Fatalf("%q: expected ErrInvalidName, got %v", name, err)
		}
	}
}
