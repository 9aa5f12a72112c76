package artists

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	ctx := context.Background()

	url, err := store.Save(ctx, "portfolio/p1", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/portfolio/p1/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q", url)
	}

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	onDisk := filepath.Join(dir, filepath.FromSlash(rel))
	if _, err := os.Stat(onDisk); err != nil {
		t.Fatalf("file not written: %v", err)
	}

	if err := store.Delete(ctx, url); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := os.Stat(onDisk); !os.IsNotExist(err) {
		t.Error("file still exists after Delete")
	}
	if err := store.Delete(ctx, url); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestLocalStorage_RejectsNonImages(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "http://localhost/uploads")

	_, err := store.Save(context.Background(), "x", strings.NewReader("#!/bin/sh\necho hi\n"))
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("error = %v, want ErrUnsupportedImage", err)
	}
}

func TestLocalStorage_DeleteOutsideDir(t *testing.T) {
	store := NewLocalStorage(t.TempDir(), "http://localhost/uploads")

	if err := store.Delete(context.Background(), "http://localhost/uploads/../../etc/passwd"); err == nil {
		t.Error("expected traversal to be refused")
	}
	if err := store.Delete(context.Background(), "https://elsewhere.example/image.png"); err != nil {
		t.Errorf("foreign url error = %v, want nil", err)
	}
}
