package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

func TestFSStore_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	store, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}

	ctx := context.Background()

	// Save
	data := []byte("hello fs")
	name, err := store.Save(ctx, bytes.NewReader(data), "my photo.png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if name != "my_photo.png" {
		t.Fatalf("expected sanitized name, got %q", name)
	}

	// Stat
	info, err := store.Stat(ctx, name)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), info.Size)
	}

	// Open
	rc, err := store.Open(ctx, name)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Fatalf("open mismatch: %q", string(got))
	}

	// Delete
	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, name)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
}

func TestFSStore_OverwriteOnCollision(t *testing.T) {
	tmp := t.TempDir()
	store, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}

	ctx := context.Background()
	if _, err := store.Save(ctx, strings.NewReader("first"), "doc.pdf"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := store.Save(ctx, strings.NewReader("second"), "doc.pdf"); err != nil {
		t.Fatalf("second save: %v", err)
	}

	rc, err := store.Open(ctx, "doc.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != "second" {
		t.Fatalf("expected overwrite, got %q", string(got))
	}

	// No temp files should survive a save.
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".upload-") {
			t.Fatalf("leftover temp file %q", entry.Name())
		}
	}
}

func TestFSStore_RejectsDisallowedExtension(t *testing.T) {
	store, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}

	_, err = store.Save(context.Background(), strings.NewReader("x"), "shell.sh")
	if !errors.Is(err, kioskcontent.ErrFileTypeNotAllowed) {
		t.Fatalf("expected ErrFileTypeNotAllowed, got %v", err)
	}

	// A bare extension sanitizes to an extensionless name and is rejected too.
	_, err = store.Save(context.Background(), strings.NewReader("x"), ".png")
	if !errors.Is(err, kioskcontent.ErrFileTypeNotAllowed) {
		t.Fatalf("expected ErrFileTypeNotAllowed for extension-only name, got %v", err)
	}
}

func TestFSStore_MissingAndIdempotentDelete(t *testing.T) {
	store, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}

	ctx := context.Background()
	if _, err := store.Open(ctx, "ghost.png"); !errors.Is(err, kioskcontent.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound from open, got %v", err)
	}
	if _, err := store.Stat(ctx, "ghost.png"); !errors.Is(err, kioskcontent.ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound from stat, got %v", err)
	}
	if err := store.Delete(ctx, "ghost.png"); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestFSStore_PathTraversalConfined(t *testing.T) {
	tmp := t.TempDir()
	store, err := New(Config{BaseDir: tmp})
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}

	name, err := store.Save(context.Background(), strings.NewReader("x"), "../../escape.png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if name != "escape.png" {
		t.Fatalf("expected traversal stripped, got %q", name)
	}
	if _, err := os.Stat(filepath.Join(tmp, "escape.png")); err != nil {
		t.Fatalf("expected file inside root: %v", err)
	}
}
