package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

// Store is a filesystem implementation of the kioskcontent.AssetStore
// interface. All files live flat under a single root directory; a
// deployment must not point two stores at different roots.
type Store struct {
	baseDir string
}

// Config options for the filesystem store
type Config struct {
	BaseDir string // Root directory for stored files
}

// New creates a new filesystem asset store, creating the root directory if
// it does not exist.
func New(config Config) (*Store, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Store{baseDir: config.BaseDir}, nil
}

// Save writes the blob under its sanitized stored name. The write goes
// through a uniquely named temp file and a rename, so a crash mid-write
// never leaves a partially written file under the stored name. A stored
// name that already exists is overwritten silently.
func (s *Store) Save(ctx context.Context, reader io.Reader, originalName string) (string, error) {
	// The check runs on the sanitized name: a bare ".png" sanitizes to an
	// extensionless "png" and must not be stored.
	storedName := kioskcontent.SanitizeFilename(originalName)
	if !kioskcontent.AllowedFile(storedName) {
		return "", kioskcontent.ErrFileTypeNotAllowed
	}

	tmpPath := filepath.Join(s.baseDir, ".upload-"+uuid.NewString())
	file, err := os.Create(tmpPath)
	if err != nil {
		return "", &kioskcontent.StorageError{Name: storedName, Op: "save", Err: err}
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", &kioskcontent.StorageError{Name: storedName, Op: "save", Err: err}
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &kioskcontent.StorageError{Name: storedName, Op: "save", Err: err}
	}

	if err := os.Rename(tmpPath, filepath.Join(s.baseDir, storedName)); err != nil {
		os.Remove(tmpPath)
		return "", &kioskcontent.StorageError{Name: storedName, Op: "save", Err: err}
	}

	return storedName, nil
}

// Open returns the stored file's content for reading.
func (s *Store) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.baseDir, kioskcontent.SanitizeFilename(storedName)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, kioskcontent.ErrAssetNotFound
		}
		return nil, &kioskcontent.StorageError{Name: storedName, Op: "open", Err: err}
	}
	return file, nil
}

// Stat reports metadata about a stored file.
func (s *Store) Stat(ctx context.Context, storedName string) (*kioskcontent.AssetInfo, error) {
	name := kioskcontent.SanitizeFilename(storedName)
	info, err := os.Stat(filepath.Join(s.baseDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, kioskcontent.ErrAssetNotFound
		}
		return nil, &kioskcontent.StorageError{Name: storedName, Op: "stat", Err: err}
	}

	return &kioskcontent.AssetInfo{
		Name:    name,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Delete removes a stored file. Absence of the target is not an error.
func (s *Store) Delete(ctx context.Context, storedName string) error {
	err := os.Remove(filepath.Join(s.baseDir, kioskcontent.SanitizeFilename(storedName)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &kioskcontent.StorageError{Name: storedName, Op: "delete", Err: err}
	}
	return nil
}
