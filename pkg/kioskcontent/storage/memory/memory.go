package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

// Store is an in-memory implementation of the kioskcontent.AssetStore
// interface, intended for tests and development.
type Store struct {
	mu      sync.RWMutex
	files   map[string][]byte
	modTime map[string]time.Time
}

// New creates a new in-memory asset store
func New() *Store {
	return &Store{
		files:   make(map[string][]byte),
		modTime: make(map[string]time.Time),
	}
}

// Save keeps the blob under its sanitized stored name, overwriting any
// existing entry with the same name.
func (s *Store) Save(ctx context.Context, reader io.Reader, originalName string) (string, error) {
	// The check runs on the sanitized name: a bare ".png" sanitizes to an
	// extensionless "png" and must not be stored.
	storedName := kioskcontent.SanitizeFilename(originalName)
	if !kioskcontent.AllowedFile(storedName) {
		return "", kioskcontent.ErrFileTypeNotAllowed
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", &kioskcontent.StorageError{Name: storedName, Op: "save", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[storedName] = data
	s.modTime[storedName] = time.Now()
	return storedName, nil
}

// Open returns the stored blob's content.
func (s *Store) Open(ctx context.Context, storedName string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.files[storedName]
	if !exists {
		return nil, kioskcontent.ErrAssetNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Stat reports metadata about a stored blob.
func (s *Store) Stat(ctx context.Context, storedName string) (*kioskcontent.AssetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.files[storedName]
	if !exists {
		return nil, kioskcontent.ErrAssetNotFound
	}
	return &kioskcontent.AssetInfo{
		Name:    storedName,
		Size:    int64(len(data)),
		ModTime: s.modTime[storedName],
	}, nil
}

// Delete removes a stored blob. Absence of the target is not an error.
func (s *Store) Delete(ctx context.Context, storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, storedName)
	delete(s.modTime, storedName)
	return nil
}
