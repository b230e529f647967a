package kioskcontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPageNotFound indicates a page was not found
	ErrPageNotFound = errors.New("page not found")

	// ErrAttachmentNotFound indicates an attachment was not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrButtonNotFound indicates a button was not found
	ErrButtonNotFound = errors.New("button not found")

	// ErrAssetNotFound indicates a stored file was not found in the asset store
	ErrAssetNotFound = errors.New("asset not found")

	// ErrFileTypeNotAllowed indicates an upload with a disallowed extension
	ErrFileTypeNotAllowed = errors.New("file type not allowed")

	// ErrUnauthorized indicates the capability gate denied a mutating call
	ErrUnauthorized = errors.New("unauthorized")
)

// PageError represents an error related to page operations
type PageError struct {
	PageID int64
	Op     string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page operation %s failed for page %d: %v", e.Op, e.PageID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// ButtonError represents an error related to button operations
type ButtonError struct {
	ButtonID int64
	Op       string
	Err      error
}

func (e *ButtonError) Error() string {
	return fmt.Sprintf("button operation %s failed for button %d: %v", e.Op, e.ButtonID, e.Err)
}

func (e *ButtonError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to asset store operations
type StorageError struct {
	Name string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
