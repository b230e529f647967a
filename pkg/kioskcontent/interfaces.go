package kioskcontent

import (
	"context"
	"io"
)

// AssetStore defines the interface for uploaded-file persistence.
//
// Save rejects files whose extension is not allowed (ErrFileTypeNotAllowed)
// and otherwise writes the blob under a sanitized stored name, silently
// overwriting an existing file with the same stored name. Delete is
// idempotent: removing an absent file is not an error.
type AssetStore interface {
	// Save persists the blob and returns the stored name it was kept under.
	Save(ctx context.Context, reader io.Reader, originalName string) (string, error)

	// Open returns the stored file's content for reading.
	Open(ctx context.Context, storedName string) (io.ReadCloser, error)

	// Stat reports metadata about a stored file.
	Stat(ctx context.Context, storedName string) (*AssetInfo, error)

	// Delete removes a stored file. Absence of the target is not an error.
	Delete(ctx context.Context, storedName string) error
}

// PageRepository defines persistence for pages and their attachments.
type PageRepository interface {
	CreatePage(ctx context.Context, page *Page) error
	GetPage(ctx context.Context, id int64) (*Page, error)
	UpdatePage(ctx context.Context, id int64, patch PagePatch) error
	// ListPages returns pages newest first (descending id).
	ListPages(ctx context.Context) ([]*Page, error)
	// DeletePageCascade removes the page row and every attachment row owned
	// by it in a single transaction. File cleanup is the caller's concern.
	DeletePageCascade(ctx context.Context, id int64) error

	CreateAttachment(ctx context.Context, attachment *Attachment) error
	GetAttachment(ctx context.Context, id int64) (*Attachment, error)
	ListAttachments(ctx context.Context, pageID int64) ([]*Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error
}

// ButtonRepository defines persistence for navigation buttons.
type ButtonRepository interface {
	CreateButton(ctx context.Context, button *Button) error
	GetButton(ctx context.Context, id int64) (*Button, error)
	UpdateButton(ctx context.Context, id int64, patch ButtonPatch) error
	DeleteButton(ctx context.Context, id int64) error
	// Reorder applies all position assignments atomically: concurrent
	// readers never observe a half-reordered list.
	Reorder(ctx context.Context, assignments []PositionAssignment) error
	// ListButtons returns buttons ascending by position, insertion order
	// breaking ties.
	ListButtons(ctx context.Context) ([]*Button, error)
	// UnlinkPage clears the page reference on every button pointing at the
	// given page.
	UnlinkPage(ctx context.Context, pageID int64) error
}

// Gate is the capability gate consumed before any mutating operation.
type Gate interface {
	Authorized(ctx context.Context) bool
}

// EventSink defines the interface for content lifecycle event handling.
type EventSink interface {
	PageCreated(ctx context.Context, page *Page) error
	PageUpdated(ctx context.Context, page *Page) error
	PageDeleted(ctx context.Context, pageID int64) error
	ButtonCreated(ctx context.Context, button *Button) error
	ButtonUpdated(ctx context.Context, buttonID int64) error
	ButtonDeleted(ctx context.Context, buttonID int64) error
	ButtonsReordered(ctx context.Context, assignments []PositionAssignment) error
}
