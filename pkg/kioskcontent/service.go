package kioskcontent

import (
	"context"
	"io"
)

// Service is the content service: it orchestrates the repositories and the
// asset store so that every mutation leaves page rows, attachment rows and
// stored files consistent. Mutating operations consult the capability gate
// first and return ErrUnauthorized without side effects when it denies.
type Service interface {
	// Page operations
	CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error)
	UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error)
	DeletePage(ctx context.Context, id int64) error
	GetPage(ctx context.Context, id int64) (*Page, error)
	ListPages(ctx context.Context) ([]*Page, error)

	// Attachment operations
	DeleteAttachment(ctx context.Context, id int64) error
	ListAttachments(ctx context.Context, pageID int64) ([]*Attachment, error)

	// Button operations
	CreateButton(ctx context.Context, req CreateButtonRequest) (*Button, error)
	UpdateButton(ctx context.Context, req UpdateButtonRequest) (*Button, error)
	DeleteButton(ctx context.Context, id int64) error
	ReorderButtons(ctx context.Context, assignments []PositionAssignment) error
	ListButtons(ctx context.Context) ([]*Button, error)

	// SaveEditorImage stores a standalone rich-text editor upload and
	// returns its stored name.
	SaveEditorImage(ctx context.Context, upload FileUpload) (string, error)

	// OpenAsset serves a stored file to public readers.
	OpenAsset(ctx context.Context, storedName string) (io.ReadCloser, *AssetInfo, error)
}
