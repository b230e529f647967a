package kioskcontent

import "io"

// Request DTOs

// FileUpload is an uploaded blob together with the client-supplied name.
type FileUpload struct {
	Name   string
	Reader io.Reader
}

// AttachmentUpload pairs an uploaded document with an optional display
// title. A blank title falls back to the upload's base name.
type AttachmentUpload struct {
	File  FileUpload
	Title string
}

// CreatePageRequest contains parameters for creating a page.
type CreatePageRequest struct {
	Title       string
	Content     string
	Image       *FileUpload
	Attachments []AttachmentUpload
}

// UpdatePageRequest contains parameters for updating a page. Nil Title and
// Content leave the stored values untouched; the image reference is only
// replaced when Image is supplied; Attachments are appended.
type UpdatePageRequest struct {
	PageID      int64
	Title       *string
	Content     *string
	Image       *FileUpload
	Attachments []AttachmentUpload
}

// CreateButtonRequest contains parameters for creating a button.
type CreateButtonRequest struct {
	Title  string
	Color  string
	PageID *int64
	Icon   *FileUpload
}

// UpdateButtonRequest contains parameters for patching a button. Only
// supplied fields change; the icon reference is only replaced when Icon is
// supplied.
type UpdateButtonRequest struct {
	ButtonID int64
	Title    *string
	Color    *string
	Page     PageRef
	Icon     *FileUpload
}
