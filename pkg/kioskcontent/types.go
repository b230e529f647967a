package kioskcontent

import "time"

// Page is a content record shown on the kiosk. ImagePath is nil when no
// image has been uploaded; when set it names a file in the asset store.
type Page struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	ImagePath *string   `json:"image_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachment is a document belonging to exactly one page. FilePath names a
// file in the asset store; Title is the display title shown to kiosk users.
type Attachment struct {
	ID       int64  `json:"id"`
	PageID   int64  `json:"page_id"`
	FilePath string `json:"file_path"`
	Title    string `json:"title"`
}

// Button is an ordered navigation entry on the kiosk home screen. PageID is
// nil for an unlinked button. Position drives display ordering; ties are
// broken by insertion order.
type Button struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color,omitempty"`
	PageID    *int64    `json:"page_id,omitempty"`
	IconPath  *string   `json:"icon_path,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PagePatch carries the page columns to change on update. Nil fields are
// left untouched.
type PagePatch struct {
	Title     *string
	Content   *string
	ImagePath *string
}

// PageRef distinguishes "field not supplied" (Set false) from "unlink the
// page" (Set true, ID nil) when patching a button.
type PageRef struct {
	Set bool
	ID  *int64
}

// ButtonPatch carries the button columns to change on update. Nil fields
// are left untouched. Position is deliberately absent: it changes only
// through the bulk reorder operation.
type ButtonPatch struct {
	Title    *string
	Color    *string
	Page     PageRef
	IconPath *string
}

// PositionAssignment is one entry of a bulk button reorder.
type PositionAssignment struct {
	ButtonID int64 `json:"id"`
	Position int   `json:"position"`
}

// AssetInfo describes a stored asset.
type AssetInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}
