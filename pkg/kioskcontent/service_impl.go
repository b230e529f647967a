package kioskcontent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// service implements the Service interface
type service struct {
	pages   PageRepository
	buttons ButtonRepository
	assets  AssetStore
	gate    Gate
	events  EventSink
	logger  *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithPageRepository sets the page repository for the service
func WithPageRepository(repo PageRepository) Option {
	return func(s *service) {
		s.pages = repo
	}
}

// WithButtonRepository sets the button repository for the service
func WithButtonRepository(repo ButtonRepository) Option {
	return func(s *service) {
		s.buttons = repo
	}
}

// WithAssetStore sets the asset store for the service
func WithAssetStore(store AssetStore) Option {
	return func(s *service) {
		s.assets = store
	}
}

// WithGate sets the capability gate consulted before mutating operations.
// Without a gate every caller is treated as authorized.
func WithGate(gate Gate) Option {
	return func(s *service) {
		s.gate = gate
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithLogger sets the structured logger used for best-effort failures
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.pages == nil {
		return nil, fmt.Errorf("page repository is required")
	}
	if s.buttons == nil {
		return nil, fmt.Errorf("button repository is required")
	}
	if s.assets == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	if s.events == nil {
		s.events = NewNoopEventSink()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// authorize consults the capability gate. Mutations call it before any
// repository or store access so a denied caller never performs partial work.
func (s *service) authorize(ctx context.Context) error {
	if s.gate != nil && !s.gate.Authorized(ctx) {
		return ErrUnauthorized
	}
	return nil
}

// removeStoredFile is the best-effort side of cleanup: a failed delete is
// logged and swallowed, since no row references the file afterwards.
func (s *service) removeStoredFile(ctx context.Context, storedName string) {
	if storedName == "" {
		return
	}
	if err := s.assets.Delete(ctx, storedName); err != nil {
		s.logger.WarnContext(ctx, "failed to delete stored file", "name", storedName, "error", err)
	}
}

// attachmentTitle resolves the display title for an uploaded document: the
// trimmed custom title, or the upload's base name when blank.
func attachmentTitle(upload AttachmentUpload) string {
	if title := strings.TrimSpace(upload.Title); title != "" {
		return title
	}
	return BaseTitle(upload.File.Name)
}

// appendAttachments saves each upload and creates its row. The file is
// always written before the row so a failed save never leaves a dangling
// reference.
func (s *service) appendAttachments(ctx context.Context, pageID int64, uploads []AttachmentUpload) error {
	for _, upload := range uploads {
		storedName, err := s.assets.Save(ctx, upload.File.Reader, upload.File.Name)
		if err != nil {
			return err
		}
		attachment := &Attachment{
			PageID:   pageID,
			FilePath: storedName,
			Title:    attachmentTitle(upload),
		}
		if err := s.pages.CreateAttachment(ctx, attachment); err != nil {
			// The row never existed; drop the file we just wrote.
			s.removeStoredFile(ctx, storedName)
			return err
		}
	}
	return nil
}

// Page operations

func (s *service) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	page := &Page{
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
	}

	// Save the image before committing the row: a failed save must never
	// produce a reference pointing at nothing.
	if req.Image != nil {
		storedName, err := s.assets.Save(ctx, req.Image.Reader, req.Image.Name)
		if err != nil {
			return nil, err
		}
		page.ImagePath = &storedName
	}

	if err := s.pages.CreatePage(ctx, page); err != nil {
		if page.ImagePath != nil {
			s.removeStoredFile(ctx, *page.ImagePath)
		}
		return nil, &PageError{Op: "create", Err: err}
	}

	if err := s.appendAttachments(ctx, page.ID, req.Attachments); err != nil {
		return nil, &PageError{PageID: page.ID, Op: "create", Err: err}
	}

	if err := s.events.PageCreated(ctx, page); err != nil {
		s.logger.WarnContext(ctx, "page created event failed", "page_id", page.ID, "error", err)
	}

	return page, nil
}

func (s *service) UpdatePage(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	if _, err := s.pages.GetPage(ctx, req.PageID); err != nil {
		return nil, &PageError{PageID: req.PageID, Op: "update", Err: err}
	}

	patch := PagePatch{Content: req.Content}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		patch.Title = &title
	}

	// The image reference is only overwritten when a new file is supplied.
	// The previous file is retained, not deleted.
	if req.Image != nil {
		storedName, err := s.assets.Save(ctx, req.Image.Reader, req.Image.Name)
		if err != nil {
			return nil, err
		}
		patch.ImagePath = &storedName
	}

	if err := s.pages.UpdatePage(ctx, req.PageID, patch); err != nil {
		return nil, &PageError{PageID: req.PageID, Op: "update", Err: err}
	}

	if err := s.appendAttachments(ctx, req.PageID, req.Attachments); err != nil {
		return nil, &PageError{PageID: req.PageID, Op: "update", Err: err}
	}

	page, err := s.pages.GetPage(ctx, req.PageID)
	if err != nil {
		return nil, &PageError{PageID: req.PageID, Op: "update", Err: err}
	}

	if err := s.events.PageUpdated(ctx, page); err != nil {
		s.logger.WarnContext(ctx, "page updated event failed", "page_id", req.PageID, "error", err)
	}

	return page, nil
}

func (s *service) DeletePage(ctx context.Context, id int64) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	page, err := s.pages.GetPage(ctx, id)
	if err != nil {
		return &PageError{PageID: id, Op: "delete", Err: err}
	}

	attachments, err := s.pages.ListAttachments(ctx, id)
	if err != nil {
		return &PageError{PageID: id, Op: "delete", Err: err}
	}

	// Best-effort file removal first, row deletion after: a crash in
	// between leaves an orphaned file (invisible to readers), never a row
	// pointing at nothing.
	for _, attachment := range attachments {
		s.removeStoredFile(ctx, attachment.FilePath)
	}
	if page.ImagePath != nil {
		s.removeStoredFile(ctx, *page.ImagePath)
	}

	// Buttons pointing at the page stay on the kiosk, unlinked. Unlinking
	// precedes the row delete so the page foreign key never dangles.
	if err := s.buttons.UnlinkPage(ctx, id); err != nil {
		return &PageError{PageID: id, Op: "delete", Err: err}
	}

	if err := s.pages.DeletePageCascade(ctx, id); err != nil {
		return &PageError{PageID: id, Op: "delete", Err: err}
	}

	if err := s.events.PageDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "page deleted event failed", "page_id", id, "error", err)
	}

	return nil
}

func (s *service) GetPage(ctx context.Context, id int64) (*Page, error) {
	return s.pages.GetPage(ctx, id)
}

func (s *service) ListPages(ctx context.Context) ([]*Page, error) {
	return s.pages.ListPages(ctx)
}

// Attachment operations

func (s *service) DeleteAttachment(ctx context.Context, id int64) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	attachment, err := s.pages.GetAttachment(ctx, id)
	if err != nil {
		// Idempotent: deleting an absent attachment is a no-op.
		if errors.Is(err, ErrAttachmentNotFound) {
			return nil
		}
		return &PageError{Op: "delete_attachment", Err: err}
	}

	s.removeStoredFile(ctx, attachment.FilePath)

	if err := s.pages.DeleteAttachment(ctx, id); err != nil {
		if errors.Is(err, ErrAttachmentNotFound) {
			return nil
		}
		return &PageError{PageID: attachment.PageID, Op: "delete_attachment", Err: err}
	}

	return nil
}

func (s *service) ListAttachments(ctx context.Context, pageID int64) ([]*Attachment, error) {
	return s.pages.ListAttachments(ctx, pageID)
}

// Button operations

func (s *service) CreateButton(ctx context.Context, req CreateButtonRequest) (*Button, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	button := &Button{
		Title:  req.Title,
		Color:  req.Color,
		PageID: req.PageID,
	}

	if req.Icon != nil {
		storedName, err := s.assets.Save(ctx, req.Icon.Reader, req.Icon.Name)
		if err != nil {
			return nil, err
		}
		button.IconPath = &storedName
	}

	if err := s.buttons.CreateButton(ctx, button); err != nil {
		if button.IconPath != nil {
			s.removeStoredFile(ctx, *button.IconPath)
		}
		return nil, &ButtonError{Op: "create", Err: err}
	}

	if err := s.events.ButtonCreated(ctx, button); err != nil {
		s.logger.WarnContext(ctx, "button created event failed", "button_id", button.ID, "error", err)
	}

	return button, nil
}

func (s *service) UpdateButton(ctx context.Context, req UpdateButtonRequest) (*Button, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	patch := ButtonPatch{
		Title: req.Title,
		Color: req.Color,
		Page:  req.Page,
	}

	// Same replacement policy as page images: the old icon file is retained.
	if req.Icon != nil {
		storedName, err := s.assets.Save(ctx, req.Icon.Reader, req.Icon.Name)
		if err != nil {
			return nil, err
		}
		patch.IconPath = &storedName
	}

	if err := s.buttons.UpdateButton(ctx, req.ButtonID, patch); err != nil {
		return nil, &ButtonError{ButtonID: req.ButtonID, Op: "update", Err: err}
	}

	button, err := s.buttons.GetButton(ctx, req.ButtonID)
	if err != nil {
		return nil, &ButtonError{ButtonID: req.ButtonID, Op: "update", Err: err}
	}

	if err := s.events.ButtonUpdated(ctx, req.ButtonID); err != nil {
		s.logger.WarnContext(ctx, "button updated event failed", "button_id", req.ButtonID, "error", err)
	}

	return button, nil
}

func (s *service) DeleteButton(ctx context.Context, id int64) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	// Row only: a button's icon file is retained, consistent with the
	// replacement policy.
	if err := s.buttons.DeleteButton(ctx, id); err != nil {
		return &ButtonError{ButtonID: id, Op: "delete", Err: err}
	}

	if err := s.events.ButtonDeleted(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "button deleted event failed", "button_id", id, "error", err)
	}

	return nil
}

func (s *service) ReorderButtons(ctx context.Context, assignments []PositionAssignment) error {
	if err := s.authorize(ctx); err != nil {
		return err
	}

	if len(assignments) == 0 {
		return nil
	}

	if err := s.buttons.Reorder(ctx, assignments); err != nil {
		return &ButtonError{Op: "reorder", Err: err}
	}

	if err := s.events.ButtonsReordered(ctx, assignments); err != nil {
		s.logger.WarnContext(ctx, "buttons reordered event failed", "error", err)
	}

	return nil
}

func (s *service) ListButtons(ctx context.Context) ([]*Button, error) {
	return s.buttons.ListButtons(ctx)
}

// Asset operations

func (s *service) SaveEditorImage(ctx context.Context, upload FileUpload) (string, error) {
	if err := s.authorize(ctx); err != nil {
		return "", err
	}
	return s.assets.Save(ctx, upload.Reader, upload.Name)
}

func (s *service) OpenAsset(ctx context.Context, storedName string) (io.ReadCloser, *AssetInfo, error) {
	info, err := s.assets.Stat(ctx, storedName)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.assets.Open(ctx, storedName)
	if err != nil {
		return nil, nil, err
	}
	return reader, info, nil
}
