package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

// Repository implements kioskcontent.PageRepository and
// kioskcontent.ButtonRepository using in-memory storage. Iteration orders
// follow insertion so position ties are stable.
type Repository struct {
	mu sync.RWMutex

	nextPageID       int64
	nextAttachmentID int64
	nextButtonID     int64

	pages       map[int64]*kioskcontent.Page
	pageOrder   []int64
	attachments map[int64]*kioskcontent.Attachment
	attachOrder []int64
	buttons     map[int64]*kioskcontent.Button
	buttonOrder []int64
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		pages:       make(map[int64]*kioskcontent.Page),
		attachments: make(map[int64]*kioskcontent.Attachment),
		buttons:     make(map[int64]*kioskcontent.Button),
	}
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *kioskcontent.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextPageID++
	page.ID = r.nextPageID
	now := time.Now()
	page.CreatedAt = now
	page.UpdatedAt = now

	pageCopy := *page
	r.pages[page.ID] = &pageCopy
	r.pageOrder = append(r.pageOrder, page.ID)
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*kioskcontent.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, exists := r.pages[id]
	if !exists {
		return nil, kioskcontent.ErrPageNotFound
	}
	pageCopy := *page
	return &pageCopy, nil
}

func (r *Repository) UpdatePage(ctx context.Context, id int64, patch kioskcontent.PagePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	page, exists := r.pages[id]
	if !exists {
		return kioskcontent.ErrPageNotFound
	}

	if patch.Title != nil {
		page.Title = *patch.Title
	}
	if patch.Content != nil {
		page.Content = *patch.Content
	}
	if patch.ImagePath != nil {
		imagePath := *patch.ImagePath
		page.ImagePath = &imagePath
	}
	page.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) ListPages(ctx context.Context) ([]*kioskcontent.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest first: reverse insertion order.
	result := make([]*kioskcontent.Page, 0, len(r.pageOrder))
	for i := len(r.pageOrder) - 1; i >= 0; i-- {
		if page, exists := r.pages[r.pageOrder[i]]; exists {
			pageCopy := *page
			result = append(result, &pageCopy)
		}
	}
	return result, nil
}

func (r *Repository) DeletePageCascade(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[id]; !exists {
		return kioskcontent.ErrPageNotFound
	}

	for attachmentID, attachment := range r.attachments {
		if attachment.PageID == id {
			delete(r.attachments, attachmentID)
		}
	}
	delete(r.pages, id)
	return nil
}

// Attachment operations

func (r *Repository) CreateAttachment(ctx context.Context, attachment *kioskcontent.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pages[attachment.PageID]; !exists {
		return kioskcontent.ErrPageNotFound
	}

	r.nextAttachmentID++
	attachment.ID = r.nextAttachmentID

	attachmentCopy := *attachment
	r.attachments[attachment.ID] = &attachmentCopy
	r.attachOrder = append(r.attachOrder, attachment.ID)
	return nil
}

func (r *Repository) GetAttachment(ctx context.Context, id int64) (*kioskcontent.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attachment, exists := r.attachments[id]
	if !exists {
		return nil, kioskcontent.ErrAttachmentNotFound
	}
	attachmentCopy := *attachment
	return &attachmentCopy, nil
}

func (r *Repository) ListAttachments(ctx context.Context, pageID int64) ([]*kioskcontent.Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*kioskcontent.Attachment
	for _, attachmentID := range r.attachOrder {
		attachment, exists := r.attachments[attachmentID]
		if exists && attachment.PageID == pageID {
			attachmentCopy := *attachment
			result = append(result, &attachmentCopy)
		}
	}
	return result, nil
}

func (r *Repository) DeleteAttachment(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.attachments[id]; !exists {
		return kioskcontent.ErrAttachmentNotFound
	}
	delete(r.attachments, id)
	return nil
}

// Button operations

func (r *Repository) CreateButton(ctx context.Context, button *kioskcontent.Button) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextButtonID++
	button.ID = r.nextButtonID
	now := time.Now()
	button.CreatedAt = now
	button.UpdatedAt = now

	buttonCopy := *button
	r.buttons[button.ID] = &buttonCopy
	r.buttonOrder = append(r.buttonOrder, button.ID)
	return nil
}

func (r *Repository) GetButton(ctx context.Context, id int64) (*kioskcontent.Button, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	button, exists := r.buttons[id]
	if !exists {
		return nil, kioskcontent.ErrButtonNotFound
	}
	buttonCopy := *button
	return &buttonCopy, nil
}

func (r *Repository) UpdateButton(ctx context.Context, id int64, patch kioskcontent.ButtonPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	button, exists := r.buttons[id]
	if !exists {
		return kioskcontent.ErrButtonNotFound
	}

	if patch.Title != nil {
		button.Title = *patch.Title
	}
	if patch.Color != nil {
		button.Color = *patch.Color
	}
	if patch.Page.Set {
		if patch.Page.ID != nil {
			pageID := *patch.Page.ID
			button.PageID = &pageID
		} else {
			button.PageID = nil
		}
	}
	if patch.IconPath != nil {
		iconPath := *patch.IconPath
		button.IconPath = &iconPath
	}
	button.UpdatedAt = time.Now()
	return nil
}

func (r *Repository) DeleteButton(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.buttons[id]; !exists {
		return kioskcontent.ErrButtonNotFound
	}
	delete(r.buttons, id)
	return nil
}

func (r *Repository) Reorder(ctx context.Context, assignments []kioskcontent.PositionAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Validate every id first so the whole batch applies or none of it does.
	for _, assignment := range assignments {
		if _, exists := r.buttons[assignment.ButtonID]; !exists {
			return kioskcontent.ErrButtonNotFound
		}
	}

	now := time.Now()
	for _, assignment := range assignments {
		button := r.buttons[assignment.ButtonID]
		button.Position = assignment.Position
		button.UpdatedAt = now
	}
	return nil
}

func (r *Repository) ListButtons(ctx context.Context) ([]*kioskcontent.Button, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*kioskcontent.Button, 0, len(r.buttonOrder))
	for _, buttonID := range r.buttonOrder {
		if button, exists := r.buttons[buttonID]; exists {
			buttonCopy := *button
			result = append(result, &buttonCopy)
		}
	}

	// Stable sort over insertion order keeps ties in creation order.
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

func (r *Repository) UnlinkPage(ctx context.Context, pageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, button := range r.buttons {
		if button.PageID != nil && *button.PageID == pageID {
			button.PageID = nil
			button.UpdatedAt = time.Now()
		}
	}
	return nil
}
