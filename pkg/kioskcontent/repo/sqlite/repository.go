package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

// Repository implements kioskcontent.PageRepository and
// kioskcontent.ButtonRepository on a SQLite database.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *kioskcontent.Page) error {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO pages (title, content, image_path, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		page.Title, page.Content, page.ImagePath, now, now)
	if err != nil {
		return fmt.Errorf("error creating page: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading page id: %w", err)
	}
	page.ID = id
	page.CreatedAt = now
	page.UpdatedAt = now
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*kioskcontent.Page, error) {
	var page kioskcontent.Page
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, content, image_path, created_at, updated_at FROM pages WHERE id = ?",
		id).Scan(&page.ID, &page.Title, &page.Content, &page.ImagePath, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kioskcontent.ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// UpdatePage applies the patch against a fixed set of updatable columns.
func (r *Repository) UpdatePage(ctx context.Context, id int64, patch kioskcontent.PagePatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *patch.Content)
	}
	if patch.ImagePath != nil {
		sets = append(sets, "image_path = ?")
		args = append(args, *patch.ImagePath)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE pages SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("error updating page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kioskcontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) ListPages(ctx context.Context) ([]*kioskcontent.Page, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, content, image_path, created_at, updated_at FROM pages ORDER BY id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*kioskcontent.Page
	for rows.Next() {
		var page kioskcontent.Page
		if err := rows.Scan(&page.ID, &page.Title, &page.Content, &page.ImagePath,
			&page.CreatedAt, &page.UpdatedAt); err != nil {
			return nil, err
		}
		pages = append(pages, &page)
	}
	return pages, rows.Err()
}

// DeletePageCascade removes the page row and all of its attachment rows in
// one transaction.
func (r *Repository) DeletePageCascade(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM page_attachments WHERE page_id = ?", id); err != nil {
		return fmt.Errorf("error deleting attachments: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting page: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kioskcontent.ErrPageNotFound
	}

	return tx.Commit()
}

// Attachment operations

func (r *Repository) CreateAttachment(ctx context.Context, attachment *kioskcontent.Attachment) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO page_attachments (page_id, file_path, title) VALUES (?, ?, ?)",
		attachment.PageID, attachment.FilePath, attachment.Title)
	if err != nil {
		return fmt.Errorf("error creating attachment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading attachment id: %w", err)
	}
	attachment.ID = id
	return nil
}

func (r *Repository) GetAttachment(ctx context.Context, id int64) (*kioskcontent.Attachment, error) {
	var attachment kioskcontent.Attachment
	err := r.db.QueryRowContext(ctx,
		"SELECT id, page_id, file_path, title FROM page_attachments WHERE id = ?",
		id).Scan(&attachment.ID, &attachment.PageID, &attachment.FilePath, &attachment.Title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kioskcontent.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *Repository) ListAttachments(ctx context.Context, pageID int64) ([]*kioskcontent.Attachment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, page_id, file_path, title FROM page_attachments WHERE page_id = ? ORDER BY id ASC",
		pageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*kioskcontent.Attachment
	for rows.Next() {
		var attachment kioskcontent.Attachment
		if err := rows.Scan(&attachment.ID, &attachment.PageID, &attachment.FilePath,
			&attachment.Title); err != nil {
			return nil, err
		}
		attachments = append(attachments, &attachment)
	}
	return attachments, rows.Err()
}

func (r *Repository) DeleteAttachment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM page_attachments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting attachment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kioskcontent.ErrAttachmentNotFound
	}
	return nil
}

// Button operations

func (r *Repository) CreateButton(ctx context.Context, button *kioskcontent.Button) error {
	now := time.Now()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO buttons (title, color, page_id, icon_path, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		button.Title, button.Color, button.PageID, button.IconPath, button.Position, now, now)
	if err != nil {
		return fmt.Errorf("error creating button: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading button id: %w", err)
	}
	button.ID = id
	button.CreatedAt = now
	button.UpdatedAt = now
	return nil
}

func (r *Repository) GetButton(ctx context.Context, id int64) (*kioskcontent.Button, error) {
	var button kioskcontent.Button
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, color, page_id, icon_path, position, created_at, updated_at FROM buttons WHERE id = ?",
		id).Scan(&button.ID, &button.Title, &button.Color, &button.PageID, &button.IconPath,
		&button.Position, &button.CreatedAt, &button.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kioskcontent.ErrButtonNotFound
		}
		return nil, err
	}
	return &button, nil
}

// UpdateButton applies the patch against a fixed set of updatable columns.
// Position is excluded: it only changes through Reorder.
func (r *Repository) UpdateButton(ctx context.Context, id int64, patch kioskcontent.ButtonPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now()}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *patch.Color)
	}
	if patch.Page.Set {
		sets = append(sets, "page_id = ?")
		args = append(args, patch.Page.ID)
	}
	if patch.IconPath != nil {
		sets = append(sets, "icon_path = ?")
		args = append(args, *patch.IconPath)
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE buttons SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("error updating button: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kioskcontent.ErrButtonNotFound
	}
	return nil
}

func (r *Repository) DeleteButton(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM buttons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("error deleting button: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return kioskcontent.ErrButtonNotFound
	}
	return nil
}

// Reorder applies all position assignments in one transaction so readers
// never observe a half-reordered list.
func (r *Repository) Reorder(ctx context.Context, assignments []kioskcontent.PositionAssignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, assignment := range assignments {
		res, err := tx.ExecContext(ctx,
			"UPDATE buttons SET position = ?, updated_at = ? WHERE id = ?",
			assignment.Position, now, assignment.ButtonID)
		if err != nil {
			return fmt.Errorf("error reordering button %d: %w", assignment.ButtonID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return kioskcontent.ErrButtonNotFound
		}
	}

	return tx.Commit()
}

func (r *Repository) ListButtons(ctx context.Context) ([]*kioskcontent.Button, error) {
	// Ascending id breaks position ties in insertion order.
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, color, page_id, icon_path, position, created_at, updated_at FROM buttons ORDER BY position ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buttons []*kioskcontent.Button
	for rows.Next() {
		var button kioskcontent.Button
		if err := rows.Scan(&button.ID, &button.Title, &button.Color, &button.PageID,
			&button.IconPath, &button.Position, &button.CreatedAt, &button.UpdatedAt); err != nil {
			return nil, err
		}
		buttons = append(buttons, &button)
	}
	return buttons, rows.Err()
}

func (r *Repository) UnlinkPage(ctx context.Context, pageID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE buttons SET page_id = NULL, updated_at = ? WHERE page_id = ?",
		time.Now(), pageID)
	if err != nil {
		return fmt.Errorf("error unlinking buttons: %w", err)
	}
	return nil
}
