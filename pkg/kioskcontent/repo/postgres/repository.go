// Package postgres persists kiosk content in PostgreSQL through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

// Repository implements kioskcontent.PageRepository and
// kioskcontent.ButtonRepository using PostgreSQL. It holds the pool rather
// than a bare connection so multi-statement operations can open their own
// transactions.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository from a connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Migrate creates the schema if it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS pages (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    image_path TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS page_attachments (
    id BIGSERIAL PRIMARY KEY,
    page_id BIGINT NOT NULL REFERENCES pages(id),
    file_path TEXT NOT NULL,
    title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS buttons (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '',
    page_id BIGINT REFERENCES pages(id),
    icon_path TEXT,
    position INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`)
	return err
}

// handleError maps driver errors to domain errors where possible.
func handleError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry in %s", operation)
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found in %s", operation)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}

// Page operations

func (r *Repository) CreatePage(ctx context.Context, page *kioskcontent.Page) error {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
        INSERT INTO pages (title, content, image_path, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		page.Title, page.Content, page.ImagePath, now, now).Scan(&page.ID)
	if err != nil {
		return handleError("create page", err)
	}
	page.CreatedAt = now
	page.UpdatedAt = now
	return nil
}

func (r *Repository) GetPage(ctx context.Context, id int64) (*kioskcontent.Page, error) {
	var page kioskcontent.Page
	err := r.pool.QueryRow(ctx, `
        SELECT id, title, content, image_path, created_at, updated_at
        FROM pages WHERE id = $1`, id).Scan(
		&page.ID, &page.Title, &page.Content, &page.ImagePath, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kioskcontent.ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

func (r *Repository) UpdatePage(ctx context.Context, id int64, patch kioskcontent.PagePatch) error {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now()}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Content != nil {
		args = append(args, *patch.Content)
		sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
	}
	if patch.ImagePath != nil {
		args = append(args, *patch.ImagePath)
		sets = append(sets, fmt.Sprintf("image_path = $%d", len(args)))
	}
	args = append(args, id)

	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf("UPDATE pages SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return handleError("update page", err)
	}
	if tag.RowsAffected() == 0 {
		return kioskcontent.ErrPageNotFound
	}
	return nil
}

func (r *Repository) ListPages(ctx context.Context) ([]*kioskcontent.Page, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, title, content, image_path, created_at, updated_at
        FROM pages ORDER BY id DESC`)
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

func (r *Repository) DeletePageCascade(ctx context.Context, id int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM page_attachments WHERE page_id = $1", id); err != nil {
		return handleError("delete attachments", err)
	}

	tag, err := tx.Exec(ctx, "DELETE FROM pages WHERE id = $1", id)
	if err != nil {
		return handleError("delete page", err)
	}
	if tag.RowsAffected() == 0 {
		return kioskcontent.ErrPageNotFound
	}

	return tx.Commit(ctx)
}

// Attachment operations

func (r *Repository) CreateAttachment(ctx context.Context, attachment *kioskcontent.Attachment) error {
	err := r.pool.QueryRow(ctx, `
        INSERT INTO page_attachments (page_id, file_path, title)
        VALUES ($1, $2, $3) RETURNING id`,
		attachment.PageID, attachment.FilePath, attachment.Title).Scan(&attachment.ID)
	if err != nil {
		return handleError("create attachment", err)
	}
	return nil
}

func (r *Repository) GetAttachment(ctx context.Context, id int64) (*kioskcontent.Attachment, error) {
	var attachment kioskcontent.Attachment
	err := r.pool.QueryRow(ctx, `
        SELECT id, page_id, file_path, title FROM page_attachments WHERE id = $1`, id).Scan(
		&attachment.ID, &attachment.PageID, &attachment.FilePath, &attachment.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kioskcontent.ErrAttachmentNotFound
		}
		return nil, err
	}
	return &attachment, nil
}

func (r *Repository) ListAttachments(ctx context.Context, pageID int64) ([]*kioskcontent.Attachment, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, page_id, file_path, title FROM page_attachments
        WHERE page_id = $1 ORDER BY id ASC`, pageID)
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
	tag, err := r.pool.Exec(ctx, "DELETE FROM page_attachments WHERE id = $1", id)
	if err != nil {
		return handleError("delete attachment", err)
	}
	if tag.RowsAffected() == 0 {
		return kioskcontent.ErrAttachmentNotFound
	}
	return nil
}

// Button operations

func (r *Repository) CreateButton(ctx context.Context, button *kioskcontent.Button) error {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
        INSERT INTO buttons (title, color, page_id, icon_path, position, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		button.Title, button.Color, button.PageID, button.IconPath, button.Position, now, now).Scan(&button.ID)
	if err != nil {
		return handleError("create button", err)
	}
	button.CreatedAt = now
	button.UpdatedAt = now
	return nil
}

func (r *Repository) GetButton(ctx context.Context, id int64) (*kioskcontent.Button, error) {
	var button kioskcontent.Button
	err := r.pool.QueryRow(ctx, `
        SELECT id, title, color, page_id, icon_path, position, created_at, updated_at
        FROM buttons WHERE id = $1`, id).Scan(
		&button.ID, &button.Title, &button.Color, &button.PageID, &button.IconPath,
		&button.Position, &button.CreatedAt, &button.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kioskcontent.ErrButtonNotFound
		}
		return nil, err
	}
	return &button, nil
}

func (r *Repository) UpdateButton(ctx context.Context, id int64, patch kioskcontent.ButtonPatch) error {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now()}

	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if patch.Color != nil {
		args = append(args, *patch.Color)
		sets = append(sets, fmt.Sprintf("color = $%d", len(args)))
	}
	if patch.Page.Set {
		args = append(args, patch.Page.ID)
		sets = append(sets, fmt.Sprintf("page_id = $%d", len(args)))
	}
	if patch.IconPath != nil {
		args = append(args, *patch.IconPath)
		sets = append(sets, fmt.Sprintf("icon_path = $%d", len(args)))
	}
	args = append(args, id)

	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf("UPDATE buttons SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return handleError("update button", err)
	}
	if tag.RowsAffected() == 0 {
		return kioskcontent.ErrButtonNotFound
	}
	return nil
}

func (r *Repository) DeleteButton(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM buttons WHERE id = $1", id)
	if err != nil {
		return handleError("delete button", err)
	}
	if tag.RowsAffected() == 0 {
		return kioskcontent.ErrButtonNotFound
	}
	return nil
}

func (r *Repository) Reorder(ctx context.Context, assignments []kioskcontent.PositionAssignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	for _, assignment := range assignments {
		tag, err := tx.Exec(ctx,
			"UPDATE buttons SET position = $1, updated_at = $2 WHERE id = $3",
			assignment.Position, now, assignment.ButtonID)
		if err != nil {
			return handleError("reorder buttons", err)
		}
		if tag.RowsAffected() == 0 {
			return kioskcontent.ErrButtonNotFound
		}
	}

	return tx.Commit(ctx)
}

func (r *Repository) ListButtons(ctx context.Context) ([]*kioskcontent.Button, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, title, color, page_id, icon_path, position, created_at, updated_at
        FROM buttons ORDER BY position ASC, id ASC`)
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
	_, err := r.pool.Exec(ctx,
		"UPDATE buttons SET page_id = NULL, updated_at = $1 WHERE page_id = $2",
		time.Now(), pageID)
	if err != nil {
		return handleError("unlink buttons", err)
	}
	return nil
}

// User operations

// FindPasswordHash returns the stored password hash for a username.
func (r *Repository) FindPasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := r.pool.QueryRow(ctx,
		"SELECT password_hash FROM users WHERE username = $1", username).Scan(&hash)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// SeedUser inserts a user if the username is not taken yet.
func (r *Repository) SeedUser(ctx context.Context, username, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO users (username, password_hash) VALUES ($1, $2)
        ON CONFLICT (username) DO NOTHING`, username, passwordHash)
	if err != nil {
		return handleError("seed user", err)
	}
	return nil
}
