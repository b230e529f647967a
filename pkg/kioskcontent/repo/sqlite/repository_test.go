package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
	"github.com/infokiosk/kiosk-content/pkg/kioskcontent/repo/sqlite"
)

func setupRepo(t *testing.T) *sqlite.Repository {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlite.Migrate(db))
	return sqlite.NewRepository(db)
}

func TestSQLitePages(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	image := "hero.png"
	page := &kioskcontent.Page{Title: "Welcome", Content: "<p>hi</p>", ImagePath: &image}
	require.NoError(t, repo.CreatePage(ctx, page))
	assert.NotZero(t, page.ID)

	got, err := repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", got.Title)
	require.NotNil(t, got.ImagePath)
	assert.Equal(t, "hero.png", *got.ImagePath)

	// Patch only the content; title and image stay.
	content := "<p>updated</p>"
	require.NoError(t, repo.UpdatePage(ctx, page.ID, kioskcontent.PagePatch{Content: &content}))

	got, err = repo.GetPage(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", got.Title)
	assert.Equal(t, "<p>updated</p>", got.Content)

	second := &kioskcontent.Page{Title: "Second"}
	require.NoError(t, repo.CreatePage(ctx, second))
	assert.Nil(t, second.ImagePath)

	pages, err := repo.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, second.ID, pages[0].ID)

	_, err = repo.GetPage(ctx, 999)
	assert.ErrorIs(t, err, kioskcontent.ErrPageNotFound)
	err = repo.UpdatePage(ctx, 999, kioskcontent.PagePatch{Content: &content})
	assert.ErrorIs(t, err, kioskcontent.ErrPageNotFound)
}

func TestSQLiteAttachmentsAndCascade(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	page := &kioskcontent.Page{Title: "Docs"}
	require.NoError(t, repo.CreatePage(ctx, page))

	a := &kioskcontent.Attachment{PageID: page.ID, FilePath: "a.pdf", Title: "a"}
	b := &kioskcontent.Attachment{PageID: page.ID, FilePath: "b.pdf", Title: "b"}
	require.NoError(t, repo.CreateAttachment(ctx, a))
	require.NoError(t, repo.CreateAttachment(ctx, b))

	attachments, err := repo.ListAttachments(ctx, page.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 2)
	assert.Equal(t, a.ID, attachments[0].ID)

	require.NoError(t, repo.DeleteAttachment(ctx, a.ID))
	err = repo.DeleteAttachment(ctx, a.ID)
	assert.ErrorIs(t, err, kioskcontent.ErrAttachmentNotFound)

	// Attachment referencing a missing page violates the foreign key.
	err = repo.CreateAttachment(ctx, &kioskcontent.Attachment{PageID: 999, FilePath: "x.pdf", Title: "x"})
	assert.Error(t, err)

	require.NoError(t, repo.DeletePageCascade(ctx, page.ID))

	_, err = repo.GetPage(ctx, page.ID)
	assert.ErrorIs(t, err, kioskcontent.ErrPageNotFound)
	attachments, err = repo.ListAttachments(ctx, page.ID)
	require.NoError(t, err)
	assert.Empty(t, attachments)

	err = repo.DeletePageCascade(ctx, page.ID)
	assert.ErrorIs(t, err, kioskcontent.ErrPageNotFound)
}

func TestSQLiteButtons(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	page := &kioskcontent.Page{Title: "Target"}
	require.NoError(t, repo.CreatePage(ctx, page))

	icon := "icon.svg"
	button := &kioskcontent.Button{Title: "Go", Color: "#fff", PageID: &page.ID, IconPath: &icon}
	require.NoError(t, repo.CreateButton(ctx, button))

	got, err := repo.GetButton(ctx, button.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PageID)
	assert.Equal(t, page.ID, *got.PageID)

	// Patch title only.
	title := "Visit"
	require.NoError(t, repo.UpdateButton(ctx, button.ID, kioskcontent.ButtonPatch{Title: &title}))
	got, err = repo.GetButton(ctx, button.ID)
	require.NoError(t, err)
	assert.Equal(t, "Visit", got.Title)
	assert.Equal(t, "#fff", got.Color)

	// Clear the page link.
	require.NoError(t, repo.UpdateButton(ctx, button.ID, kioskcontent.ButtonPatch{Page: kioskcontent.PageRef{Set: true}}))
	got, err = repo.GetButton(ctx, button.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PageID)

	require.NoError(t, repo.DeleteButton(ctx, button.ID))
	err = repo.DeleteButton(ctx, button.ID)
	assert.ErrorIs(t, err, kioskcontent.ErrButtonNotFound)
}

func TestSQLiteReorderAndUnlink(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	page := &kioskcontent.Page{Title: "Target"}
	require.NoError(t, repo.CreatePage(ctx, page))

	b1 := &kioskcontent.Button{Title: "One", PageID: &page.ID}
	b2 := &kioskcontent.Button{Title: "Two"}
	b3 := &kioskcontent.Button{Title: "Three"}
	require.NoError(t, repo.CreateButton(ctx, b1))
	require.NoError(t, repo.CreateButton(ctx, b2))
	require.NoError(t, repo.CreateButton(ctx, b3))

	// All at position zero: creation order.
	buttons, err := repo.ListButtons(ctx)
	require.NoError(t, err)
	require.Len(t, buttons, 3)
	assert.Equal(t, b1.ID, buttons[0].ID)

	// b3 is untouched at position 0 and therefore sorts first.
	require.NoError(t, repo.Reorder(ctx, []kioskcontent.PositionAssignment{
		{ButtonID: b1.ID, Position: 5},
		{ButtonID: b2.ID, Position: 1},
	}))

	buttons, err = repo.ListButtons(ctx)
	require.NoError(t, err)
	assert.Equal(t, b3.ID, buttons[0].ID)
	assert.Equal(t, b2.ID, buttons[1].ID)
	assert.Equal(t, b1.ID, buttons[2].ID)

	// Unknown id rolls the whole batch back.
	err = repo.Reorder(ctx, []kioskcontent.PositionAssignment{
		{ButtonID: b2.ID, Position: 42},
		{ButtonID: 404, Position: 1},
	})
	assert.ErrorIs(t, err, kioskcontent.ErrButtonNotFound)

	buttons, err = repo.ListButtons(ctx)
	require.NoError(t, err)
	assert.Equal(t, b3.ID, buttons[0].ID)
	assert.Equal(t, b2.ID, buttons[1].ID)
	assert.Equal(t, 1, buttons[1].Position)

	require.NoError(t, repo.UnlinkPage(ctx, page.ID))
	got, err := repo.GetButton(ctx, b1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PageID)
}

func TestSQLiteUsers(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SeedUser(ctx, "admin", "hash-1"))

	hash, err := repo.FindPasswordHash(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)

	// Seeding again does not overwrite.
	require.NoError(t, repo.SeedUser(ctx, "admin", "hash-2"))
	hash, err = repo.FindPasswordHash(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)

	exists, err := repo.UserExists(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.UserExists(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindPasswordHash(ctx, "ghost")
	assert.Error(t, err)
}
