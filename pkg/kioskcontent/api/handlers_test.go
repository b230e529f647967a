package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
	"github.com/infokiosk/kiosk-content/pkg/kioskcontent/repo/memory"
	memorystorage "github.com/infokiosk/kiosk-content/pkg/kioskcontent/storage/memory"
)

func setupRouter(t *testing.T) (chi.Router, kioskcontent.Service) {
	t.Helper()

	repo := memory.New()
	store := memorystorage.New()
	svc, err := kioskcontent.New(
		kioskcontent.WithPageRepository(repo),
		kioskcontent.WithButtonRepository(repo),
		kioskcontent.WithAssetStore(store),
	)
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/admin", NewAdminHandler(svc).Routes())
	r.Mount("/", NewKioskHandler(svc).Routes())
	return r, svc
}

type multipartBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newMultipartBody() *multipartBody {
	b := &multipartBody{}
	b.writer = multipart.NewWriter(&b.buf)
	return b
}

func (b *multipartBody) field(name, value string) *multipartBody {
	_ = b.writer.WriteField(name, value)
	return b
}

func (b *multipartBody) file(field, filename, content string) *multipartBody {
	w, _ := b.writer.CreateFormFile(field, filename)
	_, _ = io.Copy(w, strings.NewReader(content))
	return b
}

func (b *multipartBody) request(method, target string) *http.Request {
	_ = b.writer.Close()
	r := httptest.NewRequest(method, target, &b.buf)
	r.Header.Set("Content-Type", b.writer.FormDataContentType())
	return r
}

func TestCreatePageEndpoint(t *testing.T) {
	router, svc := setupRouter(t)

	req := newMultipartBody().
		field("title", "Opening Hours").
		field("content", "<p>Daily</p>").
		field("attachment_titles", "Prices").
		file("image", "hero.png", "png").
		file("attachments", "price list.pdf", "pdf").
		request(http.MethodPost, "/admin/pages")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		ID        int64   `json:"id"`
		Title     string  `json:"title"`
		ImagePath *string `json:"image_path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Opening Hours", resp.Title)
	require.NotNil(t, resp.ImagePath)
	assert.Equal(t, "hero.png", *resp.ImagePath)

	attachments, err := svc.ListAttachments(context.Background(), resp.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "Prices", attachments[0].Title)
}

func TestCreatePageRejectsBadFileType(t *testing.T) {
	router, _ := setupRouter(t)

	req := newMultipartBody().
		field("title", "Bad").
		file("image", "virus.exe", "mz").
		request(http.MethodPost, "/admin/pages")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePageEndpoint(t *testing.T) {
	router, svc := setupRouter(t)

	page, err := svc.CreatePage(context.Background(), kioskcontent.CreatePageRequest{
		Title:   "Before",
		Content: "<p>body</p>",
	})
	require.NoError(t, err)

	req := newMultipartBody().
		field("title", "After").
		request(http.MethodPatch, fmt.Sprintf("/admin/pages/%d", page.ID))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.GetPage(context.Background(), page.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", got.Title)
	assert.Equal(t, "<p>body</p>", got.Content)
}

func TestDeletePageEndpoint(t *testing.T) {
	router, svc := setupRouter(t)

	page, err := svc.CreatePage(context.Background(), kioskcontent.CreatePageRequest{Title: "Doomed"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/pages/%d", page.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// A second delete is a 404.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/admin/pages/%d", page.ID), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestButtonEndpoints(t *testing.T) {
	router, svc := setupRouter(t)

	page, err := svc.CreatePage(context.Background(), kioskcontent.CreatePageRequest{Title: "Target"})
	require.NoError(t, err)

	// Create linked to the page, with an icon.
	req := newMultipartBody().
		field("title", "Visit").
		field("color", "#ff0000").
		field("page_id", fmt.Sprintf("%d", page.ID)).
		file("icon", "arrow.svg", "<svg/>").
		request(http.MethodPost, "/admin/buttons")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID       int64   `json:"id"`
		PageID   *int64  `json:"page_id"`
		IconPath *string `json:"icon_path"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.PageID)
	assert.Equal(t, page.ID, *created.PageID)
	require.NotNil(t, created.IconPath)
	assert.Equal(t, "arrow.svg", *created.IconPath)

	// Empty page_id clears the link.
	req = newMultipartBody().
		field("page_id", "").
		request(http.MethodPatch, fmt.Sprintf("/admin/buttons/%d", created.ID))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	buttons, err := svc.ListButtons(context.Background())
	require.NoError(t, err)
	require.Len(t, buttons, 1)
	assert.Nil(t, buttons[0].PageID)
	assert.Equal(t, "Visit", buttons[0].Title)
}

func TestReorderEndpoint(t *testing.T) {
	router, svc := setupRouter(t)
	ctx := context.Background()

	b1, err := svc.CreateButton(ctx, kioskcontent.CreateButtonRequest{Title: "One"})
	require.NoError(t, err)
	b2, err := svc.CreateButton(ctx, kioskcontent.CreateButtonRequest{Title: "Two"})
	require.NoError(t, err)

	payload := fmt.Sprintf(`[{"id": %d, "position": 5}, {"id": %d, "position": 1}]`, b1.ID, b2.ID)
	req := httptest.NewRequest(http.MethodPost, "/admin/buttons/reorder", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	buttons, err := svc.ListButtons(ctx)
	require.NoError(t, err)
	require.Len(t, buttons, 2)
	assert.Equal(t, b2.ID, buttons[0].ID)

	// Unknown id in the batch.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/admin/buttons/reorder", strings.NewReader(`[{"id": 404, "position": 1}]`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEditorImageEndpoint(t *testing.T) {
	router, _ := setupRouter(t)

	req := newMultipartBody().
		file("file", "inline image.png", "png").
		request(http.MethodPost, "/admin/images")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Location string `json:"location"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/uploads/inline_image.png", resp.Location)
}

func TestKioskReadEndpoints(t *testing.T) {
	router, svc := setupRouter(t)
	ctx := context.Background()

	page, err := svc.CreatePage(ctx, kioskcontent.CreatePageRequest{
		Title:   "Info",
		Content: "<p>hello</p>",
		Attachments: []kioskcontent.AttachmentUpload{
			{File: kioskcontent.FileUpload{Name: "guide.pdf", Reader: strings.NewReader("pdf")}},
		},
	})
	require.NoError(t, err)

	_, err = svc.CreateButton(ctx, kioskcontent.CreateButtonRequest{Title: "Info", PageID: &page.ID})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/buttons", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var buttons []struct {
		Title  string `json:"title"`
		PageID *int64 `json:"page_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buttons))
	require.Len(t, buttons, 1)
	assert.Equal(t, "Info", buttons[0].Title)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/pages/%d", page.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/pages/%d/attachments", page.ID), nil))
	require.Equal(t, http.StatusOK, w.Code)

	var attachments []struct {
		FilePath string `json:"file_path"`
		Title    string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &attachments))
	require.Len(t, attachments, 1)
	assert.Equal(t, "guide", attachments[0].Title)

	// Missing page.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pages/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeAssetEndpoint(t *testing.T) {
	router, svc := setupRouter(t)

	_, err := svc.SaveEditorImage(context.Background(), kioskcontent.FileUpload{
		Name: "logo.png", Reader: strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/logo.png", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/uploads/ghost.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
