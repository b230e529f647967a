package api

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

const maxUploadMemory = 32 << 20

// AdminHandler exposes the mutating surface. Mount it behind the session
// middleware so the service gate sees an authenticated principal.
type AdminHandler struct {
	svc kioskcontent.Service
}

func NewAdminHandler(svc kioskcontent.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/pages", h.CreatePage)
	r.Patch("/pages/{pageID}", h.UpdatePage)
	r.Delete("/pages/{pageID}", h.DeletePage)
	r.Delete("/attachments/{attachmentID}", h.DeleteAttachment)

	r.Post("/buttons", h.CreateButton)
	r.Patch("/buttons/{buttonID}", h.UpdateButton)
	r.Delete("/buttons/{buttonID}", h.DeleteButton)
	r.Post("/buttons/reorder", h.ReorderButtons)

	r.Post("/images", h.UploadEditorImage)

	return r
}

// formFile opens the first file uploaded under the given field, or nil when
// the field is absent or empty. Callers own the returned closer.
func formFile(r *http.Request, field string) (*kioskcontent.FileUpload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 || headers[0].Filename == "" {
		return nil, nil, nil
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, nil, err
	}
	return &kioskcontent.FileUpload{Name: headers[0].Filename, Reader: f}, f, nil
}

// formAttachments pairs the attachments field with its parallel titles field.
// A missing or short titles slice means the filename-derived title applies.
func formAttachments(r *http.Request) ([]kioskcontent.AttachmentUpload, []multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	headers := r.MultipartForm.File["attachments"]
	titles := r.MultipartForm.Value["attachment_titles"]

	var (
		uploads []kioskcontent.AttachmentUpload
		closers []multipart.File
	)
	for i, fh := range headers {
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			for _, c := range closers {
				c.Close()
			}
			return nil, nil, err
		}
		closers = append(closers, f)

		var title string
		if i < len(titles) {
			title = titles[i]
		}
		uploads = append(uploads, kioskcontent.AttachmentUpload{
			File:  kioskcontent.FileUpload{Name: fh.Filename, Reader: f},
			Title: title,
		})
	}
	return uploads, closers, nil
}

// formValue distinguishes an absent field from an empty one.
func formValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	vals, ok := r.MultipartForm.Value[field]
	if !ok || len(vals) == 0 {
		return nil
	}
	return &vals[0]
}

func (h *AdminHandler) CreatePage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	image, imageFile, err := formFile(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if imageFile != nil {
		defer imageFile.Close()
	}

	attachments, closers, err := formAttachments(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	page, err := h.svc.CreatePage(r.Context(), kioskcontent.CreatePageRequest{
		Title:       r.FormValue("title"),
		Content:     r.FormValue("content"),
		Image:       image,
		Attachments: attachments,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toPageResponse(page))
}

func (h *AdminHandler) UpdatePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "pageID")
	if err != nil {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	image, imageFile, err := formFile(r, "image")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if imageFile != nil {
		defer imageFile.Close()
	}

	attachments, closers, err := formAttachments(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	page, err := h.svc.UpdatePage(r.Context(), kioskcontent.UpdatePageRequest{
		PageID:      id,
		Title:       formValue(r, "title"),
		Content:     formValue(r, "content"),
		Image:       image,
		Attachments: attachments,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, toPageResponse(page))
}

func (h *AdminHandler) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "pageID")
	if err != nil {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeletePage(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "attachmentID")
	if err != nil {
		http.Error(w, "invalid attachment id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteAttachment(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parsePageRef turns the page_id form field into a reference patch. An
// absent field leaves the link untouched, an empty value clears it.
func parsePageRef(r *http.Request) (kioskcontent.PageRef, error) {
	raw := formValue(r, "page_id")
	if raw == nil {
		return kioskcontent.PageRef{}, nil
	}
	if *raw == "" {
		return kioskcontent.PageRef{Set: true}, nil
	}
	id, err := strconv.ParseInt(*raw, 10, 64)
	if err != nil {
		return kioskcontent.PageRef{}, err
	}
	return kioskcontent.PageRef{Set: true, ID: &id}, nil
}

func (h *AdminHandler) CreateButton(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	var pageID *int64
	if raw := r.FormValue("page_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid page id", http.StatusBadRequest)
			return
		}
		pageID = &id
	}

	icon, iconFile, err := formFile(r, "icon")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if iconFile != nil {
		defer iconFile.Close()
	}

	button, err := h.svc.CreateButton(r.Context(), kioskcontent.CreateButtonRequest{
		Title:  r.FormValue("title"),
		Color:  r.FormValue("color"),
		PageID: pageID,
		Icon:   icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toButtonResponse(button))
}

func (h *AdminHandler) UpdateButton(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "buttonID")
	if err != nil {
		http.Error(w, "invalid button id", http.StatusBadRequest)
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	pageRef, err := parsePageRef(r)
	if err != nil {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}

	icon, iconFile, err := formFile(r, "icon")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if iconFile != nil {
		defer iconFile.Close()
	}

	button, err := h.svc.UpdateButton(r.Context(), kioskcontent.UpdateButtonRequest{
		ButtonID: id,
		Title:    formValue(r, "title"),
		Color:    formValue(r, "color"),
		Page:     pageRef,
		Icon:     icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, toButtonResponse(button))
}

func (h *AdminHandler) DeleteButton(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "buttonID")
	if err != nil {
		http.Error(w, "invalid button id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteButton(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ReorderButtons(w http.ResponseWriter, r *http.Request) {
	var assignments []kioskcontent.PositionAssignment
	if err := json.NewDecoder(r.Body).Decode(&assignments); err != nil {
		http.Error(w, "invalid reorder payload", http.StatusBadRequest)
		return
	}

	if err := h.svc.ReorderButtons(r.Context(), assignments); err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"status": "ok"})
}

type editorImageResponse struct {
	Location string `json:"location"`
}

// UploadEditorImage stores an inline editor image and answers with the
// URL the editor should embed.
func (h *AdminHandler) UploadEditorImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	upload, f, err := formFile(r, "file")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if upload == nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	name, err := h.svc.SaveEditorImage(r.Context(), *upload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, editorImageResponse{Location: "/uploads/" + name})
}
