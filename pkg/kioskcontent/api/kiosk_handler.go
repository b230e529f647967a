package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

// KioskHandler serves the read-only surface consumed by kiosk displays.
// Nothing here requires a session.
type KioskHandler struct {
	svc kioskcontent.Service
}

func NewKioskHandler(svc kioskcontent.Service) *KioskHandler {
	return &KioskHandler{svc: svc}
}

func (h *KioskHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/buttons", h.ListButtons)
	r.Get("/pages", h.ListPages)
	r.Get("/pages/{pageID}", h.GetPage)
	r.Get("/pages/{pageID}/attachments", h.ListAttachments)
	r.Get("/uploads/{name}", h.ServeAsset)

	return r
}

type pageResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	ImagePath *string `json:"image_path,omitempty"`
}

type attachmentResponse struct {
	ID       int64  `json:"id"`
	PageID   int64  `json:"page_id"`
	FilePath string `json:"file_path"`
	Title    string `json:"title"`
}

type buttonResponse struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Color    string  `json:"color"`
	PageID   *int64  `json:"page_id,omitempty"`
	IconPath *string `json:"icon_path,omitempty"`
	Position int     `json:"position"`
}

func toPageResponse(p *kioskcontent.Page) pageResponse {
	return pageResponse{ID: p.ID, Title: p.Title, Content: p.Content, ImagePath: p.ImagePath}
}

func toAttachmentResponse(a *kioskcontent.Attachment) attachmentResponse {
	return attachmentResponse{ID: a.ID, PageID: a.PageID, FilePath: a.FilePath, Title: a.Title}
}

func toButtonResponse(b *kioskcontent.Button) buttonResponse {
	return buttonResponse{ID: b.ID, Title: b.Title, Color: b.Color, PageID: b.PageID, IconPath: b.IconPath, Position: b.Position}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func (h *KioskHandler) ListButtons(w http.ResponseWriter, r *http.Request) {
	buttons, err := h.svc.ListButtons(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]buttonResponse, 0, len(buttons))
	for _, b := range buttons {
		resp = append(resp, toButtonResponse(b))
	}
	render.JSON(w, r, resp)
}

func (h *KioskHandler) ListPages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.ListPages(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]pageResponse, 0, len(pages))
	for _, p := range pages {
		resp = append(resp, toPageResponse(p))
	}
	render.JSON(w, r, resp)
}

func (h *KioskHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "pageID")
	if err != nil {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}

	page, err := h.svc.GetPage(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, toPageResponse(page))
}

func (h *KioskHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "pageID")
	if err != nil {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}

	attachments, err := h.svc.ListAttachments(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := make([]attachmentResponse, 0, len(attachments))
	for _, a := range attachments {
		resp = append(resp, toAttachmentResponse(a))
	}
	render.JSON(w, r, resp)
}

// ServeAsset streams a stored file. Content-Type comes from the stored
// extension since the store keeps no media type of its own.
func (h *KioskHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	rc, info, err := h.svc.OpenAsset(r.Context(), name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(filepath.Ext(info.Name)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}

	if _, err := io.Copy(w, rc); err != nil {
		slog.Error("asset streaming interrupted", "name", name, "error", err)
	}
}
