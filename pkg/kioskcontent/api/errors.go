package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/infokiosk/kiosk-content/pkg/kioskcontent"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, kioskcontent.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, kioskcontent.ErrPageNotFound),
		errors.Is(err, kioskcontent.ErrAttachmentNotFound),
		errors.Is(err, kioskcontent.ErrButtonNotFound),
		errors.Is(err, kioskcontent.ErrAssetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, kioskcontent.ErrFileTypeNotAllowed):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}
