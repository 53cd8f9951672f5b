package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/solarbrone/solar-store/internal/storage/blobdir"
)

type uploadResponse struct {
	URL string `json:"url"`
}

// upload accepts one multipart image under the "file" field and returns its
// public URL.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		respondError(w, http.StatusNotImplemented, "uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(blobdir.MaxSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, blobdir.ErrEmptyFile.Error())
		return
	}
	defer file.Close()

	url, err := h.uploads.Save(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, uploadResponse{URL: url})
	case errors.Is(err, blobdir.ErrEmptyFile),
		errors.Is(err, blobdir.ErrTooLarge),
		errors.Is(err, blobdir.ErrBadType),
		errors.Is(err, blobdir.ErrBadFilename):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondDomainError(w, r, err)
	}
}
