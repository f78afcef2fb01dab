package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
	"github.com/starford/folio/internal/models"
)

const maxUploadBytes = 50 << 20 // 50 MB

// attachmentName keeps only the base name of an uploaded file.
func attachmentName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(strings.ReplaceAll(name, `\`, "/")))
	if base == "" || base == "." || base == "/" || base == ".." {
		return "", fmt.Errorf("invalid filename %q: %w", name, apperr.ErrInvalid)
	}
	return base, nil
}

// Upload handles POST /api/notes/{id}/attachments (multipart/form-data,
// field "file"; optional "alt", "duration" and "index").
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name, err := attachmentName(header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("file is empty"))
		return
	}

	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)
	b := blocks.FromPayload(name, data, r.FormValue("alt"), duration)

	index := -1
	if v := r.FormValue("index"); v != "" {
		if index, err = strconv.Atoi(v); err != nil || index < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("index must be a non-negative integer"))
			return
		}
	}

	_, err = h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		if index >= 0 {
			n.InsertBlock(index, b)
		} else {
			n.AppendBlock(b)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeBlock(w, http.StatusCreated, b)
}
