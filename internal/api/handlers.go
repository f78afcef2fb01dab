package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/notestore"
)

// Handler holds API route handlers.
type Handler struct {
	store *notestore.Store
	now   func() time.Time
}

// NewHandler creates a new Handler.
func NewHandler(store *notestore.Store) *Handler {
	return &Handler{store: store, now: time.Now}
}

func etag(sum string) string {
	return `"` + sum + `"`
}

// GetData handles GET /api/data: the whole aggregate with its checksum as ETag.
func (h *Handler) GetData(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if snap.Checksum != "" {
		w.Header().Set("ETag", etag(snap.Checksum))
	}
	w.Header().Set("X-Data-Source", string(snap.Source))
	writeJSON(w, http.StatusOK, snap.Data)
}

// PutData handles PUT /api/data: replace the aggregate, guarded by If-Match.
func (h *Handler) PutData(w http.ResponseWriter, r *http.Request) {
	var data models.AppData
	if err := decodeJSON(w, r, &data); err != nil {
		writeError(w, err)
		return
	}
	snap, err := h.store.Replace(r.Context(), &data, r.Header.Get("If-Match"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("ETag", etag(snap.Checksum))
	writeJSON(w, http.StatusOK, snap.Data)
}

// Integrity handles GET /api/integrity.
func (h *Handler) Integrity(w http.ResponseWriter, r *http.Request) {
	issues, err := h.store.Check(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"issues": issues})
}

// ListNotes handles GET /api/notes?folder=&tag=&q=&limit=.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	snap, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	notes := models.Search(snap.Data.Notes, models.SearchOptions{
		Query:    q.Get("q"),
		FolderID: q.Get("folder"),
		Tag:      q.Get("tag"),
		Limit:    limit,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"notes": summarize(notes),
		"total": len(notes),
	})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.store.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	folderID := req.FolderID
	if folderID == "" {
		folderID = models.RootFolderID
	}
	note := models.NewNote(folderID, h.now())
	if req.Title != "" {
		note.Title = req.Title
	}
	for _, tag := range req.Tags {
		note.AddTag(tag)
	}
	if err := h.store.AddNote(r.Context(), note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.store.UpdateNote(r.Context(), chi.URLParam(r, "id"), notestore.NotePatch{
		Title:    req.Title,
		Nodes:    req.Nodes,
		FolderID: req.FolderID,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTag handles POST /api/notes/{id}/tags.
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		n.AddTag(req.Tag)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// RemoveTag handles DELETE /api/notes/{id}/tags/{tag}.
func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	note, err := h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		if !n.RemoveTag(tag) {
			return fmt.Errorf("tag %q: %w", tag, apperr.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Search handles GET /api/search?q=&body=&limit=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	body, _ := strconv.ParseBool(q.Get("body"))

	snap, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	results := models.Search(snap.Data.Notes, models.SearchOptions{Query: query, Body: body, Limit: limit})
	writeJSON(w, http.StatusOK, map[string]any{
		"results": summarize(results),
	})
}

func notFoundIf(missing bool, what, id string) error {
	if missing {
		return fmt.Errorf("%s %s: %w", what, id, apperr.ErrNotFound)
	}
	return nil
}
