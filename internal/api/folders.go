package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/notestore"
)

// ListFolders handles GET /api/folders. With ?tree=true the folders come
// back nested with note counts.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if r.URL.Query().Get("tree") == "true" {
		writeJSON(w, http.StatusOK, map[string]any{"tree": models.FolderTree(snap.Data)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": snap.Data.Folders})
}

// CreateFolder handles POST /api/folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	folder, err := h.store.CreateFolder(r.Context(), req.Name, req.ParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// UpdateFolder handles PATCH /api/folders/{id}.
func (h *Handler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	var req UpdateFolderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	folder, err := h.store.UpdateFolder(r.Context(), chi.URLParam(r, "id"), notestore.FolderPatch{
		Name:     req.Name,
		Color:    req.Color,
		ParentID: req.ParentID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, folder)
}

// DeleteFolder handles DELETE /api/folders/{id}. Notes in the removed
// subtree move to the root folder.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := notestore.GuardDeleteFolder(id); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.store.DeleteFolder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// FolderPath handles GET /api/folders/{id}/path.
func (h *Handler) FolderPath(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	path, err := models.BreadcrumbPath(chi.URLParam(r, "id"), snap.Data.Folders)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path})
}
