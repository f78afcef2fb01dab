package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
	"github.com/starford/folio/internal/models"
)

// AddBlock handles POST /api/notes/{id}/blocks.
func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	var req AddBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := blocks.NewChecked(blocks.Kind(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	_, err = h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		if req.Index != nil {
			n.InsertBlock(*req.Index, b)
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

// ReplaceBlock handles PUT /api/notes/{id}/blocks/{blockID}. The body is a
// complete block; its kind must match the stored block.
func (h *Handler) ReplaceBlock(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "blockID")
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	b, err := blocks.Unmarshal(raw)
	if err != nil {
		writeError(w, fmt.Errorf("%s: %w", err.Error(), apperr.ErrInvalid))
		return
	}
	blocks.SetID(b, blockID)
	if t, ok := b.(*blocks.Table); ok {
		if err := t.Validate(); err != nil {
			writeError(w, fmt.Errorf("%s: %w", err.Error(), apperr.ErrInvalid))
			return
		}
	}

	_, err = h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		return n.ReplaceBlock(b)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeBlock(w, http.StatusOK, b)
}

// DeleteBlock handles DELETE /api/notes/{id}/blocks/{blockID}.
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "blockID")
	_, err := h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		return notFoundIf(!n.RemoveBlock(blockID), "block", blockID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// EditBlock handles POST /api/notes/{id}/blocks/{blockID}/ops: one in-place
// edit of a table, checklist or list.
func (h *Handler) EditBlock(w http.ResponseWriter, r *http.Request) {
	var req BlockOpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	blockID := chi.URLParam(r, "blockID")
	var edited blocks.Block
	_, err := h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		b := n.Block(blockID)
		if b == nil {
			return fmt.Errorf("block %s: %w", blockID, apperr.ErrNotFound)
		}
		if err := blocks.Apply(b, req.op()); err != nil {
			return err
		}
		edited = b
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeBlock(w, http.StatusOK, edited)
}

// DuplicateBlock handles POST /api/notes/{id}/blocks/{blockID}/duplicate.
func (h *Handler) DuplicateBlock(w http.ResponseWriter, r *http.Request) {
	var dup blocks.Block
	_, err := h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		var err error
		dup, err = n.DuplicateBlock(chi.URLParam(r, "blockID"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeBlock(w, http.StatusCreated, dup)
}

// MoveBlock handles POST /api/notes/{id}/blocks/move. Moving a block onto
// its own index returns the note unchanged.
func (h *Handler) MoveBlock(w http.ResponseWriter, r *http.Request) {
	var req MoveBlockRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.From == req.To {
		note, err := h.store.GetNote(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		if req.From >= len(note.Nodes) {
			writeError(w, fmt.Errorf("move %d -> %d in %d blocks: %w", req.From, req.To, len(note.Nodes), apperr.ErrInvalid))
			return
		}
		writeJSON(w, http.StatusOK, note)
		return
	}
	note, err := h.store.MutateNote(r.Context(), chi.URLParam(r, "id"), func(n *models.Note) error {
		if !n.ReorderBlocks(req.From, req.To) {
			return fmt.Errorf("move %d -> %d in %d blocks: %w", req.From, req.To, len(n.Nodes), apperr.ErrInvalid)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
