package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/blocks"
)

// Bodies carry base64 payloads, so the limit matches the upload limit.
const maxBodyBytes = 50 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

// writeBlock encodes a single block with its type discriminator.
func writeBlock(w http.ResponseWriter, status int, b blocks.Block) {
	raw, err := blocks.Marshal(b)
	if err != nil {
		writeError(w, fmt.Errorf("encode block: %w", err))
		return
	}
	writeJSON(w, status, json.RawMessage(raw))
}

type errResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// decodeJSON reads a size-limited JSON body into v and runs its ozzo
// validation rules. Failures wrap apperr.ErrInvalid.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", apperr.ErrInvalid)
	}
	if vv, ok := v.(validation.Validatable); ok {
		if err := vv.Validate(); err != nil {
			return fmt.Errorf("%s: %w", err.Error(), apperr.ErrInvalid)
		}
	}
	return nil
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrRootFolder):
		writeJSON(w, http.StatusConflict, errorBody(apperr.ErrRootFolder.Error()))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusPreconditionFailed, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrQuotaExceeded):
		writeJSON(w, http.StatusInsufficientStorage, errorBody("storage quota exceeded, change not saved"))
	case errors.Is(err, apperr.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrIntegrity):
		slog.Error("integrity violation", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
