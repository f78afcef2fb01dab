// Package apperr defines the error kinds shared by the store and its adapters.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalid       = errors.New("invalid")
	ErrIntegrity     = errors.New("structural integrity violation")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrRootFolder    = errors.New("root folder cannot be deleted")
)
