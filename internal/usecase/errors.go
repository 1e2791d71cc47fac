package usecase

import (
	"errors"

	"github.com/google/uuid"
)

// Validation codes.
const (
	CodeRequired             = "required"
	CodeInvalid              = "invalid"
	CodeUnsupportedMediaType = "unsupported_media_type"
	CodePayloadTooLarge      = "payload_too_large"
	CodeTooManyFiles         = "too_many_files"
)

type ErrNotFound struct {
	ID      uuid.UUID
	Code    string
	Message string
}

func (e ErrNotFound) Error() string {
	return e.Message
}

type ErrValidation struct {
	Field   string
	Code    string
	Message string
}

func (e ErrValidation) Error() string {
	return e.Message
}

type ErrConflict struct {
	Code    string
	Message string
}

func (e ErrConflict) Error() string {
	return e.Message
}

// ErrStorage wraps a failure of the asset store.
type ErrStorage struct {
	Op  string
	Ref ImageRef
	Err error
}

func (e ErrStorage) Error() string {
	if e.Ref != "" {
		return "storage " + e.Op + " " + string(e.Ref) + ": " + e.Err.Error()
	}
	return "storage " + e.Op + ": " + e.Err.Error()
}

func (e ErrStorage) Unwrap() error {
	return e.Err
}

func isNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
