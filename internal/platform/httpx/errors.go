// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ConflictError carries the violating field of a uniqueness conflict when
// it can be determined from the constraint name.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return ErrDuplicate.Error()
	}
	return fmt.Sprintf("duplicate entry on %s", e.Field)
}

// Unwrap makes ConflictError match ErrDuplicate in errors.Is checks.
func (e *ConflictError) Unwrap() error { return ErrDuplicate }

// Conflict constructs a ConflictError for the given field.
func Conflict(field string) error {
	return &ConflictError{Field: field}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unauthorized and Forbidden responses are deliberately generic: the caller
// must not learn which check failed or whether the resource exists.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "")
	case errors.Is(err, ErrDuplicate):
		detail := ""
		var conflict *ConflictError
		if errors.As(err, &conflict) && conflict.Field != "" {
			detail = conflict.Error()
		}
		Problem(w, http.StatusConflict, "Duplicate", detail)
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
