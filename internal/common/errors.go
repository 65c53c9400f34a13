package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound        = errors.New("requested resource not found")
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrTokenExpired    = errors.New("token expired")
	ErrForbidden       = errors.New("forbidden access")
	ErrValidation      = errors.New("validation failed")
	ErrDuplicate       = errors.New("duplicate field value entered")
	ErrInvalidQuery    = errors.New("invalid query")
	ErrInternalServer  = errors.New("internal server error")
)

// apiError pairs one of the sentinel kinds above with the exact message the
// client should see. errors.Is still matches the underlying kind.
type apiError struct {
	kind    error
	message string
}

func (e *apiError) Error() string { return e.message }

func (e *apiError) Unwrap() error { return e.kind }

// WithMessage attaches a user-facing message to a sentinel error.
func WithMessage(kind error, message string) error {
	return &apiError{kind: kind, message: message}
}

// HTTPStatusFromError maps domain errors to HTTP status codes. Duplicate
// keys map to 400 rather than 409: the API reports them as ordinary bad
// requests ("Email already exists" and friends).
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidQuery) {
		return http.StatusBadRequest
	}

	// Unique violations that slipped through without repository translation.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
