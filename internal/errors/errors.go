package errors

import (
	"errors"
	"fmt"
)

// This package defines a centralized set of sentinel errors for the client.
// Services wrap these so the API layer can use `errors.Is()` to map them to
// HTTP responses without knowing where they came from.

var (
	// ErrNotFound signifies that a requested thread or resource could not be located.
	// This is typically mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data (an empty message, a blank title)
	// failed validation.
	// This is typically mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation conflicts with the current state
	// of the session.
	// This is typically mapped to a 409 Conflict HTTP status.
	ErrConflict = errors.New("resource conflict")

	// ErrPermission signifies that the caller is not authorized.
	// This is typically mapped to a 403 Forbidden HTTP status.
	ErrPermission = errors.New("permission denied")

	// ErrUpstream signifies that the remote assistant backend failed or answered
	// with an unexpected status.
	// This is typically mapped to a 502 Bad Gateway HTTP status.
	ErrUpstream = errors.New("assistant backend error")

	// ErrInternal signifies an unexpected error inside the client.
	// This is typically mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")

	// ErrStreamInProgress is returned when a message is sent while another
	// answer is still streaming for the same session.
	ErrStreamInProgress = fmt.Errorf("%w: an answer is already streaming", ErrConflict)
)
