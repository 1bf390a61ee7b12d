// Package apperror defines the error kinds shared by repositories, services and handlers.
//
// Every kind is a sentinel (ErrNotFound, ErrValidation, ...) wrapped by an *AppError
// that carries the human-readable message. Callers match kinds with errors.Is and
// extract the message with errors.As; only the handler layer turns a kind into an
// HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrIndex      = errors.New("index out of range")
	ErrUpload     = errors.New("upload error")
	ErrStorage    = errors.New("storage error")
	ErrRemote     = errors.New("remote error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Cause   error  // Optional: underlying error (I/O, provider SDK)
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *AppError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// OutOfRange reports an index that does not address an element of a sequence
// of the given length.
func OutOfRange(resource string, index, length int) *AppError {
	return &AppError{
		Err:     ErrIndex,
		Message: fmt.Sprintf("%s index %d out of range [0, %d)", resource, index, length),
		Field:   resource,
	}
}

// UploadFailed is returned when the image host accepted the call but gave back
// nothing we can store (no public id).
func UploadFailed(message string) *AppError {
	return &AppError{
		Err:     ErrUpload,
		Message: message,
	}
}

// Storage wraps a document that could not be saved. The message keeps the cause's text
// because it is surfaced to the client.
func Storage(document string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: fmt.Sprintf("saving %s: %v", document, cause),
		Cause:   cause,
	}
}

// Remote wraps an error raised by the image host.
func Remote(operation string, cause error) *AppError {
	return &AppError{
		Err:     ErrRemote,
		Message: fmt.Sprintf("image host %s failed: %v", operation, cause),
		Cause:   cause,
	}
}
