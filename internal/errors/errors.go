package errors

import "fmt"

// ErrorCode represents a rotor error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrTextTooLarge   ErrorCode = "TEXT_TOO_LARGE"  // 413
	ErrImportFormat   ErrorCode = "IMPORT_FORMAT"   // 422
	ErrCancelled      ErrorCode = "CANCELLED"       // 499
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// RotorError represents a structured error with code, status, and details.
type RotorError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RotorError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RotorError {
	return &RotorError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a history entry cannot be found.
func NewNotFound(id string) *RotorError {
	return &RotorError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("history entry not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewFileNotFound creates a 404 error for a missing import/export file.
func NewFileNotFound(path string) *RotorError {
	return &RotorError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewTextTooLarge creates a 413 error when input text exceeds the size limit.
func NewTextTooLarge(max, actual int) *RotorError {
	return &RotorError{
		Code:    ErrTextTooLarge,
		Status:  413,
		Message: fmt.Sprintf("text exceeds maximum size: %d chars (max %d)", actual, max),
		Details: map[string]any{"max_chars": max, "actual_chars": actual},
	}
}

// NewImportFormat creates a 422 error for a malformed import file.
func NewImportFormat(line int, msg string) *RotorError {
	return &RotorError{
		Code:    ErrImportFormat,
		Status:  422,
		Message: fmt.Sprintf("import file invalid at line %d: %s", line, msg),
		Details: map[string]any{"line": line},
	}
}

// NewCancelled creates a 499 error for a context-cancelled operation.
func NewCancelled(operation string) *RotorError {
	return &RotorError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("operation cancelled: %s", operation),
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *RotorError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &RotorError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a RotorError with the given code.
func Is(err error, code ErrorCode) bool {
	if rErr, ok := err.(*RotorError); ok {
		return rErr.Code == code
	}
	return false
}
