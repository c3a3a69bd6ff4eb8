package api

import "fmt"

// Error represents an API error with its HTTP-style status code.
type Error struct {
	Code    int
	Message string
}

// NewError creates a new API error
func NewError(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Code, e.Message)
}

// BadRequest builds a validation error
func BadRequest(message string) *Error {
	return NewError(400, message)
}

// Forbidden builds an ownership error
func Forbidden(message string) *Error {
	return NewError(403, message)
}

// NotFound builds a missing-resource error
func NotFound(message string) *Error {
	return NewError(404, message)
}

// Internal builds a storage/internal error
func Internal(message string) *Error {
	return NewError(500, message)
}
