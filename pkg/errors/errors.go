package errors

import (
	"errors"
	"net/http"
)

// Stable machine readable failure codes exposed to API clients.
const (
	CodeInvalidPrompt       = "INVALID_PROMPT"
	CodeProviderUnavailable = "OPENAI_API_ERROR"
	CodeProcessing          = "PROMPT_PROCESSING_ERROR"
	CodeAdventureNotFound   = "ADVENTURE_NOT_FOUND"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeCatalog             = "CATALOG_ERROR"
	CodeInternal            = "INTERNAL_ERROR"
)

var statusByCode = map[string]int{
	CodeInvalidPrompt:       http.StatusBadRequest,
	CodeProviderUnavailable: http.StatusServiceUnavailable,
	CodeProcessing:          http.StatusInternalServerError,
	CodeAdventureNotFound:   http.StatusNotFound,
	CodeInvalidRequest:      http.StatusBadRequest,
	CodeCatalog:             http.StatusInternalServerError,
	CodeInternal:            http.StatusInternalServerError,
}

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status reports the HTTP status associated with the error code.
func (e *AppError) Status() int {
	return StatusFor(e.Code)
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As extracts the first AppError in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusFor maps a failure code to its HTTP status. Unknown codes are 500.
func StatusFor(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
