package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for every failure class the ticket system reports.
const (
	CodePermissionDenied    = "PERMISSION_DENIED"
	CodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	CodeDuplicateTicket     = "DUPLICATE_TICKET"
	CodePlatformError       = "PLATFORM_ERROR"
	CodeMalformedPayload    = "MALFORMED_PAYLOAD"
	CodeConfirmationExpired = "CONFIRMATION_EXPIRED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewPermissionDenied(message string) error {
	if message == "" {
		message = "you don't have permission to do that"
	}
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

func NewCategoryNotFound(categoryID string) error {
	return NewDomainError(CodeCategoryNotFound, "ticket category not found", http.StatusNotFound,
		map[string]any{"category_id": categoryID})
}

func NewDuplicateTicket(channelName string) error {
	return NewDomainError(CodeDuplicateTicket, "an open ticket already exists", http.StatusConflict,
		map[string]any{"channel": channelName})
}

func NewMalformedPayload(message string, details map[string]any) error {
	return NewDomainError(CodeMalformedPayload, message, http.StatusBadRequest, details)
}

func NewConfirmationExpired() error {
	return NewDomainError(CodeConfirmationExpired, "close confirmation expired or unknown", http.StatusGone, nil)
}

// NewPlatformError wraps any failure surfaced by the chat platform.
func NewPlatformError(message string, err error) error {
	return &DomainError{
		Code:       CodePlatformError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given domain error code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
