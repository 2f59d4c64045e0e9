package renderer

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a render failure. Callers of the renderer only
// ever see this closed taxonomy; anything untyped is wrapped into
// ErrorTypeRender at the orchestrator boundary.
type ErrorType string

const (
	// ErrorTypeStoreNotFound means the domain resolves to no tenant.
	ErrorTypeStoreNotFound ErrorType = "STORE_NOT_FOUND"

	// ErrorTypeStoreNotActive means the tenant exists but is suspended.
	ErrorTypeStoreNotActive ErrorType = "STORE_NOT_ACTIVE"

	// ErrorTypeTemplateNotFound means the tenant has no template assets.
	ErrorTypeTemplateNotFound ErrorType = "TEMPLATE_NOT_FOUND"

	// ErrorTypeData means a backend data load failed.
	ErrorTypeData ErrorType = "DATA_ERROR"

	// ErrorTypeRender covers every other failure during context build or
	// template evaluation.
	ErrorTypeRender ErrorType = "RENDER_ERROR"
)

// statusCodes maps each error type to the HTTP status the storefront
// surface responds with.
var statusCodes = map[ErrorType]int{
	ErrorTypeStoreNotFound:    http.StatusNotFound,
	ErrorTypeStoreNotActive:   http.StatusPaymentRequired,
	ErrorTypeTemplateNotFound: http.StatusNotFound,
	ErrorTypeData:             http.StatusInternalServerError,
	ErrorTypeRender:           http.StatusInternalServerError,
}

// TemplateError is the typed failure every render path surfaces.
type TemplateError struct {
	Type       ErrorType
	Message    string
	StatusCode int

	// cause is the underlying error, when one exists.
	cause error
}

// NewTemplateError creates a typed render error.
func NewTemplateError(errType ErrorType, message string) *TemplateError {
	return &TemplateError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCodes[errType],
	}
}

// WrapError returns err unchanged when it already carries a
// TemplateError, otherwise wraps it into a RENDER_ERROR carrying the
// original message.
func WrapError(err error, message string) *TemplateError {
	var te *TemplateError
	if errors.As(err, &te) {
		return te
	}
	return &TemplateError{
		Type:       ErrorTypeRender,
		Message:    fmt.Sprintf("%s: %s", message, err.Error()),
		StatusCode: statusCodes[ErrorTypeRender],
		cause:      err,
	}
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *TemplateError) Unwrap() error {
	return e.cause
}
