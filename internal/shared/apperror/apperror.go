package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Kind classifies an error for the HTTP translator.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuth          Kind = "auth"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindInternal      Kind = "internal"
)

// AppError carries a client-safe message, the HTTP status and an optional cause.
type AppError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ========================================
// CONSTRUCTORS
// ========================================

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Kind: KindAuth, Status: http.StatusUnauthorized, Message: message}
}

// Forbidden is an authorization failure reported as 403 (role gate, book ownership).
func Forbidden(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Status: http.StatusForbidden, Message: message}
}

// NotOwner is an authorization failure reported as 401 (review and profile ownership).
func NotOwner(message string) *AppError {
	return &AppError{Kind: KindAuthorization, Status: http.StatusUnauthorized, Message: message}
}

func NotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Status: http.StatusInternalServerError, Message: "Server Error", Err: err}
}

// Wrap attaches a cause without changing the client-facing message.
func (e *AppError) Wrap(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// FromValidation turns ozzo-validation output into a single 400 error.
// Returns nil when err is nil.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if errors.As(err, &errs) {
		return Validation(joinValidation(errs))
	}

	var internal validation.InternalError
	if errors.As(err, &internal) {
		return Internal(err)
	}

	return Validation(err.Error())
}

// joinValidation renders "field: message" pairs in stable key order.
func joinValidation(errs validation.Errors) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if errs[k] == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, errs[k].Error()))
	}
	return strings.Join(parts, "; ")
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
