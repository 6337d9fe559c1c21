package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of application error.
type ErrorCode string

const (
	ErrCodeUnauthenticated      ErrorCode = "UNAUTHENTICATED"
	ErrCodeRateLimit            ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeSubscriptionRequired ErrorCode = "SUBSCRIPTION_REQUIRED"
	ErrCodeSubscriptionInactive ErrorCode = "SUBSCRIPTION_INACTIVE"
	ErrCodeValidation           ErrorCode = "VALIDATION_FAILED"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodePersistence          ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeConflict             ErrorCode = "CONFLICT"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error code, a client-safe message and the HTTP status
// it translates to. Message is what clients see; Cause and Context stay
// server-side.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Context    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a server-side diagnostic field to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func Wrap(err error, code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus, Cause: err}
}

func NewUnauthenticated(message string) *AppError {
	return New(ErrCodeUnauthenticated, message, http.StatusUnauthorized)
}

func NewRateLimited() *AppError {
	return New(ErrCodeRateLimit, "Too many requests, please try again later.", http.StatusTooManyRequests)
}

// NewSubscriptionRequired covers both the missing-subscription and the
// insufficient-plan denials. The client message is deliberately generic so
// responses do not reveal which plan gate was missed; the audit trail keeps
// the precise reason.
func NewSubscriptionRequired() *AppError {
	return New(ErrCodeSubscriptionRequired, "Requires a Professional or Enterprise subscription", http.StatusForbidden)
}

func NewSubscriptionInactive() *AppError {
	return New(ErrCodeSubscriptionInactive, "Subscription is not active", http.StatusForbidden)
}

// NewValidation reports the first violated constraint of a payload.
func NewValidation(field, constraint string) *AppError {
	e := New(ErrCodeValidation, fmt.Sprintf("%s: %s", field, constraint), http.StatusBadRequest)
	return e.WithContext("field", field).WithContext("constraint", constraint)
}

func NewNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewPersistence(err error) *AppError {
	return Wrap(err, ErrCodePersistence, "storage operation failed", http.StatusInternalServerError)
}

func NewConflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

func NewInternal(message string) *AppError {
	return New(ErrCodeInternal, message, http.StatusInternalServerError)
}

// GetAppError extracts an *AppError from anywhere in err's chain.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func IsCode(err error, code ErrorCode) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}
