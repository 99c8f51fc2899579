package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConcurrentUpdate indicates a conditional write lost to another writer.
var ErrConcurrentUpdate = errors.New("resource was modified concurrently")

// ErrUnauthorized indicates that no usable credentials were presented.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the caller is authenticated but may not act on the resource.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials is returned when an email/password pair does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Token and session resolution errors. All of them surface as 401 at the HTTP layer.
var (
	ErrTokenExpired   = errors.New("token has expired")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenScope     = errors.New("token is not valid for this operation")
	ErrTokenRevoked   = errors.New("token has been revoked")
	ErrSessionExpired = errors.New("session has expired")
	// ErrUserNotFound is returned when a credential resolves to an id that has no user record.
	ErrUserNotFound = errors.New("user for session not found")
)

// IsAuthError reports whether err belongs to the authentication taxonomy.
func IsAuthError(err error) bool {
	for _, target := range []error{
		ErrUnauthorized, ErrInvalidCredentials, ErrTokenExpired, ErrTokenInvalid,
		ErrTokenScope, ErrTokenRevoked, ErrSessionExpired, ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AppError is an error carrying the HTTP status it should be reported with.
// It serialises to the `{ "error": "..." }` envelope used by every handler.
type AppError struct {
	Code    int               `json:"-"`
	Message string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an AppError with an explicit status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// NewValidationError reports field level failures, keyed by JSON field name.
func NewValidationError(message string, details map[string]string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Message: message, Details: details, Err: ErrValidation}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: http.StatusUnauthorized, Message: message, Err: ErrUnauthorized}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message, Err: ErrForbidden}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message, Err: ErrNotFound}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Err: ErrDuplicate}
}

func NewInternalServerError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}

func NewServiceUnavailableError(message string) *AppError {
	return &AppError{Code: http.StatusServiceUnavailable, Message: message}
}

func NewGatewayTimeoutError(message string) *AppError {
	return &AppError{Code: http.StatusGatewayTimeout, Message: message}
}
