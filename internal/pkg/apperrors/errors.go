package apperrors

import "errors"

// Identity & credential errors
var (
	ErrDuplicateIdentifier     = errors.New("identifier already in use")
	ErrInvalidIdentifierFormat = errors.New("invalid identifier format")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrAccountNotVerified      = errors.New("account not verified")
	ErrAlreadyUpgraded         = errors.New("account already upgraded to national ID")
	ErrAccountNotFound         = errors.New("student account not found")
)

// Authentication token errors
var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenRevoked  = errors.New("token revoked")
)

// Validation errors
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")
)

// Resource errors
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrConflict         = errors.New("conflict")
)

// Application workflow errors
var (
	ErrApplicationNotFound = errors.New("bursary application not found")
	ErrApplicationsClosed  = errors.New("application window is closed")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrOfficerNotFound     = errors.New("officer profile not found")
)

// CustomError carries an underlying sentinel plus a caller-facing message.
type CustomError struct {
	Err     error
	Message string
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap lets errors.Is see through to the sentinel.
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewResourceNotFoundError wraps ErrResourceNotFound with a message.
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message}
}

// NewForbiddenError wraps ErrPermissionDenied with a message.
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message}
}

// NewBadRequestError wraps ErrBadRequest with a message.
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message}
}
