package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Key        string
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

// Is reports whether target is a DomainError carrying the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithKey returns a copy of the error using another message key.
func (e *DomainError) WithKey(key string) *DomainError {
	cp := *e
	cp.Key = key
	return &cp
}

// WithDetails returns a copy of the error carrying details.
func (e *DomainError) WithDetails(details map[string]any) *DomainError {
	cp := *e
	cp.Details = details
	return &cp
}

// Wrap returns a copy of the error wrapping cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, key, message string, status int) *DomainError {
	return &DomainError{Code: code, Key: key, Message: message, HTTPStatus: status}
}

var (
	ErrValidation              = NewDomainError("VALIDATION_FAILED", "validationFailed", "validation failed", http.StatusBadRequest)
	ErrInvalidCredentials      = NewDomainError("INVALID_CREDENTIALS", "loginFailed", "invalid email or password", http.StatusUnauthorized)
	ErrUnauthorized            = NewDomainError("UNAUTHORIZED", "unauthorized", "unauthorized", http.StatusUnauthorized)
	ErrAccountDisabled         = NewDomainError("ACCOUNT_DISABLED", "accountDisabled", "account is disabled", http.StatusForbidden)
	ErrAdminRequired           = NewDomainError("ADMIN_REQUIRED", "adminRequired", "admin privileges required", http.StatusForbidden)
	ErrNotOwner                = NewDomainError("NOT_OWNER", "notYourAccount", "you can only update your own account", http.StatusForbidden)
	ErrRegistrationDisabled    = NewDomainError("REGISTRATION_DISABLED", "registrationDisabled", "public registration is disabled", http.StatusForbidden)
	ErrNotFound                = NewDomainError("NOT_FOUND", "userNotFound", "user not found", http.StatusNotFound)
	ErrEmailExists             = NewDomainError("EMAIL_EXISTS", "emailExists", "email already exists", http.StatusConflict)
	ErrLastAdmin               = NewDomainError("LAST_ADMIN", "lastAdmin", "cannot delete the last admin user", http.StatusBadRequest)
	ErrAdminSecretUnconfigured = NewDomainError("ADMIN_SECRET_UNCONFIGURED", "registrationFailed", "admin secret key is not configured", http.StatusInternalServerError)
	ErrInternal                = NewDomainError("INTERNAL_ERROR", "internalError", "internal server error", http.StatusInternalServerError)
)

// NewValidationError builds a validation failure carrying field details.
func NewValidationError(details map[string]any) error {
	return ErrValidation.WithDetails(details)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) error {
	return ErrInternal.Wrap(err)
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
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fromFiberError(fiberErr)
	}
	return ErrInternal.Wrap(err)
}

func fromFiberError(err *fiber.Error) *DomainError {
	switch err.Code {
	case fiber.StatusNotFound:
		return NewDomainError("NOT_FOUND", "routeNotFound", err.Message, err.Code)
	case fiber.StatusMethodNotAllowed:
		return NewDomainError("METHOD_NOT_ALLOWED", "", err.Message, err.Code)
	case fiber.StatusRequestEntityTooLarge:
		return NewDomainError("PAYLOAD_TOO_LARGE", "", err.Message, err.Code)
	case fiber.StatusRequestTimeout:
		return NewDomainError("REQUEST_TIMEOUT", "", err.Message, err.Code)
	}
	if err.Code >= http.StatusInternalServerError {
		return ErrInternal.Wrap(err)
	}
	return NewDomainError("BAD_REQUEST", "", err.Message, err.Code)
}
