package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidDate         ErrorCode = "INVALID_DATE"
	ErrCodeInvalidDateRange    ErrorCode = "INVALID_DATE_RANGE"
	ErrCodeInsufficientOptions ErrorCode = "INSUFFICIENT_OPTIONS"
	ErrCodeInvalidOption       ErrorCode = "INVALID_OPTION"
	ErrCodeMissingResolution   ErrorCode = "MISSING_RESOLUTION"
	ErrCodeMissingReason       ErrorCode = "MISSING_REASON"
	ErrCodeMissingEmail        ErrorCode = "MISSING_EMAIL"
	ErrCodeInvalidDecision     ErrorCode = "INVALID_DECISION"
	ErrCodeInvalidAction       ErrorCode = "INVALID_ACTION"

	ErrCodeOfferExpired ErrorCode = "OFFER_EXPIRED"
	ErrCodeOfferClosed  ErrorCode = "OFFER_CLOSED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeSessionExpired     ErrorCode = "SESSION_EXPIRED"
	ErrCodeNotPermitted       ErrorCode = "NOT_PERMITTED"

	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendRejected    ErrorCode = "BACKEND_REJECTED"
	ErrCodeRateLimited        ErrorCode = "RATE_LIMITED"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {

			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewBackendError maps a non-2xx backend response. The backend's own message
// is kept verbatim so it can be shown to the user as-is.
func NewBackendError(status int, message string) *AppError {
	appErr := &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeBackendRejected,
		Message:    message,
		StatusCode: status,
	}
	switch {
	case status == http.StatusUnauthorized:
		appErr.Type = ErrorTypeUnauthorized
		appErr.Code = ErrCodeSessionExpired
	case status == http.StatusForbidden:
		appErr.Type = ErrorTypeForbidden
		appErr.Code = ErrCodeNotPermitted
	case status == http.StatusNotFound:
		appErr.Type = ErrorTypeNotFound
	case status == http.StatusConflict:
		appErr.Type = ErrorTypeConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		appErr.Type = ErrorTypeValidation
	case status >= http.StatusInternalServerError:
		appErr.StatusCode = http.StatusBadGateway
	}
	return appErr
}

func NewBackendUnavailableError(cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeBackendUnavailable,
		Message:    "Service is temporarily unavailable",
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrSessionExpired     = NewUnauthorizedError("Your session has expired, please sign in again", ErrCodeSessionExpired)
	ErrNotPermitted       = NewForbiddenError("You are not allowed to perform this action", ErrCodeNotPermitted)
	ErrRateLimited        = &AppError{
		Type:       ErrorTypeForbidden,
		Code:       ErrCodeRateLimited,
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// UserMessage picks the text shown to the user for err: the application or
// backend message when there is one, otherwise fallback.
func UserMessage(err error, fallback string) string {
	if appErr, ok := IsAppError(err); ok {
		if appErr.Type == ErrorTypeInternal {
			return fallback
		}
		if msg := strings.TrimSpace(appErr.GetDetailedMessage()); msg != "" {
			return msg
		}
	}
	return fallback
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
