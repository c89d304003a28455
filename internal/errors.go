package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ErrorTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeForbidden  ErrorType = "FORBIDDEN"
	ErrorTypeConflict   ErrorType = "CONFLICT"
	ErrorTypeInternal   ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal   ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeNoteRequired     ErrorCode = "NOTE_REQUIRED"

	ErrCodeExpenseNotFound      ErrorCode = "EXPENSE_NOT_FOUND"
	ErrCodeNotificationNotFound ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeParentNotFound       ErrorCode = "PARENT_NOT_FOUND"
	ErrCodeTokenNotFound        ErrorCode = "TOKEN_NOT_FOUND"
	ErrCodeCoParentNotLinked    ErrorCode = "CO_PARENT_NOT_LINKED"
	ErrCodeAlreadyProcessed     ErrorCode = "ALREADY_PROCESSED"
	ErrCodeNotExpenseOwner      ErrorCode = "NOT_EXPENSE_OWNER"

	ErrCodeAuditWriteFailed    ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeMessageSendFailed   ErrorCode = "MESSAGE_SEND_FAILED"
	ErrCodeMailDeliveryFailed  ErrorCode = "MAIL_DELIVERY_FAILED"
	ErrCodeInvalidTriggerToken ErrorCode = "INVALID_TRIGGER_TOKEN"
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
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
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

// NewDependencyError marks a failure in a downstream collaborator (audit
// store, message store, mail API). The originating state change is already
// committed when these surface, so they are logged rather than rolled back.
func NewDependencyError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrExpenseNotFound   = NewNotFoundError("expense not found", ErrCodeExpenseNotFound)
	ErrParentNotFound    = NewNotFoundError("parent not found", ErrCodeParentNotFound)
	ErrTokenNotFound     = NewNotFoundError("action token not found", ErrCodeTokenNotFound)
	ErrAlreadyProcessed  = NewConflictError("expense has already been processed", ErrCodeAlreadyProcessed)
	ErrNotExpenseOwner   = NewForbiddenError("only the payer may modify this expense", ErrCodeNotExpenseOwner)
	ErrEmptyDisputeNote  = NewValidationError("a note is required when disputing an expense", ErrCodeNoteRequired)
	ErrCoParentNotLinked = NewNotFoundError("no co-parent linked to this account", ErrCodeCoParentNotLinked)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
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
