package internal

import (
	"encoding/json"
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
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidProvider  ErrorCode = "INVALID_PROVIDER"
	ErrCodeInvalidMode      ErrorCode = "INVALID_MODE"

	ErrCodeTourNotFound      ErrorCode = "TOUR_NOT_FOUND"
	ErrCodeDepartureNotFound ErrorCode = "DEPARTURE_NOT_FOUND"
	ErrCodeCartItemNotFound  ErrorCode = "CART_ITEM_NOT_FOUND"
	ErrCodeVoucherNotFound   ErrorCode = "VOUCHER_NOT_FOUND"
	ErrCodeVoucherExpired    ErrorCode = "VOUCHER_EXPIRED"

	ErrCodeSessionNotFound    ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeDuplicateOrderID   ErrorCode = "DUPLICATE_ORDER_ID"
	ErrCodeConflictingOutcome ErrorCode = "CONFLICTING_OUTCOME"

	ErrCodeBookingNotFound   ErrorCode = "BOOKING_NOT_FOUND"
	ErrCodeDuplicateBooking  ErrorCode = "DUPLICATE_BOOKING"
	ErrCodeBookingNotPending ErrorCode = "BOOKING_NOT_PENDING"

	ErrCodeExceedsCapacity    ErrorCode = "EXCEEDS_DEPARTURE_CAPACITY"
	ErrCodeInsufficientSeats  ErrorCode = "INSUFFICIENT_SEATS"
	ErrCodeSeatCommitConflict ErrorCode = "SEAT_COMMIT_CONFLICT"

	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrCodeProviderError    ErrorCode = "PROVIDER_ERROR"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
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

func NewExternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeProviderError,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrTourNotFound      = NewNotFoundError("Tour not found", ErrCodeTourNotFound)
	ErrDepartureNotFound = NewNotFoundError("Departure not found for this tour and date", ErrCodeDepartureNotFound)
	ErrCartItemNotFound  = NewNotFoundError("Cart item not found", ErrCodeCartItemNotFound)

	ErrSessionNotFound  = NewNotFoundError("Payment session not found", ErrCodeSessionNotFound)
	ErrDuplicateOrderID = NewConflictError("A payment session with this order id already exists", ErrCodeDuplicateOrderID)

	ErrBookingNotFound  = NewNotFoundError("Booking not found", ErrCodeBookingNotFound)
	ErrDuplicateBooking = NewConflictError("A booking already exists for this order id", ErrCodeDuplicateBooking)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

// NewConflictingOutcomeError marks a terminal-status flip on a payment session.
// It is never resolved automatically; operations has to look at it.
func NewConflictingOutcomeError(orderID, storedStatus, requestedStatus string) *AppError {
	return NewConflictError("Payment session already settled with a different outcome", ErrCodeConflictingOutcome).
		WithDetails(map[string]string{
			"order_id":         orderID,
			"stored_status":    storedStatus,
			"requested_status": requestedStatus,
		})
}

func NewExceedsCapacityError(seatsLeft, seatsTotal int) *AppError {
	return NewConflictError("Requested seats exceed the departure capacity", ErrCodeExceedsCapacity).
		WithDetails(map[string]int{
			"seats_left":  seatsLeft,
			"seats_total": seatsTotal,
		})
}

func NewInsufficientSeatsError(tourID int64, date string) *AppError {
	return NewConflictError("Not enough seats left on this departure", ErrCodeInsufficientSeats).
		WithDetails(map[string]interface{}{
			"tour_id": tourID,
			"date":    date,
		})
}

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

func IsErrorCode(err error, code ErrorCode) bool {
	if appErr, ok := IsAppError(err); ok {
		return appErr.Code == code
	}
	return false
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
