package apperror

import (
	"errors"
	"net/http"
)

// Machine-readable error codes surfaced to API clients. Settlement and refund
// failures always carry one of these so callers can branch without parsing
// messages.
const (
	CodeNotFound             = "NOT_FOUND"
	CodeAlreadyClosed        = "ALREADY_CLOSED"
	CodeCancelled            = "CANCELLED"
	CodeAlreadyPaid          = "ALREADY_PAID"
	CodeInsufficientPayment  = "INSUFFICIENT_PAYMENT"
	CodeValidationFailed     = "VALIDATION_FAILED"
	CodeRequiresStepUp       = "REQUIRES_STEP_UP"
	CodeGatewayDeclined      = "GATEWAY_DECLINED"
	CodeGiftCardNotFound     = "GIFT_CARD_NOT_FOUND_OR_EXPIRED"
	CodeInsufficientGiftCard = "INSUFFICIENT_GIFT_CARD_BALANCE"
	CodeSplitMismatch        = "SPLIT_MISMATCH"
	CodeConflict             = "CONFLICT"
	CodeInternal             = "INTERNAL"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int            `json:"code"`
	ErrCode string         `json:"error_code,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Errors  []FieldError   `json:"errors,omitempty"`
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// WithDetails attaches numeric/contextual details to the error and returns it.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, ErrCode: CodeNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, ErrCode: CodeValidationFailed, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, ErrCode: CodeInternal, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, ErrCode: CodeConflict, Message: "Resource already exists"}
)

// NewAppError creates a new application error
func NewAppError(code int, errCode, message string) *AppError {
	return &AppError{
		Code:    code,
		ErrCode: errCode,
		Message: message,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		ErrCode: CodeNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		ErrCode: CodeConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		ErrCode: CodeValidationFailed,
		Message: message,
	}
}

// NewValidationError creates a validation error with the supplied reason.
func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		ErrCode: CodeValidationFailed,
		Message: message,
	}
}

// NewStepUpRequiredError signals that the card gateway demands 3-D Secure
// authentication before the charge can complete. The intent id lets the
// caller resume the flow with the same idempotency key.
func NewStepUpRequiredError(paymentIntentID string) *AppError {
	return &AppError{
		Code:    http.StatusPaymentRequired,
		ErrCode: CodeRequiresStepUp,
		Message: "Card requires additional authentication",
		Details: map[string]any{"payment_intent_id": paymentIntentID},
	}
}

// NewGatewayDeclinedError reports a hard decline from the card gateway.
func NewGatewayDeclinedError(reason string) *AppError {
	if reason == "" {
		reason = "Card was declined"
	}
	return &AppError{
		Code:    http.StatusPaymentRequired,
		ErrCode: CodeGatewayDeclined,
		Message: reason,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is an AppError carrying the given error code.
func HasCode(err error, errCode string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.ErrCode == errCode
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		ErrCode: CodeInternal,
		Message: err.Error(),
	}
}
