package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic invalid-argument error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrEmptyItems() *AppError {
	return New("VAL_002", "Items list must not be empty", http.StatusBadRequest)
}

func ErrInvalidItem(index int, reason string) *AppError {
	return New("VAL_003", fmt.Sprintf("Invalid item at index %d: %s", index, reason), http.StatusBadRequest)
}

func ErrVendorCount(got int) *AppError {
	return New("VAL_004", fmt.Sprintf("Vendor list must contain 1 to 16 entries, got %d", got), http.StatusBadRequest)
}

func ErrDuplicateVendorAccount(account string) *AppError {
	return New("VAL_005", fmt.Sprintf("Duplicate vendor account number: %s", account), http.StatusBadRequest)
}

func ErrInvalidVendorAmount(account string) *AppError {
	return New("VAL_006", fmt.Sprintf("Vendor %s has a negative amount", account), http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrUnauthenticated() *AppError {
	return New("AUTH_001", "Authentication required", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Webhook security (SEC) ----

func ErrMissingSignature() *AppError {
	return New("SEC_001", "Missing webhook signature header", http.StatusBadRequest)
}

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Webhook signature verification failed", http.StatusForbidden)
}

func ErrMalformedWebhook(reason string) *AppError {
	return New("SEC_003", fmt.Sprintf("Malformed webhook payload: %s", reason), http.StatusBadRequest)
}

// ---- Sessions (SES) ----

func ErrSessionNotFound(sessionID string) *AppError {
	return New("SES_001", fmt.Sprintf("Payment session not found: %s", sessionID), http.StatusNotFound)
}

// ---- Provider (PROV) ----

// ProviderError wraps a failed or malformed payment-provider response.
func ProviderError(err error) *AppError {
	return Wrap("PROV_001", "Payment provider request failed", http.StatusBadGateway, err)
}

func ErrProviderResponse(reason string) *AppError {
	return New("PROV_002", fmt.Sprintf("Unexpected payment provider response: %s", reason), http.StatusBadGateway)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption failure", http.StatusInternalServerError, err)
}
