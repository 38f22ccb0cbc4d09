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

// ---- Security & Identity (SEC) ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Invalid webhook signature", http.StatusForbidden)
}

func ErrInvalidToken() *AppError {
	return New("SEC_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrRateLimitExceeded() *AppError {
	return New("SEC_003", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Ledger Business Logic (LGR) ----

func ErrInsufficientFunds() *AppError {
	return New("LGR_001", "Insufficient funds", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("LGR_002", "Invalid amount", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("LGR_003", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrDailyLimitExceeded(tier string) *AppError {
	return New("LGR_004", fmt.Sprintf("Exceeds daily transfer limit for %s", tier), http.StatusUnprocessableEntity)
}

func ErrBalanceCapExceeded(tier string) *AppError {
	return New("LGR_005", fmt.Sprintf("Wallet would exceed max balance for %s", tier), http.StatusUnprocessableEntity)
}

func ErrInvalidBankName(bankName string) *AppError {
	return New("LGR_006", fmt.Sprintf("Invalid bank name: %s", bankName), http.StatusBadRequest)
}

func ErrWalletExists() *AppError {
	return New("LGR_007", "Wallet already exists for user", http.StatusConflict)
}

// ---- Rail Provider (RAIL) ----

func ErrPayoutRejected(reason string) *AppError {
	return New("RAIL_001", fmt.Sprintf("Bank transfer rejected: %s", reason), http.StatusBadGateway)
}

func ErrRailUnavailable(err error) *AppError {
	return Wrap("RAIL_002", "Rail provider unavailable", http.StatusBadGateway, err)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request validation error.
func Validation(message string) *AppError {
	return New("LGR_002", message, http.StatusBadRequest)
}
