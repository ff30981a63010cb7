package utils

import (
	"errors"
	"net/http"
)

// Domain-level errors used by the service layer to provide
// fine-grained failure reasons.
var (
	ErrLeaseNotFound          = errors.New("lease_not_found")
	ErrInvoiceNotFound        = errors.New("invoice_not_found")
	ErrPaymentNotFound        = errors.New("payment_not_found")
	ErrMissingMonthlyRent     = errors.New("missing_monthly_rent")
	ErrInvalidRangeKey        = errors.New("invalid_range_key")
	ErrInvalidAmount          = errors.New("invalid_amount")
	ErrPaymentAlreadyVerified = errors.New("payment_already_verified")

	// The invoice upsert engine exhausted its retry budget while racing
	// a concurrent creator.
	ErrInvoicePreparation = errors.New("unable_to_prepare_invoice")

	// For concurrency conflicts on row_version-guarded updates.
	ErrRowVersionConflict = errors.New("row_version_conflict")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

// AppError for structured error handling from services to controllers.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string, err error) *AppError {
	return &AppError{
		StatusCode: http.StatusBadRequest,
		Code:       ErrCodeValidation,
		Message:    msg,
		Err:        err,
	}
}

// HandleAppError centralizes responding to AppErrors.
func HandleAppError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		RespondErrorWithCode(w, appErr.StatusCode, appErr.Code, appErr.Message, nil, appErr.Err)
	} else {
		// Fallback for unexpected error types
		RespondErrorWithCode(w, http.StatusInternalServerError, ErrCodeInternal, "An unexpected error occurred", nil, err)
	}
}
