package service

import (
	"errors"
	"fmt"
)

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeInvalidIban             = "invalid_iban"
	ErrCodeInvalidCard             = "invalid_card"
	ErrCodeInvalidCif              = "invalid_cif"
	ErrCodeInvalidAmount           = "invalid_amount"
	ErrCodeInvalidRequest          = "invalid_request"
	ErrCodeAccountNotFound         = "account_not_found"
	ErrCodeCardNotFound            = "card_not_found"
	ErrCodeCardExpired             = "card_expired"
	ErrCodeInsufficientFunds       = "insufficient_funds"
	ErrCodeMovementNotFound        = "movement_not_found"
	ErrCodeAlreadyRevoked          = "already_revoked"
	ErrCodeRevocationWindowExpired = "revocation_window_expired"
	ErrCodeMandateInactive         = "mandate_inactive"
	ErrCodeMandateNotDue           = "mandate_not_due"
	ErrCodeDuplicateRequest        = "duplicate_request"
	ErrCodeIdentifierExhausted     = "identifier_exhausted"
	ErrCodeInternalError           = "internal_error"
)

// IsCode reports whether err carries a ServiceError with the given code
func IsCode(err error, code string) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Code == code
}

func internalError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:    ErrCodeInternalError,
		Message: message,
		Err:     err,
	}
}
