package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/benx421/banking-ledger/internal/identifier"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxPageSize bounds paged listings
const MaxPageSize = 100

const amountScale = 2

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	if err := vld.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return value.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'positive_decimal': %w", err)
	}

	return vld, nil
}

// ValidateRequest checks the struct tags of a request. A failing amount maps to
// invalid_amount, anything else to invalid_request.
func ValidateRequest(req any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return internalError("validator unavailable", errValidate)
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: "invalid request",
			Err:     err,
		}
	}

	fe := fieldErrors[0]
	if fe.Tag() == "positive_decimal" {
		return &ServiceError{
			Code:    ErrCodeInvalidAmount,
			Message: fmt.Sprintf("invalid amount: %s must be greater than 0", fe.Field()),
		}
	}

	return &ServiceError{
		Code:    ErrCodeInvalidRequest,
		Message: fmt.Sprintf("invalid request: %s failed '%s' check", fe.Field(), fe.Tag()),
	}
}

// ValidateAmount checks that amount is positive and has at most two decimal places
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("invalid amount: must be greater than 0")
	}

	if !amount.Equal(amount.Truncate(amountScale)) {
		return fmt.Errorf("invalid amount: at most %d decimal places", amountScale)
	}

	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return &ServiceError{
			Code:    ErrCodeInvalidAmount,
			Message: err.Error(),
		}
	}
	return nil
}

func validateIban(field, iban string) error {
	ok, err := identifier.ValidateIban(iban)
	if err != nil {
		return &ServiceError{
			Code:    ErrCodeInvalidIban,
			Message: fmt.Sprintf("invalid %s", field),
			Err:     err,
		}
	}
	if !ok {
		return &ServiceError{
			Code:    ErrCodeInvalidIban,
			Message: fmt.Sprintf("invalid %s: checksum mismatch", field),
		}
	}
	return nil
}

func validateCardNumber(number string) error {
	ok, err := identifier.ValidateCardNumber(number)
	if err != nil {
		return &ServiceError{
			Code:    ErrCodeInvalidCard,
			Message: "invalid card number",
			Err:     err,
		}
	}
	if !ok {
		return &ServiceError{
			Code:    ErrCodeInvalidCard,
			Message: "invalid card number: failed Luhn check",
		}
	}
	return nil
}

func validateTaxID(code string) error {
	ok, err := identifier.ValidateTaxID(code)
	if err != nil {
		return &ServiceError{
			Code:    ErrCodeInvalidCif,
			Message: "invalid payer identifier",
			Err:     err,
		}
	}
	if !ok {
		return &ServiceError{
			Code:    ErrCodeInvalidCif,
			Message: "invalid payer identifier: control character mismatch",
		}
	}
	return nil
}

func validatePage(pageNumber, pageSize int) error {
	if pageNumber < 0 {
		return &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: "page number cannot be negative",
		}
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return &ServiceError{
			Code:    ErrCodeInvalidRequest,
			Message: fmt.Sprintf("page size must be between 1 and %d", MaxPageSize),
		}
	}
	return nil
}
