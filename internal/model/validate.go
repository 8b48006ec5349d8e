package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrConstraintViolation indicates a domain object failed validation, such as
// an unknown status value or a confidence score outside [0,1].
var ErrConstraintViolation = errors.New("constraint violation")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("claimstatus", func(fl validator.FieldLevel) bool {
		return ClaimStatus(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks a domain object against its declared constraints and wraps
// any failure in ErrConstraintViolation.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrConstraintViolation, err)
	}
	return nil
}
