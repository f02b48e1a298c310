// validator.go - Request validation for Echo
package api

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator adapts go-playground/validator to Echo's Validator
// interface. Validation failures surface as 400 responses through the
// shared error handler.
type CustomValidator struct {
	validate *validator.Validate
}

// NewValidator creates the validator used by the export gateway.
func NewValidator() *CustomValidator {
	return &CustomValidator{validate: validator.New()}
}

// Validate implements echo.Validator
func (v *CustomValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return NewValidationError(errs[0].Field())
		}
		return NewBadRequestError("validation failed", err)
	}
	return nil
}
