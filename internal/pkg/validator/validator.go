// Package validator wraps go-playground/validator behind a single Validate
// function with standardized error formatting. Structs declare their rules
// with `validate:"..."` tags; failures come back as a multi-error chain
// rooted at ErrValidationFailed so callers can branch on it with errors.Is.
package validator

import (
	"errors"
	"fmt"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is the first error in the chain returned when one or
// more fields violate their validation tags.
var ErrValidationFailed = errors.New("struct validation failed")

// validator is the shared go-playground instance, built once at import time.
var validator *gvalidator.Validate

// errStringFormat renders one field failure, e.g.
// "'URL': value '' does not meet the requirements for the 'required' validation".
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())
}

// formatError converts the library's ValidationErrors into the package's
// multi-error form. Non-validation errors pass through untouched.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		err := fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		)

		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate checks v against its validation tags. It returns nil when every
// field passes, otherwise an error chain containing ErrValidationFailed plus
// one formatted entry per failing field.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
