package configuration

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

//nolint:gochecknoglobals
var validate = validator.New()

// Validate validates the settings using their struct tags.
func Validate(s *Settings) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}

	return nil
}

// formatValidationError converts validator errors into readable messages.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]

		return fmt.Errorf("%w: %s failed on '%s' (value: %v)", ErrInvalidSetting, e.Field(), e.Tag(), e.Value())
	}

	return err
}
