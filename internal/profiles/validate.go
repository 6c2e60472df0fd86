package profiles

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a single participant record.
func Validate(p *Participant) error {
	if p == nil {
		return invalidInput("participant must not be null")
	}

	if err := validate.Struct(p); err != nil {
		return invalidInput("participant %q: %s", p.ID, formatValidationError(err))
	}

	return nil
}

// ValidateAll validates every record and rejects duplicated ids.
func ValidateAll(items []*Participant) error {
	seen := make(map[string]struct{}, len(items))
	for idx, p := range items {
		if err := Validate(p); err != nil {
			return fmt.Errorf("record %d: %w", idx, err)
		}
		if _, ok := seen[p.ID]; ok {
			return invalidInput("duplicated participant id %q", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func formatValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err.Error()
	}

	for _, e := range validationErrs {
		switch e.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", e.Namespace())
		case "oneof":
			return fmt.Sprintf("%s must be one of [%s], got %q", e.Field(), e.Param(), e.Value())
		default:
			return fmt.Sprintf("%s: validation failed (%s)", e.Namespace(), e.Tag())
		}
	}

	return err.Error()
}
