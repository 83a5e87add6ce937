package validation

import (
	"errors"
	"fmt"
)

// ConfigValidator provides a fluent interface for validating configuration values.
// It collects all validation errors rather than failing on the first one.
type ConfigValidator struct {
	errors []error
	name   string // config struct name for error messages
}

// NewConfigValidator creates a new config validator with the given config name.
func NewConfigValidator(configName string) *ConfigValidator {
	return &ConfigValidator{
		name:   configName,
		errors: make([]error, 0),
	}
}

func (cv *ConfigValidator) fail(field, format string, args ...any) *ConfigValidator {
	cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %s", cv.name, field, fmt.Sprintf(format, args...)))
	return cv
}

// NonNegative validates that an int field is non-negative (>= 0).
func (cv *ConfigValidator) NonNegative(field string, value int) *ConfigValidator {
	if value < 0 {
		return cv.fail(field, "value %d must be non-negative", value)
	}
	return cv
}

// PositiveFloat validates that a float field is positive (> 0).
func (cv *ConfigValidator) PositiveFloat(field string, value float64) *ConfigValidator {
	if value <= 0 {
		return cv.fail(field, "value %g must be positive", value)
	}
	return cv
}

// RangeFloat validates that a float field is within the open range (min, max).
func (cv *ConfigValidator) RangeFloat(field string, value, min, max float64) *ConfigValidator {
	if value <= min || value >= max {
		return cv.fail(field, "value %g is outside range (%g, %g)", value, min, max)
	}
	return cv
}

// Less validates that one float field is below another.
func (cv *ConfigValidator) Less(field string, value float64, otherField string, other float64) *ConfigValidator {
	if value >= other {
		return cv.fail(field, "value %g must be below %s (%g)", value, otherField, other)
	}
	return cv
}

// OneOf validates that a string field is one of the allowed values.
func (cv *ConfigValidator) OneOf(field, value string, allowed []string) *ConfigValidator {
	for _, a := range allowed {
		if value == a {
			return cv
		}
	}
	return cv.fail(field, "value %q must be one of %v", value, allowed)
}

// Custom applies a custom validation function.
func (cv *ConfigValidator) Custom(field string, fn func() error) *ConfigValidator {
	if err := fn(); err != nil {
		cv.errors = append(cv.errors, fmt.Errorf("%s.%s: %w", cv.name, field, err))
	}
	return cv
}

// HasErrors returns true if any validation errors occurred.
func (cv *ConfigValidator) HasErrors() bool {
	return len(cv.errors) > 0
}

// Errors returns all validation errors.
func (cv *ConfigValidator) Errors() []error {
	return cv.errors
}

// Validate returns a combined error if any validations failed.
func (cv *ConfigValidator) Validate() error {
	switch len(cv.errors) {
	case 0:
		return nil
	case 1:
		return cv.errors[0]
	}
	return fmt.Errorf("%s validation failed with %d errors: %w", cv.name, len(cv.errors), errors.Join(cv.errors...))
}
