package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "source.endpoint")
	Tag     string      // Validation tag that failed (e.g., "required", "url")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("timezone", validateTimezone)
}

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	if errs := validateSource(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateTimezoneConfig(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if errs := validateServerTimeouts(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateTimezone is a custom validator for timezone strings.
func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return true // Empty is allowed, will use default
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// validateSource requires a token once an inventory endpoint is configured.
func validateSource(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Source.Endpoint == "" {
		return errors
	}

	if cfg.Source.Token == "" {
		errors = append(errors, &ValidationError{
			Field:   "source.token",
			Tag:     "required_with_endpoint",
			Value:   "",
			Message: "token is required when source endpoint is set",
		})
	}

	if cfg.Source.Timeout < 0 {
		errors = append(errors, &ValidationError{
			Field:   "source.timeout",
			Tag:     "gte",
			Value:   cfg.Source.Timeout,
			Message: "timeout must not be negative",
		})
	}

	return errors
}

// validateTimezoneConfig validates the timezone configuration.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// validateServerTimeouts rejects negative server timeouts; zero disables them.
func validateServerTimeouts(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	timeouts := []struct {
		name  string
		value time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeout},
		{"server.write_timeout", cfg.Server.WriteTimeout},
	}

	for _, t := range timeouts {
		if t.value < 0 {
			errors = append(errors, &ValidationError{
				Field:   t.name,
				Tag:     "gte",
				Value:   t.value,
				Message: fmt.Sprintf("timeout must not be negative, got %s", t.value),
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Source.Endpoint" -> "source.endpoint"
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "dive":
		return fmt.Sprintf("invalid value in list: %v", fe.Value())
	case "timezone":
		return fmt.Sprintf("invalid timezone: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
