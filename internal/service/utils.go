package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/anvaygupta1940/Student-Progress-Management/internal/spm_errors"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// custom function for translating validation error into user readable errors
func translateValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	case TagPhone:
		return fmt.Sprintf("%s must be a valid phone number", e.Field())
	case "min":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", e.Field(), e.Param())
	case "cron":
		return fmt.Sprintf("%s must be a valid cron expression", e.Field())
	default:
		return fmt.Sprintf("Validation failed for %s with rule %s", e.Field(), e.Tag())
	}
}

// ValidateInput validates the input struct using the package validator.
// If validation fails, it logs and returns the first user-friendly error message.
// Returns nil if input is valid.
func ValidateInput(inp any) error {
	if validate == nil {
		InitializeServices()
	}
	if err := validate.Struct(inp); err != nil {
		var validationErrors validator.ValidationErrors
		// Check if the error is a set of validation errors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			// Grab and translate the first validation error for user feedback
			errorMessage := translateValidationError(validationErrors[0])
			log.Error(errorMessage)
			// Wrap the error with a custom invalid input error
			return fmt.Errorf("%w, %s", spm_errors.ErrInvalidInput, errorMessage)
		}
		log.Errorf("cannot validate %T, %v", inp, err)
		return fmt.Errorf("%w, %w", spm_errors.ErrInvalidRequest, err)
	}
	// All good, input is valid
	return nil
}

// NormalizeEmail lower cases and trims an email so lookups are case insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Pause blocks for d or until ctx is done. A non positive d returns at once.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
