package utils

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/tommyfonseca7/teams-coms-public/internal/models"
)

var validate = validator.New()

// ValidateName validates a display name
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || n > 35 {
		return errors.New("name must be between 1 and 35 characters")
	}
	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email"); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidatePassword validates password format
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ValidatePasswordConfirmation checks that both password fields match
func ValidatePasswordConfirmation(password, confirmation string) error {
	if password != confirmation {
		return errors.New("passwords do not match")
	}
	return nil
}

// RegisterValidations adds the custom binding tags to v.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})
}
