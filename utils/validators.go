package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	zipPattern   = regexp.MustCompile(`^[0-9]{5}(-[0-9]{4})?$`)
)

// RegisterValidators adds the custom binding tags used by request models
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return ValidatePhoneNumber(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register phone_number: %w", err)
	}

	if err := v.RegisterValidation("zip_code", func(fl validator.FieldLevel) bool {
		return ValidateZipCode(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register zip_code: %w", err)
	}

	return nil
}

// ValidatePhoneNumber accepts 7 to 15 digits with an optional leading +.
// Spaces, dashes, dots and parentheses are ignored.
func ValidatePhoneNumber(phoneNumber string) bool {
	return phonePattern.MatchString(CleanPhoneNumber(phoneNumber))
}

// CleanPhoneNumber strips formatting characters from a phone number
func CleanPhoneNumber(phoneNumber string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return replacer.Replace(strings.TrimSpace(phoneNumber))
}

// ValidateZipCode accepts 5 digit ZIP codes and ZIP+4
func ValidateZipCode(zip string) bool {
	return zipPattern.MatchString(strings.TrimSpace(zip))
}
