package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// requiredMax validates a required free-text field with a length ceiling.
// Lengths are counted in runes so multi-byte vessel names are not penalized.
func requiredMax(value string, max int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("is required")
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("must be at most %d characters", max)
	}
	return nil
}

func ValidateTitle(title string) error {
	return requiredMax(title, 200)
}

func ValidateVesselName(name string) error {
	return requiredMax(name, 100)
}

func ValidateLocation(location string) error {
	return requiredMax(location, 200)
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > 2000 {
		return fmt.Errorf("must be at most 2000 characters")
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("is required")
	}
	if len(email) > 254 {
		return fmt.Errorf("must be at most 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("is not a valid email address")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("must be at least 8 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("must be at most 128 characters")
	}
	return nil
}
