package utils

import (
	"fmt"
	"math"
	"regexp"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateAmount validates a currency amount such as an estimated damage cost
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("amount must be a finite number")
	}

	if amount < 0 {
		return fmt.Errorf("amount must not be negative: %.2f", amount)
	}

	return nil
}

// SanitizeString removes control characters other than tab and newline
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
