// Package validation provides input validation utilities
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"
)

var (
	digitPattern    = regexp.MustCompile(`[0-9]`)
	specialPattern  = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// ReservedUsernames collide with fixed routes under /profile/.
var ReservedUsernames = map[string]bool{"edit": true}

// ValidatePassword checks if a password meets security requirements
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters long")
	}

	// prevent unreasonable inputs
	if len(password) > 128 {
		return errors.New("password must not exceed 128 characters")
	}

	hasUpper, hasLower := false, false
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}

	if !digitPattern.MatchString(password) {
		return errors.New("password must contain at least one digit")
	}

	if !specialPattern.MatchString(password) {
		return fmt.Errorf("password must contain at least one special character (!@#$%%^&*)")
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	n := len([]rune(username))
	if n < 3 {
		return errors.New("username must be at least 3 characters long")
	}

	if n > 150 {
		return errors.New("username must not exceed 150 characters")
	}

	if !usernamePattern.MatchString(username) {
		return errors.New("username can only contain letters, digits and @/./+/-/_")
	}

	if ReservedUsernames[username] {
		return fmt.Errorf("username %q is reserved", username)
	}

	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if len(email) > 254 {
		return errors.New("email must not exceed 254 characters")
	}

	if !emailPattern.MatchString(email) {
		return errors.New("invalid email format")
	}

	return nil
}

// ValidateSlug checks a category slug: 1-64 lowercase latin letters, digits, hyphens or underscores.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if len(slug) > 64 {
		return errors.New("slug must not exceed 64 characters")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q may only contain lowercase latin letters, digits, hyphens and underscores", slug)
	}
	return nil
}
