package middleware

import (
	"errors"
	"regexp"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateAccountSlug validates an account slug path parameter.
func ValidateAccountSlug(slug string) error {
	if len(slug) == 0 {
		return errors.New("account slug cannot be empty")
	}
	if len(slug) > 64 {
		return errors.New("account slug exceeds maximum length")
	}
	if !slugPattern.MatchString(slug) {
		return errors.New("invalid account slug format")
	}
	return nil
}
