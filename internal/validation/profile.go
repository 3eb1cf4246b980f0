package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"quilog/internal/models"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9 ()\-]{5,20}$`)

// ValidateProfile checks the non-empty fields of a profile patch.
func ValidateProfile(p models.Profile) error {
	if utf8.RuneCountInString(p.Name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	if p.Email != "" {
		if err := ValidateEmail(p.Email); err != nil {
			return err
		}
	}
	if p.Phone != "" && !phoneRegex.MatchString(p.Phone) {
		return fmt.Errorf("invalid phone number")
	}
	if p.Photo != "" {
		if err := ValidateURL(p.Photo); err != nil {
			return fmt.Errorf("photo: %w", err)
		}
	}
	return nil
}
