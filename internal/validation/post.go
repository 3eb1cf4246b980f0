package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"quilog/internal/models"
)

// MaxTitleLength bounds post titles in runes.
const MaxTitleLength = 200

// PostFields is the author-editable part of a post.
type PostFields struct {
	Title       string
	Content     string
	Category    string
	PublishDate string
	CoverImage  string
}

// ValidatePost checks the author-editable fields of a post.
func ValidatePost(f PostFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(f.Title) > MaxTitleLength {
		return fmt.Errorf("title must not exceed %d characters", MaxTitleLength)
	}
	if strings.TrimSpace(f.Content) == "" {
		return fmt.Errorf("content is required")
	}
	if utf8.RuneCountInString(f.Content) > models.MaxContentLength {
		return fmt.Errorf("content must not exceed %d characters", models.MaxContentLength)
	}
	if f.Category != "" && !models.IsCategory(f.Category) {
		return fmt.Errorf("unknown category %q", f.Category)
	}
	if utf8.RuneCountInString(f.PublishDate) > 64 {
		return fmt.Errorf("publish date is too long")
	}
	if f.CoverImage != "" {
		if err := ValidateURL(f.CoverImage); err != nil {
			return fmt.Errorf("cover image: %w", err)
		}
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL must use http or https")
	}
	return nil
}
