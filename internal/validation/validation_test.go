package validation

import (
	"strings"
	"testing"

	"quilog/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	// 254 chars total: 64 local + @ + 185 domain label + ".com" (4)
	emailAt254 := strings.Repeat("a", 64) + "@" + strings.Repeat("b", 185) + ".com"
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "test@example.com", false},
		{"Exactly 254 Characters", emailAt254, false},
		{"Too Long", "a" + emailAt254, true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Space In Local Part", "user @example.com", true},
		{"Trailing Dot In Domain", "user@example.com.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePost(t *testing.T) {
	t.Parallel()
	valid := PostFields{Title: "Hello", Content: "World", Category: "Technology", PublishDate: "2024-05-01", CoverImage: "https://placehold.co/100"}
	with := func(fn func(*PostFields)) PostFields {
		f := valid
		fn(&f)
		return f
	}

	tests := []struct {
		name    string
		fields  PostFields
		wantErr bool
	}{
		{"Valid", valid, false},
		{"Minimal", PostFields{Title: "t", Content: "c"}, false},
		{"Blank Title", with(func(f *PostFields) { f.Title = "  " }), true},
		{"Long Title", with(func(f *PostFields) { f.Title = strings.Repeat("x", MaxTitleLength+1) }), true},
		{"Blank Content", with(func(f *PostFields) { f.Content = "" }), true},
		{"Content At Limit", with(func(f *PostFields) { f.Content = strings.Repeat("é", models.MaxContentLength) }), false},
		{"Content Over Limit", with(func(f *PostFields) { f.Content = strings.Repeat("é", models.MaxContentLength+1) }), true},
		{"Unknown Category", with(func(f *PostFields) { f.Category = "Gardening" }), true},
		{"Free Form Date", with(func(f *PostFields) { f.PublishDate = "early May" }), false},
		{"Oversized Date", with(func(f *PostFields) { f.PublishDate = strings.Repeat("9", 65) }), true},
		{"Relative Cover", with(func(f *PostFields) { f.CoverImage = "/img.png" }), true},
		{"FTP Cover", with(func(f *PostFields) { f.CoverImage = "ftp://example.com/a.png" }), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePost(tt.fields)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateProfile(models.Profile{}))
	assert.NoError(t, ValidateProfile(models.Profile{Name: "Ada", Email: "ada@example.com", Phone: "+44 (20) 7946-0958", Photo: "https://example.com/a.png"}))
	assert.Error(t, ValidateProfile(models.Profile{Email: "nope"}))
	assert.Error(t, ValidateProfile(models.Profile{Phone: "call me"}))
	assert.Error(t, ValidateProfile(models.Profile{Photo: "a.png"}))
	assert.Error(t, ValidateProfile(models.Profile{Name: strings.Repeat("n", 101)}))
}
