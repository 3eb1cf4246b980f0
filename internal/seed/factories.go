// Package seed generates demo profiles, posts, likes and comments through
// the repository interfaces, so it works against every backend.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"quilog/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds domain entities without persisting them. The same seed
// always yields the same sequence.
type Factory struct {
	faker   *gofakeit.Faker
	now     time.Time
	maxDays int
}

// NewFactory returns a Factory. A zero seed picks a random one; maxDays
// bounds how far back post timestamps reach.
func NewFactory(seed int64, now time.Time, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{faker: gofakeit.New(seed), now: now, maxDays: maxDays}
}

// Profile builds a user profile with a fresh id.
func (f *Factory) Profile() *models.Profile {
	p := f.faker.Person()
	handle := strings.ToLower(p.FirstName + p.LastName)
	return &models.Profile{
		ID:         f.faker.UUID(),
		Name:       p.FirstName + " " + p.LastName,
		Email:      strings.ToLower(p.Contact.Email),
		Profession: p.Job.Title,
		Phone:      p.Contact.Phone,
		Photo:      fmt.Sprintf("https://i.pravatar.cc/150?u=%s", handle),
		Twitter:    "@" + handle,
		LinkedIn:   "https://www.linkedin.com/in/" + handle,
	}
}

// Post builds a post by author, created some time in the last maxDays.
func (f *Factory) Post(author *models.Profile) *models.Post {
	created := f.now.Add(-time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute).UTC()
	return &models.Post{
		ID:          f.faker.UUID(),
		Title:       strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), "."),
		Content:     clip(f.faker.Paragraph(1, f.faker.Number(2, 4), 10, " "), models.MaxContentLength),
		Author:      author.Name,
		Tags:        strings.Join([]string{f.faker.Word(), f.faker.Word()}, ", "),
		Category:    f.faker.RandomString(models.Categories),
		PublishDate: created.Format("2006-01-02"),
		CoverImage:  fmt.Sprintf("https://picsum.photos/seed/%s/800/400", f.faker.UUID()),
		CreatedAt:   created,
		UserID:      author.ID,
		UserName:    author.Name,
		Likes:       []string{},
		Comments:    []string{},
	}
}

// CommentText returns one or two sentences of comment text.
func (f *Factory) CommentText() string {
	return clip(f.faker.Sentence(f.faker.Number(4, 16)), models.MaxContentLength)
}

// Pick returns up to n distinct entries of from, in random order.
func (f *Factory) Pick(from []*models.Profile, n int) []*models.Profile {
	if n > len(from) {
		n = len(from)
	}
	idx := make([]int, len(from))
	for i := range idx {
		idx[i] = i
	}
	out := make([]*models.Profile, 0, n)
	for i := 0; i < n; i++ {
		j := f.faker.Number(i, len(idx)-1)
		idx[i], idx[j] = idx[j], idx[i]
		out = append(out, from[idx[i]])
	}
	return out
}

// Number returns an int in [min, max].
func (f *Factory) Number(min, max int) int {
	if max <= min {
		return min
	}
	return f.faker.Number(min, max)
}

func clip(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}
