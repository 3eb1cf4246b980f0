package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"quilog/internal/engagement"
	"quilog/internal/models"
	"quilog/internal/observability"
	"quilog/internal/repository"
)

// Options configuration for the seeder
type Options struct {
	Users int
	Posts int
	// MaxLikes and MaxComments bound the engagement generated per post.
	MaxLikes    int
	MaxComments int
	// Orphans writes this many comment documents that no post references.
	Orphans int
	MaxDays int
	// Seed makes runs reproducible; zero is random.
	Seed int64
	Now  time.Time
}

// Summary counts what a run wrote.
type Summary struct {
	Users    int `json:"users"`
	Posts    int `json:"posts"`
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Orphans  int `json:"orphans"`
}

// Seeder writes generated data into a Store.
type Seeder struct {
	store   *repository.Store
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder for store.
func NewSeeder(store *repository.Store, opts Options) *Seeder {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	return &Seeder{
		store:   store,
		opts:    opts,
		factory: NewFactory(opts.Seed, opts.Now, opts.MaxDays),
	}
}

// Run creates the profiles, then the posts, then their likes and comments.
// Comments go through the append protocol so every backend links them the
// way the API does.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log := observability.GlobalLogger
	sum := &Summary{}

	users := make([]*models.Profile, 0, s.opts.Users)
	for i := 0; i < s.opts.Users; i++ {
		p := s.factory.Profile()
		if err := s.store.Users.Upsert(ctx, p); err != nil {
			return sum, fmt.Errorf("seed profile: %w", err)
		}
		users = append(users, p)
		sum.Users++
	}
	if len(users) == 0 {
		return sum, nil
	}

	for i := 0; i < s.opts.Posts; i++ {
		author := users[s.factory.Number(0, len(users)-1)]
		post := s.factory.Post(author)
		if err := s.store.Posts.Create(ctx, post); err != nil {
			return sum, fmt.Errorf("seed post: %w", err)
		}
		sum.Posts++

		for _, liker := range s.factory.Pick(users, s.factory.Number(0, s.opts.MaxLikes)) {
			if err := s.store.Posts.AddLike(ctx, post.ID, liker.ID); err != nil {
				return sum, fmt.Errorf("seed like: %w", err)
			}
			sum.Likes++
		}

		at := post.CreatedAt
		appender := engagement.NewAppender(s.store.Posts, s.store.Comments, nil,
			engagement.WithClock(func() time.Time {
				at = at.Add(time.Duration(s.factory.Number(1, 180)) * time.Minute)
				return at
			}),
			engagement.WithIDGenerator(s.factory.faker.UUID))
		for n := s.factory.Number(0, s.opts.MaxComments); n > 0; n-- {
			commenter := users[s.factory.Number(0, len(users)-1)]
			if _, err := appender.Append(ctx, engagement.AppendInput{
				PostID: post.ID,
				UserID: commenter.ID,
				Text:   s.factory.CommentText(),
			}); err != nil {
				return sum, fmt.Errorf("seed comment: %w", err)
			}
			sum.Comments++
		}
	}

	for i := 0; i < s.opts.Orphans; i++ {
		c := &models.Comment{
			ID:        s.factory.faker.UUID(),
			Text:      s.factory.CommentText(),
			UserID:    users[s.factory.Number(0, len(users)-1)].ID,
			CreatedAt: s.opts.Now.UTC(),
		}
		if err := s.store.Comments.Create(ctx, c); err != nil {
			return sum, fmt.Errorf("seed orphan comment: %w", err)
		}
		sum.Orphans++
	}

	log.InfoContext(ctx, "seeding complete",
		slog.String("backend", s.store.Backend),
		slog.Int("users", sum.Users),
		slog.Int("posts", sum.Posts),
		slog.Int("likes", sum.Likes),
		slog.Int("comments", sum.Comments),
		slog.Int("orphans", sum.Orphans),
	)
	return sum, nil
}
