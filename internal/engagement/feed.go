package engagement

import (
	"context"
	"sort"

	"quilog/internal/models"
	"quilog/internal/repository"
)

// Feed assembles ordered post lists. It does not resolve engagement; callers
// ask the Aggregator per post.
type Feed struct {
	posts repository.PostRepository
}

// NewFeed returns a Feed over posts.
func NewFeed(posts repository.PostRepository) *Feed {
	return &Feed{posts: posts}
}

// All returns every post, newest first.
func (f *Feed) All(ctx context.Context) ([]*models.Post, error) {
	posts, err := f.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return Arrange(posts), nil
}

// ByUser returns the posts authored by userID, newest first.
func (f *Feed) ByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := f.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Arrange(posts), nil
}

// Post returns one normalised post. A missing post is a NOT_FOUND error.
func (f *Feed) Post(ctx context.Context, id string) (*models.Post, error) {
	post, err := f.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Normalize()
	return post, nil
}

// Arrange normalises posts in place and sorts them by CreatedAt descending.
// Posts with equal timestamps keep their fetch order.
func Arrange(posts []*models.Post) []*models.Post {
	if posts == nil {
		posts = []*models.Post{}
	}
	for _, p := range posts {
		p.Normalize()
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}
