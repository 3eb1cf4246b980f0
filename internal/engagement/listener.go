// Package engagement resolves likes and comments into engagement views and
// runs the like toggle and comment append protocols.
package engagement

import (
	"context"

	"quilog/internal/models"
)

// Listener receives engagement changes after they are applied.
type Listener interface {
	LikesChanged(ctx context.Context, postID string, likes []string)
	CommentAppended(ctx context.Context, postID string, comment *models.Comment)
}

// Listeners fans every notification out to each listener in order.
type Listeners []Listener

func (ls Listeners) LikesChanged(ctx context.Context, postID string, likes []string) {
	for _, l := range ls {
		if l != nil {
			l.LikesChanged(ctx, postID, likes)
		}
	}
}

func (ls Listeners) CommentAppended(ctx context.Context, postID string, comment *models.Comment) {
	for _, l := range ls {
		if l != nil {
			l.CommentAppended(ctx, postID, comment)
		}
	}
}

type nopListener struct{}

func (nopListener) LikesChanged(context.Context, string, []string)           {}
func (nopListener) CommentAppended(context.Context, string, *models.Comment) {}
