package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quilog/internal/models"
	"quilog/internal/observability"
	"quilog/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// AppendInput is one comment submission.
type AppendInput struct {
	PostID string
	UserID string
	Text   string
}

// Appender runs the comment append protocol.
type Appender struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	listener Listener
	now      func() time.Time
	newID    func() string
}

// AppenderOption configures an Appender.
type AppenderOption func(*Appender)

// WithClock sets the timestamp source for new comments.
func WithClock(now func() time.Time) AppenderOption {
	return func(a *Appender) { a.now = now }
}

// WithIDGenerator sets the id source for new comments.
func WithIDGenerator(newID func() string) AppenderOption {
	return func(a *Appender) { a.newID = newID }
}

// NewAppender returns an Appender that notifies listener of new comments.
func NewAppender(posts repository.PostRepository, comments repository.CommentRepository, listener Listener, opts ...AppenderOption) *Appender {
	if listener == nil {
		listener = nopListener{}
	}
	a := &Appender{
		posts:    posts,
		comments: comments,
		listener: listener,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Append writes a new comment and links it to the post. Blank text or a
// missing user is a no-op and returns (nil, nil).
//
// Without a CommentLinker the comment is written before the link; if the
// link fails the comment document stays behind unreferenced and the link
// error is returned.
func (a *Appender) Append(ctx context.Context, in AppendInput) (*models.Comment, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" || in.UserID == "" {
		observability.CommentAppends.WithLabelValues("skipped").Inc()
		return nil, nil
	}

	comment := &models.Comment{
		ID:        a.newID(),
		Text:      text,
		UserID:    in.UserID,
		CreatedAt: a.now().UTC(),
	}

	span, ctx := observability.NewSpan(ctx, "engagement.AppendComment",
		attribute.String("post.id", in.PostID),
		attribute.String("comment.id", comment.ID),
	)
	defer span.End()

	if err := a.write(ctx, in.PostID, comment); err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.CommentAppends.WithLabelValues("ok").Inc()
	a.listener.CommentAppended(ctx, in.PostID, comment)
	return comment, nil
}

func (a *Appender) write(ctx context.Context, postID string, comment *models.Comment) error {
	if linker, ok := a.comments.(repository.CommentLinker); ok {
		if err := linker.CreateAndLink(ctx, postID, comment); err != nil {
			observability.CommentAppends.WithLabelValues("error").Inc()
			return err
		}
		return nil
	}

	if err := a.comments.Create(ctx, comment); err != nil {
		observability.CommentAppends.WithLabelValues("error").Inc()
		return fmt.Errorf("create comment: %w", err)
	}
	if err := a.posts.AppendComment(ctx, postID, comment.ID); err != nil {
		observability.CommentAppends.WithLabelValues("orphaned").Inc()
		return fmt.Errorf("link comment %s: %w", comment.ID, err)
	}
	return nil
}
