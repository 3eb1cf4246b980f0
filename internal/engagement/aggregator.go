package engagement

import (
	"context"
	"fmt"

	"quilog/internal/models"
	"quilog/internal/observability"
	"quilog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// DefaultFanout bounds concurrent lookups per aggregation when none is configured.
const DefaultFanout = 8

// Aggregator joins a post's like and comment sets against the users and
// comments collections. It holds no cache; every call reads the store.
type Aggregator struct {
	users    repository.UserRepository
	comments repository.CommentRepository
	fanout   int
}

// NewAggregator returns an Aggregator issuing at most fanout lookups at once.
func NewAggregator(users repository.UserRepository, comments repository.CommentRepository, fanout int) *Aggregator {
	if fanout <= 0 {
		fanout = DefaultFanout
	}
	return &Aggregator{users: users, comments: comments, fanout: fanout}
}

// lookupAll runs fetch for every id with bounded concurrency. Results keep
// the order of ids; ids that resolve to NOT_FOUND leave a nil slot. Any
// other error cancels the remaining lookups and is returned.
func lookupAll[T any](ctx context.Context, limit int, ids []string, fetch func(context.Context, string) (*T, error)) ([]*T, error) {
	out := make([]*T, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			v, err := fetch(gctx, id)
			if err != nil {
				if models.IsNotFound(err) {
					return nil
				}
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveLikes returns the profiles of likes in like-set order. Ids without
// a profile are dropped.
func (a *Aggregator) ResolveLikes(ctx context.Context, likes []string) ([]models.Profile, error) {
	defer observability.TrackAggregation("likes")()
	span, ctx := observability.NewSpan(ctx, "engagement.ResolveLikes", attribute.Int("likes.count", len(likes)))
	defer span.End()

	observability.AggregationFanout.WithLabelValues("likes").Observe(float64(len(likes)))
	found, err := lookupAll(ctx, a.fanout, likes, a.users.GetByID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("resolve likes: %w", err)
	}

	profiles := make([]models.Profile, 0, len(found))
	for _, p := range found {
		if p != nil {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

// ResolveComments returns the comments named by ids joined with their
// authors, in ids order. Unresolved comments are dropped; a missing author
// yields an empty profile shown as UnknownUser.
func (a *Aggregator) ResolveComments(ctx context.Context, ids []string) ([]models.ResolvedComment, error) {
	defer observability.TrackAggregation("comments")()
	span, ctx := observability.NewSpan(ctx, "engagement.ResolveComments", attribute.Int("comments.count", len(ids)))
	defer span.End()

	found, err := lookupAll(ctx, a.fanout, ids, a.comments.GetByID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("resolve comments: %w", err)
	}

	comments := make([]*models.Comment, 0, len(found))
	var authorIDs []string
	seen := make(map[string]int)
	for _, c := range found {
		if c == nil {
			continue
		}
		comments = append(comments, c)
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = len(authorIDs)
			authorIDs = append(authorIDs, c.UserID)
		}
	}

	observability.AggregationFanout.WithLabelValues("comments").Observe(float64(len(ids) + len(authorIDs)))
	authors, err := lookupAll(ctx, a.fanout, authorIDs, a.users.GetByID)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("resolve comment authors: %w", err)
	}

	resolved := make([]models.ResolvedComment, 0, len(comments))
	for _, c := range comments {
		var author models.Profile
		if p := authors[seen[c.UserID]]; p != nil {
			author = *p
		}
		resolved = append(resolved, models.ResolvedComment{
			Comment:    *c,
			Author:     author,
			AuthorName: author.DisplayName(),
		})
	}
	return resolved, nil
}

// Resolve builds the engagement view of post. It has no side effects.
func (a *Aggregator) Resolve(ctx context.Context, post *models.Post) (*models.EngagementView, error) {
	span, ctx := observability.NewSpan(ctx, "engagement.Resolve", attribute.String("post.id", post.ID))
	defer span.End()

	view := &models.EngagementView{Post: *post}
	view.Post.Normalize()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		likers, err := a.ResolveLikes(gctx, view.Post.Likes)
		view.UsersWhoLiked = likers
		return err
	})
	g.Go(func() error {
		comments, err := a.ResolveComments(gctx, view.Post.Comments)
		view.Comments = comments
		return err
	})
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}
	return view, nil
}
