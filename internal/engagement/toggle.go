package engagement

import (
	"context"
	"sync"

	"quilog/internal/models"
	"quilog/internal/observability"
	"quilog/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// ToggleInput is one like toggle request. Likes is the like set the caller
// last observed.
type ToggleInput struct {
	PostID string
	UserID string
	Likes  []string
}

// ToggleResult reports the applied toggle.
type ToggleResult struct {
	Liked bool
	Likes []string
}

// Toggler runs the like toggle protocol.
type Toggler struct {
	posts    repository.PostRepository
	listener Listener
	// Optimistic reports whether a toggle by userID is shown before the
	// write is confirmed. Nil means never.
	optimistic func(ctx context.Context, userID string) bool

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// TogglerOption configures a Toggler.
type TogglerOption func(*Toggler)

// WithOptimistic enables optimistic updates for users where enabled returns true.
func WithOptimistic(enabled func(ctx context.Context, userID string) bool) TogglerOption {
	return func(t *Toggler) { t.optimistic = enabled }
}

// NewToggler returns a Toggler that notifies listener of applied toggles.
func NewToggler(posts repository.PostRepository, listener Listener, opts ...TogglerOption) *Toggler {
	if listener == nil {
		listener = nopListener{}
	}
	t := &Toggler{posts: posts, listener: listener, inFlight: make(map[string]struct{})}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Toggler) acquire(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.inFlight[key]; busy {
		return false
	}
	t.inFlight[key] = struct{}{}
	return true
}

func (t *Toggler) release(key string) {
	t.mu.Lock()
	delete(t.inFlight, key)
	t.mu.Unlock()
}

// Toggle flips in.UserID's membership in the post's like set. The target
// state is derived from in.Likes. Only one toggle per post and user may be
// outstanding; a concurrent second call fails with CONFLICT.
func (t *Toggler) Toggle(ctx context.Context, in ToggleInput) (*ToggleResult, error) {
	if in.UserID == "" {
		observability.LikeToggles.WithLabelValues("none", "auth_required").Inc()
		return nil, models.NewAuthRequiredError("like posts")
	}

	key := in.PostID + "\x00" + in.UserID
	if !t.acquire(key) {
		observability.LikeToggles.WithLabelValues("none", "conflict").Inc()
		return nil, models.NewConflictError("a like toggle for this post is already in progress")
	}
	defer t.release(key)

	liking := !contains(in.Likes, in.UserID)
	direction := "off"
	if liking {
		direction = "on"
	}

	span, ctx := observability.NewSpan(ctx, "engagement.ToggleLike",
		attribute.String("post.id", in.PostID),
		attribute.String("like.direction", direction),
	)
	defer span.End()

	next := nextLikes(in.Likes, in.UserID, liking)
	optimistic := t.optimistic != nil && t.optimistic(ctx, in.UserID)
	if optimistic {
		t.listener.LikesChanged(ctx, in.PostID, next)
	}

	var err error
	if liking {
		err = t.posts.AddLike(ctx, in.PostID, in.UserID)
	} else {
		err = t.posts.RemoveLike(ctx, in.PostID, in.UserID)
	}
	if err != nil {
		span.SetError(err)
		observability.LikeToggles.WithLabelValues(direction, "error").Inc()
		if optimistic {
			t.listener.LikesChanged(ctx, in.PostID, append([]string{}, in.Likes...))
		}
		return nil, err
	}

	observability.LikeToggles.WithLabelValues(direction, "ok").Inc()
	if !optimistic {
		t.listener.LikesChanged(ctx, in.PostID, next)
	}
	return &ToggleResult{Liked: liking, Likes: next}, nil
}

// nextLikes returns the like set after the toggle without mutating likes.
func nextLikes(likes []string, userID string, liking bool) []string {
	if liking {
		out := make([]string, 0, len(likes)+1)
		out = append(out, likes...)
		return append(out, userID)
	}
	out := make([]string, 0, len(likes))
	for _, id := range likes {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
