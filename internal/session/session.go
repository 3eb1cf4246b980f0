// Package session resolves the signed-in user's profile snapshot.
//
// The users collection is authoritative. A Redis snapshot at session:<uid>
// covers store outages and users who have not created a profile yet, and
// the access token's claims are the last resort.
package session

import (
	"context"
	"log/slog"
	"time"

	"quilog/internal/cache"
	"quilog/internal/models"
	"quilog/internal/observability"
	"quilog/internal/repository"
)

// Source names where a Session's profile came from.
type Source string

const (
	SourceStore Source = "store"
	SourceCache Source = "cache"
	SourceToken Source = "token"
)

// Session is the resolved identity of the current user.
type Session struct {
	UserID  string         `json:"userId"`
	Profile models.Profile `json:"profile"`
	Source  Source         `json:"source"`
}

// DisplayName returns the name to attribute new content to.
func (s *Session) DisplayName() string {
	if s == nil || s.Profile.Name == "" {
		return ""
	}
	return s.Profile.Name
}

// Resolver builds Sessions.
type Resolver struct {
	users repository.UserRepository
	ttl   time.Duration
}

// NewResolver returns a Resolver that keeps snapshots for ttl.
// A non-positive ttl uses cache.SessionTTL.
func NewResolver(users repository.UserRepository, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = cache.SessionTTL
	}
	return &Resolver{users: users, ttl: ttl}
}

// Resolve returns the session for userID. claims is the token's view of
// the user; its ID is ignored.
func (r *Resolver) Resolve(ctx context.Context, userID string, claims models.Profile) (*Session, error) {
	profile, err := r.users.GetByID(ctx, userID)
	if err == nil {
		if err := cache.SetJSON(ctx, cache.SessionKey(userID), profile, r.ttl); err != nil {
			observability.GlobalLogger.WarnContext(ctx, "failed to refresh session snapshot",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
		return &Session{UserID: userID, Profile: *profile, Source: SourceStore}, nil
	}
	if !models.IsNotFound(err) {
		observability.GlobalLogger.WarnContext(ctx, "profile lookup failed, using cached session",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	var cached models.Profile
	if found, cerr := cache.GetJSON(ctx, cache.SessionKey(userID), &cached); cerr == nil && found {
		cached.ID = userID
		return &Session{UserID: userID, Profile: cached, Source: SourceCache}, nil
	}

	claims.ID = userID
	return &Session{UserID: userID, Profile: claims, Source: SourceToken}, nil
}

// Forget drops the cached snapshot for userID.
func (r *Resolver) Forget(ctx context.Context, userID string) {
	cache.Invalidate(ctx, cache.SessionKey(userID))
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}
