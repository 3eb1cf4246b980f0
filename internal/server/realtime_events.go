package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"quilog/internal/models"
	"quilog/internal/notifications"
	"quilog/internal/observability"
)

// Event type constants prevent typos in event names.
const (
	EventPostCreated      = "post_created"
	EventPostLikesUpdated = "post_likes_updated"
	EventCommentAppended  = "comment_appended"
	EventProfileUpdated   = "profile_updated"
	EventConnected        = "connected"
)

// Event is the envelope pushed to feed websockets and Redis channels.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// feedEvents turns engagement changes into realtime events. With Redis the
// hub receives them back through its subscription; without it they go to
// the hub directly.
//
// Feed events reach every socket once through the broadcast path. The user
// channel carries only events meant for one user.
type feedEvents struct {
	hub      *notifications.Hub
	notifier *notifications.Notifier
}

func newFeedEvents(hub *notifications.Hub, notifier *notifications.Notifier) *feedEvents {
	return &feedEvents{hub: hub, notifier: notifier}
}

// PostCreated announces a newly stored post.
func (e *feedEvents) PostCreated(ctx context.Context, post *models.Post) {
	e.broadcast(ctx, EventPostCreated, map[string]any{
		"post_id":    post.ID,
		"author_id":  post.UserID,
		"title":      post.Title,
		"created_at": post.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

func (e *feedEvents) LikesChanged(ctx context.Context, postID string, likes []string) {
	e.broadcast(ctx, EventPostLikesUpdated, map[string]any{
		"post_id":    postID,
		"likes":      likes,
		"like_count": len(likes),
	})
}

func (e *feedEvents) CommentAppended(ctx context.Context, postID string, comment *models.Comment) {
	e.broadcast(ctx, EventCommentAppended, map[string]any{
		"post_id": postID,
		"comment": comment,
	})
}

// ProfileUpdated tells the user's own sockets to refresh their session.
func (e *feedEvents) ProfileUpdated(ctx context.Context, profile *models.Profile) {
	if profile == nil || profile.ID == "" {
		return
	}
	message, ok := e.encode(ctx, EventProfileUpdated, profile)
	if !ok {
		return
	}
	if !e.notifier.Enabled() {
		e.hub.Broadcast(profile.ID, message)
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := e.notifier.PublishUser(ctx, profile.ID, message); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to publish user event",
			slog.String("event_type", EventProfileUpdated),
			slog.String("user_id", profile.ID),
			slog.String("error", err.Error()))
	}
}

func (e *feedEvents) encode(ctx context.Context, eventType string, payload any) (string, bool) {
	eventJSON, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		observability.GlobalLogger.ErrorContext(ctx, "failed to marshal event",
			slog.String("event_type", eventType), slog.String("error", err.Error()))
		return "", false
	}
	observability.RealtimeEvents.WithLabelValues(eventType).Inc()
	return string(eventJSON), true
}

func (e *feedEvents) broadcast(ctx context.Context, eventType string, payload any) {
	message, ok := e.encode(ctx, eventType, payload)
	if !ok {
		return
	}
	if !e.notifier.Enabled() {
		e.hub.BroadcastAll(message)
		return
	}

	// the write is already committed; publish even if the caller went away
	ctx = context.WithoutCancel(ctx)
	if err := e.notifier.PublishBroadcast(ctx, message); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "failed to publish broadcast event",
			slog.String("event_type", eventType), slog.String("error", err.Error()))
	}
}
