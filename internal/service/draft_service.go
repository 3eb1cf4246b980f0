package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"quilog/internal/cache"
	"quilog/internal/models"
	"quilog/internal/observability"
)

// ErrDraftsUnavailable is returned when no Redis client is configured.
var ErrDraftsUnavailable = errors.New("draft storage unavailable")

// DraftService keeps one unsaved post per user in Redis.
type DraftService struct {
	ttl time.Duration
	now func() time.Time
}

func NewDraftService(ttl time.Duration) *DraftService {
	if ttl <= 0 {
		ttl = cache.DraftTTL
	}
	return &DraftService{ttl: ttl, now: time.Now}
}

// Save replaces the user's draft and refreshes its expiry.
func (s *DraftService) Save(ctx context.Context, userID string, d models.Draft) (*models.Draft, error) {
	if userID == "" {
		return nil, models.NewAuthRequiredError("save drafts")
	}
	if utf8.RuneCountInString(d.Content) > models.MaxContentLength {
		return nil, models.NewValidationError("Content too long (max 500 characters)")
	}
	if cache.GetClient() == nil {
		return nil, models.NewInternalError(ErrDraftsUnavailable)
	}

	d.SavedAt = s.now().UTC()
	if err := cache.SetJSON(ctx, cache.DraftKey(userID), d, s.ttl); err != nil {
		return nil, err
	}
	return &d, nil
}

// Get returns the user's draft, or nil when there is none. An undecodable
// draft is dropped and reported as missing.
func (s *DraftService) Get(ctx context.Context, userID string) (*models.Draft, error) {
	if userID == "" {
		return nil, models.NewAuthRequiredError("load drafts")
	}

	var d models.Draft
	found, err := cache.GetJSON(ctx, cache.DraftKey(userID), &d)
	if err != nil {
		if isDecodeError(err) {
			observability.GlobalLogger.WarnContext(ctx, "dropping undecodable draft",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			cache.Invalidate(ctx, cache.DraftKey(userID))
			return nil, nil
		}
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &d, nil
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// Discard deletes the user's draft. Missing drafts are not an error.
func (s *DraftService) Discard(ctx context.Context, userID string) error {
	if userID == "" {
		return models.NewAuthRequiredError("discard drafts")
	}
	client := cache.GetClient()
	if client == nil {
		return nil
	}
	return client.Del(ctx, cache.DraftKey(userID)).Err()
}
