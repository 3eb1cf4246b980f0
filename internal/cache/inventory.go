package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	SessionKeyPrefix = "session:%s"
	DraftKeyPrefix   = "draft:%s"
	ProfileKeyPrefix = "profile:%s"
)

const (
	SessionTTL = time.Hour
	DraftTTL   = 7 * 24 * time.Hour
	ProfileTTL = 5 * time.Minute
)

// SessionKey holds the cached session snapshot for a user.
func SessionKey(userID string) string {
	return fmt.Sprintf(SessionKeyPrefix, userID)
}

func DraftKey(userID string) string {
	return fmt.Sprintf(DraftKeyPrefix, userID)
}

func ProfileKey(userID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateProfile drops every cached copy of a user's profile.
func InvalidateProfile(ctx context.Context, userID string) {
	Invalidate(ctx, ProfileKey(userID))
	Invalidate(ctx, SessionKey(userID))
}
