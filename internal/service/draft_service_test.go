package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"quilog/internal/cache"
	"quilog/internal/models"
	"quilog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftService_SaveGetDiscard(t *testing.T) {
	mr := setupRedis(t)
	svc := NewDraftService(0)
	svc.now = func() time.Time { return testNow }
	ctx := context.Background()

	none, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, none)

	saved, err := svc.Save(ctx, "u1", models.Draft{Title: "Half done", Content: "So far"})
	require.NoError(t, err)
	assert.Equal(t, testNow, saved.SavedAt)
	assert.Equal(t, cache.DraftTTL, mr.TTL("draft:u1"))

	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Half done", got.Title)

	require.NoError(t, svc.Discard(ctx, "u1"))
	assert.False(t, mr.Exists("draft:u1"))
	require.NoError(t, svc.Discard(ctx, "u1"))
}

func TestDraftService_LenientDecode(t *testing.T) {
	mr := setupRedis(t)
	svc := NewDraftService(time.Hour)
	ctx := context.Background()

	require.NoError(t, mr.Set("draft:u1", `{"title":"Partial","legacyField":42}`))
	got, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Partial", got.Title)
	assert.Empty(t, got.Content)

	require.NoError(t, mr.Set("draft:u2", `{"title":`))
	got, err = svc.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("draft:u2"))
}

func TestDraftService_Errors(t *testing.T) {
	prev := cache.GetClient()
	cache.SetClient(nil)
	t.Cleanup(func() { cache.SetClient(prev) })

	svc := NewDraftService(0)
	ctx := context.Background()

	_, err := svc.Save(ctx, "", models.Draft{})
	assertCode(t, err, models.CodeAuthRequired)

	_, err = svc.Save(ctx, "u1", models.Draft{Content: strings.Repeat("x", 501)})
	assertValidationError(t, err)

	_, err = svc.Save(ctx, "u1", models.Draft{Title: "t"})
	assert.ErrorIs(t, err, ErrDraftsUnavailable)

	assert.NoError(t, svc.Discard(ctx, "u1"))
}

func TestPostService_CreatePostClearsDraft(t *testing.T) {
	mr := setupRedis(t)
	drafts := NewDraftService(0)
	_, err := drafts.Save(context.Background(), "u1", models.Draft{Title: "wip"})
	require.NoError(t, err)

	svc := NewPostService(testutil.NewMemStore().Store(false), PostServiceConfig{Drafts: drafts})
	_, err = svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Title: "Done", Content: "Finished"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("draft:u1"))
}
