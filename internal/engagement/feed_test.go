package engagement

import (
	"context"
	"testing"
	"time"

	"quilog/internal/models"
	"quilog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(posts []*models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestFeed_AllNewestFirstWithStableTies(t *testing.T) {
	m := testutil.NewMemStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.PutPost(models.Post{ID: "old", CreatedAt: base})
	m.PutPost(models.Post{ID: "tieA", CreatedAt: base.Add(time.Hour)})
	m.PutPost(models.Post{ID: "new", CreatedAt: base.Add(2 * time.Hour)})
	m.PutPost(models.Post{ID: "tieB", CreatedAt: base.Add(time.Hour)})

	posts, err := NewFeed(m.Store(false).Posts).All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "tieA", "tieB", "old"}, ids(posts))
	for _, p := range posts {
		assert.NotNil(t, p.Likes)
		assert.NotNil(t, p.Comments)
	}
}

func TestFeed_ByUser(t *testing.T) {
	m := testutil.NewMemStore()
	base := time.Now()
	m.PutPost(models.Post{ID: "a", UserID: "u1", CreatedAt: base})
	m.PutPost(models.Post{ID: "b", UserID: "u2", CreatedAt: base})
	m.PutPost(models.Post{ID: "c", UserID: "u1", CreatedAt: base.Add(time.Minute)})

	posts, err := NewFeed(m.Store(false).Posts).ByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(posts))

	none, err := NewFeed(m.Store(false).Posts).ByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestFeed_PostNotFound(t *testing.T) {
	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "p1"})
	f := NewFeed(m.Store(false).Posts)

	p, err := f.Post(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, p.Likes)

	_, err = f.Post(context.Background(), "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestArrange_Nil(t *testing.T) {
	assert.Equal(t, []*models.Post{}, Arrange(nil))
}
