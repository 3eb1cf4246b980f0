package engagement

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"quilog/internal/models"
	"quilog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAggregator(m *testutil.MemStore, fanout int) *Aggregator {
	store := m.Store(false)
	return NewAggregator(store.Users, store.Comments, fanout)
}

func TestResolveLikes_KeepsOrderAndDropsMissing(t *testing.T) {
	m := testutil.NewMemStore()
	m.PutUser(models.Profile{ID: "u1", Name: "Ada"})
	m.PutUser(models.Profile{ID: "u3", Name: "Cy"})

	got, err := newAggregator(m, 2).ResolveLikes(context.Background(), []string{"u3", "u2", "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u3", got[0].ID)
	assert.Equal(t, "u1", got[1].ID)
	assert.Equal(t, 3, m.Calls("users.GetByID"))
}

func TestResolveLikes_Empty(t *testing.T) {
	m := testutil.NewMemStore()
	got, err := newAggregator(m, 0).ResolveLikes(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, m.Calls("users.GetByID"))
}

func TestResolveComments_JoinsAuthors(t *testing.T) {
	m := testutil.NewMemStore()
	now := time.Now().UTC()
	m.PutUser(models.Profile{ID: "u1", Name: "Ada"})
	m.PutComment(models.Comment{ID: "c1", Text: "first", UserID: "u1", CreatedAt: now})
	m.PutComment(models.Comment{ID: "c2", Text: "second", UserID: "ghost", CreatedAt: now})
	m.PutComment(models.Comment{ID: "c3", Text: "third", UserID: "u1", CreatedAt: now})

	got, err := newAggregator(m, 4).ResolveComments(context.Background(), []string{"c3", "missing", "c2", "c1"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "c3", got[0].ID)
	assert.Equal(t, "Ada", got[0].AuthorName)
	assert.Equal(t, "c2", got[1].ID)
	assert.Equal(t, models.UnknownUser, got[1].AuthorName)
	assert.Empty(t, got[1].Author.ID)
	assert.Equal(t, "c1", got[2].ID)

	// one lookup per distinct author
	assert.Equal(t, 2, m.Calls("users.GetByID"))
}

func TestResolve_BuildsView(t *testing.T) {
	m := testutil.NewMemStore()
	m.PutUser(models.Profile{ID: "u1", Name: "Ada"})
	m.PutUser(models.Profile{ID: "u2", Name: "Bo"})
	m.PutComment(models.Comment{ID: "c1", Text: "nice", UserID: "u2"})

	post := &models.Post{ID: "p1", Likes: []string{"u1", "u2"}, Comments: []string{"c1"}}
	agg := newAggregator(m, 8)

	view, err := agg.Resolve(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, "p1", view.Post.ID)
	require.Len(t, view.UsersWhoLiked, 2)
	assert.Equal(t, "Ada", view.UsersWhoLiked[0].Name)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "Bo", view.Comments[0].AuthorName)

	again, err := agg.Resolve(context.Background(), post)
	require.NoError(t, err)
	assert.Equal(t, view, again)
}

func TestResolve_NilSetsYieldEmptyView(t *testing.T) {
	view, err := newAggregator(testutil.NewMemStore(), 8).Resolve(context.Background(), &models.Post{ID: "p1"})
	require.NoError(t, err)
	assert.Empty(t, view.UsersWhoLiked)
	assert.Empty(t, view.Comments)
	assert.NotNil(t, view.Post.Likes)
}

func TestResolve_StoreErrorAborts(t *testing.T) {
	m := testutil.NewMemStore()
	m.PutUser(models.Profile{ID: "u1", Name: "Ada"})
	boom := errors.New("connection reset")
	m.SetHook(func(_ context.Context, op string, ids ...string) error {
		if op == "users.GetByID" && ids[0] == "u2" {
			return boom
		}
		return nil
	})

	_, err := newAggregator(m, 8).Resolve(context.Background(), &models.Post{ID: "p1", Likes: []string{"u1", "u2"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestResolveLikes_BoundsConcurrency(t *testing.T) {
	m := testutil.NewMemStore()
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a' + i))
		m.PutUser(models.Profile{ID: ids[i], Name: ids[i]})
	}

	var active, peak atomic.Int32
	m.SetHook(func(context.Context, string, ...string) error {
		n := active.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return nil
	})

	got, err := newAggregator(m, 3).ResolveLikes(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
