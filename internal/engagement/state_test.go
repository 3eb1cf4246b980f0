package engagement

import (
	"context"
	"testing"

	"quilog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_LookupStatuses(t *testing.T) {
	s := NewState()

	_, status := s.Lookup("p1")
	assert.Equal(t, StatusLoading, status)

	s.Load([]*models.Post{{ID: "p1", Title: "Hello"}})

	p, status := s.Lookup("p1")
	assert.Equal(t, StatusReady, status)
	assert.Equal(t, "Hello", p.Title)
	assert.NotNil(t, p.Likes)

	_, status = s.Lookup("p2")
	assert.Equal(t, StatusNotFound, status)
	assert.Equal(t, "not_found", status.String())
}

func TestState_AppliesEngagementChanges(t *testing.T) {
	s := NewState()
	s.Load([]*models.Post{{ID: "p1"}, {ID: "p2"}})

	var changed []string
	unsubscribe := s.Subscribe(func(postID string) { changed = append(changed, postID) })

	s.LikesChanged(context.Background(), "p1", []string{"u1"})
	s.CommentAppended(context.Background(), "p2", &models.Comment{ID: "c1"})
	s.CommentAppended(context.Background(), "p2", &models.Comment{ID: "c1"})
	s.LikesChanged(context.Background(), "unknown", []string{"u1"})

	p1, _ := s.Lookup("p1")
	assert.Equal(t, []string{"u1"}, p1.Likes)
	p2, _ := s.Lookup("p2")
	assert.Equal(t, []string{"c1"}, p2.Comments)
	assert.Equal(t, []string{"p1", "p2", "p2"}, changed)

	unsubscribe()
	s.LikesChanged(context.Background(), "p1", nil)
	assert.Len(t, changed, 3)
}

func TestState_PostsAreCopies(t *testing.T) {
	s := NewState()
	s.Load([]*models.Post{{ID: "p1", Likes: []string{"u1"}}, {ID: "p2"}})

	posts := s.Posts()
	require.Len(t, posts, 2)
	posts[0].Likes[0] = "mutated"

	p1, _ := s.Lookup("p1")
	assert.Equal(t, []string{"u1"}, p1.Likes)
}

func TestListeners_FanOut(t *testing.T) {
	a, b := &recordingListener{}, &recordingListener{}
	ls := Listeners{a, nil, b}

	ls.LikesChanged(context.Background(), "p1", []string{"u1"})
	ls.CommentAppended(context.Background(), "p1", &models.Comment{ID: "c1"})

	assert.Len(t, a.likes, 1)
	assert.Len(t, b.likes, 1)
	assert.Len(t, a.comments, 1)
	assert.Len(t, b.comments, 1)
}

func TestState_AsToggleListener(t *testing.T) {
	s := NewState()
	s.Load([]*models.Post{{ID: "p1"}})
	var l Listener = s
	l.LikesChanged(context.Background(), "p1", []string{"u9"})
	p, _ := s.Lookup("p1")
	assert.True(t, p.LikedBy("u9"))
}
