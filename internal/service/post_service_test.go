package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"quilog/internal/engagement"
	"quilog/internal/models"
	"quilog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeUnauthorized)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

type postEvents struct {
	mu      sync.Mutex
	created []*models.Post
	likes   map[string][]string
	comment []*models.Comment
}

func (e *postEvents) LikesChanged(_ context.Context, postID string, likes []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.likes == nil {
		e.likes = map[string][]string{}
	}
	e.likes[postID] = likes
}

func (e *postEvents) CommentAppended(_ context.Context, _ string, c *models.Comment) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.comment = append(e.comment, c)
}

func newPostService(m *testutil.MemStore, events *postEvents) *PostService {
	ids := 0
	cfg := PostServiceConfig{
		Now: func() time.Time { return testNow },
		NewID: func() string {
			ids++
			return "id-" + string(rune('0'+ids))
		},
	}
	if events != nil {
		cfg.Listener = events
		cfg.OnCreate = func(_ context.Context, p *models.Post) { events.created = append(events.created, p) }
	}
	return NewPostService(m.Store(false), cfg)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	svc := newPostService(testutil.NewMemStore(), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{name: "empty title", input: CreatePostInput{UserID: "u1", Content: "some content"}},
		{name: "whitespace content", input: CreatePostInput{UserID: "u1", Title: "t", Content: "   "}},
		{name: "content too long", input: CreatePostInput{UserID: "u1", Title: "t", Content: strings.Repeat("x", 501)}},
		{name: "unknown category", input: CreatePostInput{UserID: "u1", Title: "t", Content: "c", Category: "Knitting"}},
		{name: "bad cover", input: CreatePostInput{UserID: "u1", Title: "t", Content: "c", CoverImage: "javascript:alert(1)"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(ctx, tt.input)
			assertValidationError(t, err)
		})
	}

	_, err := svc.CreatePost(ctx, CreatePostInput{Title: "t", Content: "c"})
	assertCode(t, err, models.CodeAuthRequired)
}

func TestPostService_CreatePost_Defaults(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	events := &postEvents{}
	svc := newPostService(m, events)

	post, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", Title: " Hello ", Content: "World"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, models.AnonymousAuthor, post.Author)
	assert.Equal(t, models.AnonymousAuthor, post.UserName)
	assert.Equal(t, models.DefaultCoverImage, post.CoverImage)
	assert.Equal(t, models.DefaultCategory, post.Category)
	assert.Equal(t, testNow, post.CreatedAt)
	assert.Equal(t, []string{}, post.Likes)
	assert.Equal(t, []string{}, post.Comments)

	stored, ok := m.Post("id-1")
	require.True(t, ok)
	assert.Equal(t, "u1", stored.UserID)
	require.Len(t, events.created, 1)

	named, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", UserName: "Ada", Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", named.Author)

	explicit, err := svc.CreatePost(context.Background(), CreatePostInput{UserID: "u1", UserName: "Ada", Author: "Guest Writer", Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, "Guest Writer", explicit.Author)
	assert.Equal(t, "Ada", explicit.UserName)
}

func TestPostService_UpdatePost(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "p1", UserID: "owner", Title: "Old", Content: "Body", Category: "IT", Likes: []string{"u9"}})
	svc := newPostService(m, nil)
	ctx := context.Background()

	_, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "intruder", PostID: "p1", Title: "Hijacked"})
	assertUnauthorizedError(t, err)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: "owner", PostID: "p1", Category: "Gardening"})
	assertValidationError(t, err)

	post, err := svc.UpdatePost(ctx, UpdatePostInput{UserID: "owner", PostID: "p1", Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", post.Title)
	assert.Equal(t, "Body", post.Content)

	stored, _ := m.Post("p1")
	assert.Equal(t, "New", stored.Title)
	assert.Equal(t, []string{"u9"}, stored.Likes)

	_, err = svc.UpdatePost(ctx, UpdatePostInput{UserID: "owner", PostID: "ghost", Title: "x"})
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_Feed(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "a", UserID: "u1", CreatedAt: testNow})
	m.PutPost(models.Post{ID: "b", UserID: "u2", CreatedAt: testNow.Add(time.Minute)})
	svc := newPostService(m, nil)

	all, err := svc.Feed(context.Background(), FeedInput{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)

	mine, err := svc.Feed(context.Background(), FeedInput{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].ID)
	assert.Equal(t, 1, m.Calls("posts.ListByUser"))
}

func TestPostService_Feed_LoadsState(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "a", UserID: "u1", CreatedAt: testNow})
	m.PutPost(models.Post{ID: "b", UserID: "u2", CreatedAt: testNow.Add(time.Minute)})
	state := engagement.NewState()
	svc := NewPostService(m.Store(false), PostServiceConfig{State: state, Listener: state})
	ctx := context.Background()

	_, err := svc.Feed(ctx, FeedInput{UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, state.Loaded())

	_, err = svc.Feed(ctx, FeedInput{})
	require.NoError(t, err)
	require.True(t, state.Loaded())
	posts := state.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "b", posts[0].ID)

	_, err = svc.ToggleLike(ctx, ToggleLikeInput{PostID: "a", UserID: "u2"})
	require.NoError(t, err)
	post, status := state.Lookup("a")
	require.Equal(t, engagement.StatusReady, status)
	assert.Equal(t, []string{"u2"}, post.Likes)
	assert.Equal(t, 1, m.Calls("posts.List"))
}

func TestPostService_ToggleLike(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "p1", Likes: []string{"u2"}})
	events := &postEvents{}
	svc := newPostService(m, events)
	ctx := context.Background()

	post, err := svc.ToggleLike(ctx, ToggleLikeInput{PostID: "p1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, post.Likes)
	assert.Equal(t, []string{"u2", "u1"}, events.likes["p1"])

	post, err = svc.ToggleLike(ctx, ToggleLikeInput{PostID: "p1", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, post.Likes)

	_, err = svc.ToggleLike(ctx, ToggleLikeInput{PostID: "p1"})
	assertCode(t, err, models.CodeAuthRequired)

	_, err = svc.ToggleLike(ctx, ToggleLikeInput{PostID: "ghost", UserID: "u1"})
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_AddComment(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "p1"})
	m.PutUser(models.Profile{ID: "u1", Name: "Ada"})
	events := &postEvents{}
	svc := newPostService(m, events)
	ctx := context.Background()

	view, err := svc.AddComment(ctx, AddCommentInput{PostID: "p1", UserID: "u1", Text: "Lovely"})
	require.NoError(t, err)
	require.NotNil(t, view)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "Lovely", view.Comments[0].Text)
	assert.Equal(t, "Ada", view.Comments[0].AuthorName)
	assert.Len(t, events.comment, 1)

	view, err = svc.AddComment(ctx, AddCommentInput{PostID: "p1", UserID: "u1", Text: "  "})
	require.NoError(t, err)
	assert.Nil(t, view)
	assert.Equal(t, 1, m.CommentCount())

	_, err = svc.AddComment(ctx, AddCommentInput{PostID: "ghost", UserID: "u1", Text: "hello?"})
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, 1, m.CommentCount())
}

func TestPostService_AddComment_NoLengthLimit(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "p1"})
	svc := newPostService(m, nil)

	long := strings.Repeat("long comment ", 100)
	view, err := svc.AddComment(context.Background(), AddCommentInput{PostID: "p1", UserID: "u1", Text: long})
	require.NoError(t, err)
	require.NotNil(t, view)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, strings.TrimSpace(long), view.Comments[0].Text)
}

func TestPostService_Engagement_PropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	m := testutil.NewMemStore()
	m.PutPost(models.Post{ID: "p1", Likes: []string{"u1"}})
	repoErr := errors.New("db connection error")
	m.SetHook(func(_ context.Context, op string, _ ...string) error {
		if op == "users.GetByID" {
			return repoErr
		}
		return nil
	})

	_, err := newPostService(m, nil).Engagement(context.Background(), "p1")
	assert.ErrorIs(t, err, repoErr)
}
