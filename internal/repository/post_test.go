package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quilog/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	created := &models.Post{
		ID:       "p1",
		Title:    "Hello",
		Content:  "World",
		Category: "Travel",
		UserID:   "u1",
		UserName: "Ada",
		Likes:    []string{"u2", "u3"},
		Comments: []string{"c1"},
	}
	created.CreatedAt = now
	require.NoError(t, repo.Create(ctx, created))

	got, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, []string{"u2", "u3"}, got.Likes)
	assert.Equal(t, []string{"c1"}, got.Comments)
	assert.True(t, got.CreatedAt.Equal(now))

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_LikeSetSemantics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	seedPost(t, repo, "p1", "owner", time.Now())

	require.NoError(t, repo.AddLike(ctx, "p1", "u1"))
	require.NoError(t, repo.AddLike(ctx, "p1", "u1"))
	require.NoError(t, repo.AddLike(ctx, "p1", "u2"))

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, p.Likes)

	require.NoError(t, repo.RemoveLike(ctx, "p1", "u1"))
	require.NoError(t, repo.RemoveLike(ctx, "p1", "u1"))

	p, err = repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, p.Likes)

	assert.True(t, models.IsNotFound(repo.AddLike(ctx, "nope", "u1")))
	assert.True(t, models.IsNotFound(repo.RemoveLike(ctx, "nope", "u1")))
}

func TestPostRepository_ConcurrentLikesFromDistinctUsers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	seedPost(t, repo, "p1", "owner", time.Now())

	users := []string{"a", "b", "c", "d", "e", "f"}
	var wg sync.WaitGroup
	for _, uid := range users {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			assert.NoError(t, repo.AddLike(ctx, "p1", uid))
		}(uid)
	}
	wg.Wait()

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, users, p.Likes)
}

func TestPostRepository_AppendCommentKeepsOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	seedPost(t, repo, "p1", "owner", time.Now())

	for _, cid := range []string{"c3", "c1", "c2", "c1"} {
		require.NoError(t, repo.AppendComment(ctx, "p1", cid))
	}

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c1", "c2"}, p.Comments)

	assert.True(t, models.IsNotFound(repo.AppendComment(ctx, "nope", "c9")))
}

func TestPostRepository_ListAndListByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Now()
	seedPost(t, repo, "p1", "u1", base)
	seedPost(t, repo, "p2", "u2", base.Add(time.Minute))
	seedPost(t, repo, "p3", "u1", base.Add(2*time.Minute))
	require.NoError(t, repo.AddLike(ctx, "p3", "u2"))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, p := range all {
		assert.NotNil(t, p.Likes)
		assert.NotNil(t, p.Comments)
	}

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	ids := []string{}
	for _, p := range mine {
		ids = append(ids, p.ID)
		if p.ID == "p3" {
			assert.Equal(t, []string{"u2"}, p.Likes)
		}
	}
	assert.ElementsMatch(t, []string{"p1", "p3"}, ids)

	none, err := repo.ListByUser(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostRepository_UpdateEditableFieldsOnly(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	seedPost(t, repo, "p1", "owner", time.Now())
	require.NoError(t, repo.AddLike(ctx, "p1", "fan"))

	err := repo.Update(ctx, &models.Post{
		ID:       "p1",
		Title:    "New title",
		Content:  "New body",
		Category: "News",
		UserID:   "intruder",
	})
	require.NoError(t, err)

	p, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "New title", p.Title)
	assert.Equal(t, "News", p.Category)
	assert.Equal(t, "owner", p.UserID)
	assert.Equal(t, []string{"fan"}, p.Likes)

	err = repo.Update(ctx, &models.Post{ID: "nope", Title: "x"})
	assert.True(t, models.IsNotFound(err))
}

func TestPostRepository_GetByIDMapsErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "blogs" WHERE id = \$1`).
			WithArgs("p404", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

		_, err := repo.GetByID(ctx, "p404")
		assert.True(t, models.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("backend failure", func(t *testing.T) {
		boom := errors.New("connection reset")
		mock.ExpectQuery(`SELECT \* FROM "blogs" WHERE id = \$1`).
			WithArgs("p1", 1).
			WillReturnError(boom)

		_, err := repo.GetByID(ctx, "p1")
		assert.ErrorIs(t, err, boom)
		assert.False(t, models.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
