package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"quilog/internal/config"
	"quilog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRuntime_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreBackend: config.BackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "quilog.db"),
	}

	rt, err := InitRuntime(context.Background(), cfg, Options{SkipRedis: true})
	require.NoError(t, err)
	t.Cleanup(rt.Close)

	assert.Equal(t, "sqlite", rt.Store.Backend)
	assert.Nil(t, rt.Redis)
	require.NoError(t, rt.Store.Ping(context.Background()))

	ctx := context.Background()
	require.NoError(t, rt.Store.Posts.Create(ctx, &models.Post{ID: "p1", Title: "t", Content: "c"}))
	post, err := rt.Store.Posts.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "t", post.Title)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreBackend: "cassandra"}, Options{})
	assert.ErrorContains(t, err, "cassandra")
}
