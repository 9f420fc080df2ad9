package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/config"
	"github.com/summraize/summraize-backend/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := models.Post{Title: "Launch notes", Slug: "launch-notes-1700000000", Published: true}
	err := cache.Set("blog:launch-notes-1700000000", expected, time.Minute)
	require.NoError(t, err)

	var actual models.Post
	found, err := cache.Get("blog:launch-notes-1700000000", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected.Title, actual.Title)
	assert.Equal(t, expected.Slug, actual.Slug)
}

func TestGetMissingKey(t *testing.T) {
	cache := setupTestCache(t)

	var out models.Post
	found, err := cache.Get("blog:missing", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	require.NoError(t, cache.Set("blog:gone", models.Post{Title: "Gone"}, time.Minute))
	require.NoError(t, cache.Invalidate("blog:gone"))

	var out models.Post
	found, err := cache.Get("blog:gone", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
