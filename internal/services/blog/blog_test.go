package blog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/summraize/summraize-backend/internal/models"
)

type mockRepo struct {
	createFunc  func(ctx context.Context, post models.Post) (int, error)
	getFunc     func(ctx context.Context, slug string) (*models.Post, error)
	getSlugFunc func(ctx context.Context, id int) (string, error)
	updateFunc  func(ctx context.Context, post models.Post, id int) (int64, error)
	removeFunc  func(ctx context.Context, id int) (int64, error)
	listFunc    func(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Post, error)
}

func (m *mockRepo) CreatePost(ctx context.Context, post models.Post) (int, error) {
	return m.createFunc(ctx, post)
}

func (m *mockRepo) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return m.getFunc(ctx, slug)
}

func (m *mockRepo) GetPostSlugByID(ctx context.Context, id int) (string, error) {
	return m.getSlugFunc(ctx, id)
}

func (m *mockRepo) UpdatePost(ctx context.Context, post models.Post, id int) (int64, error) {
	return m.updateFunc(ctx, post, id)
}

func (m *mockRepo) RemovePost(ctx context.Context, id int) (int64, error) {
	return m.removeFunc(ctx, id)
}

func (m *mockRepo) ListPosts(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Post, error) {
	return m.listFunc(ctx, publishedOnly, limit, offset)
}

type mockCache struct {
	store       map[string]any
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{store: map[string]any{}}
}

func (m *mockCache) Get(key string, result any) (bool, error) {
	value, ok := m.store[key]
	if !ok {
		return false, nil
	}
	if post, ok := value.(*models.Post); ok {
		*(result.(**models.Post)) = post
	}
	return true, nil
}

func (m *mockCache) Set(key string, value any, _ time.Duration) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Invalidate(key string) error {
	m.invalidated = append(m.invalidated, key)
	delete(m.store, key)
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreate(t *testing.T) {
	var saved models.Post
	repo := &mockRepo{
		createFunc: func(_ context.Context, post models.Post) (int, error) {
			saved = post
			return 7, nil
		},
	}
	svc := New(repo, newMockCache(), newTestLogger())
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	post, err := svc.Create(context.Background(), "alice", models.DummyPost{
		Title:   "Hello, World!",
		Content: "body",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, post.ID)
	assert.Equal(t, "hello-world-1700000000", post.Slug)
	assert.Equal(t, "alice", saved.Author)

	t.Run("same title yields distinct slugs", func(t *testing.T) {
		svc.now = func() time.Time { return time.Unix(1700000001, 0) }
		second, err := svc.Create(context.Background(), "alice", models.DummyPost{
			Title:   "Hello, World!",
			Content: "body",
		})
		require.NoError(t, err)
		assert.NotEqual(t, post.Slug, second.Slug)
	})
}

func TestRead(t *testing.T) {
	stored := &models.Post{ID: 1, Slug: "hello-1", Title: "Hello"}

	t.Run("cache miss reads repo and fills cache", func(t *testing.T) {
		repoCalls := 0
		repo := &mockRepo{
			getFunc: func(_ context.Context, _ string) (*models.Post, error) {
				repoCalls++
				return stored, nil
			},
		}
		cache := newMockCache()
		svc := New(repo, cache, newTestLogger())

		post, err := svc.Read(context.Background(), "hello-1")
		require.NoError(t, err)
		assert.Equal(t, stored, post)
		assert.Equal(t, 1, repoCalls)

		// второе чтение обслуживается кешем
		post, err = svc.Read(context.Background(), "hello-1")
		require.NoError(t, err)
		assert.Equal(t, stored, post)
		assert.Equal(t, 1, repoCalls)
	})

	t.Run("not found", func(t *testing.T) {
		repo := &mockRepo{
			getFunc: func(_ context.Context, _ string) (*models.Post, error) {
				return nil, errors.New("post not found")
			},
		}
		svc := New(repo, newMockCache(), newTestLogger())

		_, err := svc.Read(context.Background(), "missing")
		assert.Error(t, err)
	})
}

func TestUpdate(t *testing.T) {
	repo := &mockRepo{
		updateFunc: func(_ context.Context, _ models.Post, _ int) (int64, error) {
			return 1, nil
		},
		getSlugFunc: func(_ context.Context, id int) (string, error) {
			require.Equal(t, 1, id)
			return "hello-1", nil
		},
	}
	cache := newMockCache()
	cache.store["blog:hello-1"] = &models.Post{ID: 1}
	svc := New(repo, cache, newTestLogger())

	count, err := svc.Update(context.Background(), 1, models.DummyPost{
		Title:   "Updated",
		Content: "new body",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	assert.Contains(t, cache.invalidated, "blog:hello-1")
}

func TestRemove(t *testing.T) {
	t.Run("invalidates cache by stored slug", func(t *testing.T) {
		repo := &mockRepo{
			removeFunc: func(_ context.Context, _ int) (int64, error) { return 1, nil },
			getSlugFunc: func(_ context.Context, id int) (string, error) {
				require.Equal(t, 1, id)
				return "hello-1", nil
			},
		}
		cache := newMockCache()
		cache.store["blog:hello-1"] = &models.Post{ID: 1}
		svc := New(repo, cache, newTestLogger())

		count, err := svc.Remove(context.Background(), 1)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
		assert.Contains(t, cache.invalidated, "blog:hello-1")
	})

	t.Run("missing post still removed without invalidation", func(t *testing.T) {
		repo := &mockRepo{
			removeFunc: func(_ context.Context, _ int) (int64, error) { return 0, nil },
			getSlugFunc: func(_ context.Context, _ int) (string, error) {
				return "", errors.New("post not found")
			},
		}
		cache := newMockCache()
		svc := New(repo, cache, newTestLogger())

		count, err := svc.Remove(context.Background(), 42)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, cache.invalidated)
	})
}

func TestList(t *testing.T) {
	posts := []*models.Post{{ID: 1, Title: strings.Repeat("t", 10)}}

	var gotPublishedOnly bool
	repo := &mockRepo{
		listFunc: func(_ context.Context, publishedOnly bool, _, _ int) ([]*models.Post, error) {
			gotPublishedOnly = publishedOnly
			return posts, nil
		},
	}
	svc := New(repo, newMockCache(), newTestLogger())

	t.Run("user sees published only", func(t *testing.T) {
		result, err := svc.List(context.Background(), "user", 10, 0)
		require.NoError(t, err)
		assert.True(t, gotPublishedOnly)
		assert.Len(t, result, 1)
	})

	t.Run("admin sees drafts", func(t *testing.T) {
		_, err := svc.List(context.Background(), "admin", 10, 0)
		require.NoError(t, err)
		assert.False(t, gotPublishedOnly)
	})
}
